package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"indierise/internal/domain"
	httpez "indierise/internal/transport/http/ez"
)

// AdminHandler 管理端：用户管理 + 待审书目。挂载分组已要求 admin 角色，
// 这里的 Roles 再校验一道（路由守卫不只靠菜单可见性）。
type AdminHandler struct {
	identity IdentityService
	catalog  CatalogService
}

func NewAdminHandler(identity IdentityService, catalog CatalogService) *AdminHandler {
	return &AdminHandler{identity: identity, catalog: catalog}
}

var adminOnly = []domain.Role{domain.RoleAdmin}

func (h *AdminHandler) MountAdmin(admin *gin.RouterGroup) {
	ez := httpez.New(admin)

	// --- 用户列表 ---
	type usersOut struct {
		Total int       `json:"total"`
		Items []userOut `json:"items"`
	}
	httpez.Register(ez, httpez.Action[struct{}, usersOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindNone,
		Auth:   true,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, _ *struct{}) (usersOut, error) {
			us, err := h.identity.List()
			if err != nil {
				return usersOut{}, httpez.Internal("list users failed", err)
			}
			out := usersOut{Total: len(us), Items: make([]userOut, 0, len(us))}
			for i := range us {
				out.Items = append(out.Items, toUserOut(&us[i]))
			}
			return out, nil
		},
	})

	// --- 删除账号（级联删其书目） ---
	httpez.Register(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/users/:email",
		Binder: httpez.BindNone,
		Auth:   true,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			email := c.Param("email")
			if email == "" {
				return nil, httpez.BadRequest("missing email")
			}
			if err := h.identity.Remove(email); err != nil {
				return nil, err
			}
			return gin.H{"email": email}, nil
		},
	})

	// --- 待审书目 ---
	type pendingOut struct {
		Total int           `json:"total"`
		Items []domain.Book `json:"items"`
	}
	httpez.Register(ez, httpez.Action[struct{}, pendingOut]{
		Method: http.MethodGet,
		Path:   "/books/pending",
		Binder: httpez.BindNone,
		Auth:   true,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, _ *struct{}) (pendingOut, error) {
			books, err := h.catalog.ListPending()
			if err != nil {
				return pendingOut{}, httpez.Internal("list pending failed", err)
			}
			return pendingOut{Total: len(books), Items: books}, nil
		},
	})

	// --- 过审（幂等） ---
	httpez.Register(ez, httpez.Action[struct{}, domain.Book]{
		Method: http.MethodPost,
		Path:   "/books/:id/approve",
		Binder: httpez.BindNone,
		Auth:   true,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, _ *struct{}) (domain.Book, error) {
			b, err := h.catalog.Approve(c.Param("id"))
			if err != nil {
				return domain.Book{}, err
			}
			return *b, nil
		},
	})

	// --- 驳回（永久删除） ---
	httpez.Register(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/books/:id/reject",
		Binder: httpez.BindNone,
		Auth:   true,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if err := h.catalog.Reject(id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})
}
