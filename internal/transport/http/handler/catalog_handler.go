package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"indierise/internal/domain"
	"indierise/internal/service"
	httpez "indierise/internal/transport/http/ez"
)

// contentPolicy 对公众和作者都展示
const contentPolicy = "IndieRise is a family-friendly platform. No X-rated, pornographic, " +
	"explicit, violent, political, or offensive content allowed. All submissions are " +
	"reviewed for compliance. Violations lead to immediate removal and account suspension."

type CatalogService interface {
	Submit(in service.SubmitInput, submitter *domain.User) (*domain.Book, error)
	ListPublic(ctx context.Context) ([]domain.Book, error)
	Search(query string, within []domain.Book) []domain.Book
	ListOwned(email string) ([]domain.Book, error)
	ListPending() ([]domain.Book, error)
	Approve(id string) (*domain.Book, error)
	Reject(id string) error
}

type PromoService interface {
	Post(author *domain.User, bookID, pitch string) (*domain.PromoPost, error)
	List() ([]domain.PromoPost, error)
}

// CatalogHandler 公共书架 + 作者工作台
type CatalogHandler struct {
	catalog  CatalogService
	promos   PromoService
	identity IdentityService
}

func NewCatalogHandler(catalog CatalogService, promos PromoService, identity IdentityService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, promos: promos, identity: identity}
}

// currentUser 按 token 里的 email 取当前账号；账号已被删则视为未登录
func (h *CatalogHandler) currentUser(c *gin.Context) (*domain.User, error) {
	u, err := h.identity.FindByEmail(c.GetString("email"))
	if err != nil {
		return nil, httpez.Internal("db error", err)
	}
	if u == nil {
		return nil, httpez.Unauthorized("account no longer exists")
	}
	return u, nil
}

func (h *CatalogHandler) MountAPI(public, authed *gin.RouterGroup) {
	ezPublic := httpez.New(public)
	ezAuth := httpez.New(authed)

	// ---------- 公共书架（无需登录） ----------

	type catalogOut struct {
		Items []domain.Book `json:"items"`
		Total int           `json:"total"`
	}
	httpez.Register(ezPublic, httpez.Action[struct{}, catalogOut]{
		Method: http.MethodGet,
		Path:   "/catalog",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (catalogOut, error) {
			books, err := h.catalog.ListPublic(c.Request.Context())
			if err != nil {
				return catalogOut{}, httpez.Internal("list catalog failed", err)
			}
			return catalogOut{Items: books, Total: len(books)}, nil
		},
	})

	type searchQ struct {
		Q string `form:"q"`
	}
	httpez.Register(ezPublic, httpez.Action[searchQ, catalogOut]{
		Method: http.MethodGet,
		Path:   "/catalog/search",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *searchQ) (catalogOut, error) {
			books, err := h.catalog.ListPublic(c.Request.Context())
			if err != nil {
				return catalogOut{}, httpez.Internal("list catalog failed", err)
			}
			hits := h.catalog.Search(in.Q, books)
			return catalogOut{Items: hits, Total: len(hits)}, nil
		},
	})

	httpez.Register(ezPublic, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/policy",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			return gin.H{"policy": contentPolicy}, nil
		},
	})

	// ---------- 作者工作台（需登录） ----------

	// 仪表盘：自己的书 + 演示指标
	type dashboardOut struct {
		BooksUploaded int           `json:"booksUploaded"`
		Books         []domain.Book `json:"books"`
		ReadersMonth  int           `json:"readersMonth"` // demo
		RevenueUSD    float64       `json:"revenueUsd"`   // demo
	}
	httpez.Register(ezAuth, httpez.Action[struct{}, dashboardOut]{
		Method: http.MethodGet,
		Path:   "/dashboard",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (dashboardOut, error) {
			books, err := h.catalog.ListOwned(c.GetString("email"))
			if err != nil {
				return dashboardOut{}, httpez.Internal("list owned failed", err)
			}
			return dashboardOut{
				BooksUploaded: len(books),
				Books:         books,
				ReadersMonth:  1248,
				RevenueUSD:    87.32,
			}, nil
		},
	})

	// 投稿：必须勾选内容政策；admin 直接上架
	type submitIn struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		CoverURL    string `json:"coverUrl"`
		TrailerURL  string `json:"trailerUrl"`
		AgreePolicy bool   `json:"agreePolicy"`
	}
	httpez.Register(ezAuth, httpez.Action[submitIn, domain.Book]{
		Method: http.MethodPost,
		Path:   "/books",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *submitIn) (domain.Book, error) {
			u, err := h.currentUser(c)
			if err != nil {
				return domain.Book{}, err
			}
			b, err := h.catalog.Submit(service.SubmitInput{
				Title:       in.Title,
				Description: in.Description,
				CoverURL:    in.CoverURL,
				TrailerURL:  in.TrailerURL,
				AgreePolicy: in.AgreePolicy,
			}, u)
			if err != nil {
				return domain.Book{}, err
			}
			return *b, nil
		},
	})

	// 我的书（含待审）
	httpez.Register(ezAuth, httpez.Action[struct{}, catalogOut]{
		Method: http.MethodGet,
		Path:   "/books",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (catalogOut, error) {
			books, err := h.catalog.ListOwned(c.GetString("email"))
			if err != nil {
				return catalogOut{}, httpez.Internal("list owned failed", err)
			}
			return catalogOut{Items: books, Total: len(books)}, nil
		},
	})

	// 互推板
	type promoIn struct {
		BookID string `json:"bookId" binding:"required"`
		Pitch  string `json:"pitch"  binding:"required,max=512"`
	}
	httpez.Register(ezAuth, httpez.Action[promoIn, domain.PromoPost]{
		Method: http.MethodPost,
		Path:   "/promos",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *promoIn) (domain.PromoPost, error) {
			u, err := h.currentUser(c)
			if err != nil {
				return domain.PromoPost{}, err
			}
			p, err := h.promos.Post(u, in.BookID, in.Pitch)
			if err == service.ErrBookNotOwned {
				return domain.PromoPost{}, httpez.NotFound(err.Error())
			}
			if err != nil {
				return domain.PromoPost{}, err
			}
			return *p, nil
		},
	})
	httpez.Register(ezAuth, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/promos",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			posts, err := h.promos.List()
			if err != nil {
				return nil, httpez.Internal("list promos failed", err)
			}
			return gin.H{"items": posts, "total": len(posts)}, nil
		},
	})

	// 营销工具 / 预告片模板：静态清单
	httpez.Register(ezAuth, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/marketing/tools",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			return gin.H{"tools": []string{
				"launch-email-sequence",
				"social-banner-pack",
				"price-promo-calendar",
			}}, nil
		},
	})
	httpez.Register(ezAuth, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/trailer/templates",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			return gin.H{"templates": []string{
				"cinematic-30s",
				"quote-cards-15s",
				"cover-reveal-10s",
			}}, nil
		},
	})
}
