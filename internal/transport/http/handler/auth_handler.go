package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"indierise/internal/core/auth"
	"indierise/internal/domain"
	httpez "indierise/internal/transport/http/ez"
)

// AuthHandler 注册 / 登录 / 登出 / 个人资料
type AuthHandler struct {
	identity IdentityService
	jwter    *auth.JWTer
	revoker  auth.Revoker
}

type IdentityService interface {
	Register(email, password string) (*domain.User, error)
	Authenticate(email, password string) (*domain.User, error)
	UpdateProfile(email, currentPassword, newName string) (*domain.User, error)
	Remove(email string) error
	List() ([]domain.User, error)
	FindByEmail(email string) (*domain.User, error)
}

func NewAuthHandler(identity IdentityService, jwter *auth.JWTer, revoker auth.Revoker) *AuthHandler {
	return &AuthHandler{identity: identity, jwter: jwter, revoker: revoker}
}

type userOut struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  domain.Role `json:"role"`
}

func toUserOut(u *domain.User) userOut {
	return userOut{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

func (h *AuthHandler) MountAPI(public, authed *gin.RouterGroup) {
	ezPublic := httpez.New(public)
	ezAuth := httpez.New(authed)

	// /auth/signup：成功后仍需登录拿 token（与登录分离）。
	// 空值校验交给 service，空字段和占用邮箱同归 DuplicateIdentity
	type signupIn struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	httpez.Register(ezPublic, httpez.Action[signupIn, userOut]{
		Method: http.MethodPost,
		Path:   "/auth/signup",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *signupIn) (userOut, error) {
			u, err := h.identity.Register(in.Email, in.Password)
			if err != nil {
				return userOut{}, err
			}
			return toUserOut(u), nil
		},
	})

	// /auth/login：校验密码并发 JWT。空值同样走 InvalidCredentials
	type loginIn struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	type loginOut struct {
		Token string  `json:"token"`
		User  userOut `json:"user"`
	}
	httpez.Register(ezPublic, httpez.Action[loginIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (loginOut, error) {
			u, err := h.identity.Authenticate(in.Email, in.Password)
			if err != nil {
				return loginOut{}, err
			}
			tok, err := h.jwter.Issue(u)
			if err != nil || tok == "" {
				return loginOut{}, httpez.Internal("issue token failed", err)
			}
			return loginOut{Token: tok, User: toUserOut(u)}, nil
		},
	})

	// /auth/logout：按 jti 拉黑到自然过期
	httpez.Register(ezAuth, httpez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/auth/logout",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			if h.revoker != nil {
				ttl, _ := c.Get("tokenTTL")
				d, _ := ttl.(time.Duration)
				if err := h.revoker.Revoke(c.Request.Context(), c.GetString("jti"), d); err != nil {
					return nil, httpez.Internal("logout failed", err)
				}
			}
			return gin.H{"loggedOut": true}, nil
		},
	})

	httpez.Register(ezAuth, httpez.Action[struct{}, userOut]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (userOut, error) {
			u, err := h.identity.FindByEmail(c.GetString("email"))
			if err != nil {
				return userOut{}, httpez.Internal("db error", err)
			}
			if u == nil {
				return userOut{}, httpez.NotFound("user not found")
			}
			return toUserOut(u), nil
		},
	})

	// 改显示名要重新交一遍当前密码
	type profileIn struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		Name            string `json:"name"            binding:"required,max=64"`
	}
	httpez.Register(ezAuth, httpez.Action[profileIn, userOut]{
		Method: http.MethodPut,
		Path:   "/me/profile",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *profileIn) (userOut, error) {
			u, err := h.identity.UpdateProfile(c.GetString("email"), in.CurrentPassword, in.Name)
			if err != nil {
				return userOut{}, err
			}
			return toUserOut(u), nil
		},
	})
}
