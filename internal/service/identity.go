package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"indierise/internal/domain"
	"indierise/pkg/utils"
)

// IdentityService 注册 / 登录校验 / 资料修改 / 账号删除（级联书目）。
// cache 可为 nil；非 nil 时删号级联后清公共书架缓存。
type IdentityService struct {
	users  domain.UserRepository
	books  domain.BookRepository
	promos domain.PromoRepository
	cache  PublicCache
	log    *zap.Logger
}

func NewIdentityService(users domain.UserRepository, books domain.BookRepository, promos domain.PromoRepository, c PublicCache, log *zap.Logger) *IdentityService {
	return &IdentityService{users: users, books: books, promos: promos, cache: c, log: log}
}

// Register 空字段或邮箱已占用 → ErrDuplicateIdentity；默认角色 author，
// 显示名取邮箱 local part
func (s *IdentityService) Register(email, password string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, domain.ErrDuplicateIdentity
	}
	if existing, err := s.users.FindByEmail(email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, domain.ErrDuplicateIdentity
	}
	u := &domain.User{
		ID:           utils.NewID(),
		Email:        email,
		Name:         domain.LocalPart(email),
		PasswordHash: utils.HashPassword(password),
		Role:         domain.RoleAuthor,
	}
	if err := s.users.Create(u); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("email", u.Email))
	return u, nil
}

func (s *IdentityService) Authenticate(email, password string) (*domain.User, error) {
	u, err := s.users.FindByEmail(strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, err
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return u, nil
}

// UpdateProfile 改名前必须重新提交当前密码确认
func (s *IdentityService) UpdateProfile(email, currentPassword, newName string) (*domain.User, error) {
	u, err := s.users.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	if !utils.CheckPassword(currentPassword, u.PasswordHash) {
		return nil, domain.ErrReauthRequired
	}
	u.Name = strings.TrimSpace(newName)
	if err := s.users.Update(u); err != nil {
		return nil, err
	}
	return u, nil
}

// Remove 删除用户并级联清掉其全部书目与互推位
func (s *IdentityService) Remove(email string) error {
	if err := s.users.Delete(email); err != nil {
		return err
	}
	if err := s.books.DeleteByAuthor(email); err != nil {
		return err
	}
	if err := s.promos.DeleteByAuthor(email); err != nil {
		return err
	}
	// 级联删掉的书可能已上架，公共书架缓存必须同步失效
	if s.cache != nil {
		s.cache.Invalidate(context.Background(), keyPublicCatalog)
	}
	s.log.Info("user removed", zap.String("email", email))
	return nil
}

func (s *IdentityService) List() ([]domain.User, error) { return s.users.List() }

func (s *IdentityService) FindByEmail(email string) (*domain.User, error) {
	return s.users.FindByEmail(email)
}
