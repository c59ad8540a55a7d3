package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"indierise/internal/core/cache"
	"indierise/internal/domain"
	"indierise/pkg/utils"
)

const (
	keyPublicCatalog = "catalog:public"
	publicCatalogTTL = 30 * time.Second
)

type SubmitInput struct {
	Title       string
	Description string
	CoverURL    string
	TrailerURL  string
	AgreePolicy bool
}

// PublicCache 公共书架缓存所需的能力，*cache.Cache 满足。
// 任何目录变更（投稿 / 过审 / 驳回 / 删号级联）后都必须删 key，
// 否则已撤的书会在 TTL 内继续对外可见。
type PublicCache interface {
	cache.Loader
	Invalidate(ctx context.Context, keys ...string)
}

// CatalogService 投稿 / 浏览 / 搜索 / 审核。cache 可为 nil（直接读库）。
type CatalogService struct {
	books domain.BookRepository
	cache PublicCache
	log   *zap.Logger
}

func NewCatalogService(books domain.BookRepository, c PublicCache, log *zap.Logger) *CatalogService {
	return &CatalogService{books: books, cache: c, log: log}
}

// Submit 必填字段为空或未勾选内容政策 → ErrPolicyNotAcknowledged。
// admin 投稿直接上架，author 投稿进待审。
func (s *CatalogService) Submit(in SubmitInput, submitter *domain.User) (*domain.Book, error) {
	if !in.AgreePolicy ||
		strings.TrimSpace(in.Title) == "" ||
		strings.TrimSpace(in.Description) == "" {
		return nil, domain.ErrPolicyNotAcknowledged
	}
	b := &domain.Book{
		ID:          utils.NewID(),
		AuthorEmail: submitter.Email,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		CoverURL:    in.CoverURL, // URL 原样存储
		TrailerURL:  in.TrailerURL,
		Approved:    submitter.Role == domain.RoleAdmin,
	}
	if err := s.books.Create(b); err != nil {
		return nil, err
	}
	s.invalidate(context.Background())
	s.log.Info("book submitted",
		zap.String("title", b.Title),
		zap.String("author", b.AuthorEmail),
		zap.Bool("approved", b.Approved),
	)
	return b, nil
}

// ListPublic 已上架书目，稳定插入序
func (s *CatalogService) ListPublic(ctx context.Context) ([]domain.Book, error) {
	if s.cache == nil {
		return s.books.ListApproved()
	}
	return cache.GetOrLoadJSON(s.cache, ctx, keyPublicCatalog, publicCatalogTTL,
		func(context.Context) ([]domain.Book, error) {
			return s.books.ListApproved()
		})
}

// Search 大小写不敏感子串匹配：标题或作者邮箱 local part。
// 空查询原样返回，零命中返回空序列。
func (s *CatalogService) Search(query string, within []domain.Book) []domain.Book {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return within
	}
	out := make([]domain.Book, 0, len(within))
	for _, b := range within {
		if strings.Contains(strings.ToLower(b.Title), q) ||
			strings.Contains(strings.ToLower(domain.LocalPart(b.AuthorEmail)), q) {
			out = append(out, b)
		}
	}
	return out
}

func (s *CatalogService) ListOwned(email string) ([]domain.Book, error) {
	return s.books.ListByAuthor(email)
}

func (s *CatalogService) ListPending() ([]domain.Book, error) {
	return s.books.ListPending()
}

// Approve 幂等：已上架的书再审一次仍是上架
func (s *CatalogService) Approve(id string) (*domain.Book, error) {
	b, err := s.books.FindByID(id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrNotFound
	}
	if b.Approved {
		return b, nil
	}
	b.Approved = true
	if err := s.books.Update(b); err != nil {
		return nil, err
	}
	s.invalidate(context.Background())
	s.log.Info("book approved", zap.String("id", id), zap.String("title", b.Title))
	return b, nil
}

// Reject 永久删除，不可恢复
func (s *CatalogService) Reject(id string) error {
	if err := s.books.Delete(id); err != nil {
		return err
	}
	s.invalidate(context.Background())
	s.log.Info("book rejected", zap.String("id", id))
	return nil
}

func (s *CatalogService) FindByID(id string) (*domain.Book, error) {
	return s.books.FindByID(id)
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, keyPublicCatalog)
	}
}
