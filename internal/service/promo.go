package service

import (
	"errors"

	"indierise/internal/domain"
	"indierise/pkg/utils"
)

var ErrBookNotOwned = errors.New("book not found or not yours")

// PromoService 互推板：作者拿自己已上架的书挂推广位
type PromoService struct {
	promos domain.PromoRepository
	books  domain.BookRepository
}

func NewPromoService(promos domain.PromoRepository, books domain.BookRepository) *PromoService {
	return &PromoService{promos: promos, books: books}
}

func (s *PromoService) Post(author *domain.User, bookID, pitch string) (*domain.PromoPost, error) {
	b, err := s.books.FindByID(bookID)
	if err != nil {
		return nil, err
	}
	if b == nil || b.AuthorEmail != author.Email {
		return nil, ErrBookNotOwned
	}
	p := &domain.PromoPost{
		ID:          utils.NewID(),
		AuthorEmail: author.Email,
		BookID:      bookID,
		Pitch:       pitch,
	}
	if err := s.promos.Create(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PromoService) List() ([]domain.PromoPost, error) { return s.promos.List() }
