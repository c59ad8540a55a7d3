package repo

import (
	"gorm.io/gorm"

	"indierise/internal/domain"
)

type PromoRepo struct{ db *gorm.DB }

func NewPromoRepo(db *gorm.DB) *PromoRepo { return &PromoRepo{db: db} }

func (r *PromoRepo) Create(p *domain.PromoPost) error { return r.db.Create(p).Error }

func (r *PromoRepo) List() ([]domain.PromoPost, error) {
	var posts []domain.PromoPost
	err := r.db.Order("created_at ASC").Find(&posts).Error
	return posts, err
}

func (r *PromoRepo) DeleteByAuthor(email string) error {
	return r.db.Where("author_email = ?", email).Delete(&domain.PromoPost{}).Error
}
