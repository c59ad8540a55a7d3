package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"indierise/internal/domain"
)

type BookRepo struct{ db *gorm.DB }

func NewBookRepo(db *gorm.DB) *BookRepo { return &BookRepo{db: db} }

func (r *BookRepo) Create(b *domain.Book) error { return r.db.Create(b).Error }

func (r *BookRepo) FindByID(id string) (*domain.Book, error) {
	var b domain.Book
	err := r.db.First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &b, err
}

// 列表统一 created_at 升序，保持插入顺序语义
func (r *BookRepo) ListApproved() ([]domain.Book, error) {
	var books []domain.Book
	err := r.db.Where("approved = ?", true).Order("created_at ASC").Find(&books).Error
	return books, err
}

func (r *BookRepo) ListPending() ([]domain.Book, error) {
	var books []domain.Book
	err := r.db.Where("approved = ?", false).Order("created_at ASC").Find(&books).Error
	return books, err
}

func (r *BookRepo) ListByAuthor(email string) ([]domain.Book, error) {
	var books []domain.Book
	err := r.db.Where("author_email = ?", email).Order("created_at ASC").Find(&books).Error
	return books, err
}

func (r *BookRepo) Update(b *domain.Book) error { return r.db.Save(b).Error }

func (r *BookRepo) Delete(id string) error {
	res := r.db.Where("id = ?", id).Delete(&domain.Book{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *BookRepo) DeleteByAuthor(email string) error {
	return r.db.Where("author_email = ?", email).Delete(&domain.Book{}).Error
}

// isDupKey 不依赖 gorm.ErrDuplicatedKey，避免驱动差异
func isDupKey(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "duplicate key")
}
