package domain

import "time"

// Book 书目记录。CoverURL/TrailerURL 原样存储，渲染端自理。
type Book struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	AuthorEmail string    `gorm:"index;size:191" json:"authorEmail"`
	Title       string    `gorm:"size:191" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	CoverURL    string    `gorm:"size:512" json:"coverUrl"`
	TrailerURL  string    `gorm:"size:512" json:"trailerUrl"`
	Approved    bool      `gorm:"index" json:"approved"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Book) TableName() string { return "books" }

// BookRepository 列表均按插入顺序（created_at 升序）返回
type BookRepository interface {
	Create(b *Book) error
	FindByID(id string) (*Book, error)
	ListApproved() ([]Book, error)
	ListPending() ([]Book, error)
	ListByAuthor(email string) ([]Book, error)
	Update(b *Book) error
	Delete(id string) error
	DeleteByAuthor(email string) error
}
