package domain

import "time"

// PromoPost 互推板上的一条推广位：作者用自己已上架的书换曝光
type PromoPost struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	AuthorEmail string    `gorm:"index;size:191" json:"authorEmail"`
	BookID      string    `gorm:"size:36" json:"bookId"`
	Pitch       string    `gorm:"size:512" json:"pitch"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (PromoPost) TableName() string { return "promo_posts" }

type PromoRepository interface {
	Create(p *PromoPost) error
	List() ([]PromoPost, error)
	DeleteByAuthor(email string) error
}
