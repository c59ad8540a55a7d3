package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role 封闭枚举："author" / "admin"
type Role string

const (
	RoleAuthor Role = "author"
	RoleAdmin  Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAuthor:
		return RoleAuthor, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:191" json:"email"`
	Name         string    `gorm:"size:64" json:"name"`
	PasswordHash string    `gorm:"size:191" json:"-"`
	Role         Role      `gorm:"size:16" json:"role"` // "author"/"admin"
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// LocalPart 邮箱 @ 前的部分，注册时作为默认显示名
func LocalPart(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

type UserRepository interface {
	Create(u *User) error
	FindByEmail(email string) (*User, error)
	List() ([]User, error)
	Update(u *User) error
	Delete(email string) error
}
