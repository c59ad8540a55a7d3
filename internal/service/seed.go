package service

import (
	"go.uber.org/zap"

	"indierise/internal/domain"
	"indierise/pkg/utils"
)

type seedUser struct {
	email    string
	name     string
	password string
	role     domain.Role
}

var demoUsers = []seedUser{
	{"mary@stockittome.com", "Mary Spearman", "indie123", domain.RoleAdmin},
	{"test@author.com", "Test Author", "test123", domain.RoleAuthor},
}

// SeedDemoUsers 幂等灌入演示账号（seed.demo 开启时）
func SeedDemoUsers(users domain.UserRepository, log *zap.Logger) error {
	for _, su := range demoUsers {
		existing, err := users.FindByEmail(su.email)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		u := &domain.User{
			ID:           utils.NewID(),
			Email:        su.email,
			Name:         su.name,
			PasswordHash: utils.HashPassword(su.password),
			Role:         su.role,
		}
		if err := users.Create(u); err != nil {
			return err
		}
		log.Info("seeded demo user", zap.String("email", su.email), zap.String("role", string(su.role)))
	}
	return nil
}
