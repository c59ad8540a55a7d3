package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"indierise/internal/core/auth"
	"indierise/internal/core/cache"
	"indierise/internal/core/config"
	"indierise/internal/core/database"
	"indierise/internal/core/logger"
	"indierise/internal/core/server"
	"indierise/internal/domain"
	"indierise/internal/memstore"
	"indierise/internal/repo"
	"indierise/internal/service"
	"indierise/internal/transport/http/handler"
	"indierise/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	users, books, promos := buildRepos(cfg, log)

	// redis 启用时审核 / 删号必须持有同一个缓存句柄：
	// 过审、驳回、级联删书要把用户端正在读的书架 key 删掉
	var catalogCache service.PublicCache
	var revoker auth.Revoker = auth.NewMemoryRevoker()
	if cfg.Redis.Enable {
		c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		catalogCache = c
		revoker = auth.NewRedisRevoker(c.RDB)
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}

	identitySvc := service.NewIdentityService(users, books, promos, catalogCache, log)
	catalogSvc := service.NewCatalogService(books, catalogCache, log)

	router.Register(handler.NewAdminHandler(identitySvc, catalogSvc))

	r := router.NewAdminEngine(log, jwter, revoker)

	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	srv := server.BuildServer(addr, r, 5*time.Second, 10*time.Second, 60*time.Second)

	host4human := cfg.App.Admin.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.Admin.Port)
	log.Info("admin api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("admin_v1", baseURL+"/admin/v1"),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("admin api start FAILED", zap.Error(err))
		}
	}()
	log.Info("admin api started SUCCESS")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("admin api stopped gracefully")
}

// buildRepos 与用户端一致：memory 基线或 gorm。
// 注意 memory 模式下两个进程各自独立，管理端应配置同一个数据库。
func buildRepos(cfg *config.Config, l *zap.Logger) (domain.UserRepository, domain.BookRepository, domain.PromoRepository) {
	if cfg.DB.Driver == "memory" {
		l.Warn("using in-memory store; admin and api processes do not share state")
		st := memstore.New()
		return st.Users(), st.Books(), st.Promos()
	}
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))
	return repo.NewUserRepo(db), repo.NewBookRepo(db), repo.NewPromoRepo(db)
}
