package main

import (
	"context"
	"errors"
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

	// 可选外部集成的两个密钥：只记录有无，缺省不拦启动
	log.Info("remote integration",
		zap.Bool("endpoint_set", cfg.Remote.Endpoint != ""),
		zap.Bool("access_key_set", cfg.Remote.AccessKey != ""),
	)

	// redis：书架缓存 + 登出黑名单；未启用则内存黑名单、直接读库
	var catalogCache service.PublicCache
	var revoker auth.Revoker = auth.NewMemoryRevoker()
	if cfg.Redis.Enable {
		c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		catalogCache = c
		revoker = auth.NewRedisRevoker(c.RDB)
		log.Info("redis enabled", zap.String("addr", cfg.Redis.Addr))
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}

	identitySvc := service.NewIdentityService(users, books, promos, catalogCache, log)
	catalogSvc := service.NewCatalogService(books, catalogCache, log)
	promoSvc := service.NewPromoService(promos, books)

	if cfg.Seed.Demo {
		if err := service.SeedDemoUsers(users, log); err != nil {
			log.Fatal("seed demo users", zap.Error(err))
		}
	}

	router.Register(handler.NewAuthHandler(identitySvc, jwter, revoker))
	router.Register(handler.NewCatalogHandler(catalogSvc, promoSvc, identitySvc))

	r := router.NewAPIEngine(log, jwter, revoker)

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api start FAILED", zap.Error(err))
		}
	}()
	log.Info("api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("api stopped gracefully")
}

// buildRepos driver=memory 走进程内基线存储，否则 gorm
func buildRepos(cfg *config.Config, l *zap.Logger) (domain.UserRepository, domain.BookRepository, domain.PromoRepository) {
	if cfg.DB.Driver == "memory" {
		l.Info("using in-memory store")
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
	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(&domain.User{}, &domain.Book{}, &domain.PromoPost{}); err != nil {
			l.Fatal("automigrate failed", zap.Error(err))
		}
		l.Info("automigrate done")
	}
	return repo.NewUserRepo(db), repo.NewBookRepo(db), repo.NewPromoRepo(db)
}
