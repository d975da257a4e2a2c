package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	myPostgres "github.com/kilnworks/brickline/internal/adapters/db/postgres"
	myRedis "github.com/kilnworks/brickline/internal/adapters/db/redis"
	httpTransport "github.com/kilnworks/brickline/internal/adapters/transport/http"
	"github.com/kilnworks/brickline/internal/app/auth/jwt"
	authService "github.com/kilnworks/brickline/internal/app/auth/service"
	catalogService "github.com/kilnworks/brickline/internal/app/catalog/service"
	userService "github.com/kilnworks/brickline/internal/app/user/service"
	"github.com/kilnworks/brickline/internal/infra/config"
	lg "github.com/kilnworks/brickline/internal/infra/log"
	"github.com/kilnworks/brickline/internal/infra/migrate"
	"github.com/kilnworks/brickline/internal/infra/server"
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("strongpwd", func(fl validator.FieldLevel) bool {
		pwd := fl.Field().String()
		var hasUpper, hasDigit bool
		for _, r := range pwd {
			if unicode.IsUpper(r) {
				hasUpper = true
			}
			if unicode.IsDigit(r) {
				hasDigit = true
			}
		}
		return utf8.RuneCountInString(pwd) >= 8 && hasUpper && hasDigit
	})
	return v
}

func main() {
	zapLog := lg.Must(os.Getenv("LOG_LEVEL"))
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("failed to load config", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	redisCli := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisCli.Close()

	validate := newValidator()

	userRepo := myPostgres.NewPostgresUserRepo(db)
	productRepo := myPostgres.NewPostgresProductRepo(db)
	catalogCache := myRedis.NewRedisCatalogCache(redisCli, cfg.CatalogCacheTTL)

	jwtUtil, err := jwt.NewJWTUtil(cfg)
	if err != nil {
		zapLog.Fatal("failed to init JWT util", zap.Error(err))
	}

	authSvc := authService.NewAuthService(userRepo, jwtUtil, cfg, validate)
	catalogSvc := catalogService.NewCatalogService(productRepo, catalogCache, validate)
	userSvc := userService.NewUserService(userRepo, cfg, validate)

	router := httpTransport.NewRouter(cfg, zapLog, httpTransport.RouterDeps{
		Auth:    httpTransport.NewAuthHandler(authSvc, zapLog),
		Catalog: httpTransport.NewCatalogHandler(catalogSvc, zapLog),
		Users:   httpTransport.NewUserHandler(userSvc, zapLog),
		Issuer:  jwtUtil,
	})

	rootCtx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		return server.StartHTTPServer(ctx, cfg, router, zapLog)
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		zapLog.Info("shutdown signal received")
	case <-ctx.Done():
	}
	cancel()

	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}
}
