package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-rbac-service/internal/config"
	"github.com/iliyamo/auth-rbac-service/internal/database"
	"github.com/iliyamo/auth-rbac-service/internal/handler"
	"github.com/iliyamo/auth-rbac-service/internal/middleware"
	"github.com/iliyamo/auth-rbac-service/internal/queue"
	"github.com/iliyamo/auth-rbac-service/internal/repository"
	"github.com/iliyamo/auth-rbac-service/internal/router"
	"github.com/iliyamo/auth-rbac-service/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	tokens := repository.NewTokenRepo(db)

	authSvc := service.NewAuthService(users, tokens, cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays)
	userSvc := service.NewUserService(users, cfg.BcryptCost)
	roleSvc := service.NewRoleService(roles)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting disabled")
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc), cfg.JWTSecret, limiter)
	router.RegisterAdmin(e, handler.NewUserHandler(userSvc), handler.NewRoleHandler(roleSvc), cfg.JWTSecret)

	// Audit log consumer; reconnects on its own.
	go func() {
		if err := queue.StartAuthConsumer(); err != nil {
			log.Printf("auth consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
