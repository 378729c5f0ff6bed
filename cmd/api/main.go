package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/liceolabs/prospect-crm/api/internal/auth"
	"github.com/liceolabs/prospect-crm/api/internal/cache"
	"github.com/liceolabs/prospect-crm/api/internal/config"
	"github.com/liceolabs/prospect-crm/api/internal/database"
	"github.com/liceolabs/prospect-crm/api/internal/entity"
	"github.com/liceolabs/prospect-crm/api/internal/handler"
	middlewarepkg "github.com/liceolabs/prospect-crm/api/internal/middleware"
	"github.com/liceolabs/prospect-crm/api/internal/repository"
	"github.com/liceolabs/prospect-crm/api/internal/router"
	"github.com/liceolabs/prospect-crm/api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var (
		leadsRepo repository.LeadsRepository
		usersRepo repository.UsersRepository
	)

	switch cfg.StorageBackend {
	case config.BackendPostgres:
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect database: %v", err)
		}
		defer pool.Close()

		leadsRepo = repository.NewPGXLeadsRepository(pool)
		usersRepo = repository.NewPGXUsersRepository(pool)
	case config.BackendFile:
		fileRepo, err := repository.NewFileLeadsRepository(cfg.DataDir)
		if err != nil {
			log.Fatalf("failed to open lead store: %v", err)
		}
		leadsRepo = fileRepo
		usersRepo = repository.NewStaticUsersRepository(seedUsers(cfg))
	default:
		log.Fatalf("unsupported storage backend: %s", cfg.StorageBackend)
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	var sender service.MessageSender
	if cfg.Twilio.Enabled() {
		httpClient := &http.Client{Timeout: 15 * time.Second}
		sender = handler.NewTwilioClient(httpClient, cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.WhatsAppNumber)
	} else {
		log.Printf("twilio credentials not set, outbound whatsapp disabled")
	}

	var dedup service.IdempotencyStore
	if cfg.RedisAddr != "" {
		store, err := cache.New(ctx, cfg.RedisAddr, 0)
		if err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		defer store.Close()
		dedup = store
	} else {
		log.Printf("redis not configured, webhook idempotency disabled")
	}

	authService := service.NewAuthService(usersRepo, jwtManager)
	userService := service.NewUserService(usersRepo)
	leadsService := service.NewLeadsService(leadsRepo)
	whatsappService := service.NewWhatsAppService(leadsRepo, sender, dedup, cfg.DefaultRegion)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging())
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Users:    handler.NewUserAdminHandler(userService),
		Leads:    handler.NewLeadsHandler(leadsService),
		Import:   handler.NewImportHandler(leadsService),
		Catalog:  handler.NewCatalogHandler(),
		WhatsApp: handler.NewWhatsAppHandler(whatsappService),
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

// seedUsers builds the static account list for file-backed deployments from
// ADMIN_EMAIL and ADMIN_PASSWORD.
func seedUsers(cfg *config.Config) []entity.User {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Printf("ADMIN_EMAIL/ADMIN_PASSWORD not set, no accounts seeded")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash admin password: %v", err)
	}

	return []entity.User{{
		Email:        cfg.AdminEmail,
		PasswordHash: string(hash),
		Role:         entity.RoleOwner,
	}}
}
