package main // Entry point package

import (
	"context" // timeout for the background token sweep
	"log"     // Logging library
	"time"    // sweep interval

	"github.com/joho/godotenv"             // .env loading for local development
	"github.com/labstack/echo/v4"          // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // request logging and panic recovery

	"github.com/Andressalasf/API-Store/internal/config"     // environment configuration
	"github.com/Andressalasf/API-Store/internal/database"   // MySQL connection and migrations
	"github.com/Andressalasf/API-Store/internal/handler"    // HTTP handlers
	"github.com/Andressalasf/API-Store/internal/queue"      // background event consumer
	"github.com/Andressalasf/API-Store/internal/repository" // DB repositories
	"github.com/Andressalasf/API-Store/internal/router"     // route registration
	queue_publisher "github.com/Andressalasf/API-Store/internal/service"
)

func main() {
	_ = godotenv.Load() // missing .env is fine; the environment wins either way
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	// nil when Redis is unreachable; cache and rate limiting turn off.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, running without cache and rate limiting")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	products := repository.NewProductRepo(db)

	authHandler := handler.NewAuthHandler(cfg, users, tokens)
	authHandler.Publish = queue_publisher.PublishUserRegistered
	productHandler := handler.NewProductHandler(cfg, products)
	userHandler := handler.NewUserHandler(cfg, users, tokens)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())  // request log: method, path, status, latency
	e.Use(echomw.Recover()) // a panicking handler answers 500 instead of killing the process

	router.RegisterRoutes(e)
	router.RegisterAPI(e, cfg, rdb, authHandler, productHandler, userHandler)

	// Signup audit trail; reconnects forever in the background.
	go queue.StartUserRegisteredConsumer()

	// Hourly sweep of expired refresh tokens.  Correctness does not depend
	// on it (expired rows are also dropped on presentation), it just keeps
	// the table small.
	go func() {
		for range time.Tick(time.Hour) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if n, err := tokens.DeleteExpired(ctx); err != nil {
				log.Printf("token sweep: %v", err)
			} else if n > 0 {
				log.Printf("token sweep: removed %d expired refresh tokens", n)
			}
			cancel()
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
