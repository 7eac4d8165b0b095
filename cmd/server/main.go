package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/opentable/private-dining/internal/config"
	"github.com/opentable/private-dining/internal/database"
	"github.com/opentable/private-dining/internal/events"
	"github.com/opentable/private-dining/internal/handler"
	"github.com/opentable/private-dining/internal/listener"
	"github.com/opentable/private-dining/internal/middleware"
	"github.com/opentable/private-dining/internal/queue"
	"github.com/opentable/private-dining/internal/repository"
	"github.com/opentable/private-dining/internal/router"
	"github.com/opentable/private-dining/internal/service"
)

func main() {
	_ = godotenv.Load() // load .env for local development; absent in prod
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema setup: %v", err)
	}
	cancel()

	rdb := config.NewRedisClient() // nil disables caching and rate limiting
	if rdb == nil {
		log.Println("redis unavailable; availability cache and rate limiting disabled")
	}

	// Event bus with bounded background dispatch; subscribers register
	// explicitly before any traffic is served.
	bus := events.NewBus(cfg.EventWorkers, cfg.EventQueueSize)
	defer bus.Close()
	listener.RegisterNotifications(bus)
	listener.RegisterAudit(bus)
	listener.RegisterAnalytics(bus)
	queue.RegisterPublisher(bus)
	if cfg.ConsumerEnabled {
		go queue.StartReservationConsumer()
	}

	// Repositories and services, wired once at startup.
	roomRepo := repository.NewRoomRepo(db)
	restaurantRepo := repository.NewRestaurantRepo(db)
	reservationRepo := repository.NewReservationRepo(db)

	availabilitySvc := service.NewAvailabilityService(reservationRepo, rdb, cfg.AvailabilityTTL)
	reservationSvc := service.NewReservationService(roomRepo, reservationRepo, availabilitySvc, bus)

	e := echo.New()
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	router.RegisterRoutes(e)
	router.RegisterReservations(e, handler.NewReservationHandler(reservationSvc), limiter)
	router.RegisterAvailability(e, handler.NewAvailabilityHandler(availabilitySvc))
	router.RegisterCatalog(e, handler.NewCatalogHandler(restaurantRepo, roomRepo))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
