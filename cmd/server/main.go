package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/hivehelp/hivehelp-api/internal/config"
	"github.com/hivehelp/hivehelp-api/internal/database"
	"github.com/hivehelp/hivehelp-api/internal/handler"
	"github.com/hivehelp/hivehelp-api/internal/middleware"
	"github.com/hivehelp/hivehelp-api/internal/queue"
	"github.com/hivehelp/hivehelp-api/internal/repository"
	"github.com/hivehelp/hivehelp-api/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Redis is optional; a nil client turns the rate limiter and the
	// response cache into pass-throughs.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	products := repository.NewProductRepo(db)
	appointments := repository.NewAppointmentRepo(db)
	orders := repository.NewOrderRepo(db)
	reports := repository.NewReportRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	userH := handler.NewUserHandler(users)
	productH := handler.NewProductHandler(cfg, products)
	appointmentH := handler.NewAppointmentHandler(cfg, appointments, users)
	orderH := handler.NewOrderHandler(orders, products)
	adminH := handler.NewAdminHandler(users, tokens, products, appointments, orders, reports)

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	e.Static("/uploads", cfg.UploadDir)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH)
	router.RegisterCustomer(e, userH, productH, appointmentH, orderH, cfg.JWTSecret, cache, limiter)
	router.RegisterBeekeeper(e, productH, appointmentH, orderH, cfg.JWTSecret, limiter)
	router.RegisterAdmin(e, adminH, appointmentH, orderH, cfg.JWTSecret, cache)

	// Consume order.placed events in the background; the consumer reconnects
	// on its own if the broker goes away.
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
