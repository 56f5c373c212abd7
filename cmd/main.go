package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/vnkhanh/e-blog-backend/config"
	"github.com/vnkhanh/e-blog-backend/middleware"
	"github.com/vnkhanh/e-blog-backend/routes"
	"github.com/vnkhanh/e-blog-backend/services"
	"github.com/vnkhanh/e-blog-backend/utils"
	"github.com/vnkhanh/e-blog-backend/ws"
)

func main() {
	cfgPath := os.Getenv("BLOG_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	utils.InitLogger(cfg.Log)

	db, err := config.InitDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("init database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tokens, err := utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	if err != nil {
		log.Fatal().Err(err).Msg("init token manager")
	}
	blacklist := utils.NewTokenBlacklist()
	go blacklist.Run(ctx, cfg.Blacklist.SweepInterval)

	repo := services.NewRepository(db)
	store := services.NewNotificationStore(db)
	bus := ws.NewBus()
	authSvc := services.NewAuthService(repo, tokens, blacklist, cfg.JWT.TTL)
	notifier := services.NewNotificationService(store, repo, bus)
	stream := ws.NewStreamHandler(authSvc, store, bus, cfg.Stream.HeartbeatInterval, cfg.Server.AllowOrigins)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	// CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Location"},
		AllowCredentials: true,
	}))

	routes.SetupRouter(r, routes.Deps{
		DB:       db,
		Auth:     authSvc,
		Store:    store,
		Notifier: notifier,
		Bus:      bus,
		Stream:   stream,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// request contexts end on SIGINT/SIGTERM so open streams return
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	srv.RegisterOnShutdown(bus.CloseAll)

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
}
