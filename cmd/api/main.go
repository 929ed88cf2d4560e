package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"user-auth-server/internal/audit"
	"user-auth-server/internal/auth"
	"user-auth-server/internal/authflow"
	"user-auth-server/internal/config"
	"user-auth-server/internal/email"
	"user-auth-server/internal/httpapi"
	"user-auth-server/internal/users"
	"user-auth-server/pkg/logger"
	"user-auth-server/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	codec, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("token codec init failed", "err", err)
		os.Exit(1)
	}

	hasher, err := auth.NewHasher(cfg.Auth.BcryptCost)
	if err != nil {
		log.Error("password hasher init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	store := users.NewPostgresStore(db)

	tokens, err := users.NewRedisTokenStore(rdb, cfg.Email.ConfirmTokenTTL)
	if err != nil {
		log.Error("token store init failed", "err", err)
		os.Exit(1)
	}

	var sender email.Sender = email.LogSender{Log: log}
	if cfg.Email.SMTPHost != "" {
		sender = email.NewSMTPSender(cfg.Email)
	}

	auditor := audit.NewService(audit.NewPostgresRepo(db))
	flow := authflow.NewService(store, tokens, codec, hasher, sender, cfg.Email.ConfirmURLTemplate, auditor, log)
	userSvc := users.NewService(store, hasher)

	if err := userSvc.Seed(rootCtx, cfg.Seed, cfg.Auth.AllowedRoles); err != nil {
		log.Error("power user seed failed", "err", err)
		os.Exit(1)
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, httpapi.Handlers{Flow: flow, Users: userSvc}, codec, store)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
