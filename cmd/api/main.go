package main

import (
	"database/sql"
	"net/http"
	"time"

	"lifetag-access/internal/adapters/auth/jwtverifier"
	"lifetag-access/internal/adapters/directory/httpdir"
	"lifetag-access/internal/adapters/storage/postgres"
	"lifetag-access/internal/adapters/storage/redisstore"
	"lifetag-access/internal/config"
	"lifetag-access/internal/domain/accessrequests"
	"lifetag-access/internal/platform/logger"
	"lifetag-access/internal/ports/auth"
	"lifetag-access/internal/ports/directory"
	"lifetag-access/internal/router"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// @title Life-Tag Access API
// @version 1.0
// @description Solicitudes de acceso de doctores a registros de pacientes, con consentimiento y vigencia acotada.
// @BasePath /
func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    "lifetag-access",
	})

	var db *sql.DB
	if cfg.DBDSN != "" {
		opened, err := postgres.Open(cfg.DBDSN)
		if err != nil {
			log.Error("postgres connection failed", map[string]any{"error": err.Error()})
		} else {
			db = opened
		}
	}

	var rds *redis.Client
	if cfg.RedisAddr != "" {
		client, err := redisstore.Open(cfg.RedisAddr)
		if err != nil {
			// degradamos al store en memoria, el servicio sigue
			log.Warn("redis unavailable, verification codes in-memory", map[string]any{"error": err.Error()})
		} else {
			rds = client
		}
	}

	var verifier auth.AuthVerifier
	if cfg.JWTSecret != "" {
		v, err := jwtverifier.New(cfg.JWTSecret)
		if err != nil {
			log.Error("jwt verifier init failed", map[string]any{"error": err.Error()})
		} else {
			verifier = v
		}
	} else {
		log.Warn("no JWT_SECRET: dev mode auth (X-Debug-User-ID)", nil)
	}

	var dir directory.Directory
	if cfg.DirectoryBaseURL != "" {
		client, err := httpdir.New(httpdir.Config{
			BaseURL: cfg.DirectoryBaseURL,
			APIKey:  cfg.DirectoryAPIKey,
		})
		if err != nil {
			log.Error("directory client init failed", map[string]any{"error": err.Error()})
		} else {
			dir = client
		}
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		DB:           db,
		Redis:        rds,
		Directory:    dir,
		Log:          log,
		GrantPolicy: accessrequests.DurationPolicy{
			MinMinutes: cfg.GrantMinDurationMinutes,
			MaxMinutes: cfg.GrantMaxDurationMinutes,
		},
		CodeTTL: time.Duration(cfg.VerificationCodeTTLMinutes) * time.Minute,
	})

	addr := ":" + cfg.Port

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
	}
}
