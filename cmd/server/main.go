package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/richflow/richflow/internal/auth"
	"github.com/richflow/richflow/internal/config"
	"github.com/richflow/richflow/internal/handler"
	"github.com/richflow/richflow/internal/storage/sqlite"
	"github.com/richflow/richflow/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Log.Level)

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Database.Path)

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.ExpireHours)*time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store)

	h := handler.New(store, authenticator, jwtManager)

	// h2c allows HTTP/2 without TLS so a reverse proxy can speak either.
	srv := h2c.NewHandler(h.Router(), &http2.Server{})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, srv); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
