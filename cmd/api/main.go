package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/sanket913/VoiceMitra/internal/app"
	"github.com/sanket913/VoiceMitra/internal/config"
	"github.com/sanket913/VoiceMitra/internal/logging"
)

func main() {
	envFile := flag.String("env", "configs/.env", "dotenv file loaded outside production")
	flag.Parse()

	boot := logging.New("voicemitra", os.Getenv("APP_ENV"))
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			boot.Warn().Err(err).Str("file", *envFile).Msg("dotenv not loaded")
		}
	}

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 10*time.Second)
	cfg, err := config.Load(loadCtx)
	cancelLoad()
	if err != nil {
		fatal(boot, err, "config invalid")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	instance, err := app.New(ctx, cfg)
	if err != nil {
		fatal(boot, err, "startup failed")
	}
	if err := instance.Run(ctx); err != nil {
		fatal(boot, err, "server exited")
	}
}

func fatal(logger zerolog.Logger, err error, msg string) {
	logger.Error().Err(err).Msg(msg)
	os.Exit(1)
}
