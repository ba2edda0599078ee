package main

import (
	"database/sql"
	"flag"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sanket913/VoiceMitra/internal/config"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, redo, version or status")
		dir     = flag.String("dir", "db/migrations", "Directory containing migration files")
	)
	flag.Parse()

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("app", "migrator").Logger()

	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load("configs/.env"); err != nil {
			log.Warn().Err(err).Msg("could not load .env file")
		}
	}

	pg, err := config.LoadPostgres()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid database configuration")
	}
	// The migrator holds a single connection.
	pg.MaxConns = 0

	migrationDir, err := filepath.Abs(*dir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", *dir).Msg("failed to resolve migration directory")
	}
	if _, err := os.Stat(migrationDir); os.IsNotExist(err) {
		log.Fatal().Str("dir", migrationDir).Msg("migration directory does not exist")
	}

	db, err := sql.Open("pgx", pg.DSN())
	if err != nil {
		log.Fatal().Err(err).Str("host", pg.Host).Int("port", pg.Port).Msg("failed to open database connection")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}

	log.Info().
		Str("host", pg.Host).
		Str("database", pg.Database).
		Str("migration_dir", migrationDir).
		Msg("connected to database")

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal().Err(err).Msg("failed to set goose dialect")
	}
	goose.SetTableName("goose_db_version")

	var runErr error
	switch *command {
	case "up":
		runErr = goose.Up(db, migrationDir)
	case "down":
		runErr = goose.Down(db, migrationDir)
	case "redo":
		runErr = goose.Redo(db, migrationDir)
	case "status":
		runErr = goose.Status(db, migrationDir)
	case "version":
		runErr = goose.Version(db, migrationDir)
	default:
		log.Fatal().Str("command", *command).Msg("unknown command. Use: up, down, redo, version or status")
	}
	if runErr != nil {
		log.Fatal().Err(runErr).Str("command", *command).Msg("migration command failed")
	}
	log.Info().Str("command", *command).Msg("migration command finished")
}
