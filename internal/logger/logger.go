package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger. Pretty console output for local
// development, JSON everywhere else.
func Init() {
	var w io.Writer = os.Stdout
	if env := os.Getenv("ENV"); env == "" || env == "local" || env == "dev" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(w).With().
		Timestamp().
		Str("service", "pms-core").
		Logger()
}
