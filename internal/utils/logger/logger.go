package logger

import (
	"os"
	"strings"

	"golang.org/x/exp/slog"

	"medsync/internal/app/server/config"
)

// New создает логгер для окружения: local - цветной вывод с уровнем debug,
// dev - JSON с уровнем debug, prod и прочие - JSON с уровнем info
func New(env string) *slog.Logger {
	return NewWithLevel(env, "")
}

// NewWithLevel как New, но непустой level переопределяет уровень окружения
func NewWithLevel(env, level string) *slog.Logger {
	var lvl slog.Level
	switch env {
	case config.EnvLocal, config.EnvDev:
		lvl = slog.LevelDebug
	default:
		lvl = slog.LevelInfo
	}
	if parsed, ok := parseLevel(level); ok {
		lvl = parsed
	}

	if env == config.EnvLocal {
		return slog.New(newPrettyHandler(os.Stdout, lvl))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func setupPrettySlog() *slog.Logger {
	return slog.New(newPrettyHandler(os.Stdout, slog.LevelDebug))
}

func parseLevel(level string) (slog.Level, bool) {
	if level == "" {
		return 0, false
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return 0, false
	}
	return lvl, true
}
