package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"francoggm/vnpay-go-redis/internal/config"

	"github.com/grafana/loki-client-go/loki"
	slogloki "github.com/samber/slog-loki/v3"
)

const serviceName = "vnpay-service"

// GetLogger returns a JSON logger on stdout, or a Loki logger when a push
// URL is configured.
func GetLogger(cfg config.Logs) *slog.Logger {
	if cfg.URL == "" {
		return localLogger(os.Stdout, parseLevel(cfg.Level))
	}

	logger, err := remoteLogger(cfg.URL, parseLevel(cfg.Level))
	if err != nil {
		fallback := localLogger(os.Stdout, parseLevel(cfg.Level))
		fallback.Error("Error creating loki client, logging to stdout", "error", err)
		return fallback
	}

	return logger
}

func localLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(ContextHandler{Handler: slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})})
}

func remoteLogger(url string, level slog.Level) (*slog.Logger, error) {
	lokiConfig, err := loki.NewDefaultConfig(url)
	if err != nil {
		return nil, err
	}

	client, err := loki.New(lokiConfig)
	if err != nil {
		return nil, err
	}

	return slog.New(slogloki.Option{
		Level:  level,
		Client: client,
		AttrFromContext: []func(ctx context.Context) []slog.Attr{
			attrsFromContext,
		},
	}.NewLokiHandler()).With("service", serviceName), nil
}

func parseLevel(value string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo
	}

	return level
}
