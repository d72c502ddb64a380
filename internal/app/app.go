package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/pipeprint/internal/builder"
	"github.com/specialistvlad/pipeprint/internal/ctxlog"
	"github.com/specialistvlad/pipeprint/internal/hclconfig"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	loader     *hclconfig.Loader
	builder    *builder.Builder
	httpServer *http.Server
}

// NewApp creates an App. Results are written to outW and logs to logW.
func NewApp(outW, logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:    outW,
		logger:  logger,
		config:  cfg,
		loader:  hclconfig.NewLoader(),
		builder: builder.New(),
	}
}

// Logger returns the application's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// withLogger returns ctx carrying the app logger.
func (a *App) withLogger(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
