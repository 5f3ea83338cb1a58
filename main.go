package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"coindeck/config"
	"coindeck/internal/i18n"
	"coindeck/internal/reconcile"
	"coindeck/internal/setup"
	"coindeck/internal/store"
	"coindeck/internal/transport"
	"coindeck/internal/ui"
	"coindeck/internal/view"
)

const logPath = "coindeck.log"

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Get()
	if errors.Is(err, config.ErrNotConfigured) {
		cfg, err = setup.RunTUI(config.DefaultPath)
	}
	if err != nil {
		logger.Fatal("failed to get configuration", zap.Error(err))
	}

	if err := i18n.Init(cfg.Locale); err != nil {
		logger.Fatal("failed to load locale", zap.String("locale", cfg.Locale), zap.Error(err))
	}

	st := store.New()
	engine := reconcile.New(st, logger)
	registry := view.NewRegistry(st)
	client := transport.New(cfg.ServerURL, cfg.Token, cfg.ReconnectDelay, logger)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	program := tea.NewProgram(
		ui.New(st, engine, registry, client, client.Events()),
		tea.WithAltScreen(),
	)

	g := new(errgroup.Group)
	g.Go(func() error {
		err := client.Run(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, transport.ErrServerGone) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		defer cancel()
		_, err := program.Run()
		return errors.Wrap(err, "ui")
	})
	g.Go(func() error {
		<-ctx.Done()
		program.Quit()
		return nil
	})

	logger.Info("started", zap.String("server", cfg.ServerURL))

	if err := g.Wait(); err != nil {
		if errors.Is(err, transport.ErrAuthRejected) {
			logger.Warn("authentication rejected")
			fmt.Fprintln(os.Stderr, i18n.T("alert.auth_failed"))
			os.Exit(1)
		}
		logger.Fatal("terminated", zap.Error(err))
	}
}

// newLogger writes structured logs to a file so they never fight the TUI
// for the terminal.
func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{logPath}
	cfg.ErrorOutputPaths = []string{logPath}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
