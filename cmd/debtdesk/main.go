// Package main запускает рабочее место оператора взыскания долгов.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/debtdesk/internal/backend"
	"github.com/mmeshcher/debtdesk/internal/config"
	"github.com/mmeshcher/debtdesk/internal/debtors"
	"github.com/mmeshcher/debtdesk/internal/handler"
	"github.com/mmeshcher/debtdesk/internal/model"
	"github.com/mmeshcher/debtdesk/internal/repository"
	"github.com/mmeshcher/debtdesk/internal/session"
)

type sessionRepository interface {
	session.Repository
	io.Closer
}

// openRepository выбирает хранилище сессии: Postgres, файл или память.
func openRepository(cfg *config.Config) (sessionRepository, error) {
	switch {
	case cfg.DatabaseURI != "":
		return repository.NewPostgresRepository(cfg.DatabaseURI)
	case cfg.SessionFile != "":
		return repository.NewFileRepository(cfg.SessionFile), nil
	default:
		return repository.NewMemoryRepository(model.Session{}), nil
	}
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := openRepository(cfg)
	if err != nil {
		sugar.Fatalw("session storage initialization error", "error", err.Error())
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store *session.Store
	client := backend.NewClient(cfg.APIBaseURL, cfg.DebtsEndpoint, backend.WithToken(func() string {
		return store.Token()
	}))

	store, err = session.Open(ctx, repo, client, session.WithLogger(logger))
	if err != nil {
		sugar.Fatalw("session load error", "error", err.Error())
	}

	vm := debtors.New(client, store, debtors.WithLogger(logger))
	defer vm.Close()

	h := handler.NewHandler(store, vm, logger)

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: h.SetupRouter(),
	}

	g, ctx := errgroup.WithContext(ctx)

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting debtdesk", "addr", cfg.RunAddress, "debts", client.DebtsURL())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
