package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ignatij/trialtasks/internal/log"
	"github.com/ignatij/trialtasks/pkg/service"
	"github.com/ignatij/trialtasks/pkg/storage"
)

const shutdownTimeout = 10 * time.Second

// NewRouter wires every endpoint. timeout bounds the storage work of each
// request.
func NewRouter(svc *service.TaskService, timeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", HealthHandler(svc))
	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", CreateTaskHandler(svc, timeout))
		r.Get("/search", SearchTasksHandler(svc, timeout))
		r.Get("/list", ListRecentTasksHandler(svc, timeout))
		r.Get("/{task_id:[0-9]+}", TaskDetailHandler(svc, timeout))
	})
	return r
}

// StartServer serves until ctx is cancelled, then shuts down gracefully.
func StartServer(ctx context.Context, addr string, timeout time.Duration, store storage.Store) error {
	svc := service.NewTaskService(store, log.GetLogger())
	server := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(svc, timeout),
		ReadHeaderTimeout: timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.GetLogger().Infof("Starting trialtasks server on %s", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.GetLogger().Info("Shutdown requested")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
