package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-blockhelpers/components/stock"
)

const requestIDHeader = "X-Request-ID"

func newServeCmd(c *cli) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rendered templates and the helper catalog over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				c.app.cfg.Addr = addr
			}
			router, err := newRouter(c.app)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), c.app, router)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

// newRouter mounts:
//
//	GET /api/helpers    helper catalog (?q=, ?limit=)
//	GET /templates      template names
//	GET /render/{name}  rendered template, query parameters as data
func newRouter(a *app) (chi.Router, error) {
	r := chi.NewRouter()
	r.Use(requestID(a.logger))

	if _, err := stock.RegisterRoutes(r, "/", a.registry); err != nil {
		return nil, err
	}

	r.Get("/templates", func(w http.ResponseWriter, req *http.Request) {
		names, err := a.templateNames()
		if err != nil {
			a.logger.Error("list templates", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if names == nil {
			names = []string{}
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": names})
	})

	r.Get("/render/*", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "*")
		if name == "" || !a.hasTemplate(name) {
			http.NotFound(w, req)
			return
		}

		data := make(map[string]any)
		for key, values := range req.URL.Query() {
			if len(values) == 1 {
				data[key] = values[0]
				continue
			}
			data[key] = values
		}

		html, err := a.renderer.RenderTemplate(name, data)
		if err != nil {
			a.logger.Error("render failed",
				zap.String("template", name),
				zap.String("request_id", w.Header().Get(requestIDHeader)),
				zap.Error(err),
			)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, html)
	})

	return r, nil
}

// requestID tags every request with an id, reusing the caller's header when
// present.
func requestID(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			id := req.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)
			logger.Debug("request",
				zap.String("request_id", id),
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
			)
			next.ServeHTTP(w, req)
		})
	}
}

func serve(ctx context.Context, a *app, handler http.Handler) error {
	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", zap.String("addr", a.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("shutdown timeout exceeded, forcing exit", zap.Error(err))
		return err
	}
	a.logger.Info("server stopped gracefully")
	return nil
}
