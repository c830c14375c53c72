package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/harborview-partners/dealflow-cli/internal/benchmark"
	"github.com/harborview-partners/dealflow-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the deal pipeline API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		benchCfg, err := effectiveBenchmarks()
		if err != nil {
			return err
		}

		router := newRouter(s, benchCfg, serverOptions{
			allowedOrigins: cfg.Server.AllowedOrigins,
			analyzeLimit:   rate.Limit(cfg.Server.AnalyzePerSecond),
			analyzeBurst:   cfg.Server.AnalyzeBurst,
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

type serverOptions struct {
	allowedOrigins []string
	analyzeLimit   rate.Limit
	analyzeBurst   int
}

// newRouter wires the API. The analyze routes share one limiter: the
// engine is cheap but clients fire a request per slider tick, so excess
// recomputes are shed server-side rather than queued.
func newRouter(s store.Store, benchCfg benchmark.Config, opts serverOptions) http.Handler {
	api := &apiServer{
		store:          s,
		benchmarks:     benchCfg,
		analyzeLimiter: rate.NewLimiter(opts.analyzeLimit, opts.analyzeBurst),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", api.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/deals", func(r chi.Router) {
			r.Post("/", api.handleCreateDeal)
			r.Get("/", api.handleListDeals)
			r.Route("/{dealID}", func(r chi.Router) {
				r.Get("/", api.handleGetDeal)
				r.Delete("/", api.handleDeleteDeal)
				r.Put("/status", api.handleUpdateStatus)
				r.Put("/payload", api.handleUpdatePayload)
				r.Put("/overlay", api.handleUpdateOverlay)
				r.Post("/analyze", api.handleAnalyze)
				r.Post("/scenarios", api.handleCreateScenario)
				r.Get("/scenarios", api.handleListScenarios)
			})
		})
		r.Route("/scenarios/{scenarioID}", func(r chi.Router) {
			r.Get("/", api.handleGetScenario)
			r.Delete("/", api.handleDeleteScenario)
		})
		r.Route("/invitations", func(r chi.Router) {
			r.Post("/", api.handleCreateInvitation)
			r.Get("/", api.handleListInvitations)
			r.Put("/{invitationID}/status", api.handleUpdateInvitationStatus)
		})
	})

	return r
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
