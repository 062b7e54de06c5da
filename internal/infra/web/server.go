package web

import (
	"context"
	"fmt"
	"net/http"

	"tariff-billing-service/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type Server struct {
	serviceUC usecase.ServiceUseCase
	tarifUC   usecase.TarifUseCase
	accountUC usecase.AccountUseCase
	auth      *AuthManager
	log       *zerolog.Logger
	srv       *http.Server
}

func NewServer(
	port int,
	auth *AuthManager,
	serviceUC usecase.ServiceUseCase,
	tarifUC usecase.TarifUseCase,
	accountUC usecase.AccountUseCase,
	logger *zerolog.Logger,
) *Server {
	compLog := logger.With().Str("component", "WebServer").Logger()
	s := &Server{
		serviceUC: serviceUC,
		tarifUC:   tarifUC,
		accountUC: accountUC,
		auth:      auth,
		log:       &compLog,
	}
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.Router(),
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.auth.Middleware)

		r.Route("/services/{serviceID}", func(r chi.Router) {
			r.Get("/", s.handleServiceInfo)
			r.Get("/available-tarifs", s.handleAvailableTarifs)
			r.Post("/tarif", s.handleStartTarif)
			r.Put("/tarif", s.handleChangeTarif)
			r.Delete("/tarif", s.handleStopTarif)
		})

		r.Route("/tarifs", func(r chi.Router) {
			r.Get("/", s.handleListTarifs)
			r.Post("/", s.handleCreateTarif)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", s.handleCreateAccount)
			r.Route("/{accountID}", func(r chi.Router) {
				r.Get("/", s.handleGetAccount)
				r.Post("/topup", s.handleTopUp)
				r.Post("/credit", s.handleGrantCredit)
				r.Get("/ledger", s.handleLedger)
			})
		})
	})

	return r
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.srv.Addr).Msg("HTTP server listening")
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
