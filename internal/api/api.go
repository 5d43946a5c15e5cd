package api

import (
	"net/http"
	"time"

	"raffle/internal/beacon"
	"raffle/internal/logger"
	"raffle/internal/program"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server exposes the raffle program over JSON/HTTP.
type Server struct {
	program  *program.Program
	source   beacon.Source
	faucet   bool
	gatherer prometheus.Gatherer
}

type OptionFunc func(*Server)

// WithBeacon sets the source used when a reveal request carries no randomness.
func WithBeacon(source beacon.Source) OptionFunc {
	return func(s *Server) {
		s.source = source
	}
}

// WithFaucet enables the deposit endpoint.
func WithFaucet(enabled bool) OptionFunc {
	return func(s *Server) {
		s.faucet = enabled
	}
}

func WithGatherer(gatherer prometheus.Gatherer) OptionFunc {
	return func(s *Server) {
		s.gatherer = gatherer
	}
}

func NewServer(p *program.Program, opts ...OptionFunc) *Server {
	s := &Server{program: p}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/wallets/{address}", func(r chi.Router) {
		r.Get("/balance", s.getBalance)
		r.Post("/deposit", s.postDeposit)
	})

	r.Post("/ledgers", s.postLedger)
	r.Get("/history", s.getHistory)

	r.Route("/raffles", func(r chi.Router) {
		r.Get("/", s.listRaffles)
		r.Post("/", s.postRaffle)
		r.Route("/{address}", func(r chi.Router) {
			r.Get("/", s.getRaffle)
			r.Get("/entrants", s.getEntrants)
			r.Get("/history", s.getHistory)
			r.Post("/tickets", s.postTickets)
			r.Post("/reveal", s.postReveal)
			r.Post("/claim", s.postClaim)
			r.Post("/close", s.postClose)
		})
	})

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("requestId", middleware.GetReqID(r.Context())),
		)
	})
}
