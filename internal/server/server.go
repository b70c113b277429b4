package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"OutcomeBook/internal/book"
	"OutcomeBook/internal/engine"
	"OutcomeBook/internal/observability"
	"OutcomeBook/internal/query"
)

// Server runs the gRPC endpoint (health + reflection) and the HTTP
// surface: health probes, Prometheus metrics, and the read-only query
// API. Mutating operations arrive over NATS only; the HTTP surface
// never touches the book.
type Server struct {
	grpcServer *grpc.Server
	httpServer *http.Server
	grpcAddr   string
	httpAddr   string
	health     *observability.HealthChecker
	log        zerolog.Logger
}

func NewServer(
	grpcAddr, httpAddr string,
	qs *query.Service,
	healthChecker *observability.HealthChecker,
	log zerolog.Logger,
) *Server {
	grpcServer := grpc.NewServer()

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	// Reflection for grpcurl / grpcui
	reflection.Register(grpcServer)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthChecker.LivenessHandler)
	mux.HandleFunc("/readyz", healthChecker.ReadinessHandler)
	mux.Handle("/metrics", promhttp.Handler())
	registerQueryRoutes(mux, qs)

	return &Server{
		grpcServer: grpcServer,
		httpServer: &http.Server{Addr: httpAddr, Handler: mux},
		grpcAddr:   grpcAddr,
		httpAddr:   httpAddr,
		health:     healthChecker,
		log:        log,
	}
}

// StartGRPC starts the gRPC server (blocking).
func (s *Server) StartGRPC(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.grpcAddr)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("gRPC server shutting down")
		s.grpcServer.GracefulStop()
	}()

	s.log.Info().Str("addr", s.grpcAddr).Msg("gRPC server listening")
	return s.grpcServer.Serve(lis)
}

// StartHTTP starts the HTTP server (blocking).
func (s *Server) StartHTTP(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.log.Info().Msg("HTTP server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	s.log.Info().Str("addr", s.httpAddr).Msg("HTTP server listening")
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func registerQueryRoutes(mux *http.ServeMux, qs *query.Service) {
	mux.HandleFunc("GET /v1/markets/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid market id")
			return
		}
		status, err := qs.MarketStatus(id)
		if err != nil {
			queryError(w, err)
			return
		}
		writeJSON(w, status)
	})

	mux.HandleFunc("GET /v1/markets/{id}/depth", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid market id")
			return
		}
		outcome, ok := parseOutcomeParam(r.URL.Query().Get("outcome"))
		if !ok {
			httpError(w, http.StatusBadRequest, "outcome must be yes or no")
			return
		}
		depth, err := qs.Depth(id, outcome)
		if err != nil {
			queryError(w, err)
			return
		}
		writeJSON(w, depth)
	})

	mux.HandleFunc("GET /v1/markets/{id}/shares/{participant}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid market id")
			return
		}
		p, err := uuid.Parse(r.PathValue("participant"))
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid participant id")
			return
		}
		outcome, ok := parseOutcomeParam(r.URL.Query().Get("outcome"))
		if !ok {
			httpError(w, http.StatusBadRequest, "outcome must be yes or no")
			return
		}
		bal, err := qs.ShareBalance(id, outcome, p)
		if err != nil {
			queryError(w, err)
			return
		}
		writeJSON(w, bal)
	})

	mux.HandleFunc("GET /v1/collateral/{participant}", func(w http.ResponseWriter, r *http.Request) {
		p, err := uuid.Parse(r.PathValue("participant"))
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid participant id")
			return
		}
		bal, ok := qs.CollateralBalance(p)
		if !ok {
			httpError(w, http.StatusNotFound, "collateral balances not served by this deployment")
			return
		}
		writeJSON(w, bal)
	})
}

func parseOutcomeParam(s string) (book.Outcome, bool) {
	switch s {
	case "yes":
		return book.OutcomeYes, true
	case "no":
		return book.OutcomeNo, true
	default:
		return 0, false
	}
}

func queryError(w http.ResponseWriter, err error) {
	if errors.Is(err, engine.ErrMarketNotActive) {
		httpError(w, http.StatusNotFound, "market not found")
		return
	}
	httpError(w, http.StatusInternalServerError, err.Error())
}

func httpError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
