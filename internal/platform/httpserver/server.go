package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	fractionledger "syndicate/contexts/collective-ownership/fraction-ledger"
	governanceengine "syndicate/contexts/collective-ownership/governance-engine"
	"syndicate/internal/shared/fault"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	_ "syndicate/internal/platform/httpserver/docs"
)

// identityHeader carries the caller identity. Authentication happens in
// front of this service.
const identityHeader = "X-User-Id"

type Server struct {
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
	addr       string
	ledger     fractionledger.Module
	governance governanceengine.Module
	metrics    http.Handler
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// New builds the router. A nil metrics handler leaves /metrics unrouted.
func New(
	ledger fractionledger.Module,
	governance governanceengine.Module,
	metrics http.Handler,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		router:     chi.NewRouter(),
		logger:     logger,
		addr:       addr,
		ledger:     ledger,
		governance: governance,
		metrics:    metrics,
	}
	s.registerRoutes()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/v1", func(r chi.Router) {
		r.Route("/assets", func(r chi.Router) {
			r.Post("/", s.handleCreateAsset)
			r.Route("/{asset_id}", func(r chi.Router) {
				r.Get("/", s.handleGetAsset)
				r.Get("/conservation", s.handleConservation)
				r.Get("/positions", s.handleListPositions)
				r.Get("/positions/{holder}", s.handleGetPosition)
				r.Post("/transfers", s.handleTransfer)
				r.Post("/delegations", s.handleDelegate)
				r.Post("/royalties/deposit", s.handleDepositRoyalty)
				r.Post("/royalties/claim", s.handleClaimRoyalty)
			})
		})
		r.Route("/holders", func(r chi.Router) {
			r.Post("/rage-quit", s.handleRageQuit)
			r.Get("/{holder}/power", s.handleVotingPower)
		})
		r.Route("/governance", func(r chi.Router) {
			r.Get("/assets/{asset_id}/eligibility", s.handleGetEligibility)
			r.Put("/assets/{asset_id}/eligibility", s.handleSetEligibility)
			r.Post("/proposals", s.handlePropose)
			r.Get("/proposals", s.handleListProposals)
			r.Route("/proposals/{proposal_id}", func(r chi.Router) {
				r.Get("/", s.handleGetProposal)
				r.Post("/votes", s.handleCastVote)
				r.Get("/votes", s.handleListReceipts)
				r.Get("/votes/{holder}", s.handleHasVoted)
				r.Post("/execute", s.handleExecute)
				r.Post("/cancel", s.handleCancel)
			})
		})
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request served",
			"event", "http_request_served",
			"module", "internal/platform/httpserver",
			"layer", "transport",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration_ms", time.Since(started).Milliseconds(),
		)
	})
}

func requireIdentity(w http.ResponseWriter, r *http.Request) (string, bool) {
	identity := strings.TrimSpace(r.Header.Get(identityHeader))
	if identity == "" {
		writeError(w, http.StatusUnauthorized, "missing_user", identityHeader+" header is required")
		return "", false
	}
	return identity, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}

func proposalIDParam(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := chi.URLParam(r, "proposal_id")
	proposalID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_proposal_id", "proposal_id must be an unsigned integer")
		return 0, false
	}
	return proposalID, true
}

func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	kind := fault.KindOf(err)
	if kind == fault.KindInternal {
		s.logger.Error("request failed",
			"event", "http_request_failed",
			"module", "internal/platform/httpserver",
			"layer", "transport",
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeError(w, fault.HTTPStatus(kind), string(kind), err.Error())
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
