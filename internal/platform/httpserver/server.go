package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	httpSwagger "github.com/swaggo/http-swagger"

	packetledger "giftledger/contexts/value-distribution/packet-ledger"
	httpadapter "giftledger/contexts/value-distribution/packet-ledger/adapters/http"
	domainerrors "giftledger/contexts/value-distribution/packet-ledger/domain/errors"
	httptransport "giftledger/contexts/value-distribution/packet-ledger/transport/http"
)

const callerHeader = "X-Caller-Address"

type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
	addr   string
	ledger packetledger.Module
}

type Options struct {
	EnableSwaggerUI bool
}

func New(ledger packetledger.Module, logger *slog.Logger, addr string, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:    http.NewServeMux(),
		logger: logger,
		addr:   addr,
		ledger: ledger,
	}
	s.registerRoutes(opts)
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routing mux, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes(opts Options) {
	if opts.EnableSwaggerUI {
		s.mux.Handle("/swagger/", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	s.mux.HandleFunc("POST /v1/packets", s.handleCreatePacket)
	s.mux.HandleFunc("GET /v1/packets/limits", s.handleLimits)
	s.mux.HandleFunc("GET /v1/packets/{packet_id}", s.handleGetPacket)
	s.mux.HandleFunc("POST /v1/packets/{packet_id}/claim", s.handleClaimPacket)
	s.mux.HandleFunc("POST /v1/packets/{packet_id}/refund", s.handleRefundPacket)
	s.mux.HandleFunc("GET /v1/packets/{packet_id}/claims", s.handleListClaims)
	s.mux.HandleFunc("GET /v1/packets/{packet_id}/claims/{address}", s.handleHasClaimed)
}

func (s *Server) handleCreatePacket(w http.ResponseWriter, r *http.Request) {
	caller := strings.TrimSpace(r.Header.Get(callerHeader))
	if caller == "" {
		writeError(w, http.StatusBadRequest, "missing_caller", "X-Caller-Address header is required")
		return
	}

	var req httptransport.CreatePacketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	resp, err := s.ledger.Handler.CreatePacketHandler(r.Context(), caller, req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleClaimPacket(w http.ResponseWriter, r *http.Request) {
	var req httptransport.ClaimPacketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	resp, err := s.ledger.Handler.ClaimPacketHandler(r.Context(), r.PathValue("packet_id"), req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRefundPacket(w http.ResponseWriter, r *http.Request) {
	caller := strings.TrimSpace(r.Header.Get(callerHeader))
	if caller == "" {
		writeError(w, http.StatusBadRequest, "missing_caller", "X-Caller-Address header is required")
		return
	}

	resp, err := s.ledger.Handler.RefundPacketHandler(r.Context(), caller, r.PathValue("packet_id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPacket(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.GetPacketHandler(r.Context(), r.PathValue("packet_id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListClaims(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.ListClaimsHandler(r.Context(), r.PathValue("packet_id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHasClaimed(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.HasClaimedHandler(r.Context(), r.PathValue("packet_id"), r.PathValue("address"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLimits(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.LimitsHandler(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeDomainError maps every ledger rejection to a distinguishable status
// and machine-readable code, so automated callers can branch on failure kind.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, httpadapter.ErrMalformedRequest):
		writeError(w, http.StatusBadRequest, "malformed_request", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "invalid_amount", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidCount):
		writeError(w, http.StatusBadRequest, "invalid_count", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidDuration):
		writeError(w, http.StatusBadRequest, "invalid_duration", err.Error())
	case errors.Is(err, domainerrors.ErrPacketExists):
		writeError(w, http.StatusConflict, "packet_exists", err.Error())
	case errors.Is(err, domainerrors.ErrPacketNotFound):
		writeError(w, http.StatusNotFound, "packet_not_found", err.Error())
	case errors.Is(err, domainerrors.ErrPacketExpired):
		writeError(w, http.StatusGone, "packet_expired", err.Error())
	case errors.Is(err, domainerrors.ErrPacketNotExpired):
		writeError(w, http.StatusConflict, "packet_not_expired", err.Error())
	case errors.Is(err, domainerrors.ErrPacketEmpty):
		writeError(w, http.StatusGone, "packet_empty", err.Error())
	case errors.Is(err, domainerrors.ErrAlreadyClaimed):
		writeError(w, http.StatusConflict, "already_claimed", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidSignature):
		writeError(w, http.StatusForbidden, "invalid_signature", err.Error())
	case errors.Is(err, domainerrors.ErrNotCreator):
		writeError(w, http.StatusForbidden, "not_creator", err.Error())
	case errors.Is(err, domainerrors.ErrTransferFailed):
		writeError(w, http.StatusBadGateway, "transfer_failed", err.Error())
	case errors.Is(err, domainerrors.ErrAmountOverflow):
		writeError(w, http.StatusUnprocessableEntity, "amount_overflow", err.Error())
	default:
		s.logger.Error("unhandled ledger error",
			"event", "http_unhandled_error",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, httptransport.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
