package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/kaphack/guest-concierge-pipeline/internal/core"
	"github.com/kaphack/guest-concierge-pipeline/internal/logger"
)

// TicketStore lists persisted handoff tickets.
type TicketStore interface {
	ListTickets(ctx context.Context, guestID string, limit int) ([]core.HandoffTicket, error)
}

// Handler serves the staff-facing handoff queue. A nil store means the
// database is disabled.
type Handler struct {
	store TicketStore
}

func NewHandler(store TicketStore) *Handler {
	return &Handler{store: store}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type TicketsResponse struct {
	Tickets []core.HandoffTicket `json:"tickets"`
	Count   int                  `json:"count"`
}

func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
		return
	}
	if h.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "Handoff storage is disabled"})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	tickets, err := h.store.ListTickets(r.Context(), r.URL.Query().Get("guest_id"), limit)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch handoff tickets")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch handoff tickets"})
		return
	}

	writeJSON(w, http.StatusOK, TicketsResponse{Tickets: tickets, Count: len(tickets)})
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/handoffs", h.ListTickets)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := sonic.ConfigDefault.NewEncoder(w).Encode(body); err != nil {
		logger.Warn().Err(err).Msg("failed to write response")
	}
}
