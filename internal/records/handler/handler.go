package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"quiverbook/internal/records"
	"quiverbook/internal/transport/http/shared"
	id "quiverbook/pkg/domain"
	"quiverbook/pkg/requestcontext"
)

// Service defines the aggregation queries the transport layer needs.
type Service interface {
	PersonalBests(ctx context.Context, archerID id.ArcherID) ([]records.PersonalBest, error)
	ClubRecords(ctx context.Context) ([]records.ClubRecord, error)
}

// Handler serves the personal best and club record endpoints.
type Handler struct {
	logger  *slog.Logger
	records Service
}

func New(records Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, records: records}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/archers/{archerID}/personal-bests", h.handlePersonalBests)
	r.Get("/club-records", h.handleClubRecords)
}

func (h *Handler) handlePersonalBests(w http.ResponseWriter, r *http.Request) {
	archerID, err := id.ParseArcherID(chi.URLParam(r, "archerID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	bests, err := h.records.PersonalBests(r.Context(), archerID)
	if err != nil {
		h.logger.WarnContext(r.Context(), "personal bests failed",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(r.Context()),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, bests)
}

func (h *Handler) handleClubRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := h.records.ClubRecords(r.Context())
	if err != nil {
		h.logger.WarnContext(r.Context(), "club records failed",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(r.Context()),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, recs)
}
