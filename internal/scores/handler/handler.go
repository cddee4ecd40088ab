package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"quiverbook/internal/scores"
	"quiverbook/internal/transport/http/shared"
	id "quiverbook/pkg/domain"
	"quiverbook/pkg/requestcontext"
)

// Service defines the official score reads the transport layer needs.
// Official scores are only created through staging approval, so there is no
// write endpoint here.
type Service interface {
	GetByID(ctx context.Context, scoreID id.ScoreID) (*scores.Score, error)
	ListByArcher(ctx context.Context, archerID id.ArcherID) ([]*scores.Score, error)
}

// Handler serves the official score read endpoints.
type Handler struct {
	logger *slog.Logger
	scores Service
}

func New(scores Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, scores: scores}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/scores/{scoreID}", h.handleGet)
	r.Get("/archers/{archerID}/scores", h.handleListByArcher)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	scoreID, err := id.ParseScoreID(chi.URLParam(r, "scoreID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	score, err := h.scores.GetByID(r.Context(), scoreID)
	if err != nil {
		h.logger.WarnContext(r.Context(), "get score failed",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(r.Context()),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, score)
}

func (h *Handler) handleListByArcher(w http.ResponseWriter, r *http.Request) {
	archerID, err := id.ParseArcherID(chi.URLParam(r, "archerID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	list, err := h.scores.ListByArcher(r.Context(), archerID)
	if err != nil {
		h.logger.WarnContext(r.Context(), "list scores failed",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(r.Context()),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, list)
}
