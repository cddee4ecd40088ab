package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"quiverbook/internal/scoring"
	"quiverbook/internal/staging"
	stagingService "quiverbook/internal/staging/service"
	"quiverbook/internal/transport/http/shared"
	id "quiverbook/pkg/domain"
	dErrors "quiverbook/pkg/domain-errors"
	"quiverbook/pkg/requestcontext"
)

// Service defines the staging operations the transport layer needs.
type Service interface {
	Submit(ctx context.Context, in stagingService.SubmitInput) (*staging.StagingScore, error)
	Get(ctx context.Context, stagingID id.StagingScoreID) (*staging.StagingScore, error)
	ListPending(ctx context.Context) ([]staging.ReviewItem, error)
	ListAll(ctx context.Context) ([]*staging.StagingScore, error)
	Approve(ctx context.Context, stagingID id.StagingScoreID, competitionID *id.CompetitionID) (stagingService.ApproveResult, error)
	Reject(ctx context.Context, stagingID id.StagingScoreID, reason string) (stagingService.RejectResult, error)
	Delete(ctx context.Context, stagingID id.StagingScoreID) error
}

// Handler handles the staging score endpoints.
type Handler struct {
	logger  *slog.Logger
	staging Service
}

func New(staging Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, staging: staging}
}

// Register mounts the staging routes. The caller is responsible for wrapping
// the router in the auth middleware; this handler only checks roles.
func (h *Handler) Register(r chi.Router) {
	r.Route("/staging-scores", func(r chi.Router) {
		r.Post("/", h.handleSubmit)
		r.Get("/", h.handleList)
		r.Get("/{stagingScoreID}", h.handleGet)
		r.Post("/{stagingScoreID}/approve", h.handleApprove)
		r.Post("/{stagingScoreID}/reject", h.handleReject)
		r.Delete("/{stagingScoreID}", h.handleDelete)
	})
}

type submitRequest struct {
	ArcherID    string                `json:"archer_id"`
	RoundID     string                `json:"round_id"`
	EquipmentID string                `json:"equipment_id"`
	Breakdown   []scoring.RangeScores `json:"breakdown"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	// Submitting on someone else's behalf is a recorder privilege.
	if req.ArcherID == "" {
		req.ArcherID = requestcontext.ArcherID(ctx).String()
	} else if req.ArcherID != requestcontext.ArcherID(ctx).String() &&
		!requestcontext.CallerRole(ctx).CanResolve() {
		shared.WriteError(w, dErrors.New(dErrors.CodeForbidden, "cannot submit scores for another archer"))
		return
	}

	archerID, err := id.ParseArcherID(req.ArcherID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	roundID, err := id.ParseRoundID(req.RoundID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	equipmentID, err := id.ParseEquipmentID(req.EquipmentID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	record, err := h.staging.Submit(ctx, stagingService.SubmitInput{
		ArcherID:    archerID,
		RoundID:     roundID,
		EquipmentID: equipmentID,
		Breakdown:   req.Breakdown,
	})
	if err != nil {
		h.logError(ctx, "submit staging score failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.URL.Query().Get("status") {
	case "", "pending":
		items, err := h.staging.ListPending(ctx)
		if err != nil {
			h.logError(ctx, "list pending staging scores failed", err)
			shared.WriteError(w, err)
			return
		}
		shared.WriteJSON(w, http.StatusOK, items)
	case "all":
		list, err := h.staging.ListAll(ctx)
		if err != nil {
			h.logError(ctx, "list staging scores failed", err)
			shared.WriteError(w, err)
			return
		}
		shared.WriteJSON(w, http.StatusOK, list)
	default:
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "status must be pending or all"))
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stagingID, err := id.ParseStagingScoreID(chi.URLParam(r, "stagingScoreID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	record, err := h.staging.Get(ctx, stagingID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, record)
}

type approveRequest struct {
	CompetitionID string `json:"competition_id,omitempty"`
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.requireRecorder(w, ctx) {
		return
	}

	stagingID, err := id.ParseStagingScoreID(chi.URLParam(r, "stagingScoreID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req approveRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}
	}

	var competitionID *id.CompetitionID
	if req.CompetitionID != "" {
		parsed, err := id.ParseCompetitionID(req.CompetitionID)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		competitionID = &parsed
	}

	result, err := h.staging.Approve(ctx, stagingID, competitionID)
	if err != nil {
		h.logError(ctx, "approve staging score failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, result)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.requireRecorder(w, ctx) {
		return
	}

	stagingID, err := id.ParseStagingScoreID(chi.URLParam(r, "stagingScoreID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.staging.Reject(ctx, stagingID, req.Reason)
	if err != nil {
		h.logError(ctx, "reject staging score failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.requireRecorder(w, ctx) {
		return
	}

	stagingID, err := id.ParseStagingScoreID(chi.URLParam(r, "stagingScoreID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.staging.Delete(ctx, stagingID); err != nil {
		h.logError(ctx, "delete staging score failed", err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// requireRecorder gates the resolution endpoints on the caller's role.
func (h *Handler) requireRecorder(w http.ResponseWriter, ctx context.Context) bool {
	if requestcontext.CallerRole(ctx).CanResolve() {
		return true
	}
	shared.WriteError(w, dErrors.New(dErrors.CodeForbidden, "recorder role required"))
	return false
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	log := h.logger.WarnContext
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		log = h.logger.ErrorContext
	}
	log(ctx, msg,
		"error", err.Error(),
		"request_id", requestcontext.RequestID(ctx),
	)
}
