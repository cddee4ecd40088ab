package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"quiverbook/internal/archers"
	"quiverbook/internal/competitions"
	"quiverbook/internal/equipment"
	"quiverbook/internal/rounds"
	"quiverbook/internal/transport/http/shared"
	id "quiverbook/pkg/domain"
	dErrors "quiverbook/pkg/domain-errors"
	"quiverbook/pkg/platform/sentinel"
	"quiverbook/pkg/requestcontext"
)

// referenceHandler is the thin CRUD surface over the reference entities.
// These are plain store pass-throughs; anything with real rules (staging,
// scores, records) has its own service and handler package.
type referenceHandler struct {
	archers      archers.Store
	rounds       rounds.Store
	equipment    equipment.Store
	competitions competitions.Store
}

func (h *referenceHandler) register(r chi.Router) {
	// Flat patterns: the archer-scoped score and record reads live on the
	// same /archers/{archerID} subtree, so no subrouter mounts here.
	r.Post("/archers", h.handleCreateArcher)
	r.Get("/archers", h.handleListArchers)
	r.Get("/archers/{archerID}", h.handleGetArcher)
	r.Delete("/archers/{archerID}", h.handleDeleteArcher)

	r.Post("/rounds", h.handleCreateRound)
	r.Get("/rounds", h.handleListRounds)
	r.Get("/rounds/{roundID}", h.handleGetRound)

	r.Post("/equipment", h.handleCreateEquipment)
	r.Get("/equipment", h.handleListEquipment)

	r.Post("/competitions", h.handleCreateCompetition)
	r.Get("/competitions", h.handleListCompetitions)
}

// storeErr maps bare sentinel errors from stores onto coded errors for the
// response envelope.
func storeErr(err error, what string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, what+" not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeConflict, what+" name already in use")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, what+" already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
	}
}

// --- archers ---

type createArcherRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
}

func (h *referenceHandler) handleCreateArcher(w http.ResponseWriter, r *http.Request) {
	var req createArcherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	archer, err := archers.NewArcher(id.ArcherID(uuid.New()),
		req.FirstName, req.LastName, req.Email, requestcontext.Now(r.Context()))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.archers.Create(r.Context(), archer); err != nil {
		shared.WriteError(w, storeErr(err, "archer"))
		return
	}
	shared.WriteJSON(w, http.StatusCreated, archer)
}

func (h *referenceHandler) handleListArchers(w http.ResponseWriter, r *http.Request) {
	list, err := h.archers.List(r.Context())
	if err != nil {
		shared.WriteError(w, storeErr(err, "archer"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, list)
}

func (h *referenceHandler) handleGetArcher(w http.ResponseWriter, r *http.Request) {
	archerID, err := id.ParseArcherID(chi.URLParam(r, "archerID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	archer, err := h.archers.FindByID(r.Context(), archerID)
	if err != nil {
		shared.WriteError(w, storeErr(err, "archer"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, archer)
}

func (h *referenceHandler) handleDeleteArcher(w http.ResponseWriter, r *http.Request) {
	if !requestcontext.CallerRole(r.Context()).CanResolve() {
		shared.WriteError(w, dErrors.New(dErrors.CodeForbidden, "recorder role required"))
		return
	}
	archerID, err := id.ParseArcherID(chi.URLParam(r, "archerID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.archers.Delete(r.Context(), archerID); err != nil {
		shared.WriteError(w, storeErr(err, "archer"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- rounds ---

type createRoundRequest struct {
	Name   string `json:"name"`
	Ranges []struct {
		DistanceMeters int `json:"distance_meters"`
		ArrowsPerEnd   int `json:"arrows_per_end"`
		EndCount       int `json:"end_count"`
	} `json:"ranges"`
}

func (h *referenceHandler) handleCreateRound(w http.ResponseWriter, r *http.Request) {
	var req createRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	segments := make([]rounds.RangeSegment, 0, len(req.Ranges))
	for _, seg := range req.Ranges {
		segments = append(segments, rounds.RangeSegment{
			ID:             id.RangeID(uuid.New()),
			DistanceMeters: seg.DistanceMeters,
			ArrowsPerEnd:   seg.ArrowsPerEnd,
			EndCount:       seg.EndCount,
		})
	}

	round, err := rounds.NewRound(id.RoundID(uuid.New()), req.Name, segments)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.rounds.Create(r.Context(), round); err != nil {
		shared.WriteError(w, storeErr(err, "round"))
		return
	}
	shared.WriteJSON(w, http.StatusCreated, round)
}

func (h *referenceHandler) handleListRounds(w http.ResponseWriter, r *http.Request) {
	list, err := h.rounds.List(r.Context())
	if err != nil {
		shared.WriteError(w, storeErr(err, "round"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, list)
}

func (h *referenceHandler) handleGetRound(w http.ResponseWriter, r *http.Request) {
	roundID, err := id.ParseRoundID(chi.URLParam(r, "roundID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	round, err := h.rounds.FindByID(r.Context(), roundID)
	if err != nil {
		shared.WriteError(w, storeErr(err, "round"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, round)
}

// --- equipment ---

type createEquipmentRequest struct {
	Name string `json:"name"`
}

func (h *referenceHandler) handleCreateEquipment(w http.ResponseWriter, r *http.Request) {
	var req createEquipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	eq, err := equipment.NewEquipment(id.EquipmentID(uuid.New()), req.Name)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.equipment.Create(r.Context(), eq); err != nil {
		shared.WriteError(w, storeErr(err, "equipment"))
		return
	}
	shared.WriteJSON(w, http.StatusCreated, eq)
}

func (h *referenceHandler) handleListEquipment(w http.ResponseWriter, r *http.Request) {
	list, err := h.equipment.List(r.Context())
	if err != nil {
		shared.WriteError(w, storeErr(err, "equipment"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, list)
}

// --- competitions ---

type createCompetitionRequest struct {
	Name     string `json:"name"`
	Date     string `json:"date"` // YYYY-MM-DD
	Location string `json:"location,omitempty"`
}

func (h *referenceHandler) handleCreateCompetition(w http.ResponseWriter, r *http.Request) {
	var req createCompetitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "date must be formatted YYYY-MM-DD"))
		return
	}

	comp, err := competitions.NewCompetition(id.CompetitionID(uuid.New()), req.Name, req.Location, date)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.competitions.Create(r.Context(), comp); err != nil {
		shared.WriteError(w, storeErr(err, "competition"))
		return
	}
	shared.WriteJSON(w, http.StatusCreated, comp)
}

func (h *referenceHandler) handleListCompetitions(w http.ResponseWriter, r *http.Request) {
	list, err := h.competitions.List(r.Context())
	if err != nil {
		shared.WriteError(w, storeErr(err, "competition"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, list)
}
