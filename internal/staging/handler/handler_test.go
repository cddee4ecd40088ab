package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"quiverbook/internal/archers"
	"quiverbook/internal/competitions"
	"quiverbook/internal/equipment"
	"quiverbook/internal/rounds"
	"quiverbook/internal/scores"
	"quiverbook/internal/staging"
	stagingService "quiverbook/internal/staging/service"
	id "quiverbook/pkg/domain"
	"quiverbook/pkg/requestcontext"
)

// Handler tests run against the real service over in-memory stores; they
// validate HTTP concerns (parsing, role gating, status mapping), not the
// state machine itself.

type StagingHandlerSuite struct {
	suite.Suite
	scores  *scores.InMemoryStore
	service *stagingService.Service
	handler *Handler

	archerID    id.ArcherID
	roundID     id.RoundID
	rangeID     id.RangeID
	equipmentID id.EquipmentID
}

func TestStagingHandlerSuite(t *testing.T) {
	suite.Run(t, new(StagingHandlerSuite))
}

func testTime() time.Time {
	return time.Date(2026, 6, 14, 10, 30, 0, 0, time.UTC)
}

func (s *StagingHandlerSuite) SetupTest() {
	stagingStore := staging.NewInMemoryStore()
	s.scores = scores.NewInMemoryStore()
	archerStore := archers.NewInMemoryStore()
	roundStore := rounds.NewInMemoryStore()
	equipmentStore := equipment.NewInMemoryStore()
	competitionStore := competitions.NewInMemoryStore()

	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()

	s.archerID = id.ArcherID(uuid.New())
	archer, err := archers.NewArcher(s.archerID, "Maya", "Stein", "", testTime())
	s.Require().NoError(err)
	s.Require().NoError(archerStore.Create(ctx, archer))

	s.roundID = id.RoundID(uuid.New())
	s.rangeID = id.RangeID(uuid.New())
	round, err := rounds.NewRound(s.roundID, "Portsmouth", []rounds.RangeSegment{
		{ID: s.rangeID, DistanceMeters: 18, ArrowsPerEnd: 3, EndCount: 20},
	})
	s.Require().NoError(err)
	s.Require().NoError(roundStore.Create(ctx, round))

	s.equipmentID = id.EquipmentID(uuid.New())
	eq, err := equipment.NewEquipment(s.equipmentID, "Barebow")
	s.Require().NoError(err)
	s.Require().NoError(equipmentStore.Create(ctx, eq))

	s.service, err = stagingService.New(stagingStore, s.scores,
		archerStore, roundStore, equipmentStore, competitionStore)
	s.Require().NoError(err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.handler = New(s.service, logger)
}

// router builds a router with the caller's identity injected, standing in
// for the auth middleware.
func (s *StagingHandlerSuite) router(archerID id.ArcherID, role requestcontext.Role) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := requestcontext.WithArcherID(req.Context(), archerID)
			ctx = requestcontext.WithRole(ctx, role)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	s.handler.Register(r)
	return r
}

func (s *StagingHandlerSuite) submitBody() []byte {
	body, err := json.Marshal(map[string]any{
		"archer_id":    s.archerID.String(),
		"round_id":     s.roundID.String(),
		"equipment_id": s.equipmentID.String(),
		"breakdown": []map[string]any{{
			"range_id": s.rangeID.String(),
			"ends":     [][]string{{"X", "9", "M"}},
		}},
	})
	s.Require().NoError(err)
	return body
}

func (s *StagingHandlerSuite) do(router http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func (s *StagingHandlerSuite) TestSubmit() {
	router := s.router(s.archerID, requestcontext.RoleArcher)

	s.Run("valid submission returns 201 with the pending record", func() {
		rec := s.do(router, http.MethodPost, "/staging-scores", s.submitBody())
		s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

		var record staging.StagingScore
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &record))
		s.Equal(19, record.RawScore)
		s.Equal(staging.StatusPending, record.Status)
	})

	s.Run("invalid JSON returns 400", func() {
		rec := s.do(router, http.MethodPost, "/staging-scores", []byte("not json"))
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("invalid arrow token returns 400", func() {
		body, err := json.Marshal(map[string]any{
			"archer_id":    s.archerID.String(),
			"round_id":     s.roundID.String(),
			"equipment_id": s.equipmentID.String(),
			"breakdown": []map[string]any{{
				"range_id": s.rangeID.String(),
				"ends":     [][]string{{"11"}},
			}},
		})
		s.Require().NoError(err)
		rec := s.do(router, http.MethodPost, "/staging-scores", body)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("archer cannot submit for someone else", func() {
		other := s.router(id.ArcherID(uuid.New()), requestcontext.RoleArcher)
		rec := s.do(other, http.MethodPost, "/staging-scores", s.submitBody())
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("recorder may submit on an archer's behalf", func() {
		recorder := s.router(id.ArcherID(uuid.New()), requestcontext.RoleRecorder)
		rec := s.do(recorder, http.MethodPost, "/staging-scores", s.submitBody())
		s.Equal(http.StatusCreated, rec.Code, rec.Body.String())
	})
}

func (s *StagingHandlerSuite) TestResolutionRoleGating() {
	archerRouter := s.router(s.archerID, requestcontext.RoleArcher)
	recorderRouter := s.router(s.archerID, requestcontext.RoleRecorder)

	rec := s.do(archerRouter, http.MethodPost, "/staging-scores", s.submitBody())
	s.Require().Equal(http.StatusCreated, rec.Code)
	var record staging.StagingScore
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &record))

	s.Run("archers cannot approve", func() {
		rec := s.do(archerRouter, http.MethodPost,
			fmt.Sprintf("/staging-scores/%s/approve", record.ID), nil)
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("archers cannot reject", func() {
		rec := s.do(archerRouter, http.MethodPost,
			fmt.Sprintf("/staging-scores/%s/reject", record.ID),
			[]byte(`{"reason":"no"}`))
		s.Equal(http.StatusForbidden, rec.Code)
	})

	s.Run("recorder approval returns the new score id", func() {
		rec := s.do(recorderRouter, http.MethodPost,
			fmt.Sprintf("/staging-scores/%s/approve", record.ID), nil)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		var result stagingService.ApproveResult
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &result))
		s.False(result.ScoreID.IsNil())

		_, err := s.scores.FindByID(httptest.NewRequest(http.MethodGet, "/", nil).Context(), result.ScoreID)
		s.NoError(err)
	})

	s.Run("second approval returns 409", func() {
		rec := s.do(recorderRouter, http.MethodPost,
			fmt.Sprintf("/staging-scores/%s/approve", record.ID), nil)
		s.Equal(http.StatusConflict, rec.Code)
	})
}

func (s *StagingHandlerSuite) TestRejectAndDelete() {
	recorderRouter := s.router(s.archerID, requestcontext.RoleRecorder)

	rec := s.do(recorderRouter, http.MethodPost, "/staging-scores", s.submitBody())
	s.Require().Equal(http.StatusCreated, rec.Code)
	var record staging.StagingScore
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &record))

	s.Run("rejection without a reason returns 400", func() {
		rec := s.do(recorderRouter, http.MethodPost,
			fmt.Sprintf("/staging-scores/%s/reject", record.ID),
			[]byte(`{"reason":""}`))
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("rejection with a reason returns 200", func() {
		rec := s.do(recorderRouter, http.MethodPost,
			fmt.Sprintf("/staging-scores/%s/reject", record.ID),
			[]byte(`{"reason":"score sheet missing"}`))
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	})

	s.Run("delete returns 204 and the record is gone", func() {
		rec := s.do(recorderRouter, http.MethodDelete,
			fmt.Sprintf("/staging-scores/%s", record.ID), nil)
		s.Require().Equal(http.StatusNoContent, rec.Code)

		rec = s.do(recorderRouter, http.MethodGet,
			fmt.Sprintf("/staging-scores/%s", record.ID), nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("malformed id returns 400", func() {
		rec := s.do(recorderRouter, http.MethodGet, "/staging-scores/not-a-uuid", nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *StagingHandlerSuite) TestListing() {
	recorderRouter := s.router(s.archerID, requestcontext.RoleRecorder)

	rec := s.do(recorderRouter, http.MethodPost, "/staging-scores", s.submitBody())
	s.Require().Equal(http.StatusCreated, rec.Code)

	s.Run("default listing is the pending queue", func() {
		rec := s.do(recorderRouter, http.MethodGet, "/staging-scores", nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		var items []staging.ReviewItem
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &items))
		s.Require().Len(items, 1)
		s.Equal("Maya Stein", items[0].ArcherName)
		s.Equal("Portsmouth", items[0].RoundName)
	})

	s.Run("unknown status filter returns 400", func() {
		rec := s.do(recorderRouter, http.MethodGet, "/staging-scores?status=bogus", nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}
