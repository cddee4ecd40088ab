package service

import (
	"context"
	"errors"
	"sort"

	"quiverbook/internal/archers"
	"quiverbook/internal/records"
	"quiverbook/internal/rounds"
	"quiverbook/internal/scores"
	id "quiverbook/pkg/domain"
	dErrors "quiverbook/pkg/domain-errors"
	"quiverbook/pkg/platform/sentinel"
)

// Service aggregates official scores into personal bests and club records.
// It never writes: results are recomputed from the score store on every call.
type Service struct {
	scores  scores.Store
	archers archers.Store
	rounds  rounds.Store
}

func New(scoreStore scores.Store, archerStore archers.Store, roundStore rounds.Store) (*Service, error) {
	if scoreStore == nil || archerStore == nil || roundStore == nil {
		return nil, errors.New("score, archer and round stores are required")
	}
	return &Service{scores: scoreStore, archers: archerStore, rounds: roundStore}, nil
}

// PersonalBests returns the archer's best score per round, sorted by round
// name. An archer with no approved scores gets an empty slice, not an error.
func (s *Service) PersonalBests(ctx context.Context, archerID id.ArcherID) ([]records.PersonalBest, error) {
	if _, err := s.archers.FindByID(ctx, archerID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "archer not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
	}

	list, err := s.scores.ListByArcher(ctx, archerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
	}

	bestByRound := make(map[id.RoundID]*scores.Score)
	for _, sc := range list {
		cur, ok := bestByRound[sc.RoundID]
		if !ok || beats(sc, cur) {
			bestByRound[sc.RoundID] = sc
		}
	}

	out := make([]records.PersonalBest, 0, len(bestByRound))
	for roundID, sc := range bestByRound {
		out = append(out, records.PersonalBest{
			RoundID:       roundID,
			RoundName:     s.roundName(ctx, roundID),
			BestScore:     sc.TotalScore,
			DateAchieved:  sc.DateShot,
			CompetitionID: sc.CompetitionID,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoundName < out[j].RoundName })
	return out, nil
}

// ClubRecords returns the best score per round across every archer, sorted by
// round name.
func (s *Service) ClubRecords(ctx context.Context) ([]records.ClubRecord, error) {
	list, err := s.scores.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
	}

	bestByRound := make(map[id.RoundID]*scores.Score)
	for _, sc := range list {
		cur, ok := bestByRound[sc.RoundID]
		if !ok || beats(sc, cur) {
			bestByRound[sc.RoundID] = sc
		}
	}

	names := s.archerNames(ctx)
	out := make([]records.ClubRecord, 0, len(bestByRound))
	for roundID, sc := range bestByRound {
		out = append(out, records.ClubRecord{
			RoundID:          roundID,
			RoundName:        s.roundName(ctx, roundID),
			RecordScore:      sc.TotalScore,
			RecordHolderID:   sc.ArcherID,
			RecordHolderName: names[sc.ArcherID],
			DateAchieved:     sc.DateShot,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoundName < out[j].RoundName })
	return out, nil
}

// beats reports whether a should displace b as the running best. Higher total
// wins; on equal totals the earlier date shot wins, so the record stays with
// the first achievement. Equal date falls back to score ID for determinism.
func beats(a, b *scores.Score) bool {
	if a.TotalScore != b.TotalScore {
		return a.TotalScore > b.TotalScore
	}
	if !a.DateShot.Equal(b.DateShot) {
		return a.DateShot.Before(b.DateShot)
	}
	return a.ID.String() < b.ID.String()
}

// roundName is best-effort: a dangling round reference renders as an empty
// name rather than failing the whole aggregation.
func (s *Service) roundName(ctx context.Context, roundID id.RoundID) string {
	r, err := s.rounds.FindByID(ctx, roundID)
	if err != nil {
		return ""
	}
	return r.Name
}

func (s *Service) archerNames(ctx context.Context) map[id.ArcherID]string {
	names := make(map[id.ArcherID]string)
	list, err := s.archers.List(ctx)
	if err != nil {
		return names
	}
	for _, a := range list {
		names[a.ID] = a.FullName()
	}
	return names
}
