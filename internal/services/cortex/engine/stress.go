package engine

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/louisbranch/cortex.space/internal/platform/errors"
	"github.com/louisbranch/cortex.space/internal/services/cortex/domain/dice"
	"github.com/louisbranch/cortex.space/internal/services/cortex/storage"
	"github.com/louisbranch/cortex.space/internal/services/cortex/undo"
)

// traumaStartSize is the size of the trauma die a first stress-out creates.
const traumaStartSize = 6

// TrackInput applies a die to a (player, stress type) track. StressType is a
// stress type id or its name, matched case-insensitively.
type TrackInput struct {
	PlayerID   string `json:"player_id"`
	StressType string `json:"stress_type"`
	Size       int    `json:"size"`
}

// track describes which of the two per-pair tables an operation targets.
type track struct {
	kind  string
	table undo.Table
	find  func(s *session, playerID, stressTypeID string) (storage.Track, error)
	get   func(s *session, id string) (storage.Track, error)
}

var (
	stressTrack = track{
		kind:  "stress",
		table: undo.TableStress,
		find: func(s *session, playerID, stressTypeID string) (storage.Track, error) {
			return s.repo.FindStress(s.ctx, playerID, stressTypeID)
		},
		get: func(s *session, id string) (storage.Track, error) {
			return s.repo.GetStress(s.ctx, id)
		},
	}
	traumaTrack = track{
		kind:  "trauma",
		table: undo.TableTrauma,
		find: func(s *session, playerID, stressTypeID string) (storage.Track, error) {
			return s.repo.FindTrauma(s.ctx, playerID, stressTypeID)
		},
		get: func(s *session, id string) (storage.Track, error) {
			return s.repo.GetTrauma(s.ctx, id)
		},
	}
)

func (t track) die(row storage.Track, stressTypeName string) die {
	return die{kind: t.kind, table: t.table, id: row.ID, name: stressTypeName, size: row.DieSize, row: row.Row()}
}

// stressType resolves a stress type by id or case-insensitive name.
func (s *session) stressType(ref string) (storage.StressType, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return storage.StressType{}, apperrors.New(apperrors.CodeStressTypeEmpty, "stress type is required")
	}
	stressType, err := s.repo.GetStressType(s.ctx, ref)
	if err == nil && stressType.CampaignID == s.campaign.ID {
		return stressType, nil
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return storage.StressType{}, err
	}
	types, err := s.repo.ListStressTypes(s.ctx, s.campaign.ID)
	if err != nil {
		return storage.StressType{}, err
	}
	key := storage.NameKey(ref)
	for _, candidate := range types {
		if storage.NameKey(candidate.Name) == key {
			return candidate, nil
		}
	}
	return storage.StressType{}, lookupError(storage.ErrNotFound, "Stress type", ref)
}

// stack applies size to the (player, type) pair:
// no row inserts at size; a strictly larger size replaces; an equal or
// smaller size steps the existing die up; a d12 cannot step and reports atMax.
func (s *session) stack(t track, player storage.Player, stressType storage.StressType, size int, atMax Outcome) (Result, error) {
	existing, err := t.find(s, player.ID, stressType.ID)
	if errors.Is(err, storage.ErrNotFound) {
		rowID, err := s.newID()
		if err != nil {
			return Result{}, err
		}
		row := storage.Track{
			ID:           rowID,
			CampaignID:   s.campaign.ID,
			PlayerID:     player.ID,
			StressTypeID: stressType.ID,
			DieSize:      size,
			CreatedAt:    s.now(),
		}
		return s.insert(t.die(row, stressType.Name))
	}
	if err != nil {
		return Result{}, err
	}

	current := t.die(existing, stressType.Name)
	if size > existing.DieSize {
		return s.resize(current, size, OutcomeReplaced, t.kind+"_replace")
	}
	return s.stepUp(current, atMax)
}

func (s *session) trackTargets(in TrackInput) (storage.Player, storage.StressType, error) {
	if err := dice.Validate(in.Size); err != nil {
		return storage.Player{}, storage.StressType{}, err
	}
	player, err := s.player(in.PlayerID)
	if err != nil {
		return storage.Player{}, storage.StressType{}, err
	}
	stressType, err := s.stressType(in.StressType)
	if err != nil {
		return storage.Player{}, storage.StressType{}, err
	}
	return player, stressType, nil
}

// ApplyStress stacks stress on a player. When the track is already d12 the
// outcome is stressed_out and, with trauma enabled, trauma of the same type
// is created at d6 or stepped up as part of the same action.
func (e *Engine) ApplyStress(ctx context.Context, actor Actor, in TrackInput) (Result, error) {
	var result Result
	err := e.run(ctx, "ApplyStress", actor, func(s *session) error {
		player, stressType, err := s.trackTargets(in)
		if err != nil {
			return err
		}
		result, err = s.stack(stressTrack, player, stressType, in.Size, OutcomeStressedOut)
		if err != nil || result.Outcome != OutcomeStressedOut || !s.campaign.Features.Trauma {
			return err
		}
		trauma, err := s.stack(traumaTrack, player, stressType, traumaStartSize, OutcomePermanentRemoval)
		if err != nil {
			return err
		}
		result.Trauma = &trauma
		return nil
	})
	return result, err
}

// ApplyTrauma stacks trauma directly. A d12 trauma reports permanent_removal.
func (e *Engine) ApplyTrauma(ctx context.Context, actor Actor, in TrackInput) (Result, error) {
	var result Result
	err := e.run(ctx, "ApplyTrauma", actor, func(s *session) error {
		if err := s.requireFeature("trauma", s.campaign.Features.Trauma); err != nil {
			return err
		}
		player, stressType, err := s.trackTargets(in)
		if err != nil {
			return err
		}
		result, err = s.stack(traumaTrack, player, stressType, in.Size, OutcomePermanentRemoval)
		return err
	})
	return result, err
}

func (s *session) trackRow(t track, id string) (die, error) {
	row, err := t.get(s, id)
	if err != nil {
		return die{}, lookupError(err, strings.ToUpper(t.kind[:1])+t.kind[1:], id)
	}
	if err := s.owns(t.kind, row.CampaignID); err != nil {
		return die{}, err
	}
	stressType, err := s.repo.GetStressType(s.ctx, row.StressTypeID)
	if err != nil {
		return die{}, err
	}
	return t.die(row, stressType.Name), nil
}

// StepDownStress recovers one size of stress; d4 stress is eliminated.
func (e *Engine) StepDownStress(ctx context.Context, actor Actor, stressID string) (Result, error) {
	return e.stepDownTrack(ctx, "StepDownStress", actor, stressTrack, stressID)
}

// ClearStress removes a stress row.
func (e *Engine) ClearStress(ctx context.Context, actor Actor, stressID string) (Result, error) {
	return e.clearTrack(ctx, "ClearStress", actor, stressTrack, stressID)
}

// StepDownTrauma recovers one size of trauma; d4 trauma is eliminated.
func (e *Engine) StepDownTrauma(ctx context.Context, actor Actor, traumaID string) (Result, error) {
	return e.stepDownTrack(ctx, "StepDownTrauma", actor, traumaTrack, traumaID)
}

// ClearTrauma removes a trauma row.
func (e *Engine) ClearTrauma(ctx context.Context, actor Actor, traumaID string) (Result, error) {
	return e.clearTrack(ctx, "ClearTrauma", actor, traumaTrack, traumaID)
}

func (e *Engine) stepDownTrack(ctx context.Context, op string, actor Actor, t track, id string) (Result, error) {
	var result Result
	err := e.run(ctx, op, actor, func(s *session) error {
		current, err := s.trackRow(t, id)
		if err != nil {
			return err
		}
		result, err = s.stepDown(current)
		return err
	})
	return result, err
}

func (e *Engine) clearTrack(ctx context.Context, op string, actor Actor, t track, id string) (Result, error) {
	var result Result
	err := e.run(ctx, op, actor, func(s *session) error {
		current, err := s.trackRow(t, id)
		if err != nil {
			return err
		}
		result, err = s.remove(current, OutcomeRemoved)
		return err
	})
	return result, err
}
