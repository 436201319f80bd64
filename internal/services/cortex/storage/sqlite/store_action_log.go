package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/cortex.space/internal/services/cortex/storage"
	"github.com/louisbranch/cortex.space/internal/services/cortex/undo"
)

const actionColumns = `seq, campaign_id, actor_id, action_type, description, inverse_json, undone, created_at`

// AppendAction records one forward action with its inverse and returns the
// assigned sequence number.
func (s *Store) AppendAction(ctx context.Context, entry storage.ActionLogEntry) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.ready(); err != nil {
		return 0, err
	}
	if strings.TrimSpace(entry.CampaignID) == "" {
		return 0, fmt.Errorf("campaign id is required")
	}
	if strings.TrimSpace(entry.ActionType) == "" {
		return 0, fmt.Errorf("action type is required")
	}
	inverse, err := undo.Marshal(entry.Inverse)
	if err != nil {
		return 0, err
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	result, err := s.q.ExecContext(
		ctx,
		`INSERT INTO action_log (campaign_id, actor_id, action_type, description, inverse_json, undone, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?)`,
		entry.CampaignID,
		entry.ActorID,
		entry.ActionType,
		entry.Description,
		string(inverse),
		storage.ToMillis(createdAt),
	)
	if err != nil {
		return 0, fmt.Errorf("append action: %w", err)
	}
	seq, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append action: %w", err)
	}
	return seq, nil
}

// LastUndoable returns the newest entry not yet undone. A non-empty actorID
// limits the search to that actor's entries.
func (s *Store) LastUndoable(ctx context.Context, campaignID, actorID string) (storage.ActionLogEntry, error) {
	query := `SELECT ` + actionColumns + ` FROM action_log WHERE campaign_id = ? AND undone = 0`
	args := []any{campaignID}
	if actorID != "" {
		query += ` AND actor_id = ?`
		args = append(args, actorID)
	}
	query += ` ORDER BY seq DESC LIMIT 1`
	return getOne(ctx, s, "last undoable action", scanAction, query, args...)
}

// MarkUndone flags an entry as undone. Entries are never un-flagged.
func (s *Store) MarkUndone(ctx context.Context, seq int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	result, err := s.q.ExecContext(ctx, `UPDATE action_log SET undone = 1 WHERE seq = ? AND undone = 0`, seq)
	if err != nil {
		return fmt.Errorf("mark action undone: %w", err)
	}
	return requireAffected(result, "action_log")
}

// ListActions returns up to limit entries, newest first.
func (s *Store) ListActions(ctx context.Context, campaignID string, limit int) ([]storage.ActionLogEntry, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	return listAll(
		ctx,
		s,
		"list actions",
		scanAction,
		`SELECT `+actionColumns+` FROM action_log WHERE campaign_id = ? ORDER BY seq DESC LIMIT ?`,
		campaignID,
		limit,
	)
}

// scanAction decodes the logged inverse through the undo allow-lists, so a
// tampered entry surfaces as undo.ErrDisallowed before anything executes.
func scanAction(row scanner) (storage.ActionLogEntry, error) {
	var (
		entry     storage.ActionLogEntry
		inverse   string
		createdAt int64
	)
	if err := row.Scan(
		&entry.Seq,
		&entry.CampaignID,
		&entry.ActorID,
		&entry.ActionType,
		&entry.Description,
		&inverse,
		&entry.Undone,
		&createdAt,
	); err != nil {
		return storage.ActionLogEntry{}, err
	}
	ins, err := undo.Unmarshal([]byte(inverse))
	if err != nil {
		return storage.ActionLogEntry{}, fmt.Errorf("action %d: %w", entry.Seq, err)
	}
	entry.Inverse = ins
	entry.CreatedAt = storage.FromMillis(createdAt)
	return entry, nil
}
