package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/louisbranch/cortex.space/internal/services/cortex/storage"
)

const (
	assetColumns        = `id, campaign_id, player_id, scene_id, name, die_size, duration, created_at`
	trackColumns        = `id, campaign_id, player_id, stress_type_id, die_size, created_at`
	complicationColumns = `id, campaign_id, player_id, scene_id, name, die_size, scope, created_at`
	heroDieColumns      = `id, campaign_id, player_id, die_size, created_at`
	doomDieColumns      = `id, campaign_id, die_size, created_at`
	crisisPoolColumns   = `id, campaign_id, scene_id, name, created_at`
	crisisDieColumns    = `id, campaign_id, crisis_pool_id, die_size, created_at`
)

// getOne runs a single-row query and maps sql.ErrNoRows to storage.ErrNotFound.
func getOne[T any](ctx context.Context, s *Store, op string, scan func(scanner) (T, error), query string, args ...any) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if err := s.ready(); err != nil {
		return zero, err
	}
	value, err := scan(s.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, storage.ErrNotFound
		}
		return zero, fmt.Errorf("%s: %w", op, err)
	}
	return value, nil
}

// listAll runs a multi-row query and scans every row.
func listAll[T any](ctx context.Context, s *Store, op string, scan func(scanner) (T, error), query string, args ...any) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		value, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func scanAsset(row scanner) (storage.Asset, error) {
	var (
		asset     storage.Asset
		playerID  sql.NullString
		sceneID   sql.NullString
		duration  string
		createdAt int64
	)
	if err := row.Scan(&asset.ID, &asset.CampaignID, &playerID, &sceneID, &asset.Name, &asset.DieSize, &duration, &createdAt); err != nil {
		return storage.Asset{}, err
	}
	asset.PlayerID = playerID.String
	asset.SceneID = sceneID.String
	asset.Duration = storage.Duration(duration)
	asset.CreatedAt = storage.FromMillis(createdAt)
	return asset, nil
}

func scanTrack(row scanner) (storage.Track, error) {
	var (
		track     storage.Track
		createdAt int64
	)
	if err := row.Scan(&track.ID, &track.CampaignID, &track.PlayerID, &track.StressTypeID, &track.DieSize, &createdAt); err != nil {
		return storage.Track{}, err
	}
	track.CreatedAt = storage.FromMillis(createdAt)
	return track, nil
}

func scanComplication(row scanner) (storage.Complication, error) {
	var (
		complication storage.Complication
		playerID     sql.NullString
		sceneID      sql.NullString
		scope        string
		createdAt    int64
	)
	if err := row.Scan(&complication.ID, &complication.CampaignID, &playerID, &sceneID, &complication.Name, &complication.DieSize, &scope, &createdAt); err != nil {
		return storage.Complication{}, err
	}
	complication.PlayerID = playerID.String
	complication.SceneID = sceneID.String
	complication.Scope = storage.Duration(scope)
	complication.CreatedAt = storage.FromMillis(createdAt)
	return complication, nil
}

func scanHeroDie(row scanner) (storage.HeroDie, error) {
	var (
		die       storage.HeroDie
		createdAt int64
	)
	if err := row.Scan(&die.ID, &die.CampaignID, &die.PlayerID, &die.DieSize, &createdAt); err != nil {
		return storage.HeroDie{}, err
	}
	die.CreatedAt = storage.FromMillis(createdAt)
	return die, nil
}

func scanDoomDie(row scanner) (storage.DoomDie, error) {
	var (
		die       storage.DoomDie
		createdAt int64
	)
	if err := row.Scan(&die.ID, &die.CampaignID, &die.DieSize, &createdAt); err != nil {
		return storage.DoomDie{}, err
	}
	die.CreatedAt = storage.FromMillis(createdAt)
	return die, nil
}

func scanCrisisPool(row scanner) (storage.CrisisPool, error) {
	var (
		pool      storage.CrisisPool
		createdAt int64
	)
	if err := row.Scan(&pool.ID, &pool.CampaignID, &pool.SceneID, &pool.Name, &createdAt); err != nil {
		return storage.CrisisPool{}, err
	}
	pool.CreatedAt = storage.FromMillis(createdAt)
	return pool, nil
}

func scanCrisisDie(row scanner) (storage.CrisisDie, error) {
	var (
		die       storage.CrisisDie
		createdAt int64
	)
	if err := row.Scan(&die.ID, &die.CampaignID, &die.CrisisPoolID, &die.DieSize, &createdAt); err != nil {
		return storage.CrisisDie{}, err
	}
	die.CreatedAt = storage.FromMillis(createdAt)
	return die, nil
}

// GetAsset returns one asset by id.
func (s *Store) GetAsset(ctx context.Context, id string) (storage.Asset, error) {
	return getOne(ctx, s, "get asset", scanAsset, `SELECT `+assetColumns+` FROM assets WHERE id = ?`, id)
}

// ListAssets returns every asset of a campaign in creation order.
func (s *Store) ListAssets(ctx context.Context, campaignID string) ([]storage.Asset, error) {
	return listAll(ctx, s, "list assets", scanAsset, `SELECT `+assetColumns+` FROM assets WHERE campaign_id = ? ORDER BY created_at, id`, campaignID)
}

// GetStress returns one stress row by id.
func (s *Store) GetStress(ctx context.Context, id string) (storage.Track, error) {
	return getOne(ctx, s, "get stress", scanTrack, `SELECT `+trackColumns+` FROM stress WHERE id = ?`, id)
}

// FindStress returns the stress row for a (player, stress type) pair.
func (s *Store) FindStress(ctx context.Context, playerID, stressTypeID string) (storage.Track, error) {
	return getOne(ctx, s, "find stress", scanTrack, `SELECT `+trackColumns+` FROM stress WHERE player_id = ? AND stress_type_id = ?`, playerID, stressTypeID)
}

// ListStress returns every stress row of a campaign.
func (s *Store) ListStress(ctx context.Context, campaignID string) ([]storage.Track, error) {
	return listAll(ctx, s, "list stress", scanTrack, `SELECT `+trackColumns+` FROM stress WHERE campaign_id = ? ORDER BY created_at, id`, campaignID)
}

// GetTrauma returns one trauma row by id.
func (s *Store) GetTrauma(ctx context.Context, id string) (storage.Track, error) {
	return getOne(ctx, s, "get trauma", scanTrack, `SELECT `+trackColumns+` FROM trauma WHERE id = ?`, id)
}

// FindTrauma returns the trauma row for a (player, stress type) pair.
func (s *Store) FindTrauma(ctx context.Context, playerID, stressTypeID string) (storage.Track, error) {
	return getOne(ctx, s, "find trauma", scanTrack, `SELECT `+trackColumns+` FROM trauma WHERE player_id = ? AND stress_type_id = ?`, playerID, stressTypeID)
}

// ListTrauma returns every trauma row of a campaign.
func (s *Store) ListTrauma(ctx context.Context, campaignID string) ([]storage.Track, error) {
	return listAll(ctx, s, "list trauma", scanTrack, `SELECT `+trackColumns+` FROM trauma WHERE campaign_id = ? ORDER BY created_at, id`, campaignID)
}

// GetComplication returns one complication by id.
func (s *Store) GetComplication(ctx context.Context, id string) (storage.Complication, error) {
	return getOne(ctx, s, "get complication", scanComplication, `SELECT `+complicationColumns+` FROM complications WHERE id = ?`, id)
}

// ListComplications returns every complication of a campaign.
func (s *Store) ListComplications(ctx context.Context, campaignID string) ([]storage.Complication, error) {
	return listAll(ctx, s, "list complications", scanComplication, `SELECT `+complicationColumns+` FROM complications WHERE campaign_id = ? ORDER BY created_at, id`, campaignID)
}

// GetHeroDie returns one hero die by id.
func (s *Store) GetHeroDie(ctx context.Context, id string) (storage.HeroDie, error) {
	return getOne(ctx, s, "get hero die", scanHeroDie, `SELECT `+heroDieColumns+` FROM hero_dice WHERE id = ?`, id)
}

// ListHeroDice returns every banked hero die of a campaign.
func (s *Store) ListHeroDice(ctx context.Context, campaignID string) ([]storage.HeroDie, error) {
	return listAll(ctx, s, "list hero dice", scanHeroDie, `SELECT `+heroDieColumns+` FROM hero_dice WHERE campaign_id = ? ORDER BY created_at, id`, campaignID)
}

// GetDoomDie returns one doom pool die by id.
func (s *Store) GetDoomDie(ctx context.Context, id string) (storage.DoomDie, error) {
	return getOne(ctx, s, "get doom die", scanDoomDie, `SELECT `+doomDieColumns+` FROM doom_dice WHERE id = ?`, id)
}

// ListDoomDice returns the doom pool of a campaign.
func (s *Store) ListDoomDice(ctx context.Context, campaignID string) ([]storage.DoomDie, error) {
	return listAll(ctx, s, "list doom dice", scanDoomDie, `SELECT `+doomDieColumns+` FROM doom_dice WHERE campaign_id = ? ORDER BY die_size DESC, created_at, id`, campaignID)
}

// GetCrisisPool returns one crisis pool by id.
func (s *Store) GetCrisisPool(ctx context.Context, id string) (storage.CrisisPool, error) {
	return getOne(ctx, s, "get crisis pool", scanCrisisPool, `SELECT `+crisisPoolColumns+` FROM crisis_pools WHERE id = ?`, id)
}

// ListCrisisPools returns every crisis pool of a campaign.
func (s *Store) ListCrisisPools(ctx context.Context, campaignID string) ([]storage.CrisisPool, error) {
	return listAll(ctx, s, "list crisis pools", scanCrisisPool, `SELECT `+crisisPoolColumns+` FROM crisis_pools WHERE campaign_id = ? ORDER BY created_at, id`, campaignID)
}

// GetCrisisDie returns one crisis die by id.
func (s *Store) GetCrisisDie(ctx context.Context, id string) (storage.CrisisDie, error) {
	return getOne(ctx, s, "get crisis die", scanCrisisDie, `SELECT `+crisisDieColumns+` FROM crisis_dice WHERE id = ?`, id)
}

// ListCrisisDice returns every crisis die of a campaign.
func (s *Store) ListCrisisDice(ctx context.Context, campaignID string) ([]storage.CrisisDie, error) {
	return listAll(ctx, s, "list crisis dice", scanCrisisDie, `SELECT `+crisisDieColumns+` FROM crisis_dice WHERE campaign_id = ? ORDER BY crisis_pool_id, die_size DESC, id`, campaignID)
}
