package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/cortex.space/internal/services/cortex/storage"
)

const campaignColumns = `id, server_id, channel_id, name,
	feature_doom_pool, feature_hero_dice, feature_trauma, feature_best_mode, created_at`

// CreateCampaign inserts one campaign bound to a channel.
func (s *Store) CreateCampaign(ctx context.Context, campaign storage.Campaign) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(campaign.ID) == "" {
		return fmt.Errorf("campaign id is required")
	}
	if strings.TrimSpace(campaign.ChannelID) == "" {
		return fmt.Errorf("channel id is required")
	}
	createdAt := campaign.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.q.ExecContext(
		ctx,
		`INSERT INTO campaigns (`+campaignColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		campaign.ID,
		campaign.ServerID,
		campaign.ChannelID,
		campaign.Name,
		boolInt(campaign.Features.DoomPool),
		boolInt(campaign.Features.HeroDice),
		boolInt(campaign.Features.Trauma),
		boolInt(campaign.Features.BestMode),
		storage.ToMillis(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create campaign: %w", err)
	}
	return nil
}

// GetCampaign returns one campaign by id.
func (s *Store) GetCampaign(ctx context.Context, id string) (storage.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return storage.Campaign{}, err
	}
	if err := s.ready(); err != nil {
		return storage.Campaign{}, err
	}
	row := s.q.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = ?`, id)
	return scanCampaign(row, "get campaign")
}

// GetCampaignByChannel returns the campaign bound to a server channel.
func (s *Store) GetCampaignByChannel(ctx context.Context, serverID, channelID string) (storage.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return storage.Campaign{}, err
	}
	if err := s.ready(); err != nil {
		return storage.Campaign{}, err
	}
	row := s.q.QueryRowContext(
		ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE server_id = ? AND channel_id = ?`,
		serverID,
		channelID,
	)
	return scanCampaign(row, "get campaign by channel")
}

// UpdateCampaignFeatures replaces the feature toggles of a campaign.
func (s *Store) UpdateCampaignFeatures(ctx context.Context, id string, features storage.Features) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	result, err := s.q.ExecContext(
		ctx,
		`UPDATE campaigns
		    SET feature_doom_pool = ?, feature_hero_dice = ?, feature_trauma = ?, feature_best_mode = ?
		  WHERE id = ?`,
		boolInt(features.DoomPool),
		boolInt(features.HeroDice),
		boolInt(features.Trauma),
		boolInt(features.BestMode),
		id,
	)
	if err != nil {
		return fmt.Errorf("update campaign features: %w", err)
	}
	return requireAffected(result, "campaigns")
}

// DeleteCampaign removes a campaign; foreign keys cascade to every child row.
func (s *Store) DeleteCampaign(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	result, err := s.q.ExecContext(ctx, `DELETE FROM campaigns WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	return requireAffected(result, "campaigns")
}

func scanCampaign(row scanner, op string) (storage.Campaign, error) {
	var (
		campaign  storage.Campaign
		doomPool  bool
		heroDice  bool
		trauma    bool
		bestMode  bool
		createdAt int64
	)
	err := row.Scan(
		&campaign.ID,
		&campaign.ServerID,
		&campaign.ChannelID,
		&campaign.Name,
		&doomPool,
		&heroDice,
		&trauma,
		&bestMode,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Campaign{}, storage.ErrNotFound
		}
		return storage.Campaign{}, fmt.Errorf("%s: %w", op, err)
	}
	campaign.Features = storage.Features{DoomPool: doomPool, HeroDice: heroDice, Trauma: trauma, BestMode: bestMode}
	campaign.CreatedAt = storage.FromMillis(createdAt)
	return campaign, nil
}

const playerColumns = `id, campaign_id, external_id, display_name, is_gm, is_delegate, plot_points, xp`

// CreatePlayer inserts one player.
func (s *Store) CreatePlayer(ctx context.Context, player storage.Player) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.q.ExecContext(
		ctx,
		`INSERT INTO players (`+playerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		player.ID,
		player.CampaignID,
		player.ExternalID,
		player.DisplayName,
		boolInt(player.IsGM),
		boolInt(player.IsDelegate),
		player.PlotPoints,
		player.XP,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create player: %w", err)
	}
	return nil
}

// GetPlayer returns one player by id.
func (s *Store) GetPlayer(ctx context.Context, id string) (storage.Player, error) {
	if err := ctx.Err(); err != nil {
		return storage.Player{}, err
	}
	if err := s.ready(); err != nil {
		return storage.Player{}, err
	}
	row := s.q.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ?`, id)
	return scanPlayer(row, "get player")
}

// GetPlayerByExternalID returns the player bound to an external identity.
func (s *Store) GetPlayerByExternalID(ctx context.Context, campaignID, externalID string) (storage.Player, error) {
	if err := ctx.Err(); err != nil {
		return storage.Player{}, err
	}
	if err := s.ready(); err != nil {
		return storage.Player{}, err
	}
	row := s.q.QueryRowContext(
		ctx,
		`SELECT `+playerColumns+` FROM players WHERE campaign_id = ? AND external_id = ?`,
		campaignID,
		externalID,
	)
	return scanPlayer(row, "get player by external id")
}

// ListPlayers returns the players of a campaign, GM first.
func (s *Store) ListPlayers(ctx context.Context, campaignID string) ([]storage.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.q.QueryContext(
		ctx,
		`SELECT `+playerColumns+` FROM players WHERE campaign_id = ? ORDER BY is_gm DESC, display_name ASC, id ASC`,
		campaignID,
	)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []storage.Player
	for rows.Next() {
		player, err := scanPlayer(rows, "list players")
		if err != nil {
			return nil, err
		}
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return players, nil
}

// SetPlayerDelegate toggles the delegate flag.
func (s *Store) SetPlayerDelegate(ctx context.Context, id string, delegate bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	result, err := s.q.ExecContext(ctx, `UPDATE players SET is_delegate = ? WHERE id = ?`, boolInt(delegate), id)
	if err != nil {
		return fmt.Errorf("set player delegate: %w", err)
	}
	return requireAffected(result, "players")
}

func scanPlayer(row scanner, op string) (storage.Player, error) {
	var player storage.Player
	err := row.Scan(
		&player.ID,
		&player.CampaignID,
		&player.ExternalID,
		&player.DisplayName,
		&player.IsGM,
		&player.IsDelegate,
		&player.PlotPoints,
		&player.XP,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Player{}, storage.ErrNotFound
		}
		return storage.Player{}, fmt.Errorf("%s: %w", op, err)
	}
	return player, nil
}

// CreateStressType inserts a stress type; names collide case-insensitively.
func (s *Store) CreateStressType(ctx context.Context, stressType storage.StressType) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.q.ExecContext(
		ctx,
		`INSERT INTO stress_types (id, campaign_id, name, name_key) VALUES (?, ?, ?, ?)`,
		stressType.ID,
		stressType.CampaignID,
		stressType.Name,
		storage.NameKey(stressType.Name),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create stress type: %w", err)
	}
	return nil
}

// GetStressType returns one stress type by id.
func (s *Store) GetStressType(ctx context.Context, id string) (storage.StressType, error) {
	if err := ctx.Err(); err != nil {
		return storage.StressType{}, err
	}
	if err := s.ready(); err != nil {
		return storage.StressType{}, err
	}
	var stressType storage.StressType
	err := s.q.QueryRowContext(ctx, `SELECT id, campaign_id, name FROM stress_types WHERE id = ?`, id).
		Scan(&stressType.ID, &stressType.CampaignID, &stressType.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.StressType{}, storage.ErrNotFound
		}
		return storage.StressType{}, fmt.Errorf("get stress type: %w", err)
	}
	return stressType, nil
}

// ListStressTypes returns the stress types of a campaign in creation order.
func (s *Store) ListStressTypes(ctx context.Context, campaignID string) ([]storage.StressType, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.q.QueryContext(
		ctx,
		`SELECT id, campaign_id, name FROM stress_types WHERE campaign_id = ? ORDER BY rowid ASC`,
		campaignID,
	)
	if err != nil {
		return nil, fmt.Errorf("list stress types: %w", err)
	}
	defer rows.Close()

	var stressTypes []storage.StressType
	for rows.Next() {
		var stressType storage.StressType
		if err := rows.Scan(&stressType.ID, &stressType.CampaignID, &stressType.Name); err != nil {
			return nil, fmt.Errorf("list stress types: %w", err)
		}
		stressTypes = append(stressTypes, stressType)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stress types: %w", err)
	}
	return stressTypes, nil
}

// CreateScene inserts an active scene. A second active scene in the same
// campaign is rejected with ErrAlreadyExists.
func (s *Store) CreateScene(ctx context.Context, scene storage.Scene) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	createdAt := scene.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.q.ExecContext(
		ctx,
		`INSERT INTO scenes (id, campaign_id, name, is_active, created_at) VALUES (?, ?, ?, 1, ?)`,
		scene.ID,
		scene.CampaignID,
		scene.Name,
		storage.ToMillis(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create scene: %w", err)
	}
	return nil
}

// GetActiveScene returns the campaign's active scene.
func (s *Store) GetActiveScene(ctx context.Context, campaignID string) (storage.Scene, error) {
	if err := ctx.Err(); err != nil {
		return storage.Scene{}, err
	}
	if err := s.ready(); err != nil {
		return storage.Scene{}, err
	}
	var (
		scene     storage.Scene
		createdAt int64
	)
	err := s.q.QueryRowContext(
		ctx,
		`SELECT id, campaign_id, name, is_active, created_at FROM scenes WHERE campaign_id = ? AND is_active = 1`,
		campaignID,
	).Scan(&scene.ID, &scene.CampaignID, &scene.Name, &scene.Active, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Scene{}, storage.ErrNotFound
		}
		return storage.Scene{}, fmt.Errorf("get active scene: %w", err)
	}
	scene.CreatedAt = storage.FromMillis(createdAt)
	return scene, nil
}

// SweepScene deletes scene-duration assets, scene-scope complications and
// every crisis pool under the scene.
func (s *Store) SweepScene(ctx context.Context, sceneID string) (storage.SceneSweep, error) {
	if err := ctx.Err(); err != nil {
		return storage.SceneSweep{}, err
	}
	if err := s.ready(); err != nil {
		return storage.SceneSweep{}, err
	}
	var sweep storage.SceneSweep
	steps := []struct {
		query string
		count *int
	}{
		{`DELETE FROM assets WHERE scene_id = ? AND duration = 'scene'`, &sweep.Assets},
		{`DELETE FROM complications WHERE scene_id = ? AND scope = 'scene'`, &sweep.Complications},
		{`DELETE FROM crisis_pools WHERE scene_id = ?`, &sweep.CrisisPools},
	}
	for _, step := range steps {
		result, err := s.q.ExecContext(ctx, step.query, sceneID)
		if err != nil {
			return storage.SceneSweep{}, fmt.Errorf("sweep scene: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return storage.SceneSweep{}, fmt.Errorf("sweep scene: %w", err)
		}
		*step.count = int(affected)
	}
	return sweep, nil
}

// DeactivateScene marks the scene inactive.
func (s *Store) DeactivateScene(ctx context.Context, sceneID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	result, err := s.q.ExecContext(ctx, `UPDATE scenes SET is_active = 0 WHERE id = ? AND is_active = 1`, sceneID)
	if err != nil {
		return fmt.Errorf("deactivate scene: %w", err)
	}
	return requireAffected(result, "scenes")
}
