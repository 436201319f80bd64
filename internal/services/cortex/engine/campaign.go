package engine

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/louisbranch/cortex.space/internal/platform/errors"
	"github.com/louisbranch/cortex.space/internal/services/cortex/storage"
)

// CreateCampaignInput describes a new campaign and its GM.
type CreateCampaignInput struct {
	ServerID      string            `json:"server_id"`
	ChannelID     string            `json:"channel_id"`
	Name          string            `json:"name"`
	GMExternalID  string            `json:"gm_external_id"`
	GMDisplayName string            `json:"gm_display_name"`
	StressTypes   []string          `json:"stress_types,omitempty"`
	Features      *storage.Features `json:"features,omitempty"`
}

// CampaignSetup is the state created by CreateCampaign.
type CampaignSetup struct {
	Campaign    storage.Campaign     `json:"campaign"`
	GM          storage.Player       `json:"gm"`
	StressTypes []storage.StressType `json:"stress_types"`
}

// CreateCampaign binds a new campaign to a channel with its GM and stress
// types. Missing stress types and features come from the rules preset.
func (e *Engine) CreateCampaign(ctx context.Context, in CreateCampaignInput) (setup CampaignSetup, err error) {
	ctx, finish := e.span(ctx, "CreateCampaign", attribute.String("channel.id", in.ChannelID))
	defer func() { finish(err) }()

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return CampaignSetup{}, apperrors.New(apperrors.CodeCampaignNameEmpty, "campaign name is required")
	}
	if strings.TrimSpace(in.ServerID) == "" || strings.TrimSpace(in.ChannelID) == "" {
		return CampaignSetup{}, apperrors.New(apperrors.CodeCampaignChannelRequired, "server and channel are required")
	}
	if strings.TrimSpace(in.GMExternalID) == "" {
		return CampaignSetup{}, apperrors.New(apperrors.CodePlayerEmptyExternalID, "gm identity is required")
	}
	if strings.TrimSpace(in.GMDisplayName) == "" {
		return CampaignSetup{}, apperrors.New(apperrors.CodePlayerEmptyDisplayName, "gm display name is required")
	}
	stressNames := in.StressTypes
	if len(stressNames) == 0 {
		stressNames = e.rules.StressTypes
	}
	stressNames = uniqueNames(stressNames)
	if len(stressNames) == 0 {
		return CampaignSetup{}, apperrors.New(apperrors.CodeCampaignStressTypes, "at least one stress type is required")
	}
	features := e.rules.Features
	if in.Features != nil {
		features = *in.Features
	}

	err = e.store.WithinTx(ctx, func(repo storage.Repository) error {
		campaignID, err := e.newID()
		if err != nil {
			return err
		}
		setup.Campaign = storage.Campaign{
			ID:        campaignID,
			ServerID:  strings.TrimSpace(in.ServerID),
			ChannelID: strings.TrimSpace(in.ChannelID),
			Name:      name,
			Features:  features,
			CreatedAt: e.now().UTC(),
		}
		if err := repo.CreateCampaign(ctx, setup.Campaign); err != nil {
			if errors.Is(err, storage.ErrAlreadyExists) {
				return apperrors.WrapWithMetadata(apperrors.CodeAlreadyExists, "channel already has a campaign", map[string]string{"Entity": "Campaign"}, err)
			}
			return err
		}

		gmID, err := e.newID()
		if err != nil {
			return err
		}
		setup.GM = storage.Player{
			ID:          gmID,
			CampaignID:  campaignID,
			ExternalID:  strings.TrimSpace(in.GMExternalID),
			DisplayName: strings.TrimSpace(in.GMDisplayName),
			IsGM:        true,
		}
		if err := repo.CreatePlayer(ctx, setup.GM); err != nil {
			return err
		}

		for _, stressName := range stressNames {
			stressID, err := e.newID()
			if err != nil {
				return err
			}
			stressType := storage.StressType{ID: stressID, CampaignID: campaignID, Name: stressName}
			if err := repo.CreateStressType(ctx, stressType); err != nil {
				return err
			}
			setup.StressTypes = append(setup.StressTypes, stressType)
		}
		return nil
	})
	if err != nil {
		return CampaignSetup{}, err
	}
	return setup, nil
}

// GetCampaign returns a campaign by id.
func (e *Engine) GetCampaign(ctx context.Context, campaignID string) (storage.Campaign, error) {
	campaign, err := e.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return storage.Campaign{}, lookupError(err, "Campaign", campaignID)
	}
	return campaign, nil
}

// CampaignForChannel resolves the campaign bound to a server channel.
func (e *Engine) CampaignForChannel(ctx context.Context, serverID, channelID string) (storage.Campaign, error) {
	campaign, err := e.store.GetCampaignByChannel(ctx, serverID, channelID)
	if err != nil {
		return storage.Campaign{}, lookupError(err, "Campaign", serverID+"/"+channelID)
	}
	return campaign, nil
}

// SetFeatures replaces the campaign feature toggles. GM only.
func (e *Engine) SetFeatures(ctx context.Context, actor Actor, features storage.Features) (storage.Campaign, error) {
	var campaign storage.Campaign
	err := e.run(ctx, "SetFeatures", actor, func(s *session) error {
		if err := s.requireGM(); err != nil {
			return err
		}
		if err := s.repo.UpdateCampaignFeatures(s.ctx, s.campaign.ID, features); err != nil {
			return err
		}
		campaign = s.campaign
		campaign.Features = features
		return nil
	})
	return campaign, err
}

// AddPlayerInput describes a player joining a campaign.
type AddPlayerInput struct {
	CampaignID  string `json:"campaign_id"`
	ExternalID  string `json:"external_id"`
	DisplayName string `json:"display_name"`
}

// AddPlayer registers a non-GM player.
func (e *Engine) AddPlayer(ctx context.Context, in AddPlayerInput) (player storage.Player, err error) {
	ctx, finish := e.span(ctx, "AddPlayer", attribute.String("campaign.id", in.CampaignID))
	defer func() { finish(err) }()

	externalID := strings.TrimSpace(in.ExternalID)
	displayName := strings.TrimSpace(in.DisplayName)
	if externalID == "" {
		return storage.Player{}, apperrors.New(apperrors.CodePlayerEmptyExternalID, "player identity is required")
	}
	if displayName == "" {
		return storage.Player{}, apperrors.New(apperrors.CodePlayerEmptyDisplayName, "player display name is required")
	}

	err = e.store.WithinTx(ctx, func(repo storage.Repository) error {
		if _, err := repo.GetCampaign(ctx, in.CampaignID); err != nil {
			return lookupError(err, "Campaign", in.CampaignID)
		}
		playerID, err := e.newID()
		if err != nil {
			return err
		}
		player = storage.Player{ID: playerID, CampaignID: in.CampaignID, ExternalID: externalID, DisplayName: displayName}
		if err := repo.CreatePlayer(ctx, player); err != nil {
			if errors.Is(err, storage.ErrAlreadyExists) {
				return apperrors.WrapWithMetadata(apperrors.CodeAlreadyExists, "player already joined", map[string]string{"Entity": "Player"}, err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return storage.Player{}, err
	}
	return player, nil
}

// SetDelegate grants or revokes GM-level permission. GM only.
func (e *Engine) SetDelegate(ctx context.Context, actor Actor, playerID string, delegate bool) (storage.Player, error) {
	var player storage.Player
	err := e.run(ctx, "SetDelegate", actor, func(s *session) error {
		if err := s.requireGM(); err != nil {
			return err
		}
		target, err := s.player(playerID)
		if err != nil {
			return err
		}
		if err := s.repo.SetPlayerDelegate(s.ctx, target.ID, delegate); err != nil {
			return err
		}
		target.IsDelegate = delegate
		player = target
		return nil
	})
	return player, err
}

// AddStressType adds a stress category. GM only.
func (e *Engine) AddStressType(ctx context.Context, actor Actor, name string) (storage.StressType, error) {
	var stressType storage.StressType
	err := e.run(ctx, "AddStressType", actor, func(s *session) error {
		if err := s.requireGM(); err != nil {
			return err
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return apperrors.New(apperrors.CodeStressTypeEmpty, "stress type name is required")
		}
		stressID, err := s.newID()
		if err != nil {
			return err
		}
		stressType = storage.StressType{ID: stressID, CampaignID: s.campaign.ID, Name: name}
		if err := s.repo.CreateStressType(s.ctx, stressType); err != nil {
			if errors.Is(err, storage.ErrAlreadyExists) {
				return apperrors.WrapWithMetadata(apperrors.CodeAlreadyExists, "stress type already exists", map[string]string{"Entity": "Stress type"}, err)
			}
			return err
		}
		return nil
	})
	return stressType, err
}

// RequestCampaignEnd issues a confirmation grant for deleting the campaign. GM only.
func (e *Engine) RequestCampaignEnd(ctx context.Context, actor Actor) (EndGrant, error) {
	var grant EndGrant
	err := e.run(ctx, "RequestCampaignEnd", actor, func(s *session) error {
		if err := s.requireGM(); err != nil {
			return err
		}
		issued, err := IssueEndGrant(e.grants, s.campaign.ID, s.actor.ID)
		if err != nil {
			return err
		}
		grant = issued
		return nil
	})
	return grant, err
}

// ConfirmCampaignEnd deletes the campaign and every child row once the grant
// checks out. The deletion is not undoable.
func (e *Engine) ConfirmCampaignEnd(ctx context.Context, actor Actor, grant string) error {
	return e.run(ctx, "ConfirmCampaignEnd", actor, func(s *session) error {
		if err := s.requireGM(); err != nil {
			return err
		}
		if err := ValidateEndGrant(e.grants, grant, s.campaign.ID, s.actor.ID); err != nil {
			return err
		}
		return s.repo.DeleteCampaign(s.ctx, s.campaign.ID)
	})
}

// uniqueNames trims names and drops blanks and case-insensitive duplicates.
func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		key := storage.NameKey(name)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}
