package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/cortex.space/internal/platform/errors"
	"github.com/louisbranch/cortex.space/internal/platform/id"
	"github.com/louisbranch/cortex.space/internal/random"
	"github.com/louisbranch/cortex.space/internal/services/cortex/storage"
	"github.com/louisbranch/cortex.space/internal/services/cortex/undo"
)

const tracerName = "github.com/louisbranch/cortex.space/internal/services/cortex/engine"

// Actor identifies who issues a command: the campaign it targets and the
// caller's external identity.
type Actor struct {
	CampaignID string `json:"campaign_id"`
	ExternalID string `json:"actor_id"`
}

// Engine executes campaign operations against a Store.
type Engine struct {
	store   storage.Store
	rules   Rules
	grants  EndGrantConfig
	now     func() time.Time
	newID   func() (string, error)
	newSeed random.Source
	tracer  trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithRules sets the preset used for new campaigns.
func WithRules(rules Rules) Option {
	return func(e *Engine) { e.rules = rules }
}

// WithEndGrants sets campaign-end grant signing.
func WithEndGrants(cfg EndGrantConfig) Option {
	return func(e *Engine) { e.grants = cfg }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(e *Engine) {
		if newID != nil {
			e.newID = newID
		}
	}
}

// WithSeedSource overrides roll seeding.
func WithSeedSource(newSeed random.Source) Option {
	return func(e *Engine) {
		if newSeed != nil {
			e.newSeed = newSeed
		}
	}
}

// New builds an Engine over store.
func New(store storage.Store, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	e := &Engine{
		store:   store,
		rules:   DefaultRules(),
		now:     time.Now,
		newID:   id.NewID,
		newSeed: random.NewSeed,
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.grants.Now == nil {
		e.grants.Now = e.now
	}
	return e, nil
}

// session is the transaction-scoped view of one command.
type session struct {
	ctx      context.Context
	engine   *Engine
	repo     storage.Repository
	campaign storage.Campaign
	actor    storage.Player
}

// span starts a trace span for op and returns a finish func recording err.
func (e *Engine) span(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := e.tracer.Start(ctx, "cortex.engine."+op, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// run resolves actor inside a transaction and runs fn against it.
func (e *Engine) run(ctx context.Context, op string, actor Actor, fn func(*session) error) (err error) {
	ctx, finish := e.span(ctx, op, attribute.String("campaign.id", actor.CampaignID))
	defer func() { finish(err) }()

	return e.store.WithinTx(ctx, func(repo storage.Repository) error {
		campaign, err := repo.GetCampaign(ctx, actor.CampaignID)
		if err != nil {
			return lookupError(err, "Campaign", actor.CampaignID)
		}
		player, err := repo.GetPlayerByExternalID(ctx, campaign.ID, strings.TrimSpace(actor.ExternalID))
		if err != nil {
			return lookupError(err, "Player", actor.ExternalID)
		}
		return fn(&session{ctx: ctx, engine: e, repo: repo, campaign: campaign, actor: player})
	})
}

func (s *session) requireGM() error {
	if s.actor.CanGM() {
		return nil
	}
	return apperrors.New(apperrors.CodePermissionDenied, "gm permission required")
}

func (s *session) requireFeature(name string, enabled bool) error {
	if enabled {
		return nil
	}
	return apperrors.WithMetadata(apperrors.CodeFeatureDisabled, name+" feature is disabled", map[string]string{"Feature": name})
}

func (s *session) now() time.Time {
	return s.engine.now().UTC()
}

func (s *session) newID() (string, error) {
	return s.engine.newID()
}

// player loads a campaign member by id.
func (s *session) player(playerID string) (storage.Player, error) {
	player, err := s.repo.GetPlayer(s.ctx, playerID)
	if err != nil {
		return storage.Player{}, lookupError(err, "Player", playerID)
	}
	if err := s.owns("Player", player.CampaignID); err != nil {
		return storage.Player{}, err
	}
	return player, nil
}

// activeScene returns the active scene, or ok false when none is running.
func (s *session) activeScene() (storage.Scene, bool, error) {
	scene, err := s.repo.GetActiveScene(s.ctx, s.campaign.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return storage.Scene{}, false, nil
	}
	if err != nil {
		return storage.Scene{}, false, err
	}
	return scene, true, nil
}

func (s *session) owns(entity, campaignID string) error {
	if campaignID == s.campaign.ID {
		return nil
	}
	return apperrors.WithMetadata(apperrors.CodeTraitOwnerMismatch, entity+" belongs to another campaign", map[string]string{"Entity": entity})
}

// write applies forward instructions and logs inverse as one action.
func (s *session) write(actionType, description string, inverse undo.Instruction, forward ...undo.Instruction) (int64, error) {
	for _, ins := range forward {
		if err := s.repo.Apply(s.ctx, ins); err != nil {
			return 0, fmt.Errorf("%s: %w", actionType, err)
		}
	}
	seq, err := s.repo.AppendAction(s.ctx, storage.ActionLogEntry{
		CampaignID:  s.campaign.ID,
		ActorID:     s.actor.ID,
		ActionType:  actionType,
		Description: description,
		Inverse:     inverse,
		CreatedAt:   s.now(),
	})
	if err != nil {
		return 0, fmt.Errorf("%s: record action: %w", actionType, err)
	}
	return seq, nil
}

// lookupError maps storage.ErrNotFound to a NOT_FOUND domain error naming entity.
func lookupError(err error, entity, id string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.WrapWithMetadata(
			apperrors.CodeNotFound,
			fmt.Sprintf("%s %q not found", strings.ToLower(entity), id),
			map[string]string{"Entity": entity, "ID": id},
			err,
		)
	}
	return err
}

func requireName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.New(apperrors.CodeTraitNameEmpty, "name is required")
	}
	return name, nil
}

func parseDuration(value storage.Duration) (storage.Duration, error) {
	if value == "" {
		return storage.DurationScene, nil
	}
	normalized := storage.Duration(strings.ToLower(strings.TrimSpace(string(value))))
	if !normalized.Valid() {
		return "", apperrors.WithMetadata(apperrors.CodeTraitInvalidDuration, "invalid duration", map[string]string{"Value": string(value)})
	}
	return normalized, nil
}
