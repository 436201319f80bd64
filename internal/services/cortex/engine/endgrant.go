package engine

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/cortex.space/internal/platform/errors"
	"github.com/louisbranch/cortex.space/internal/platform/id"
)

const endGrantIssuer = "cortex.space"

// EndGrantConfig defines how campaign-end confirmation grants are signed.
type EndGrantConfig struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

// EndGrant is a short-lived token that must be echoed back to delete a campaign.
type EndGrant struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type endGrantClaims struct {
	jwt.RegisteredClaims
	CampaignID string `json:"campaign_id"`
	PlayerID   string `json:"player_id"`
}

// IssueEndGrant signs a grant binding campaignID to the requesting player.
func IssueEndGrant(cfg EndGrantConfig, campaignID, playerID string) (EndGrant, error) {
	if len(cfg.Secret) == 0 {
		return EndGrant{}, errors.New("end grant secret is not configured")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	jti, err := id.NewID()
	if err != nil {
		return EndGrant{}, err
	}
	now := cfg.Now().UTC().Truncate(time.Second)
	expiresAt := now.Add(cfg.TTL)
	claims := endGrantClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    endGrantIssuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jti,
		},
		CampaignID: campaignID,
		PlayerID:   playerID,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.Secret)
	if err != nil {
		return EndGrant{}, err
	}
	return EndGrant{Token: token, ExpiresAt: expiresAt}, nil
}

// ValidateEndGrant verifies a grant token against the campaign and player
// attempting the confirmation.
func ValidateEndGrant(cfg EndGrantConfig, grant, campaignID, playerID string) error {
	grant = strings.TrimSpace(grant)
	if grant == "" {
		return apperrors.New(apperrors.CodeCampaignEndGrantInvalid, "end grant is required")
	}
	if len(cfg.Secret) == 0 {
		return errors.New("end grant secret is not configured")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	var parsed endGrantClaims
	_, err := jwt.ParseWithClaims(grant, &parsed, func(token *jwt.Token) (any, error) {
		return cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return mapJWTError(err)
	}

	if parsed.Issuer != endGrantIssuer {
		return apperrors.WithMetadata(apperrors.CodeCampaignEndGrantMismatch, "end grant issuer mismatch", map[string]string{"Field": "issuer"})
	}
	if parsed.ExpiresAt == nil {
		return apperrors.New(apperrors.CodeCampaignEndGrantInvalid, "end grant exp is required")
	}
	if !parsed.ExpiresAt.Time.After(cfg.Now().UTC()) {
		return apperrors.New(apperrors.CodeCampaignEndGrantExpired, "end grant is expired")
	}
	if parsed.CampaignID == "" || parsed.CampaignID != campaignID {
		return apperrors.WithMetadata(apperrors.CodeCampaignEndGrantMismatch, "end grant campaign mismatch", map[string]string{"Field": "campaign"})
	}
	if parsed.PlayerID == "" || parsed.PlayerID != playerID {
		return apperrors.WithMetadata(apperrors.CodeCampaignEndGrantMismatch, "end grant player mismatch", map[string]string{"Field": "player"})
	}
	return nil
}

func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		return apperrors.New(apperrors.CodeCampaignEndGrantInvalid, "end grant signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeCampaignEndGrantInvalid, "end grant alg is invalid")
	}
	return apperrors.New(apperrors.CodeCampaignEndGrantInvalid, "end grant is invalid")
}
