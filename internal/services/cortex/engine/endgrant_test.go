package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/cortex.space/internal/platform/errors"
)

func TestEndGrantRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 3, 20, 0, 0, 0, time.UTC)
	cfg := EndGrantConfig{Secret: []byte("secret"), TTL: 2 * time.Minute, Now: func() time.Time { return now }}

	grant, err := IssueEndGrant(cfg, "camp-1", "gm-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !grant.ExpiresAt.Equal(now.Add(2 * time.Minute)) {
		t.Fatalf("expires at = %v, want %v", grant.ExpiresAt, now.Add(2*time.Minute))
	}
	if err := ValidateEndGrant(cfg, grant.Token, "camp-1", "gm-1"); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateEndGrantRejects(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 3, 20, 0, 0, 0, time.UTC)
	cfg := EndGrantConfig{Secret: []byte("secret"), TTL: time.Minute, Now: func() time.Time { return now }}
	grant, err := IssueEndGrant(cfg, "camp-1", "gm-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	later := cfg
	later.Now = func() time.Time { return now.Add(time.Minute) }
	otherKey := cfg
	otherKey.Secret = []byte("other")

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Issuer: endGrantIssuer}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	cases := []struct {
		name     string
		cfg      EndGrantConfig
		token    string
		campaign string
		player   string
		want     apperrors.Code
	}{
		{"empty", cfg, "  ", "camp-1", "gm-1", apperrors.CodeCampaignEndGrantInvalid},
		{"garbage", cfg, "abc.def.ghi", "camp-1", "gm-1", apperrors.CodeCampaignEndGrantInvalid},
		{"bad signature", otherKey, grant.Token, "camp-1", "gm-1", apperrors.CodeCampaignEndGrantInvalid},
		{"alg none", cfg, unsigned, "camp-1", "gm-1", apperrors.CodeCampaignEndGrantInvalid},
		{"expired", later, grant.Token, "camp-1", "gm-1", apperrors.CodeCampaignEndGrantExpired},
		{"other campaign", cfg, grant.Token, "camp-2", "gm-1", apperrors.CodeCampaignEndGrantMismatch},
		{"other player", cfg, grant.Token, "camp-1", "gm-2", apperrors.CodeCampaignEndGrantMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateEndGrant(tc.cfg, tc.token, tc.campaign, tc.player)
			if got := apperrors.CodeOf(err); got != tc.want {
				t.Fatalf("code = %s (%v), want %s", got, err, tc.want)
			}
		})
	}
}

func TestIssueEndGrantRequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := IssueEndGrant(EndGrantConfig{}, "camp-1", "gm-1")
	if err == nil || !strings.Contains(err.Error(), "secret") {
		t.Fatalf("error = %v, want missing secret", err)
	}
}
