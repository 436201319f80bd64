package engine

import (
	"fmt"
	"strings"

	"github.com/louisbranch/cortex.space/internal/platform/config"
	"github.com/louisbranch/cortex.space/internal/services/cortex/storage"
)

// Rules is the preset applied to new campaigns that do not specify their own
// stress types or features.
type Rules struct {
	StressTypes []string         `toml:"stress_types"`
	Features    storage.Features `toml:"features"`
}

// DefaultRules mirrors the Cortex Prime core stress vocabulary.
func DefaultRules() Rules {
	return Rules{
		StressTypes: []string{"Physical", "Mental", "Social"},
		Features:    storage.Features{BestMode: true},
	}
}

// LoadRules reads a TOML preset over the defaults. A blank or missing path
// keeps the defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if err := config.LoadTOML(path, &rules); err != nil {
		return Rules{}, fmt.Errorf("load rules: %w", err)
	}
	names := make([]string, 0, len(rules.StressTypes))
	for _, name := range rules.StressTypes {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return Rules{}, fmt.Errorf("load rules: at least one stress type is required")
	}
	rules.StressTypes = names
	return rules, nil
}
