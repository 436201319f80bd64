package storage

import (
	"strings"

	"golang.org/x/text/cases"
)

// NameKey folds a display name into the key used for case-insensitive
// uniqueness, so "Physical" and "PHYSICAL" collide.
func NameKey(name string) string {
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}
