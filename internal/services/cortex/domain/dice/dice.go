// Package dice implements the Cortex Prime die ladder: size validation,
// notation parsing, and stepping dice up or down one size.
package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/cortex.space/internal/platform/errors"
)

// ladder is the ordered set of legal die sizes.
var ladder = [...]int{4, 6, 8, 10, 12}

const (
	// Min is the smallest die on the ladder.
	Min = 4
	// Max is the largest die on the ladder.
	Max = 12
	// MaxPool caps how many dice one notation string may expand to.
	MaxPool = 100
)

// ErrInvalidDieSize matches any error reporting a size outside the ladder.
var ErrInvalidDieSize = apperrors.New(apperrors.CodeDieSizeInvalid, "invalid die size")

// ErrNoDiceFound indicates notation contained no recognizable dice.
var ErrNoDiceFound = apperrors.New(apperrors.CodeDiceNotFound, "no dice found")

// ErrPoolTooLarge indicates notation asked for more than MaxPool dice.
var ErrPoolTooLarge = apperrors.New(apperrors.CodeDicePoolLimit, "dice pool too large")

var notationToken = regexp.MustCompile(`(?i)^(\d*)d(\d+)$`)

// Sizes returns the ladder in ascending order.
func Sizes() []int {
	out := make([]int, len(ladder))
	copy(out, ladder[:])
	return out
}

// IsValidSize reports whether n is one of 4, 6, 8, 10 or 12.
func IsValidSize(n int) bool {
	return position(n) >= 0
}

// StepUp returns the next larger size. ok is false when size is already the
// largest die or not on the ladder.
func StepUp(size int) (int, bool) {
	i := position(size)
	if i < 0 || i == len(ladder)-1 {
		return 0, false
	}
	return ladder[i+1], true
}

// StepDown returns the next smaller size. ok is false when size is the
// smallest die (the trait is eliminated) or not on the ladder.
func StepDown(size int) (int, bool) {
	i := position(size)
	if i <= 0 {
		return 0, false
	}
	return ladder[i-1], true
}

// Label renders a size as "d8".
func Label(size int) string {
	return "d" + strconv.Itoa(size)
}

// ParseNotation expands whitespace-separated tokens like "2d6 d8 1D10" into
// one size per die. Tokens that are not dice notation are ignored. The
// expansion is capped at MaxPool dice.
func ParseNotation(text string) ([]int, error) {
	var sizes []int
	matched := false
	for _, token := range strings.Fields(text) {
		parts := notationToken.FindStringSubmatch(token)
		if parts == nil {
			continue
		}
		matched = true
		count := 1
		if parts[1] != "" {
			n, err := strconv.Atoi(parts[1])
			if err != nil || n > MaxPool {
				return nil, poolTooLarge()
			}
			count = n
		}
		size, err := strconv.Atoi(parts[2])
		if err != nil || !IsValidSize(size) {
			return nil, invalidSize("d" + parts[2])
		}
		if len(sizes)+count > MaxPool {
			return nil, poolTooLarge()
		}
		for i := 0; i < count; i++ {
			sizes = append(sizes, size)
		}
	}
	if !matched || len(sizes) == 0 {
		return nil, ErrNoDiceFound
	}
	return sizes, nil
}

// ParseSingle parses one die size such as "8", "d8" or " D8 ".
func ParseSingle(text string) (int, error) {
	trimmed := strings.TrimSpace(text)
	raw := trimmed
	if strings.HasPrefix(raw, "d") || strings.HasPrefix(raw, "D") {
		raw = raw[1:]
	}
	size, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || !IsValidSize(size) {
		return 0, invalidSize(trimmed)
	}
	return size, nil
}

// Validate returns ErrInvalidDieSize-compatible errors for sizes off the ladder.
func Validate(size int) error {
	if IsValidSize(size) {
		return nil
	}
	return invalidSize(Label(size))
}

func position(n int) int {
	for i, size := range ladder {
		if size == n {
			return i
		}
	}
	return -1
}

func poolTooLarge() error {
	limit := strconv.Itoa(MaxPool)
	return apperrors.WithMetadata(
		apperrors.CodeDicePoolLimit,
		"dice pool exceeds "+limit+" dice",
		map[string]string{"Max": limit},
	)
}

func invalidSize(value string) error {
	labels := make([]string, len(ladder))
	for i, size := range ladder {
		labels[i] = Label(size)
	}
	valid := strings.Join(labels, ", ")
	return apperrors.WithMetadata(
		apperrors.CodeDieSizeInvalid,
		fmt.Sprintf("invalid die size %s: valid sizes are %s", value, valid),
		map[string]string{"Value": value, "Valid": valid},
	)
}
