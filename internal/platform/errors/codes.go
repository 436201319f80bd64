// Package errors provides structured error handling with i18n support.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Dice errors
	CodeDieSizeInvalid Code = "DIE_SIZE_INVALID"
	CodeDiceNotFound   Code = "DICE_NOT_FOUND"
	CodeDiceMissing    Code = "DICE_MISSING"
	CodeDicePoolLimit  Code = "DICE_POOL_LIMIT"

	// Campaign errors
	CodeCampaignNameEmpty        Code = "CAMPAIGN_NAME_EMPTY"
	CodeCampaignChannelRequired  Code = "CAMPAIGN_CHANNEL_REQUIRED"
	CodeCampaignStressTypes      Code = "CAMPAIGN_STRESS_TYPES_REQUIRED"
	CodeCampaignEndGrantInvalid  Code = "CAMPAIGN_END_GRANT_INVALID"
	CodeCampaignEndGrantExpired  Code = "CAMPAIGN_END_GRANT_EXPIRED"
	CodeCampaignEndGrantMismatch Code = "CAMPAIGN_END_GRANT_MISMATCH"

	// Player errors
	CodePlayerEmptyDisplayName Code = "PLAYER_EMPTY_DISPLAY_NAME"
	CodePlayerEmptyExternalID  Code = "PLAYER_EMPTY_EXTERNAL_ID"
	CodePermissionDenied       Code = "PERMISSION_DENIED"

	// Trait errors
	CodeTraitNameEmpty       Code = "TRAIT_NAME_EMPTY"
	CodeTraitInvalidDuration Code = "TRAIT_INVALID_DURATION"
	CodeTraitOwnerMismatch   Code = "TRAIT_OWNER_MISMATCH"
	CodeStressTypeEmpty      Code = "STRESS_TYPE_EMPTY"
	CodeFeatureDisabled      Code = "FEATURE_DISABLED"

	// Scene errors
	CodeActiveSceneExists Code = "ACTIVE_SCENE_EXISTS"
	CodeNoActiveScene     Code = "NO_ACTIVE_SCENE"

	// Storage errors
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"

	// Undo errors
	CodeNothingToUndo  Code = "NOTHING_TO_UNDO"
	CodeUndoDisallowed Code = "UNDO_DISALLOWED"
)

// Recoverable reports whether a caller can fix the failure by changing its
// input. Undo safety violations are the only codes that are not.
func (c Code) Recoverable() bool {
	switch c {
	case CodeUndoDisallowed, CodeUnknown:
		return false
	default:
		return true
	}
}
