package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeDieSizeInvalid           = "DIE_SIZE_INVALID"
	CodeDiceNotFound             = "DICE_NOT_FOUND"
	CodeDiceMissing              = "DICE_MISSING"
	CodeDicePoolLimit            = "DICE_POOL_LIMIT"
	CodeCampaignNameEmpty        = "CAMPAIGN_NAME_EMPTY"
	CodeCampaignChannelRequired  = "CAMPAIGN_CHANNEL_REQUIRED"
	CodeCampaignStressTypes      = "CAMPAIGN_STRESS_TYPES_REQUIRED"
	CodeCampaignEndGrantInvalid  = "CAMPAIGN_END_GRANT_INVALID"
	CodeCampaignEndGrantExpired  = "CAMPAIGN_END_GRANT_EXPIRED"
	CodeCampaignEndGrantMismatch = "CAMPAIGN_END_GRANT_MISMATCH"
	CodePlayerEmptyDisplayName   = "PLAYER_EMPTY_DISPLAY_NAME"
	CodePlayerEmptyExternalID    = "PLAYER_EMPTY_EXTERNAL_ID"
	CodePermissionDenied         = "PERMISSION_DENIED"
	CodeTraitNameEmpty           = "TRAIT_NAME_EMPTY"
	CodeTraitInvalidDuration     = "TRAIT_INVALID_DURATION"
	CodeTraitOwnerMismatch       = "TRAIT_OWNER_MISMATCH"
	CodeStressTypeEmpty          = "STRESS_TYPE_EMPTY"
	CodeFeatureDisabled          = "FEATURE_DISABLED"
	CodeActiveSceneExists        = "ACTIVE_SCENE_EXISTS"
	CodeNoActiveScene            = "NO_ACTIVE_SCENE"
	CodeNotFound                 = "NOT_FOUND"
	CodeAlreadyExists            = "ALREADY_EXISTS"
	CodeNothingToUndo            = "NOTHING_TO_UNDO"
	CodeUndoDisallowed           = "UNDO_DISALLOWED"
)

var enUSMessages = map[Code]string{
	CodeDieSizeInvalid:           "Invalid die size: {{.Value}}. Valid sizes are {{.Valid}}.",
	CodeDiceNotFound:             "No dice found. Use notation like 1d8 2d6.",
	CodeDiceMissing:              "At least one die is required.",
	CodeDicePoolLimit:            "A pool can hold at most {{.Max}} dice.",
	CodeCampaignNameEmpty:        "Campaign name is required.",
	CodeCampaignChannelRequired:  "A campaign must be bound to a server and channel.",
	CodeCampaignStressTypes:      "A campaign needs at least one stress type.",
	CodeCampaignEndGrantInvalid:  "The campaign end confirmation is not valid.",
	CodeCampaignEndGrantExpired:  "The campaign end confirmation has expired. Request a new one.",
	CodeCampaignEndGrantMismatch: "The campaign end confirmation does not match this {{.Field}}.",
	CodePlayerEmptyDisplayName:   "Player name is required.",
	CodePlayerEmptyExternalID:    "Player identity is required.",
	CodePermissionDenied:         "Only the GM or a delegate can do that.",
	CodeTraitNameEmpty:           "A name is required.",
	CodeTraitInvalidDuration:     "Duration must be scene or session, got {{.Value}}.",
	CodeTraitOwnerMismatch:       "{{.Entity}} does not belong to this campaign.",
	CodeStressTypeEmpty:          "Stress type name is required.",
	CodeFeatureDisabled:          "The {{.Feature}} feature is disabled for this campaign.",
	CodeActiveSceneExists:        "A scene is already active. End it first.",
	CodeNoActiveScene:            "There is no active scene.",
	CodeNotFound:                 "{{.Entity}} not found.",
	CodeAlreadyExists:            "{{.Entity}} already exists.",
	CodeNothingToUndo:            "Nothing to undo.",
	CodeUndoDisallowed:           "The undo log entry is not allowed to run.",
}
