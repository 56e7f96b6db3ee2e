package constants

import "time"

// Context keys
const (
	ContextKeyUserID         = "user_id"
	ContextKeyClaims         = "claims"
	ContextKeyOrganizationID = "organization_id"
	ContextKeyOrganization   = "organization"
	ContextKeyProject        = "project"
	ContextKeyTask           = "task"
)

// Auth
const (
	MinPasswordLength = 6
	DefaultTokenTTL   = 2 * time.Hour
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Organizations
const (
	// MaxInviteKeyAttempts bounds how many fresh invite keys onboarding tries
	// before reporting a conflict.
	MaxInviteKeyAttempts = 5
)

// Projects
const (
	ProjectSearchLimit = 10
)

// Push channel
const (
	DefaultPushBufferSize = 32
)

// AI
const (
	MaxAIGeneratedTasks = 20
)
