package repository

import (
	"context"
	"time"
)

// CredentialStore holds the AI collaborator's API key.
// APIKey returns domain.ErrCredentialMissing when no key is available.
type CredentialStore interface {
	APIKey(ctx context.Context) (string, error)
	SetAPIKey(ctx context.Context, key string) error
	ClearAPIKey(ctx context.Context) error
}

// SuggestionCache remembers AI responses for identical prompts.
type SuggestionCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
