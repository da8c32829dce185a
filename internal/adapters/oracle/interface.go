package oracle

import "context"

// Provider represents the transport to an advisory oracle (LLM)
type Provider interface {
	// Complete sends a system/user prompt pair and returns the raw reply text
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// GetName returns provider name
	GetName() string

	// IsEnabled returns whether provider is enabled
	IsEnabled() bool
}
