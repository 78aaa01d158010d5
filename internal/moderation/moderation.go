// Package moderation screens user-supplied text through an external
// moderation API. The Client interface is injected wherever screening is
// needed so tests and unconfigured deployments can substitute Disabled.
package moderation

import (
	"context"

	"github.com/glimmerhub/keyset/internal/config"
)

// Result is the verdict for one piece of text.
type Result struct {
	// Flagged is true when the text violates at least one category.
	Flagged bool `json:"flagged"`
	// Categories lists the violated category names, empty when not flagged.
	Categories []string `json:"categories"`
}

// Client screens text for policy violations.
type Client interface {
	Moderate(ctx context.Context, text string) (*Result, error)
}

// New creates a Client based on the config. Returns Disabled when no
// moderation URL is configured, meaning all text passes.
func New(cfg *config.Config) Client {
	if cfg.Moderation.URL == "" {
		return Disabled{}
	}

	return newHTTPClient(cfg)
}

// Disabled is a no-op Client that never flags anything.
type Disabled struct{}

func (Disabled) Moderate(_ context.Context, _ string) (*Result, error) {
	return &Result{}, nil
}
