// Package extraction pulls tender fields out of document text using an LLM
// collaborator. Answers come back as free text; the normalize package owns
// turning them into typed values.
package extraction

import (
	"context"
	"fmt"

	"github.com/atlas-conseil/tenderflow/internal/common"
)

// Client defines the interface for extraction providers.
type Client interface {
	// ExtractField asks one question about the document text and returns
	// the provider's answer verbatim. A field the provider cannot find is
	// answered with the "Non spécifié" sentinel, not an error.
	ExtractField(ctx context.Context, field, prompt, document string) (string, error)
}

// Config holds extraction client configuration.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
}

// NewClient creates an extraction client based on the configured provider.
func NewClient(cfg Config) (Client, error) {
	switch cfg.Provider {
	case "", "openai":
		return newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown extraction provider %q", common.ErrInvalidConfig, cfg.Provider)
	}
}
