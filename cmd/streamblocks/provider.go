package main

import (
	"context"
	"fmt"

	"github.com/fwojciec/streamblocks"
	"github.com/fwojciec/streamblocks/anthropic"
	"github.com/fwojciec/streamblocks/gemini"
)

// resolveProvider selects and constructs the provider. All env var values
// are passed in as parameters; env is only read in main().
func resolveProvider(ctx context.Context, providerFlag, apiKeyFlag, model, anthropicEnvKey, geminiEnvKey string) (streamblocks.Provider, error) {
	provider := providerFlag

	if provider == "" {
		hasAnthropic := anthropicEnvKey != ""
		hasGemini := geminiEnvKey != ""
		switch {
		case hasAnthropic && hasGemini:
			return nil, fmt.Errorf("multiple API keys found (ANTHROPIC_API_KEY, GEMINI_API_KEY): use --provider to select")
		case hasAnthropic:
			provider = "anthropic"
		case hasGemini:
			provider = "gemini"
		default:
			return nil, fmt.Errorf("no API key found: set ANTHROPIC_API_KEY or GEMINI_API_KEY (or use --provider and --api-key)")
		}
	}

	key := apiKeyFlag
	switch provider {
	case "anthropic":
		if key == "" {
			key = anthropicEnvKey
		}
		if key == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set (use --api-key or the environment variable)")
		}
		var opts []anthropic.Option
		if model != "" {
			opts = append(opts, anthropic.WithModel(model))
		}
		return anthropic.New(key, opts...), nil
	case "gemini":
		if key == "" {
			key = geminiEnvKey
		}
		if key == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set (use --api-key or the environment variable)")
		}
		var opts []gemini.Option
		if model != "" {
			opts = append(opts, gemini.WithModel(model))
		}
		client, err := gemini.New(ctx, key, opts...)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown provider %q: must be \"anthropic\" or \"gemini\"", provider)
	}
}
