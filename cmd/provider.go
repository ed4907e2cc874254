package cmd

import (
	"context"
	"fmt"

	"github.com/lehigh-university-libraries/carcustomizer/internal/config"
	"github.com/lehigh-university-libraries/carcustomizer/internal/gemini"
	"github.com/lehigh-university-libraries/carcustomizer/internal/openai"
	"github.com/lehigh-university-libraries/carcustomizer/internal/providers"
	"github.com/lehigh-university-libraries/carcustomizer/internal/relay"
	"github.com/spf13/pflag"
)

// newEditor builds the remote edit binding selected by cfg. The returned
// close func releases any client the binding holds.
func newEditor(ctx context.Context, cfg *config.Config) (providers.Editor, func() error, error) {
	pc := cfg.ProviderConfig()
	noop := func() error { return nil }

	switch cfg.Provider {
	case config.ProviderGemini:
		g, err := gemini.New(ctx, pc)
		if err != nil {
			return nil, nil, err
		}
		return g, g.Close, nil
	case config.ProviderOpenAI:
		o, err := openai.New(pc)
		if err != nil {
			return nil, nil, err
		}
		return o, noop, nil
	case config.ProviderRelay:
		c := relay.New(pc.BaseURL)
		if pc.Timeout > 0 {
			c.HTTPClient.Timeout = pc.Timeout
		}
		return c, noop, nil
	}
	return nil, nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}

// addProviderFlags registers the flags config.Load reads for the remote edit binding
func addProviderFlags(fs *pflag.FlagSet) {
	fs.String("provider", "", "Remote edit provider (gemini, relay, or openai; default $PROVIDER or gemini)")
	fs.String("model", "", "Model name (defaults to the provider's default)")
	fs.String("relay-url", "", "Base URL of a carcustomizer relay (default $RELAY_URL)")
}
