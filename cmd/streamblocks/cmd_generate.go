package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/streamblocks"
	bt "github.com/fwojciec/streamblocks/bubbletea"
	sbjson "github.com/fwojciec/streamblocks/json"
	"github.com/spf13/cobra"
)

func newGenerateCmd(e env, o *options) *cobra.Command {
	var (
		apiKey      string
		prompt      string
		system      string
		maxTokens   int
		temperature float64
		view        bool
	)

	cmd := &cobra.Command{
		Use:   "generate [prompt...]",
		Short: "Stream a model response through the processor",
		Long: `Send a prompt to Anthropic or Gemini and process the streamed response.
The provider is chosen with --provider, or detected from whichever of
ANTHROPIC_API_KEY and GEMINI_API_KEY is set.

Events are printed as JSON lines, or shown in the viewer with --view.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if prompt == "" {
				prompt = strings.Join(args, " ")
			}
			req := streamblocks.Request{
				Model:        o.model,
				SystemPrompt: system,
				Prompt:       prompt,
				MaxTokens:    maxTokens,
			}
			if cmd.Flags().Changed("temperature") {
				req.Temperature = &temperature
			}
			if err := req.Validate(); err != nil {
				return err
			}

			provider, err := resolveProvider(cmd.Context(), o.provider, apiKey, o.model, e.anthropicKey, e.geminiKey)
			if err != nil {
				return err
			}
			s, err := o.newSession(e.stderr)
			if err != nil {
				return err
			}
			run := func(ctx context.Context, onEvent func(streamblocks.Event)) error {
				src, err := provider.Source(ctx, req)
				if err != nil {
					return err
				}
				return streamblocks.Run(ctx, src, s.proc, s.observe(onEvent))
			}

			if view {
				if err := bt.Run(cmd.Context(), bt.New(run, streamblocks.DefaultTheme())); err != nil {
					return fmt.Errorf("viewer: %w", err)
				}
				return s.finish(e.stderr)
			}
			handle, encodeErr := encodeTo(sbjson.NewEncoder(e.stdout))
			runErr := run(cmd.Context(), handle)
			return errors.Join(runErr, encodeErr(), s.finish(e.stderr))
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.provider, "provider", "", "provider: anthropic, gemini (detected from env vars if omitted)")
	f.StringVar(&o.model, "model", "", "model ID (default: provider default)")
	f.StringVar(&apiKey, "api-key", "", "API key (overrides the provider's env var)")
	f.StringVarP(&prompt, "prompt", "p", "", "prompt text (default: the arguments)")
	f.StringVar(&system, "system", "", "system prompt")
	f.IntVar(&maxTokens, "max-tokens", 0, "maximum output tokens (default: provider default)")
	f.Float64Var(&temperature, "temperature", 0, "sampling temperature in [0, 2]")
	f.BoolVar(&view, "view", false, "show the response in the terminal viewer")
	return cmd
}
