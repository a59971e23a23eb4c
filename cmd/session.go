package cmd

import (
	"context"
	"fmt"

	"github.com/iksnae/jarvis/internal"
	"github.com/iksnae/jarvis/internal/genie"
	"github.com/iksnae/jarvis/internal/paramstore"
)

// newBackendClient builds the backend client from the loaded config. A
// token parameter is resolved through SSM on first use.
func newBackendClient(ctx context.Context) (*genie.Client, error) {
	opts := []genie.Option{}
	switch {
	case cfg.Token != "":
		opts = append(opts, genie.WithToken(cfg.Token))
	case cfg.TokenParam != "":
		ps, err := paramstore.NewFromEnvironment(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize parameter store: %w", err)
		}
		opts = append(opts, genie.WithTokenParameter(ps, cfg.TokenParam))
	}

	client, err := genie.New(cfg.BackendURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}
	return client, nil
}

// newSession creates a controller and loads the context set
func newSession(ctx context.Context) (*internal.SessionController, *genie.Client, error) {
	client, err := newBackendClient(ctx)
	if err != nil {
		return nil, nil, err
	}

	opts := []internal.ControllerOption{internal.WithTimeout(cfg.Timeout)}
	if cfg.Context != "" {
		opts = append(opts, internal.WithContext(cfg.Context))
	}
	session, err := internal.NewSessionController(client, opts...)
	if err != nil {
		return nil, nil, err
	}
	session.Init(ctx, client)

	if len(session.Contexts()) == 0 {
		internal.PrintWarning("No business contexts available; prompts are sent without a context")
	}
	return session, client, nil
}

// runPrompts submits prompts in order on one session. Failed exchanges
// show up in the transcript, so only a refused submit is an error.
func runPrompts(ctx context.Context, session *internal.SessionController, prompts []string) error {
	steps := make([]internal.ProgressStep, 0, len(prompts))
	for _, p := range prompts {
		prompt := p
		steps = append(steps, internal.ProgressStep{
			Message: truncate(prompt, 60),
			Fn: func() error {
				if !session.Submit(ctx, prompt) {
					return fmt.Errorf("prompt was not submitted")
				}
				return nil
			},
		})
	}
	return internal.ShowProgressWithSteps(ctx, steps)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
