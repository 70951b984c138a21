// Package gateway is the single choke point for all model calls. It tries
// providers in fixed priority order and serializes calls to the primary,
// which is subject to a hard external rate limit.
package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/insighter-hq/researcher/pkg/anthropic"
	"github.com/insighter-hq/researcher/pkg/perplexity"
)

// ErrAllProvidersFailed is returned when every configured provider failed
// for a single call. Callers supply their own fallback policy.
var ErrAllProvidersFailed = eris.New("gateway: all providers failed")

// Provider is one tier of the LLM fallback chain.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Gateway routes prompts through the provider chain. Construct once and
// pass explicitly to every stage; the mutex and pacing limiter are
// process-wide state for the primary provider.
type Gateway struct {
	providers []Provider

	primaryMu sync.Mutex
	pacer     *rate.Limiter
}

// New creates a Gateway. Providers are tried in the given order; the
// first is treated as the rate-limited primary. pacing is the fixed delay
// enforced before each primary call (zero disables pacing).
func New(providers []Provider, pacing time.Duration) *Gateway {
	g := &Gateway{providers: providers}
	if pacing > 0 {
		g.pacer = rate.NewLimiter(rate.Every(pacing), 1)
		// The limiter starts with a full token; the delay must apply to
		// the first call too.
		g.pacer.Allow()
	}
	return g
}

// Complete sends the prompt to the first provider that answers. Provider
// failures are logged and swallowed; only when the whole chain fails does
// the caller see an error. There is no cross-provider retry loop: each
// provider gets exactly one attempt per call.
func (g *Gateway) Complete(ctx context.Context, prompt string) (string, error) {
	for i, p := range g.providers {
		if err := ctx.Err(); err != nil {
			return "", eris.Wrap(err, "gateway: canceled")
		}

		var text string
		var err error
		if i == 0 {
			text, err = g.completePrimary(ctx, p, prompt)
		} else {
			text, err = p.Complete(ctx, prompt)
		}

		if err != nil {
			zap.L().Warn("gateway: provider call failed, trying next tier",
				zap.String("provider", p.Name()),
				zap.Error(err),
			)
			continue
		}
		return text, nil
	}

	return "", ErrAllProvidersFailed
}

// completePrimary holds the primary serialization lock for the duration
// of the call and waits out the pacing interval before dispatching.
func (g *Gateway) completePrimary(ctx context.Context, p Provider, prompt string) (string, error) {
	g.primaryMu.Lock()
	defer g.primaryMu.Unlock()

	if g.pacer != nil {
		if err := g.pacer.Wait(ctx); err != nil {
			return "", eris.Wrap(err, "gateway: pacing wait")
		}
	}
	return p.Complete(ctx, prompt)
}

// anthropicProvider adapts the Anthropic client to the Provider interface.
type anthropicProvider struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicProvider wraps an Anthropic client as a gateway provider.
func NewAnthropicProvider(client anthropic.Client, model string, maxTokens int64) Provider {
	return &anthropicProvider{client: client, model: model, maxTokens: maxTokens}
}

func (p *anthropicProvider) Name() string { return "anthropic" }

func (p *anthropicProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// perplexityProvider adapts the Perplexity client to the Provider interface.
type perplexityProvider struct {
	client perplexity.Client
}

// NewPerplexityProvider wraps a Perplexity client as a gateway provider.
func NewPerplexityProvider(client perplexity.Client) Provider {
	return &perplexityProvider{client: client}
}

func (p *perplexityProvider) Name() string { return "perplexity" }

func (p *perplexityProvider) Complete(ctx context.Context, prompt string) (string, error) {
	return p.client.Complete(ctx, prompt)
}
