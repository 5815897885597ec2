package chat

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const generatorMaxTries = 2 // one call plus a single retry

// retryable is implemented by generator errors that know whether a retry can help.
type retryable interface {
	Retryable() bool
}

// ResilientGenerator bounds every call to a Generator with a timeout
// and retries a failed call once after a jittered backoff.
type ResilientGenerator struct {
	next    Generator
	timeout time.Duration
	wait    time.Duration
}

var _ Generator = (*ResilientGenerator)(nil)

func NewResilientGenerator(next Generator, timeout, wait time.Duration) *ResilientGenerator {
	return &ResilientGenerator{next: next, timeout: timeout, wait: wait}
}

func (g *ResilientGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.wait
	b.RandomizationFactor = 0.5
	b.MaxInterval = 4 * g.wait

	attempt := func() (string, error) {
		actx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		text, err := g.next.Generate(actx, prompt)
		if err != nil {
			if r, ok := err.(retryable); ok && !r.Retryable() {
				return "", backoff.Permanent(err)
			}
			return "", err
		}
		return text, nil
	}
	return backoff.Retry(ctx, attempt, backoff.WithBackOff(b), backoff.WithMaxTries(generatorMaxTries))
}
