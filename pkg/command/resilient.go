package command

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
)

// sshConnectionFailure is the status ssh and scp use when the connection
// itself failed, as opposed to the remote command failing.
const sshConnectionFailure = 255

// ResilientConfig tunes ResilientRunner.
type ResilientConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Timeout      time.Duration
}

// DefaultResilientConfig returns the settings used by the CLI.
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		Timeout:      5 * time.Minute,
	}
}

// ResilientRunner retries connection failures and bounds every call with a timeout.
type ResilientRunner struct {
	inner Runner
	cfg   ResilientConfig
}

func NewResilientRunner(inner Runner, cfg ResilientConfig) *ResilientRunner {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultResilientConfig().Timeout
	}
	return &ResilientRunner{inner: inner, cfg: cfg}
}

func (r *ResilientRunner) Run(ctx context.Context, name string, args ...string) (Output, error) {
	rt := retry.New[Output](retry.Config{
		MaxAttempts:   r.cfg.MaxAttempts,
		InitialDelay:  r.cfg.InitialDelay,
		BackoffPolicy: retry.BackoffExponential,
	})
	t := timeout.New[Output](timeout.Config{
		DefaultTimeout: r.cfg.Timeout,
	})

	// Errors other than connection failures must not be retried; they are
	// carried out of the retry loop here.
	var (
		mu        sync.Mutex
		permanent error
	)
	out, err := t.Execute(ctx, r.cfg.Timeout, func(ctx context.Context) (Output, error) {
		return rt.Do(ctx, func(ctx context.Context) (Output, error) {
			out, err := r.inner.Run(ctx, name, args...)
			mu.Lock()
			defer mu.Unlock()
			if err != nil && !Retryable(err) {
				permanent = err
				return out, nil
			}
			permanent = nil
			return out, err
		})
	})
	if err != nil {
		return out, err
	}
	mu.Lock()
	defer mu.Unlock()
	return out, permanent
}

// Retryable reports whether err looks like a transient ssh connection failure.
func Retryable(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Code == sshConnectionFailure
}
