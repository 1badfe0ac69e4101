package leaderboard

import (
	"github.com/okian/runboard/pkg/logger"
)

// Policy decides how a 400 without a fallback category is shown.
type Policy string

// Bad-request policies.
const (
	// PolicySilent shows an empty leaderboard.
	PolicySilent Policy = "silent"
	// PolicySurface shows the upstream message as an error.
	PolicySurface Policy = "surface"
)

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithPageSize sets the number of runs per page.
func WithPageSize(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.pageSize = n
		}
	}
}

// WithBadRequestPolicy selects the policy for unrecoverable 400s.
func WithBadRequestPolicy(p Policy) Option {
	return func(l *Loader) {
		if p == PolicySilent || p == PolicySurface {
			l.policy = p
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(lg logger.Logger) Option {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}
