package catalog

import "github.com/okian/runboard/pkg/logger"

// Option applies a configuration option to the Catalog.
type Option func(*Catalog)

// WithPageSize sets how many games each fetch asks for.
func WithPageSize(n int) Option {
	return func(c *Catalog) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithMax caps how far the catalog pages.
func WithMax(n int) Option {
	return func(c *Catalog) {
		if n > 0 {
			c.max = n
		}
	}
}

// WithPopularSample sets how many recent verified runs are counted.
func WithPopularSample(n int) Option {
	return func(c *Catalog) {
		if n > 0 {
			c.sample = n
		}
	}
}

// WithPopularTop sets how many popular games are kept.
func WithPopularTop(n int) Option {
	return func(c *Catalog) {
		if n > 0 {
			c.top = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}
