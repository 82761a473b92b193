package cache

// Option applies a configuration option to the in-memory cache.
type Option func(*inMemoryCache)

// WithMaxSize sets the maximum number of charts kept in memory; the oldest
// insertion is evicted first. Non-positive values keep the default.
func WithMaxSize(maxSize int) Option {
	return func(c *inMemoryCache) {
		if maxSize > 0 {
			c.maxSize = maxSize
		}
	}
}
