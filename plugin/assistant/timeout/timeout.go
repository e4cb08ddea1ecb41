// Package timeout defines centralized timeout constants for assistant operations.
package timeout

import "time"

const (
	// StoreQueryTimeout is the timeout for listings/session store queries.
	StoreQueryTimeout = 5 * time.Second

	// GenerationTimeout is the timeout for the generative-text call.
	// Generation is never retried automatically; a timeout surfaces a
	// fixed "please try again" reply instead.
	GenerationTimeout = 30 * time.Second

	// EnrichmentTimeout bounds the concurrent context-enrichment reads
	// (profile, marketplace stats, recent listings) for one message.
	EnrichmentTimeout = 5 * time.Second

	// MaxTruncateLength is the maximum length for truncating strings in logs.
	MaxTruncateLength = 200
)
