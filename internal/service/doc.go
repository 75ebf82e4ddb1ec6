// Package service orchestrates the provider adapters: it selects a primary
// from configuration, lazily constructs the other registered provider as a
// fallback, and sequences primary then fallback for each generation call.
// A mutex-guarded default instance is available for process-wide use;
// explicit construction with New is preferred, and what tests should do.
package service
