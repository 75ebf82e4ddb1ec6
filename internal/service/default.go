package service

import (
	"log/slog"
	"sync"

	"github.com/trooth/llm-service/internal/config"
)

// Process-wide cached instance. Access is mutex-guarded so concurrent
// first-time callers cannot each build and discard an instance.
var (
	defaultMu      sync.Mutex
	defaultService *Service
)

// Default returns the cached process-wide Service, building it from the
// environment on first use. Passing any options forces a new instance to be
// built and cached; calling with no options reuses the cached instance even
// if the environment has since changed.
func Default(opts ...Option) (*Service, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultService != nil && len(opts) == 0 {
		return defaultService, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	svc, err := New(cfg.LLM, slog.Default(), opts...)
	if err != nil {
		return nil, err
	}

	defaultService = svc
	return defaultService, nil
}

// ResetDefault clears the cached instance so the next Default call builds a
// fresh one. Intended for test isolation.
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultService = nil
}
