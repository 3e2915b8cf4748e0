package config

import (
	"errors"
	"fmt"

	"github.com/gobwas/glob"
)

var (
	// ErrInvalidPattern indicates a path glob that does not compile
	ErrInvalidPattern = errors.New("invalid path pattern")

	// ErrEmptyInclude indicates no include patterns
	ErrEmptyInclude = errors.New("empty include patterns")

	// ErrInvalidWorkers indicates a worker count below one
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidLimit indicates a negative file size limit
	ErrInvalidLimit = errors.New("invalid file size limit")

	// ErrInvalidCacheSize indicates a cache size below one
	ErrInvalidCacheSize = errors.New("invalid cache size")

	// ErrInvalidDebounce indicates a negative debounce interval
	ErrInvalidDebounce = errors.New("invalid debounce interval")
)

// Validate checks that the configuration is valid and complete. All
// problems are reported together.
func Validate(cfg *Config) error {
	var errs []error

	if len(cfg.Paths.Include) == 0 {
		errs = append(errs, ErrEmptyInclude)
	}
	errs = append(errs, validatePatterns("include", cfg.Paths.Include)...)
	errs = append(errs, validatePatterns("ignore", cfg.Paths.Ignore)...)

	if cfg.Index.Workers < 1 {
		errs = append(errs, fmt.Errorf("%w: must be at least 1, got %d", ErrInvalidWorkers, cfg.Index.Workers))
	}
	if cfg.Index.MaxFileBytes < 0 {
		errs = append(errs, fmt.Errorf("%w: must be >= 0, got %d", ErrInvalidLimit, cfg.Index.MaxFileBytes))
	}
	if cfg.Index.CacheSize < 1 {
		errs = append(errs, fmt.Errorf("%w: must be at least 1, got %d", ErrInvalidCacheSize, cfg.Index.CacheSize))
	}
	if cfg.Watch.DebounceMs < 0 {
		errs = append(errs, fmt.Errorf("%w: must be >= 0, got %d", ErrInvalidDebounce, cfg.Watch.DebounceMs))
	}

	return errors.Join(errs...)
}

func validatePatterns(field string, patterns []string) []error {
	var errs []error
	for _, pattern := range patterns {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s pattern %q: %v", ErrInvalidPattern, field, pattern, err))
		}
	}
	return errs
}
