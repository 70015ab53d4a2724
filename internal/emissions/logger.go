package emissions

import "github.com/rs/zerolog"

// pkgLogger is used for skip-policy warnings (missing mappings, factor
// windows with no effective values). Defaults to a no-op logger.
var pkgLogger = zerolog.Nop()

// SetLogger injects the logger used by this package for data-quality
// warnings. Call once at startup before any resolution runs.
func SetLogger(logger zerolog.Logger) {
	pkgLogger = logger
}
