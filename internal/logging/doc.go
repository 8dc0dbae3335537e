// Package logging builds the zap loggers used by the media host.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: colored console output
//
// Components log through named children of the root logger, so every
// line carries its origin:
//
//	media.registry, media.session, media.plugin, media.discovery, ...
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	reg := registry.New(cfg, registry.Deps{Logger: logger.Component("registry")})
//	logger.Info("host starting", zap.Int("frame_rate", 30))
package logging
