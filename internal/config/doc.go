// Package config loads, normalizes, and validates ziptowebp configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ZIPTOWEBP_WORKERS. The Config type centralizes every knob the CLI and the
// conversion pipeline need: archive and image extensions, the bookkeeping
// folder names, WebP encoder settings, and logging/history options.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, dotted extensions, a resolved worker count, and clear
// validation errors.
package config
