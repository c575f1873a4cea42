package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validateWebP(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Notifications.RequestTimeout < 0 {
		return fmt.Errorf("notifications.request_timeout must not be negative (got %d)", c.Notifications.RequestTimeout)
	}
	return nil
}

func (c *Config) validateConversion() error {
	conv := c.Conversion
	if conv.Workers < 1 {
		return fmt.Errorf("conversion.workers must be positive (got %d)", conv.Workers)
	}
	for key, ext := range map[string]string{
		"conversion.archive_ext": conv.ArchiveExt,
		"conversion.source_ext":  conv.SourceExt,
		"conversion.target_ext":  conv.TargetExt,
	} {
		if len(ext) < 2 || strings.ContainsAny(ext[1:], "./\\") {
			return fmt.Errorf("%s must be a single extension such as .zip (got %q)", key, ext)
		}
	}
	if conv.SourceExt == conv.TargetExt {
		return errors.New("conversion.source_ext and conversion.target_ext must differ")
	}
	for key, name := range map[string]string{
		"conversion.output_prefix":     conv.OutputPrefix,
		"conversion.output_dir":        conv.OutputDir,
		"conversion.processed_dir":     conv.ProcessedDir,
		"conversion.workspace_prefix":  conv.WorkspacePrefix,
		"conversion.cover_output_stem": conv.CoverOutputStem,
	} {
		if strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
			return fmt.Errorf("%s must be a plain name (got %q)", key, name)
		}
	}
	if conv.OutputDir == conv.ProcessedDir {
		return errors.New("conversion.output_dir and conversion.processed_dir must differ")
	}
	switch conv.Placement {
	case PlacementParent, PlacementArchiveDir:
	default:
		return fmt.Errorf("conversion.placement must be %q or %q (got %q)", PlacementParent, PlacementArchiveDir, conv.Placement)
	}
	return nil
}

func (c *Config) validateWebP() error {
	if c.WebP.Quality < 0 || c.WebP.Quality > 100 {
		return fmt.Errorf("webp.quality must be between 0 and 100 (got %d)", c.WebP.Quality)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
}
