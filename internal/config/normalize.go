package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeConversion(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeConversion() error {
	if c.Conversion.Workers == 0 {
		if value, ok := os.LookupEnv("ZIPTOWEBP_WORKERS"); ok && strings.TrimSpace(value) != "" {
			workers, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return fmt.Errorf("ZIPTOWEBP_WORKERS: %w", err)
			}
			c.Conversion.Workers = workers
		}
	}
	if c.Conversion.Workers == 0 {
		c.Conversion.Workers = runtime.NumCPU()
	}

	c.Conversion.ArchiveExt = dotted(c.Conversion.ArchiveExt, defaultArchiveExt)
	c.Conversion.SourceExt = dotted(c.Conversion.SourceExt, defaultSourceExt)
	c.Conversion.TargetExt = dotted(c.Conversion.TargetExt, defaultTargetExt)

	c.Conversion.CoverName = strings.TrimSpace(c.Conversion.CoverName)
	c.Conversion.CoverOutputStem = orDefault(c.Conversion.CoverOutputStem, defaultCoverOutputStem)
	// An empty prefix is allowed; it only has to be free of separators.
	c.Conversion.OutputPrefix = strings.TrimSpace(c.Conversion.OutputPrefix)
	c.Conversion.OutputDir = orDefault(c.Conversion.OutputDir, defaultOutputDir)
	c.Conversion.ProcessedDir = orDefault(c.Conversion.ProcessedDir, defaultProcessedDir)
	c.Conversion.WorkspacePrefix = orDefault(c.Conversion.WorkspacePrefix, defaultWorkspacePrefix)

	c.Conversion.Placement = strings.ToLower(strings.TrimSpace(c.Conversion.Placement))
	if c.Conversion.Placement == "" {
		c.Conversion.Placement = PlacementParent
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// Extensions are compared case-sensitively, so only whitespace is trimmed.
func dotted(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	if !strings.HasPrefix(value, ".") {
		value = "." + value
	}
	return value
}

func orDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
