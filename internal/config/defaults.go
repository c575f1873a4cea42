package config

const (
	defaultConfigPath      = "~/.config/ziptowebp/config.toml"
	defaultStateDir        = "~/.local/share/ziptowebp"
	defaultLogDir          = "~/.local/share/ziptowebp/logs"
	defaultArchiveExt      = ".zip"
	defaultSourceExt       = ".jpeg"
	defaultTargetExt       = ".webp"
	defaultCoverName       = "cover"
	defaultCoverOutputStem = "00001"
	defaultOutputPrefix    = "WebP_"
	defaultOutputDir       = "Output"
	defaultProcessedDir    = "Converted_Zip"
	defaultWorkspacePrefix = "temp_conversion"
	defaultWebPQuality     = 75
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultNtfyTimeout     = 10
)

// Placement values for Conversion.Placement.
const (
	PlacementParent     = "parent"
	PlacementArchiveDir = "archive_dir"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Conversion: Conversion{
			ArchiveExt:      defaultArchiveExt,
			SourceExt:       defaultSourceExt,
			TargetExt:       defaultTargetExt,
			CoverName:       defaultCoverName,
			CoverOutputStem: defaultCoverOutputStem,
			OutputPrefix:    defaultOutputPrefix,
			OutputDir:       defaultOutputDir,
			ProcessedDir:    defaultProcessedDir,
			WorkspacePrefix: defaultWorkspacePrefix,
			Placement:       PlacementParent,
		},
		WebP: WebP{
			Quality: defaultWebPQuality,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
	}
}
