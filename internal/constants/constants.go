package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "pygrade"

	// ConfigFileName is the default config file name written by init
	ConfigFileName = "pygrade.yaml"

	// CacheFileName is the result cache database inside the cache directory
	CacheFileName = "reports.db"
)
