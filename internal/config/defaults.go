package config

import "runtime"

const (
	defaultResolution     = 300
	defaultTimeoutSeconds = 120
	defaultCanvasMode     = "pad"
	defaultPadding        = 40
	defaultTargetSize     = 1080
	defaultMargin         = 0.85
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Extensions: []string{".eps"},
		},
		Ghostscript: Ghostscript{
			Binary:         defaultGhostscriptBinary(),
			Resolution:     defaultResolution,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Canvas: Canvas{
			Mode:       defaultCanvasMode,
			Padding:    defaultPadding,
			TargetSize: defaultTargetSize,
			Margin:     defaultMargin,
		},
		Isolation: Isolation{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultGhostscriptBinary() string {
	if runtime.GOOS == "windows" {
		return "gswin64c"
	}
	return "gs"
}
