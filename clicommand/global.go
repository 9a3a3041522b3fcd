package clicommand

import (
	"os"

	"github.com/ci-scripts/jenkins-helper/logger"
	"github.com/oleiade/reflections"
	"github.com/urfave/cli"
)

var DebugFlag = cli.BoolFlag{
	Name:   "debug",
	Usage:  "Enable debug mode. Synonym for ′--log-level debug′. Takes precedence over ′--log-level′",
	EnvVar: "JENKINS_HELPER_DEBUG",
}

var LogLevelFlag = cli.StringFlag{
	Name:   "log-level",
	Value:  "info",
	Usage:  "Set the log level, either debug, info, warn, error or fatal",
	EnvVar: "JENKINS_HELPER_LOG_LEVEL",
}

var NoColorFlag = cli.BoolFlag{
	Name:   "no-color",
	Usage:  "Don't show colors in logging",
	EnvVar: "JENKINS_HELPER_NO_COLOR",
}

var ProfileFlag = cli.StringFlag{
	Name:   "profile",
	Usage:  "Enable a profiling mode, either cpu, memory, mutex, block, thread or trace",
	EnvVar: "JENKINS_HELPER_PROFILE",
}

var DebugHTTPFlag = cli.BoolFlag{
	Name:   "debug-http",
	Usage:  "Enable HTTP debug mode, which dumps all request and response bodies to the log",
	EnvVar: "JENKINS_HELPER_DEBUG_HTTP",
}

var DotenvFlag = cli.StringFlag{
	Name:   "dotenv",
	Value:  ".env",
	Usage:  "Path to the .env file that provides secrets outside of Jenkins",
	EnvVar: "JENKINS_HELPER_DOTENV",
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		NoColorFlag,
		DebugFlag,
		LogLevelFlag,
		ProfileFlag,
	}
}

// CreateLogger creates a new logger from the given configuration struct,
// reading the NoColor, LogLevel and Debug fields via reflection. Every call
// returns a fresh logger; commands never share logger state.
func CreateLogger(cfg any) logger.Logger {
	l := &logger.TextLogger{
		Level:  logger.INFO,
		Colors: logger.ColorsAvailable(),
		Prefix: logger.DefaultName,
		Writer: os.Stdout,
	}

	if noColor, err := reflections.GetField(cfg, "NoColor"); noColor == true && err == nil {
		l.Colors = false
	}

	if levelName, err := reflections.GetField(cfg, "LogLevel"); err == nil {
		if name, ok := levelName.(string); ok && name != "" {
			level, err := logger.LevelFromString(name)
			if err != nil {
				l.Fatal("Invalid log level: %v", err)
			}
			l.Level = level
		}
	}

	// --debug wins over --log-level
	if debug, err := reflections.GetField(cfg, "Debug"); debug == true && err == nil {
		l.Level = logger.DEBUG
	}

	return l
}

// HandleGlobalFlags handles the global flag behavior that has to happen
// after the logger exists: currently just starting a profiling session when
// one was requested. The returned function must be called when the command
// finishes.
func HandleGlobalFlags(l logger.Logger, cfg any) func() {
	profileMode, err := reflections.GetField(cfg, "Profile")
	if err == nil {
		if mode, ok := profileMode.(string); ok && mode != "" {
			return Profile(l, mode)
		}
	}

	return func() {}
}
