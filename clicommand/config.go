package clicommand

import (
	"fmt"
	"os"

	"github.com/ci-scripts/jenkins-helper/cliconfig"
	"github.com/ci-scripts/jenkins-helper/logger"
	"github.com/urfave/cli"
)

// setupLoggerAndConfig loads the command's configuration struct from the cli
// context, creates a logger according to the global flags, and handles the
// remaining global flag behavior. The returned done function must be called
// when the command finishes.
func setupLoggerAndConfig[T any](c *cli.Context) (cfg T, l logger.Logger, done func()) {
	loader := cliconfig.Loader{CLI: c, Config: &cfg}
	if err := loader.Load(); err != nil {
		fmt.Printf("%s", err)
		os.Exit(1)
	}

	l = CreateLogger(&cfg)
	done = HandleGlobalFlags(l, &cfg)

	return cfg, l, done
}
