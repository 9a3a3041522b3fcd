package clicommand

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/ci-scripts/jenkins-helper/logger"
	"github.com/ci-scripts/jenkins-helper/shell"
	"github.com/urfave/cli"
)

type RunConfig struct {
	Command []string `cli:"arg:*" label:"command" validate:"required"`

	Capture bool `cli:"capture"`
	NoCheck bool `cli:"no-check"`

	// Global flags
	Debug    bool   `cli:"debug"`
	LogLevel string `cli:"log-level"`
	NoColor  bool   `cli:"no-color"`
	Profile  string `cli:"profile"`
}

var RunCommand = cli.Command{
	Name:  "run",
	Usage: "Run a command, streaming its output into the build log",
	Description: `Usage:

    jenkins-helper run [options...] -- <command> [args...]

Description:

Runs a command as a build step. A single argument is split into a command
line using shell word rules; several arguments are taken as the argv
verbatim, so arguments containing spaces survive untouched.

By default the child process writes straight to this command's output and a
non-zero exit makes ′run′ exit with the same code. With ′--capture′ the
child's stdout is captured and printed exactly as produced (stderr is kept
apart for error reporting). With ′--no-check′ a non-zero exit is reported in
the log but ′run′ still exits 0.

Examples:

    $ jenkins-helper run -- make test

    # A single argument is word-split like a shell would
    $ jenkins-helper run "ls -la /var/lib/jenkins"

    $ version=$(jenkins-helper run --log-level error --capture -- git describe --tags)`,
	Flags: slices.Concat(globalFlags(), []cli.Flag{
		cli.BoolFlag{
			Name:   "capture",
			Usage:  "Capture the command's stdout and print it verbatim once the command finishes",
			EnvVar: "JENKINS_HELPER_RUN_CAPTURE",
		},
		cli.BoolFlag{
			Name:   "no-check",
			Usage:  "Report a non-zero exit in the log instead of failing with it",
			EnvVar: "JENKINS_HELPER_RUN_NO_CHECK",
		},
	}),
	Action: func(c *cli.Context) error {
		ctx := context.Background()
		cfg, l, done := setupLoggerAndConfig[RunConfig](c)
		defer done()

		return runCommand(ctx, cfg, l, c.App.Writer)
	},
}

func runCommand(ctx context.Context, cfg RunConfig, l logger.Logger, w io.Writer) error {
	if cfg.Capture && cfg.NoCheck {
		return errors.New("--capture and --no-check cannot be combined")
	}

	sh, err := shell.New(shell.WithLogger(l), shell.WithStdout(w))
	if err != nil {
		return err
	}

	// A single argument is a whole command line; several are the argv.
	line := ""
	if len(cfg.Command) == 1 {
		line = cfg.Command[0]
	}

	switch {
	case cfg.Capture:
		var out string
		if line != "" {
			out, err = sh.RunCommandLineAndCapture(ctx, line)
		} else {
			out, err = sh.RunAndCapture(ctx, cfg.Command[0], cfg.Command[1:]...)
		}
		if err == nil {
			_, err = fmt.Fprint(w, out)
		}

	case cfg.NoCheck:
		var code int
		if line != "" {
			code, err = sh.RunCommandLineWithExitCode(ctx, line)
		} else {
			code, err = sh.RunWithExitCode(ctx, cfg.Command[0], cfg.Command[1:]...)
		}
		if err == nil && code != 0 {
			l.Info("Command exited with code %d", code)
		}

	default:
		if line != "" {
			err = sh.RunCommandLine(ctx, line)
		} else {
			err = sh.Run(ctx, cfg.Command[0], cfg.Command[1:]...)
		}
	}

	// The shell has already logged the exit code and stderr, so a child
	// failure only needs to carry the code out.
	if shell.IsExitError(err) {
		return NewSilentExitError(shell.ExitCode(err))
	}
	return err
}
