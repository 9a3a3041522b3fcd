// Package shell runs external commands for build scripts.
//
// A Shell logs every command it runs, threads an environment snapshot into
// the child process, and reports non-zero exits as typed errors carrying
// the exit code and any captured stderr. Execution is fully synchronous:
// the only cancellation surface is the context, which kills the child.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/buildkite/shellwords"

	"github.com/ci-scripts/jenkins-helper/env"
	"github.com/ci-scripts/jenkins-helper/logger"
)

// Shell executes commands, handles logging and provides hooks for
// observing the argv that would be spawned.
type Shell struct {
	logger.Logger

	// The environment the child process runs with. If nil, the child
	// inherits the process environment.
	Env *env.Environment

	// Where child stdout (and stderr, when not captured) is written, like a
	// real shell that displays both in the same stream. Defaults to
	// [os.Stdout].
	Writer io.Writer

	// If set, the command arg vectors are appended to the slice as they are
	// executed (or would be executed, as in dry-run mode).
	commandLog *[][]string

	// Whether to actually execute commands.
	dryRun bool
}

type NewShellOpt = func(*Shell)

func WithCommandLog(log *[][]string) NewShellOpt { return func(s *Shell) { s.commandLog = log } }
func WithDryRun(d bool) NewShellOpt              { return func(s *Shell) { s.dryRun = d } }
func WithEnv(e *env.Environment) NewShellOpt     { return func(s *Shell) { s.Env = e } }
func WithLogger(l logger.Logger) NewShellOpt     { return func(s *Shell) { s.Logger = l } }
func WithStdout(w io.Writer) NewShellOpt         { return func(s *Shell) { s.Writer = w } }

// New returns a new Shell. The default stdout is [os.Stdout], the default
// logger discards everything, and the default environment variable set is
// read from [os.Environ].
func New(opts ...NewShellOpt) (*Shell, error) {
	shell := &Shell{}

	for _, opt := range opts {
		opt(shell)
	}

	if shell.Logger == nil {
		shell.Logger = logger.Discard
	}
	if shell.Env == nil {
		shell.Env = env.FromSlice(os.Environ())
	}
	if shell.Writer == nil {
		shell.Writer = os.Stdout
	}

	return shell, nil
}

// Run runs a command, writes stdout and stderr to s.Writer, and waits for
// it to finish. A non-zero exit is logged at error level and returned as an
// *ExitError. Failures to spawn the process at all are returned as-is.
func (s *Shell) Run(ctx context.Context, command string, arg ...string) error {
	s.Info("Running command: %s", formatCommand(command, arg))

	cmd, run := s.buildCommand(ctx, command, arg...)
	if !run {
		return nil
	}

	cmd.Stdout = s.Writer
	cmd.Stderr = s.Writer

	return s.checked(cmd.Run(), command, arg, "")
}

// RunAndCapture runs a command and captures its stdout and stderr
// separately, returning the stdout text exactly as the process produced it
// (nothing is trimmed). A non-zero exit is logged at error level, together
// with the captured stderr, and returned as an *ExitError carrying both.
func (s *Shell) RunAndCapture(ctx context.Context, command string, arg ...string) (string, error) {
	s.Info("Running command: %s", formatCommand(command, arg))

	cmd, run := s.buildCommand(ctx, command, arg...)
	if !run {
		return "", nil
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := s.checked(cmd.Run(), command, arg, stderr.String()); err != nil {
		return "", err
	}

	return stdout.String(), nil
}

// RunWithExitCode runs a command like Run, but a non-zero exit is not an
// error: the exit status is returned instead, and nothing is logged at
// error level. The error return is reserved for failing to spawn the
// process at all, in which case the code is -1.
func (s *Shell) RunWithExitCode(ctx context.Context, command string, arg ...string) (int, error) {
	s.Info("Running command: %s", formatCommand(command, arg))

	cmd, run := s.buildCommand(ctx, command, arg...)
	if !run {
		return 0, nil
	}

	cmd.Stdout = s.Writer
	cmd.Stderr = s.Writer

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	if exitErr := new(exec.ExitError); errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

// RunCommandLine tokenizes a single command line using shell word-splitting
// rules and runs the result with Run.
func (s *Shell) RunCommandLine(ctx context.Context, line string) error {
	command, arg, err := splitCommandLine(line)
	if err != nil {
		return err
	}
	return s.Run(ctx, command, arg...)
}

// RunCommandLineAndCapture is RunAndCapture for a single command line.
func (s *Shell) RunCommandLineAndCapture(ctx context.Context, line string) (string, error) {
	command, arg, err := splitCommandLine(line)
	if err != nil {
		return "", err
	}
	return s.RunAndCapture(ctx, command, arg...)
}

// RunCommandLineWithExitCode is RunWithExitCode for a single command line.
func (s *Shell) RunCommandLineWithExitCode(ctx context.Context, line string) (int, error) {
	command, arg, err := splitCommandLine(line)
	if err != nil {
		return -1, err
	}
	return s.RunWithExitCode(ctx, command, arg...)
}

func splitCommandLine(line string) (string, []string, error) {
	args, err := shellwords.Split(line)
	if err != nil {
		return "", nil, fmt.Errorf("splitting command line %q: %w", line, err)
	}
	if len(args) == 0 {
		return "", nil, fmt.Errorf("command line %q contains no command", line)
	}
	return args[0], args[1:], nil
}

// buildCommand prepares the exec.Cmd, records it in the command log, and
// reports whether it should actually be run (false in dry-run mode).
func (s *Shell) buildCommand(ctx context.Context, name string, arg ...string) (*exec.Cmd, bool) {
	cmd := exec.CommandContext(ctx, name, arg...)
	if s.Env != nil {
		cmd.Env = s.Env.ToSlice()
	}

	if s.commandLog != nil {
		*s.commandLog = append(*s.commandLog,
			append([]string{name}, arg...),
		)
	}

	return cmd, !s.dryRun
}

// checked translates the result of an exec.Cmd.Run into this package's
// error model: nil stays nil, a non-zero exit becomes an *ExitError (logged
// at error level, per the stderr text when there is one), and anything else
// is a spawn failure returned untouched.
func (s *Shell) checked(err error, command string, arg []string, stderr string) error {
	if err == nil {
		return nil
	}

	exitErr := new(exec.ExitError)
	if !errors.As(err, &exitErr) {
		return err
	}

	code := exitErr.ExitCode()
	s.Error("Command failed with exit code %d", code)
	if stderr != "" {
		s.Error("Error output: %s", stderr)
	}

	return &ExitError{
		Code:   code,
		Stderr: stderr,
		Err:    fmt.Errorf("error running %q: %w", formatCommand(command, arg), err),
	}
}

// ExitCode extracts an exit code from an error where the platform supports
// it, otherwise returns 0 for no error and 1 for an error.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	if cause := new(ExitError); errors.As(err, &cause) {
		return cause.Code
	}

	if cause := new(exec.ExitError); errors.As(err, &cause) {
		return cause.ExitCode()
	}
	return 1
}

// IsExitError reports whether err is an [ExitError] or [exec.ExitError].
func IsExitError(err error) bool {
	if cause := new(ExitError); errors.As(err, &cause) {
		return true
	}
	if cause := new(exec.ExitError); errors.As(err, &cause) {
		return true
	}
	return false
}

// ExitError is an error that carries a shell exit code and any captured
// stderr output.
type ExitError struct {
	Code   int
	Stderr string
	Err    error
}

func (ee *ExitError) Error() string { return ee.Err.Error() }

func (ee *ExitError) Unwrap() error { return ee.Err }
