package shell_test

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ci-scripts/jenkins-helper/env"
	"github.com/ci-scripts/jenkins-helper/logger"
	"github.com/ci-scripts/jenkins-helper/shell"
)

func requirePosix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests use posix utilities")
	}
}

func TestRunAndCaptureReturnsStdoutVerbatim(t *testing.T) {
	t.Parallel()
	requirePosix(t)
	ctx := context.Background()

	sh, err := shell.New(shell.WithLogger(logger.Discard))
	if err != nil {
		t.Fatalf("shell.New() error = %v", err)
	}

	got, err := sh.RunAndCapture(ctx, "echo", "hi")
	if err != nil {
		t.Errorf(`sh.RunAndCapture(echo, "hi") error = %v`, err)
	}

	// Trailing newline is the process's own output and must survive.
	if want := "hi\n"; got != want {
		t.Errorf(`sh.RunAndCapture(echo, "hi") output = %q, want %q`, got, want)
	}
}

func TestRunAndCaptureSeparatesStderrFromStdout(t *testing.T) {
	t.Parallel()
	requirePosix(t)
	ctx := context.Background()

	sh, err := shell.New(shell.WithLogger(logger.Discard))
	if err != nil {
		t.Fatalf("shell.New() error = %v", err)
	}

	got, err := sh.RunAndCapture(ctx, "sh", "-c", "echo out; echo err 1>&2")
	if err != nil {
		t.Errorf("sh.RunAndCapture(sh -c ...) error = %v", err)
	}

	if want := "out\n"; got != want {
		t.Errorf("captured stdout = %q, want %q", got, want)
	}
}

func TestRunFailureIsExitError(t *testing.T) {
	t.Parallel()
	requirePosix(t)
	ctx := context.Background()

	buf := logger.NewBuffer()
	sh, err := shell.New(shell.WithLogger(buf), shell.WithStdout(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("shell.New() error = %v", err)
	}

	err = sh.Run(ctx, "false")
	if err == nil {
		t.Fatalf("sh.Run(false) error = nil, want non-nil")
	}

	if !shell.IsExitError(err) {
		t.Errorf("shell.IsExitError(%v) = false, want true", err)
	}
	if got, want := shell.ExitCode(err), 1; got != want {
		t.Errorf("shell.ExitCode(%v) = %d, want %d", err, got, want)
	}

	exitErr := new(shell.ExitError)
	if !errors.As(err, &exitErr) {
		t.Fatalf("errors.As(%v, *ExitError) = false, want true", err)
	}
	if got, want := exitErr.Code, 1; got != want {
		t.Errorf("exitErr.Code = %d, want %d", got, want)
	}

	if want := "[error] Command failed with exit code 1"; !slices.Contains(buf.Messages, want) {
		t.Errorf("logger messages %q do not contain %q", buf.Messages, want)
	}
}

func TestRunAndCaptureFailureCarriesStderr(t *testing.T) {
	t.Parallel()
	requirePosix(t)
	ctx := context.Background()

	buf := logger.NewBuffer()
	sh, err := shell.New(shell.WithLogger(buf))
	if err != nil {
		t.Fatalf("shell.New() error = %v", err)
	}

	got, err := sh.RunAndCapture(ctx, "sh", "-c", "echo boom 1>&2; exit 3")
	if got != "" {
		t.Errorf("captured stdout = %q, want empty", got)
	}

	exitErr := new(shell.ExitError)
	if !errors.As(err, &exitErr) {
		t.Fatalf("errors.As(%v, *ExitError) = false, want true", err)
	}
	if want := (shell.ExitError{Code: 3, Stderr: "boom\n"}); exitErr.Code != want.Code || exitErr.Stderr != want.Stderr {
		t.Errorf("exitErr = {Code: %d, Stderr: %q}, want {Code: %d, Stderr: %q}",
			exitErr.Code, exitErr.Stderr, want.Code, want.Stderr)
	}

	if want := "[error] Command failed with exit code 3"; !slices.Contains(buf.Messages, want) {
		t.Errorf("logger messages %q do not contain %q", buf.Messages, want)
	}
	if want := "[error] Error output: boom\n"; !slices.Contains(buf.Messages, want) {
		t.Errorf("logger messages %q do not contain %q", buf.Messages, want)
	}
}

func TestRunWithExitCodeDoesNotTreatFailureAsError(t *testing.T) {
	t.Parallel()
	requirePosix(t)
	ctx := context.Background()

	buf := logger.NewBuffer()
	sh, err := shell.New(shell.WithLogger(buf), shell.WithStdout(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("shell.New() error = %v", err)
	}

	code, err := sh.RunWithExitCode(ctx, "sh", "-c", "exit 42")
	if err != nil {
		t.Errorf("sh.RunWithExitCode(sh -c 'exit 42') error = %v", err)
	}
	if want := 42; code != want {
		t.Errorf("sh.RunWithExitCode(sh -c 'exit 42') = %d, want %d", code, want)
	}

	for _, m := range buf.Messages {
		if strings.HasPrefix(m, "[error]") {
			t.Errorf("unexpected error-level log %q", m)
		}
	}
}

func TestRunCommandLineWithExitCode(t *testing.T) {
	t.Parallel()
	requirePosix(t)
	ctx := context.Background()

	sh, err := shell.New(shell.WithLogger(logger.Discard), shell.WithStdout(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("shell.New() error = %v", err)
	}

	code, err := sh.RunCommandLineWithExitCode(ctx, `sh -c "exit 7"`)
	if err != nil {
		t.Errorf(`sh.RunCommandLineWithExitCode(sh -c "exit 7") error = %v`, err)
	}
	if want := 7; code != want {
		t.Errorf(`sh.RunCommandLineWithExitCode(sh -c "exit 7") = %d, want %d`, code, want)
	}
}

func TestRunSpawnFailureIsNotExitError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	sh, err := shell.New(shell.WithLogger(logger.Discard))
	if err != nil {
		t.Fatalf("shell.New() error = %v", err)
	}

	err = sh.Run(ctx, "/this/binary/does/not/exist")
	if err == nil {
		t.Fatalf("sh.Run(missing binary) error = nil, want non-nil")
	}
	if shell.IsExitError(err) {
		t.Errorf("shell.IsExitError(%v) = true, want false", err)
	}
}

func TestRunCommandLineRecordsTokenizedArgv(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	commandLog := [][]string{}
	sh, err := shell.New(
		shell.WithLogger(logger.Discard),
		shell.WithCommandLog(&commandLog),
		shell.WithDryRun(true),
	)
	if err != nil {
		t.Fatalf("shell.New() error = %v", err)
	}

	if err := sh.RunCommandLine(ctx, "ls -la"); err != nil {
		t.Errorf(`sh.RunCommandLine("ls -la") error = %v`, err)
	}

	want := [][]string{{"ls", "-la"}}
	if diff := cmp.Diff(commandLog, want); diff != "" {
		t.Errorf("command log diff (-got +want):\n%s", diff)
	}
}

func TestRunCommandLineSplitsQuotedWords(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	commandLog := [][]string{}
	sh, err := shell.New(
		shell.WithLogger(logger.Discard),
		shell.WithCommandLog(&commandLog),
		shell.WithDryRun(true),
	)
	if err != nil {
		t.Fatalf("shell.New() error = %v", err)
	}

	if err := sh.RunCommandLine(ctx, `git commit -m "all the things"`); err != nil {
		t.Errorf("sh.RunCommandLine(git commit ...) error = %v", err)
	}

	want := [][]string{{"git", "commit", "-m", "all the things"}}
	if diff := cmp.Diff(commandLog, want); diff != "" {
		t.Errorf("command log diff (-got +want):\n%s", diff)
	}
}

func TestRunCommandLineRejectsEmptyLine(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	sh, err := shell.New(shell.WithLogger(logger.Discard), shell.WithDryRun(true))
	if err != nil {
		t.Fatalf("shell.New() error = %v", err)
	}

	if err := sh.RunCommandLine(ctx, "   "); err == nil {
		t.Errorf(`sh.RunCommandLine("   ") error = nil, want non-nil`)
	}
}

func TestRunLogsFormattedCommand(t *testing.T) {
	t.Parallel()
	requirePosix(t)
	ctx := context.Background()

	buf := logger.NewBuffer()
	sh, err := shell.New(shell.WithLogger(buf), shell.WithStdout(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("shell.New() error = %v", err)
	}

	if err := sh.Run(ctx, "echo", "hello world"); err != nil {
		t.Errorf("sh.Run(echo, hello world) error = %v", err)
	}

	if want := `[info] Running command: echo "hello world"`; !slices.Contains(buf.Messages, want) {
		t.Errorf("logger messages %q do not contain %q", buf.Messages, want)
	}
}

func TestRunUsesEnvironmentSnapshot(t *testing.T) {
	t.Parallel()
	requirePosix(t)
	ctx := context.Background()

	sh, err := shell.New(
		shell.WithLogger(logger.Discard),
		shell.WithEnv(env.FromMap(map[string]string{"DEPLOY_TARGET": "staging"})),
	)
	if err != nil {
		t.Fatalf("shell.New() error = %v", err)
	}

	got, err := sh.RunAndCapture(ctx, "sh", "-c", "echo $DEPLOY_TARGET")
	if err != nil {
		t.Errorf("sh.RunAndCapture(sh -c 'echo $DEPLOY_TARGET') error = %v", err)
	}
	if want := "staging\n"; got != want {
		t.Errorf("captured stdout = %q, want %q", got, want)
	}
}

func TestDryRunSkipsExecution(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	commandLog := [][]string{}
	out := &bytes.Buffer{}
	sh, err := shell.New(
		shell.WithLogger(logger.Discard),
		shell.WithCommandLog(&commandLog),
		shell.WithDryRun(true),
		shell.WithStdout(out),
	)
	if err != nil {
		t.Fatalf("shell.New() error = %v", err)
	}

	if err := sh.Run(ctx, "rm", "-rf", "everything"); err != nil {
		t.Errorf("sh.Run(rm -rf everything) error = %v", err)
	}

	want := [][]string{{"rm", "-rf", "everything"}}
	if diff := cmp.Diff(commandLog, want); diff != "" {
		t.Errorf("command log diff (-got +want):\n%s", diff)
	}
	if out.Len() != 0 {
		t.Errorf("dry run produced output %q", out.String())
	}
}
