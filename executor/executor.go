// Package executor runs external commands with output capture, environment
// and working-directory control, and context-based timeouts. It exists for
// the one external tool this action shells out to (git), so it is
// deliberately small: one attempt per command, no retries.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Result holds the output of a completed (or failed) command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Options configures a single execution.
type Options struct {
	// WorkingDir is the directory the command runs in. Empty means the
	// process's current directory.
	WorkingDir string

	// Env is appended to the current process environment.
	Env map[string]string

	// Timeout bounds the command's wall-clock time. Zero means the caller's
	// context alone governs cancellation.
	Timeout time.Duration
}

// Option mutates Options.
type Option func(*Options)

// WithWorkingDir sets the command's working directory.
func WithWorkingDir(dir string) Option {
	return func(o *Options) { o.WorkingDir = dir }
}

// WithEnv appends environment variables to the command.
func WithEnv(env map[string]string) Option {
	return func(o *Options) { o.Env = env }
}

// WithTimeout bounds the command's execution time.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// Command is a single external command invocation.
type Command struct {
	program string
	args    []string
}

// New creates a command for the given program and arguments.
func New(program string, args ...string) *Command {
	return &Command{program: program, args: args}
}

// Run executes the command once and captures stdout and stderr. A non-nil
// error is returned for start failures, timeouts, and non-zero exits; the
// Result is populated in every case so callers can inspect output and exit
// code when classifying the failure.
func (c *Command) Run(ctx context.Context, opts ...Option) (*Result, error) {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	runCtx := ctx
	if options.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, c.program, c.args...)
	if options.WorkingDir != "" {
		cmd.Dir = options.WorkingDir
	}
	if len(options.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range options.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.ExitCode = 0
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		result.ExitCode = -1
	}

	if err != nil {
		if runCtx.Err() != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return result, fmt.Errorf("command %q timed out after %s: %w",
				c.String(), options.Timeout, context.DeadlineExceeded)
		}
		return result, fmt.Errorf("command %q failed: %w", c.String(), err)
	}
	return result, nil
}

// String renders the command line for error messages.
func (c *Command) String() string {
	return strings.Join(append([]string{c.program}, c.args...), " ")
}

// IsNotInstalled reports whether err means the program binary was not found.
func IsNotInstalled(err error) bool {
	return errors.Is(err, exec.ErrNotFound)
}

// IsTimeout reports whether err means the command exceeded its deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
