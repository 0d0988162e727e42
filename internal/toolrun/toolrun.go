// SPDX-License-Identifier: MPL-2.0

// Package toolrun invokes the external command-line tools the workspace
// delegates its real work to. Commands inherit the operator's terminal so
// tool output is never swallowed or reformatted.
package toolrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"mvdan.cc/sh/v3/shell"
)

// ErrEmptyCommand is returned by Split when the command string contains
// no words.
var ErrEmptyCommand = errors.New("empty command")

type (
	// Command describes a single external tool invocation.
	Command struct {
		// Tool is the executable name or path.
		Tool string
		// Args are the arguments passed to the tool.
		Args []string
		// Dir is the working directory. Empty means the caller's.
		Dir string
		// Env holds extra KEY=VALUE entries appended to the inherited
		// environment.
		Env []string
	}

	// Runner executes Commands. Implementations must not retry.
	Runner interface {
		// Run executes the command with its output streams attached to
		// the operator's terminal.
		Run(ctx context.Context, cmd Command) *Result
		// RunCapture executes the command and returns its standard
		// output. Standard error stays attached to the terminal.
		RunCapture(ctx context.Context, cmd Command) (*Result, string)
	}

	// ExecRunner runs commands as local child processes.
	ExecRunner struct{}
)

// NewExecRunner creates a Runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Split parses a shell-style command string into a Command, honoring
// quoting. Used for manifest tool overrides.
func Split(s string) (Command, error) {
	fields, err := shell.Fields(s, nil)
	if err != nil {
		return Command{}, fmt.Errorf("failed to parse command %q: %w", s, err)
	}
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: %q", ErrEmptyCommand, s)
	}
	return Command{Tool: fields[0], Args: fields[1:]}, nil
}

// WithArgs returns a copy of the Command with the given arguments
// appended. The receiver's argument slice is never shared with the copy.
func (c Command) WithArgs(args ...string) Command {
	out := c
	out.Args = append(append(make([]string, 0, len(c.Args)+len(args)), c.Args...), args...)
	return out
}

// WithEnv returns a copy of the Command with one extra KEY=VALUE entry.
func (c Command) WithEnv(key, value string) Command {
	out := c
	out.Env = append(append(make([]string, 0, len(c.Env)+1), c.Env...), key+"="+value)
	return out
}

// String renders the command the way an operator would type it.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Tool
	}
	return c.Tool + " " + strings.Join(c.Args, " ")
}

// Run executes the command with stdin, stdout, and stderr inherited from
// the calling process.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) *Result {
	proc := r.prepare(ctx, cmd)
	proc.Stdin = os.Stdin
	proc.Stdout = os.Stdout
	proc.Stderr = os.Stderr

	return r.wait(proc, cmd)
}

// RunCapture executes the command, capturing standard output while
// standard error stays on the operator's terminal.
func (r *ExecRunner) RunCapture(ctx context.Context, cmd Command) (*Result, string) {
	var stdout bytes.Buffer
	proc := r.prepare(ctx, cmd)
	proc.Stdout = &stdout
	proc.Stderr = os.Stderr

	return r.wait(proc, cmd), stdout.String()
}

func (r *ExecRunner) prepare(ctx context.Context, cmd Command) *exec.Cmd {
	proc := exec.CommandContext(ctx, cmd.Tool, cmd.Args...)
	proc.Dir = cmd.Dir
	proc.Env = append(os.Environ(), cmd.Env...)
	return proc
}

func (r *ExecRunner) wait(proc *exec.Cmd, cmd Command) *Result {
	if err := proc.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return NewExitCodeResult(ExitCode(exitErr.ExitCode()))
		}
		return NewErrorResult(1, fmt.Errorf("failed to execute %s: %w", cmd.Tool, err))
	}
	return NewSuccessResult()
}
