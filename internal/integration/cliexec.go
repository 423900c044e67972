package integration

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// CLIExecConfig holds all parameters needed to execute an external CLI tool.
type CLIExecConfig struct {
	CLI  string
	Args []string
	// Env holds KEY=VALUE pairs added on top of the current environment.
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// CLIExecResult captures the outcome of an external CLI invocation.
type CLIExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// CommandLine returns the invocation as a single display string.
func (c CLIExecConfig) CommandLine() string {
	return strings.TrimSpace(c.CLI + " " + strings.Join(c.Args, " "))
}

// CLIExecutor invokes external CLI tools and captures their output.
type CLIExecutor interface {
	// Exec runs the CLI to completion. A non-zero exit status is reported in
	// the result, not as an error; the error is reserved for commands that
	// could not be started.
	Exec(ctx context.Context, config CLIExecConfig) (*CLIExecResult, error)
	// BuildEnv returns base with extra appended. Later entries win.
	BuildEnv(base []string, extra []string) []string
}

// cliExecutor implements CLIExecutor.
type cliExecutor struct{}

// NewCLIExecutor creates a new CLIExecutor.
func NewCLIExecutor() CLIExecutor {
	return &cliExecutor{}
}

func (e *cliExecutor) BuildEnv(base []string, extra []string) []string {
	if len(extra) == 0 {
		return base
	}
	env := make([]string, len(base), len(base)+len(extra))
	copy(env, base)
	return append(env, extra...)
}

func (e *cliExecutor) Exec(ctx context.Context, config CLIExecConfig) (*CLIExecResult, error) {
	cmd := exec.CommandContext(ctx, config.CLI, config.Args...)
	cmd.Env = e.BuildEnv(os.Environ(), config.Env)

	// Always capture stdout/stderr for the result, and tee to the provided
	// writers if set.
	var stdoutBuf, stderrBuf bytes.Buffer

	if config.Stdout != nil {
		cmd.Stdout = io.MultiWriter(&stdoutBuf, config.Stdout)
	} else {
		cmd.Stdout = &stdoutBuf
	}

	if config.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderrBuf, config.Stderr)
	} else {
		cmd.Stderr = &stderrBuf
	}

	if config.Stdin != nil {
		cmd.Stdin = config.Stdin
	}

	err := cmd.Run()

	result := &CLIExecResult{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			// Command could not be started (e.g., not found).
			return result, fmt.Errorf("executing %s: %w", config.CLI, err)
		}
	}

	return result, nil
}
