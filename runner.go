package ripserext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/magefile/mage/sh"
)

// ErrToolNotFound is wrapped by runner errors when the tool could not be started.
var ErrToolNotFound = errors.New("tool could not be located")

// Command is one external tool invocation.
type Command struct {
	Name string
	Args []string
	Env  map[string]string
}

// String returns the command line.
func (c Command) String() string {
	return commandLine(c.Name, c.Args)
}

// ProcessRunner runs external tools in the current working directory.
//
// Implementations return the combined output lines of the process. A process
// that could not be started must yield an error wrapping ErrToolNotFound;
// a non-zero exit must yield a non-nil error.
type ProcessRunner interface {
	Run(ctx context.Context, cmd Command) ([]string, error)
}

// ShRunner runs tools directly and classifies failures with mage's sh package.
//
// Output is captured for the BuildResult and, when Stream is set, copied to
// it while the tool runs. Arguments reach the tool verbatim; $VAR references
// are not expanded. Env entries are added to the process environment.
type ShRunner struct {
	Stream io.Writer
}

// Run executes cmd and waits for it to exit. The context is only checked
// before the process starts; a running tool is not interrupted.
func (r *ShRunner) Run(ctx context.Context, cmd Command) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	var out io.Writer = &buf
	if r.Stream != nil {
		out = io.MultiWriter(&buf, r.Stream)
	}

	c := exec.Command(cmd.Name, cmd.Args...)
	c.Env = os.Environ()
	for k, v := range cmd.Env {
		c.Env = append(c.Env, k+"="+v)
	}
	c.Stdout = out
	c.Stderr = out

	err := c.Run()
	lines := outputLines(buf.String())
	if err != nil {
		if !sh.CmdRan(err) {
			return lines, fmt.Errorf("%w: %s: %v", ErrToolNotFound, cmd.Name, err)
		}
		return lines, fmt.Errorf("%s exited with status %d: %w", cmd.Name, sh.ExitStatus(err), err)
	}

	return lines, nil
}

// DryRunRunner records and logs commands without executing them.
type DryRunRunner struct {
	Logger *log.Logger

	mu       sync.Mutex
	commands []Command
}

// Run logs cmd and reports success.
func (r *DryRunRunner) Run(ctx context.Context, cmd Command) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.commands = append(r.commands, cmd)
	r.mu.Unlock()

	if r.Logger != nil {
		r.Logger.Info("dry run, not executing", "cmd", cmd.String())
	}
	return nil, nil
}

// Commands returns the commands issued so far.
func (r *DryRunRunner) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Command{}, r.commands...)
}
