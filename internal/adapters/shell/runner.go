// Package shell runs external programs and forwards their output to the logger.
package shell

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"go.trai.ch/wipt/internal/core/ports"
	"go.trai.ch/zerr"
)

// Runner implements ports.CommandRunner using os/exec.
type Runner struct {
	logger ports.Logger
}

// NewRunner creates a new Runner that logs each output line of the programs it runs.
func NewRunner(logger ports.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run executes name with args and waits for it to exit.
// A non-zero exit status is returned as code; err is set only when the program could not run.
func (r *Runner) Run(ctx context.Context, name string, args ...string) (int, error) {
	stdout := &logWriter{logger: r.logger, level: levelInfo}
	stderr := &logWriter{logger: r.logger, level: levelWarn}

	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // installer command built from resolved plans
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	setCommandLine(cmd, name, args)

	err := cmd.Run()
	_ = stdout.Close()
	_ = stderr.Close()

	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return exitErr.ExitCode(), nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, ctxErr
	}
	return -1, zerr.With(zerr.Wrap(err, "failed to start command"), "command", name)
}

// CommandLine renders name and args as a single Windows command line.
// Arguments that already carry quotes are passed verbatim, so NAME="value with spaces"
// reaches the program as written. Other arguments are quoted when they contain whitespace.
func CommandLine(name string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	for _, arg := range append([]string{name}, args...) {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

func quoteArg(arg string) string {
	switch {
	case arg == "":
		return `""`
	case strings.Contains(arg, `"`), !strings.ContainsAny(arg, " \t"):
		return arg
	}

	// A trailing backslash would escape the closing quote.
	trimmed := strings.TrimRight(arg, `\`)
	return `"` + arg + strings.Repeat(`\`, len(arg)-len(trimmed)) + `"`
}

type level int

const (
	levelInfo level = iota
	levelWarn
)

type logWriter struct {
	logger ports.Logger
	level  level
	buf    []byte
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	// msiexec writes CRLF line endings.
	msg := strings.TrimSuffix(string(line), "\r")
	if msg == "" {
		return
	}

	if w.level == levelInfo {
		w.logger.Info(msg)
	} else {
		w.logger.Warn(msg)
	}
}
