package transcriber

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"repost/internal/logging"
)

// Runner launches the external batch tool and streams its merged output into
// the structured log so long transcription runs stay observable.
type Runner struct {
	command string
	args    []string
	dir     string
	logger  *slog.Logger
}

// NewRunner builds a runner for the configured tool invocation.
func NewRunner(command string, args []string, dir string, logger *slog.Logger) *Runner {
	return &Runner{
		command: command,
		args:    args,
		dir:     dir,
		logger:  logging.NewComponentLogger(logger, "batch-tool"),
	}
}

// Process is a started batch tool invocation.
type Process struct {
	cmd  *exec.Cmd
	done chan struct{}
	wg   sync.WaitGroup

	mu      sync.Mutex
	waitErr error
	waited  bool
}

// Start launches the tool. Output capture runs until the process exits and
// never blocks the caller's poll loop.
func (r *Runner) Start(ctx context.Context) (*Process, error) {
	if strings.TrimSpace(r.command) == "" {
		return nil, errors.New("batch tool command not configured")
	}

	cmd := exec.CommandContext(ctx, r.command, r.args...)
	cmd.Dir = r.dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("batch tool stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start batch tool: %w", err)
	}
	r.logger.Info("batch tool started",
		logging.String("command", r.command),
		logging.String("dir", r.dir),
		logging.Int("pid", cmd.Process.Pid),
	)

	proc := &Process{cmd: cmd, done: make(chan struct{})}
	proc.wg.Add(1)
	go func() {
		defer proc.wg.Done()
		r.captureOutput(stdout)
	}()
	go func() {
		proc.wg.Wait()
		err := cmd.Wait()
		proc.mu.Lock()
		proc.waitErr = err
		proc.waited = true
		proc.mu.Unlock()
		close(proc.done)
	}()
	return proc, nil
}

// captureOutput logs the tool's output line by line. When the line scanner
// gives up (overlong lines, binary noise) it degrades to chunked reads rather
// than dropping the stream.
func (r *Runner) captureOutput(stream io.Reader) {
	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		r.logger.Debug("tool output", logging.String("line", line))
	}
	if err := scanner.Err(); err != nil {
		r.logger.Warn("line capture degraded", logging.Error(err))
		buf := make([]byte, 32*1024)
		for {
			n, readErr := stream.Read(buf)
			if n > 0 {
				r.logger.Debug("tool output chunk", logging.Int("bytes", n))
			}
			if readErr != nil {
				return
			}
		}
	}
}

// Done is closed once the process has exited and its output is drained.
func (p *Process) Done() <-chan struct{} { return p.done }

// Exited reports whether the process has finished, and its exit error if so.
func (p *Process) Exited() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.waited, p.waitErr
}

// Kill terminates the tool. Used when the monitor gives up before the
// process does.
func (p *Process) Kill() error {
	if p == nil || p.cmd == nil || p.cmd.Process == nil {
		return nil
	}
	if exited, _ := p.Exited(); exited {
		return nil
	}
	return p.cmd.Process.Kill()
}
