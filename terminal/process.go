// Package terminal supervises a Theta Terminal process: downloading the
// distribution, writing credentials, launching the JVM, and probing the
// ports it serves. The client packages never start processes themselves;
// this package exists for the CLI and for integration rigs.
package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// JarName is the distribution jar the download endpoint serves.
const JarName = "ThetaTerminal.jar"

// Process is one supervised Terminal instance.
type Process struct {
	cfg *Config
	log zerolog.Logger

	cmd     *exec.Cmd
	done    chan struct{}
	waitErr error
}

// New creates an unstarted Terminal process.
func New(opts ...Option) *Process {
	p := &Process{
		cfg: DefaultConfig(),
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the JVM. The process is tied to ctx: cancelling it
// interrupts the Terminal, escalating to a kill after the grace period.
func (p *Process) Start(ctx context.Context) error {
	if p.cmd != nil {
		return fmt.Errorf("terminal already started")
	}

	args := []string{}
	if p.cfg.JVMMemGB > 0 {
		args = append(args, fmt.Sprintf("-Xmx%dG", p.cfg.JVMMemGB))
	}
	args = append(args, "-jar", p.cfg.JarName)
	if p.cfg.Username != "" {
		args = append(args, p.cfg.Username, p.cfg.Password)
	}

	cmd := exec.CommandContext(ctx, p.cfg.JavaPath, args...)
	cmd.Dir = p.cfg.Dir
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = p.cfg.StopGrace

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("terminal stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("terminal stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("terminal start: %w", err)
	}
	p.cmd = cmd
	p.done = make(chan struct{})

	go p.pipe(stdout, zerolog.InfoLevel)
	go p.pipe(stderr, zerolog.WarnLevel)
	go func() {
		p.waitErr = cmd.Wait()
		close(p.done)
	}()

	p.log.Info().Int("pid", cmd.Process.Pid).Str("dir", p.cfg.Dir).Msg("terminal started")
	return nil
}

// pipe forwards one Terminal output stream into the logger, line by line.
func (p *Process) pipe(r io.Reader, level zerolog.Level) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 256*1024)
	for sc.Scan() {
		p.log.WithLevel(level).Str("source", "terminal").Msg(sc.Text())
	}
}

// WaitReady blocks until the control port accepts a connection, the
// Terminal exits, or the ready timeout passes. A listening control port
// means the Terminal finished authenticating upstream.
func (p *Process) WaitReady(ctx context.Context) error {
	if p.cmd == nil {
		return fmt.Errorf("terminal not started")
	}

	addr := net.JoinHostPort(p.cfg.Host, strconv.Itoa(p.cfg.ControlPort))
	deadline := time.Now().Add(p.cfg.ReadyTimeout)
	for {
		conn, err := net.DialTimeout("tcp", addr, p.cfg.ProbeInterval)
		if err == nil {
			conn.Close()
			p.log.Info().Str("addr", addr).Msg("terminal ready")
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("terminal not ready after %s", p.cfg.ReadyTimeout)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("terminal readiness wait: %w", ctx.Err())
		case <-p.done:
			return fmt.Errorf("terminal exited before ready: %v", p.waitErr)
		case <-time.After(p.cfg.ProbeInterval):
		}
	}
}

// Stop interrupts the Terminal and waits for it to exit, killing it after
// the grace period.
func (p *Process) Stop(ctx context.Context) error {
	if p.cmd == nil {
		return nil
	}

	select {
	case <-p.done:
		return nil
	default:
	}

	if err := p.cmd.Process.Signal(os.Interrupt); err != nil {
		return fmt.Errorf("terminal interrupt: %w", err)
	}

	grace := time.NewTimer(p.cfg.StopGrace)
	defer grace.Stop()
	select {
	case <-p.done:
		p.log.Info().Msg("terminal stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-grace.C:
	}

	p.log.Warn().Dur("grace", p.cfg.StopGrace).Msg("terminal did not exit, killing")
	if err := p.cmd.Process.Kill(); err != nil {
		return fmt.Errorf("terminal kill: %w", err)
	}
	<-p.done
	return nil
}

// Wait blocks until the Terminal exits and returns its exit error.
func (p *Process) Wait() error {
	if p.cmd == nil {
		return fmt.Errorf("terminal not started")
	}
	<-p.done
	return p.waitErr
}

// Running reports whether the Terminal process is alive.
func (p *Process) Running() bool {
	if p.cmd == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Status reports which Terminal listeners accept TCP connections.
type Status struct {
	Control bool
	Stream  bool
	REST    bool
}

// Check dial-probes the Terminal's three listeners. It needs no Process;
// any Terminal on the host answers.
func Check(host string, control, stream, rest int, timeout time.Duration) Status {
	return Status{
		Control: probe(host, control, timeout),
		Stream:  probe(host, stream, timeout),
		REST:    probe(host, rest, timeout),
	}
}

func probe(host string, port int, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, strconv.Itoa(port)), timeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
