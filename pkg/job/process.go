package job

// A process spawned for one role (server or client) of a scenario.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/process"
	"golang.org/x/sys/unix"
)

const (
	ROLE_SERVER = "server"
	ROLE_CLIENT = "client"
)

var ErrGraceExceeded = errors.New("did not exit within grace period")

type proc struct {
	role    string
	logPath string
	cmd     *exec.Cmd

	done chan struct{}
	err  error
}

func newProc(role string, path string, args []string, env []string, out io.Writer, logPath string, waitDelay time.Duration) *proc {
	cmd := exec.Command(path, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true, // own process group, so the whole tree can be signalled
	}
	cmd.Env = env
	cmd.Stdin = nil // /dev/null
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.WaitDelay = waitDelay

	return &proc{
		role:    role,
		logPath: logPath,
		cmd:     cmd,
		done:    make(chan struct{}),
	}
}

func (p *proc) start(ctx context.Context) error {
	if err := p.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", p.role, err)
	}

	log.Ctx(ctx).Debug().Str("role", p.role).Int("PID", p.cmd.Process.Pid).Str("cmd", p.cmd.String()).Msg("process started")

	go func() {
		p.err = p.cmd.Wait()
		log.Ctx(ctx).Debug().Str("role", p.role).Int("code", p.exitCode()).Msg("process exited")
		close(p.done)
	}()

	return nil
}

func (p *proc) pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

func (p *proc) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// running double-checks with the OS that the process is alive and not a zombie.
func (p *proc) running(ctx context.Context) bool {
	if p.exited() {
		return false
	}
	ps, err := process.NewProcessWithContext(ctx, int32(p.pid()))
	if err != nil {
		return false
	}
	running, err := ps.IsRunningWithContext(ctx)
	if err != nil || !running {
		return false
	}
	status, err := ps.StatusWithContext(ctx)
	if err != nil {
		return true
	}
	for _, s := range status {
		if s == process.Zombie {
			return false
		}
	}
	return true
}

// exitCode is only meaningful once done is closed. -1 if killed by a signal.
func (p *proc) exitCode() int {
	if p.cmd.ProcessState == nil {
		return -1
	}
	return p.cmd.ProcessState.ExitCode()
}

// result returns nil if the process exited cleanly.
func (p *proc) result() error {
	if p.err != nil {
		return fmt.Errorf("%s exited with code %d: %w", p.role, p.exitCode(), p.err)
	}
	return nil
}

// wait blocks until the process exits. If ctx is done first, the process
// is terminated. A grace > 0 bounds how long the process may keep running.
func (p *proc) wait(ctx context.Context, grace time.Duration, killTimeout time.Duration) error {
	var timeout <-chan time.Time
	if grace > 0 {
		timer := time.NewTimer(grace)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-p.done:
		return p.result()
	case <-ctx.Done():
		p.terminate(ctx, killTimeout)
		return fmt.Errorf("%s terminated: %w", p.role, ctx.Err())
	case <-timeout:
		p.terminate(ctx, killTimeout)
		return fmt.Errorf("%s %w (%s)", p.role, ErrGraceExceeded, grace)
	}
}

// terminate sends SIGTERM to the process group, and SIGKILL if it is still
// around after killTimeout.
func (p *proc) terminate(ctx context.Context, killTimeout time.Duration) {
	pid := p.pid()
	if pid == 0 || p.exited() {
		return
	}

	log := log.Ctx(ctx).With().Str("role", p.role).Int("PID", pid).Logger()

	if err := unix.Kill(-pid, unix.SIGTERM); err != nil {
		log.Debug().Err(err).Msg("failed to send SIGTERM")
	}

	select {
	case <-p.done:
		return
	case <-time.After(killTimeout):
	}

	log.Warn().Msg("process ignored SIGTERM, killing")
	if err := unix.Kill(-pid, unix.SIGKILL); err != nil {
		log.Debug().Err(err).Msg("failed to send SIGKILL")
	}

	select {
	case <-p.done:
	case <-time.After(killTimeout):
		log.Error().Msg("process could not be killed, abandoning it")
	}
}
