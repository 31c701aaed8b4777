package job

// Local job system. Runs the server and client binaries of a scenario
// on this machine, and reports whether both exited cleanly.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cedana/netbench/pkg/config"
	"github.com/cedana/netbench/pkg/logging"
	"github.com/cedana/netbench/pkg/runner"
	"github.com/cedana/netbench/pkg/utils"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

const (
	DEFAULT_GRACE        = 10 * time.Second
	DEFAULT_KILL_TIMEOUT = 2 * time.Second

	LOG_DIR_PERMS  = 0o755
	LOG_FILE_PERMS = 0o644
	LOG_FILE_FLAGS = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
)

type Local struct {
	fs          afero.Fs
	grace       time.Duration
	killTimeout time.Duration
	sudo        string
}

type Option func(*Local)

// WithFs sets the filesystem binaries are resolved on and logs are written to.
func WithFs(fs afero.Fs) Option {
	return func(l *Local) { l.fs = fs }
}

// WithGrace sets how long the server may keep running once the client is done.
func WithGrace(grace time.Duration) Option {
	return func(l *Local) { l.grace = grace }
}

// WithKillTimeout sets how long a process gets between SIGTERM and SIGKILL.
func WithKillTimeout(timeout time.Duration) Option {
	return func(l *Local) { l.killTimeout = timeout }
}

func NewLocal(opts ...Option) *Local {
	l := &Local{
		fs:          afero.NewOsFs(),
		grace:       DEFAULT_GRACE,
		killTimeout: DEFAULT_KILL_TIMEOUT,
		sudo:        "sudo",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Execute runs the server, waits for the start delay, runs the client, and
// waits for both. The scenario passes only if both exit with code 0.
// Errors are only returned when nothing could be started.
func (l *Local) Execute(ctx context.Context, req *runner.Request) (*runner.Result, error) {
	s := req.Scaffolding
	log := log.Ctx(ctx).With().Str("category", req.Category).Logger()
	ctx = log.WithContext(ctx)

	serverPath, err := ResolveBinary(l.fs, s.Repository, s.ServerName, s.Debug)
	if err != nil {
		return nil, err
	}
	clientPath, err := ResolveBinary(l.fs, s.Repository, s.ClientName, s.Debug)
	if err != nil {
		return nil, err
	}

	if err := l.fs.MkdirAll(s.LogDirectory, LOG_DIR_PERMS); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	env := Environ(s, req.NetworkTest)

	server, closeServer, err := l.prepare(ctx, req, ROLE_SERVER, serverPath, req.ServerArgs, env)
	if err != nil {
		return nil, err
	}
	defer closeServer()

	client, closeClient, err := l.prepare(ctx, req, ROLE_CLIENT, clientPath, req.ClientArgs, env)
	if err != nil {
		return nil, err
	}
	defer closeClient()

	if err := server.start(ctx); err != nil {
		return nil, err
	}

	// Give the server time to bind before the client dials
	select {
	case <-server.done:
		return l.failed(server, fmt.Errorf("server exited with code %d before client started", server.exitCode())), nil
	case <-ctx.Done():
		server.terminate(ctx, l.killTimeout)
		return l.failed(server, fmt.Errorf("timed out waiting to start client: %w", ctx.Err())), nil
	case <-time.After(s.Delay):
	}

	if !server.running(ctx) {
		server.terminate(ctx, l.killTimeout)
		return l.failed(server, fmt.Errorf("server not running after %s delay", s.Delay)), nil
	}

	if err := client.start(ctx); err != nil {
		server.terminate(ctx, l.killTimeout)
		return l.failed(client, err), nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return blame(client, client.wait(gctx, 0, l.killTimeout))
	})
	g.Go(func() error {
		select {
		case <-server.done:
			// finishing before the client is fine, crashing is not
			return blame(server, server.result())
		case <-client.done:
			if client.result() == nil {
				return blame(server, server.wait(gctx, l.grace, l.killTimeout))
			}
		case <-gctx.Done():
		}
		return blame(server, server.wait(gctx, 0, l.killTimeout))
	})

	if err := g.Wait(); err != nil {
		culprit := client
		var perr *procError
		if errors.As(err, &perr) {
			culprit = perr.proc
		}
		return l.failed(culprit, err), nil
	}

	log.Debug().Int("server", server.exitCode()).Int("client", client.exitCode()).Msg("both processes exited cleanly")

	return &runner.Result{
		Passed:     true,
		Diagnostic: fmt.Sprintf("server and client exited cleanly, logs in %s", s.LogDirectory),
	}, nil
}

// prepare creates the process for a role, with its output going to the
// role's log file, and mirrored to the logger.
func (l *Local) prepare(ctx context.Context, req *runner.Request, role string, path string, args string, env []string) (*proc, func(), error) {
	logPath := LogPath(req.Scaffolding.LogDirectory, req.Alias, role)
	logFile, err := l.fs.OpenFile(logPath, LOG_FILE_FLAGS, LOG_FILE_PERMS)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s log file: %w", role, err)
	}

	logWriter := logging.Writer(*log.Ctx(ctx), req.Alias, role, zerolog.DebugLevel)
	out := io.MultiWriter(logFile, logWriter)

	name, argv := l.command(req.Scaffolding, path, strings.Fields(args))

	closeLogs := func() {
		logWriter.Close()
		logFile.Close()
	}

	return newProc(role, name, argv, env, out, logPath, l.killTimeout), closeLogs, nil
}

// command wraps the binary in sudo when elevation is requested and
// we are not already root.
func (l *Local) command(s config.Scaffolding, path string, args []string) (string, []string) {
	if !s.Sudo || utils.IsRootUser() {
		return path, args
	}
	return l.sudo, append([]string{"-E", path}, args...)
}

// procError ties a wait error to the process that caused it, so the
// first failure decides whose log ends up in the diagnostic.
type procError struct {
	proc *proc
	err  error
}

func (e *procError) Error() string { return e.err.Error() }
func (e *procError) Unwrap() error { return e.err }

func blame(p *proc, err error) error {
	if err == nil {
		return nil
	}
	return &procError{proc: p, err: err}
}

func (l *Local) failed(p *proc, err error) *runner.Result {
	diagnostic := err.Error()
	if msg, lerr := logging.LastMsgFromFile(p.logPath); lerr == nil && msg != "" {
		diagnostic = fmt.Sprintf("%s (last %s output: %q)", diagnostic, p.role, msg)
	}
	return &runner.Result{
		Passed:     false,
		Diagnostic: diagnostic,
	}
}

// LogPath returns the log file of a role in a scenario.
func LogPath(dir string, alias string, role string) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%s.log", alias, role))
}

// Environ returns the environment both binaries run with.
func Environ(s config.Scaffolding, networkTest bool) []string {
	env := os.Environ()
	if s.LibOS != "" {
		env = append(env, "LIBOS="+s.LibOS)
	}
	if s.ConfigPath != "" {
		env = append(env, "CONFIG_PATH="+s.ConfigPath)
	}
	if s.Debug {
		env = append(env, "RUST_LOG=trace")
	}
	if networkTest {
		env = append(env, "NETBENCH_NETWORK_TEST=1")
	}
	return env
}
