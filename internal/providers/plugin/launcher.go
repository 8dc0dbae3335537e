package plugin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/GriffinCanCode/AgentOS/media/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/media/internal/shared/types"
	"go.uber.org/zap"
)

// Config locates the launcher and backend binaries
type Config struct {
	// LauncherPath is the executable every renderer is started through
	LauncherPath string
	// LauncherArgs are passed before the backend path
	LauncherArgs []string
	// PluginDir holds one binary per backend, named after the backend
	PluginDir string
	// PluginSuffix is appended to backend names, e.g. ".exe"
	PluginSuffix string
	// ShutdownGrace bounds how long Close waits before killing
	ShutdownGrace time.Duration
	// Env is added to the launcher's inherited environment
	Env []string
}

// ExecLauncher starts renderers as child processes
type ExecLauncher struct {
	cfg    Config
	logger *zap.Logger
}

// NewExecLauncher creates a launcher
func NewExecLauncher(cfg Config, logger *zap.Logger) *ExecLauncher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 5 * time.Second
	}
	return &ExecLauncher{cfg: cfg, logger: logger}
}

// PluginPath returns where the binary for backend is expected
func (l *ExecLauncher) PluginPath(backend string) string {
	return filepath.Join(l.cfg.PluginDir, backend+l.cfg.PluginSuffix)
}

// Launch implements types.Launcher. It returns as soon as the child has
// been started; initialization failures surface later as events.
func (l *ExecLauncher) Launch(ctx context.Context, req types.LaunchRequest) (types.Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, &types.LaunchError{Backend: req.Backend, Reason: "cancelled", Err: err}
	}
	if req.Backend == "" {
		return nil, &types.LaunchError{Reason: "no backend"}
	}
	if err := checkExecutable(l.cfg.LauncherPath); err != nil {
		return nil, &types.LaunchError{Backend: req.Backend, Reason: "launcher unavailable", Err: err}
	}
	pluginPath := l.PluginPath(req.Backend)
	if _, err := os.Stat(pluginPath); err != nil {
		return nil, &types.LaunchError{Backend: req.Backend, Reason: "plugin unavailable", Err: err}
	}

	args := append(append([]string(nil), l.cfg.LauncherArgs...), pluginPath)
	cmd := exec.Command(l.cfg.LauncherPath, args...)
	cmd.Env = append(os.Environ(), l.cfg.Env...)
	if req.UserDataDir != "" {
		cmd.Dir = req.UserDataDir
	}

	logger := l.logger.With(
		zap.String("launch", id.NewLaunchID().String()),
		zap.String("backend", req.Backend),
		zap.String("target", req.Target))
	p, err := start(cmd, req.Backend, l.cfg.ShutdownGrace, logger)
	if err != nil {
		return nil, &types.LaunchError{Backend: req.Backend, Reason: "start failed", Err: err}
	}

	p.send(Command{
		Op:          OpInit,
		Backend:     req.Backend,
		Width:       req.Width,
		Height:      req.Height,
		UserDataDir: req.UserDataDir,
		Language:    req.Language,
		Target:      req.Target,
	})
	logger.Info("renderer launched", zap.Int("pid", cmd.Process.Pid))
	return p, nil
}

func checkExecutable(path string) error {
	if path == "" {
		return errors.New("no launcher configured")
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if info.Mode()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}
