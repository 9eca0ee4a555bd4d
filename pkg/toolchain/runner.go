package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/huanfeng/apkinspect/pkg/utils"
)

// DefaultTimeout bounds a single tool invocation
const DefaultTimeout = 30 * time.Second

// Runner runs an external tool and returns its combined output. A tool
// that cannot run yields a sentinel string carrying an error marker
// instead of an error value.
type Runner interface {
	Run(ctx context.Context, tool Tool, args ...string) string
}

// ExecRunner runs located tools as child processes
type ExecRunner struct {
	locator *Locator
	timeout time.Duration
	logger  utils.Logger
}

// NewExecRunner creates a runner. A zero timeout uses DefaultTimeout.
func NewExecRunner(locator *Locator, timeout time.Duration, logger utils.Logger) *ExecRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ExecRunner{
		locator: locator,
		timeout: timeout,
		logger:  utils.OrDiscard(logger),
	}
}

var _ Runner = (*ExecRunner)(nil)

// Run executes the tool. Output is returned whatever the exit status, since
// signer tools exit non-zero on the very results the parsers look for.
func (r *ExecRunner) Run(ctx context.Context, tool Tool, args ...string) string {
	status := r.locator.Locate(tool)
	if !status.Available {
		r.logger.Debug("%s unavailable: %s", tool, status.Error)
		return fmt.Sprintf("Error: %s not found", tool)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	argv := append(append([]string{}, status.Command.Args...), args...)
	cmd := exec.CommandContext(ctx, status.Command.Path, argv...)
	cmd.WaitDelay = time.Second
	r.logger.Debug("Running %s %v", status.Command.Path, argv)

	out, err := cmd.CombinedOutput()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Sprintf("Error: %s timed out after %s", tool, r.timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(bytes.TrimSpace(out)) > 0 {
			r.logger.Debug("%s exited with status %d", tool, exitErr.ExitCode())
			return string(out)
		}
		return fmt.Sprintf("Error running %s: %v", tool, err)
	}
	return string(out)
}

// BadgingArgs are the arguments for aapt and aapt2
func BadgingArgs(apkPath string) []string {
	return []string{"dump", "badging", apkPath}
}

// APKSignerArgs are the arguments for apksigner
func APKSignerArgs(apkPath string) []string {
	return []string{"verify", "--verbose", "--print-certs", apkPath}
}

// JarSignerArgs are the arguments for jarsigner
func JarSignerArgs(apkPath string) []string {
	return []string{"-verify", "-verbose", "-certs", apkPath}
}
