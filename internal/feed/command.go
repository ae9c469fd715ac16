package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

type commandReader struct {
	io.ReadCloser
	cmd    *exec.Cmd
	cancel context.CancelFunc
}

// Close kills the producer if it is still running and reaps it. Wait
// closes the stdout pipe, so nothing may still be reading from it.
func (c *commandReader) Close() error {
	c.cancel()
	err := c.cmd.Wait()
	if err == nil || killed(err) {
		return nil
	}
	return fmt.Errorf("producer %s: %w", c.cmd.Path, err)
}

// killed reports whether err is the result of Close stopping the
// producer rather than the producer failing on its own.
func killed(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr) && exitErr.ExitCode() == -1
}

// openCommand runs a producer such as mosquitto_sub and streams its
// standard output. The command line is split on white space; no shell
// is involved.
func openCommand(ctx context.Context, cmdline string) (io.ReadCloser, error) {
	args := strings.Fields(cmdline)
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrUnsupportedSource)
	}

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stderr = os.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start %s: %w", args[0], err)
	}

	log.Debug().Strs("args", args).Int("pid", cmd.Process.Pid).Msg("started report producer")
	return &commandReader{ReadCloser: stdout, cmd: cmd, cancel: cancel}, nil
}
