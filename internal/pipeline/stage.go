// Package pipeline runs the frame server and the encoder as a two-stage
// process pipeline.
package pipeline

import (
	"errors"
	"io"
	"os/exec"

	perrors "github.com/five82/pencode/internal/errors"
)

// Stage is one started process of a pipeline.
type Stage struct {
	name string
	cmd  *exec.Cmd
}

// StartStage starts name with args. A nil stdin reads from and a nil
// stdout writes to the null device. An *os.File is handed to the child
// directly, so the caller must close its copy after StartStage returns.
func StartStage(name string, args []string, stdin io.Reader, stdout, stderr io.Writer) (*Stage, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, perrors.NewCommandStartError(name, err)
	}
	return &Stage{name: name, cmd: cmd}, nil
}

// Name returns the binary the stage runs.
func (s *Stage) Name() string {
	return s.name
}

// Wait blocks until the process exits and returns its exit code. The error
// is only set when the exit status could not be collected.
func (s *Stage) Wait() (int, error) {
	err := s.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, perrors.NewCommandWaitError(s.name, err)
}
