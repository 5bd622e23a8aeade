package pipeline

import (
	"errors"
	"io"
	"os"
	"strings"
	"time"

	perrors "github.com/five82/pencode/internal/errors"
	"github.com/five82/pencode/internal/ffmpeg"
	"github.com/five82/pencode/internal/logging"
	"github.com/five82/pencode/internal/reporter"
	"github.com/five82/pencode/internal/vspipe"
)

// Job is one input/output pair. Frames and DurationSecs only drive progress
// display and may be zero.
type Job struct {
	Input        string
	Output       string
	Frames       uint64
	DurationSecs float64
}

// Runner primes the frame server and then pipes it into the encoder.
type Runner struct {
	VSPipe   string
	FFmpeg   string
	Log      *logging.Logger
	Reporter reporter.Reporter

	// Stderr receives vspipe's diagnostics. Defaults to os.Stderr.
	Stderr io.Writer
}

// Run executes the priming pass and the encode for job and returns the
// wall-clock time of the encode. Nothing is encoded when priming fails.
func (r *Runner) Run(job Job, filter vspipe.Invocation, encoderArgs []string) (time.Duration, error) {
	if err := r.prime(filter); err != nil {
		return 0, err
	}

	start := time.Now()
	err := r.encode(job, filter, encoderArgs)
	return time.Since(start), err
}

func (r *Runner) prime(filter vspipe.Invocation) error {
	args := filter.Args(true)
	r.log().Debug("priming", "cmd", commandLine(r.VSPipe, args))

	stage, err := StartStage(r.VSPipe, args, nil, nil, r.stderr())
	if err != nil {
		return perrors.NewPipelineError("unexpected error during priming", err)
	}
	code, err := stage.Wait()
	if err != nil {
		return perrors.NewPipelineError("unexpected error during priming", err)
	}
	if code != 0 {
		return perrors.NewPipelineError("unexpected error during priming",
			perrors.NewCommandFailedError(r.VSPipe, code, ""))
	}
	return nil
}

func (r *Runner) encode(job Job, filter vspipe.Invocation, encoderArgs []string) error {
	vsArgs := filter.Args(false)
	ffArgs := make([]string, 0, len(encoderArgs)+1)
	ffArgs = append(ffArgs, encoderArgs...)
	ffArgs = append(ffArgs, job.Output)

	log := r.log()
	log.Debug("filter", "cmd", commandLine(r.VSPipe, vsArgs))
	log.Debug("encoder", "cmd", commandLine(r.FFmpeg, ffArgs))

	pr, pw, err := os.Pipe()
	if err != nil {
		return perrors.NewPipelineError("cannot create pipe", err)
	}

	vs, err := StartStage(r.VSPipe, vsArgs, nil, pw, r.stderr())
	pw.Close()
	if err != nil {
		pr.Close()
		return perrors.NewPipelineError("cannot start filter", err)
	}

	rep := r.reporter()
	rep.EncodingStarted(job.Frames)
	progress := ffmpeg.NewProgressWriter(job.DurationSecs, job.Frames, func(p ffmpeg.Progress) {
		rep.EncodingProgress(reporter.ProgressSnapshot{
			CurrentFrame: p.CurrentFrame,
			TotalFrames:  p.TotalFrames,
			Percent:      p.Percent,
			Speed:        p.Speed,
			FPS:          p.FPS,
			ETA:          p.ETA,
			Bitrate:      p.Bitrate,
		})
	})

	ff, err := StartStage(r.FFmpeg, ffArgs, pr, nil, progress)
	pr.Close()
	if err != nil {
		// vspipe sees a broken pipe and exits; reap it.
		_, _ = vs.Wait()
		return perrors.NewPipelineError("cannot start encoder", err)
	}

	var errs []error
	if code, err := vs.Wait(); err != nil {
		errs = append(errs, err)
	} else if code != 0 {
		errs = append(errs, perrors.NewCommandFailedError(r.VSPipe, code, ""))
	}
	if code, err := ff.Wait(); err != nil {
		errs = append(errs, err)
	} else if code != 0 {
		errs = append(errs, perrors.NewCommandFailedError(r.FFmpeg, code, progress.Tail()))
	}

	if len(errs) > 0 {
		return perrors.NewPipelineError("encoding failed", errors.Join(errs...))
	}
	return nil
}

func (r *Runner) log() *logging.Logger {
	if r.Log == nil {
		return logging.Discard()
	}
	return r.Log
}

func (r *Runner) reporter() reporter.Reporter {
	if r.Reporter == nil {
		return reporter.NullReporter{}
	}
	return r.Reporter
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr == nil {
		return os.Stderr
	}
	return r.Stderr
}

func commandLine(name string, args []string) string {
	return name + " " + strings.Join(args, " ")
}
