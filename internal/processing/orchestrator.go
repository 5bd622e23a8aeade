// Package processing drives the per-file encode loop.
package processing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/five82/pencode/internal/config"
	"github.com/five82/pencode/internal/discovery"
	perrors "github.com/five82/pencode/internal/errors"
	"github.com/five82/pencode/internal/ffmpeg"
	"github.com/five82/pencode/internal/logging"
	"github.com/five82/pencode/internal/mediainfo"
	"github.com/five82/pencode/internal/pipeline"
	"github.com/five82/pencode/internal/reporter"
	"github.com/five82/pencode/internal/util"
	"github.com/five82/pencode/internal/vspipe"
)

// Prober reads the video properties of a file.
type Prober interface {
	Probe(path string) (mediainfo.Probe, error)
}

// Encoder primes the frame server and runs the encode for one job.
type Encoder interface {
	Run(job pipeline.Job, filter vspipe.Invocation, encoderArgs []string) (time.Duration, error)
}

// Options are the per-run CLI choices.
type Options struct {
	// Ext selects files when the input path is a directory.
	Ext string
	// Neighbour writes outputs next to their inputs instead of WorkDir.
	Neighbour bool
	// Filename is the output name template.
	Filename string
	// WorkDir defaults to the process working directory.
	WorkDir string
}

// Deps are the collaborators of a run.
type Deps struct {
	Prober   Prober
	Encoder  Encoder
	Log      *logging.Logger
	Reporter reporter.Reporter
}

// EncodeResult contains the result of a single file encode.
type EncodeResult struct {
	Input      string
	Output     string
	Settings   ffmpeg.Settings
	Elapsed    time.Duration
	InputSize  uint64
	OutputSize uint64
}

// Template is the configuration compiled once per run.
type Template struct {
	Args      *ffmpeg.Args
	Overrides ffmpeg.OverrideTable
	VS        config.VS
}

// NewTemplate compiles cfg's encoder template and override tables.
func NewTemplate(cfg *config.Config) (Template, error) {
	table, err := ffmpeg.NewOverrideTable(cfg.FFmpeg.Overrides)
	if err != nil {
		return Template{}, err
	}
	return Template{
		Args:      ffmpeg.NewArgs(cfg.FFmpeg.Args),
		Overrides: table,
		VS:        cfg.VS,
	}, nil
}

// Run encodes every file path resolves to. The first failing file stops
// the batch; results holds the files finished before it.
func Run(cfg *config.Config, path string, opts Options, deps Deps) ([]EncodeResult, error) {
	deps = deps.withDefaults()
	log := deps.Log

	ext := strings.TrimPrefix(opts.Ext, ".")
	if ext == "" {
		ext = config.DefaultExtension
	}
	template := opts.Filename
	if template == "" {
		template = config.DefaultFilenameTemplate
	}
	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, perrors.NewIOError("cannot determine working directory", err)
		}
		workDir = wd
	}

	files, err := discovery.FindFilesWithLogging(path, ext, log)
	if err != nil {
		return nil, err
	}

	tmpl, err := NewTemplate(cfg)
	if err != nil {
		return nil, err
	}

	if len(files) == 1 {
		log.Info("encoding", "path", path)
	} else {
		log.Info(fmt.Sprintf("encoding %d .%s files", len(files), ext), "path", path)
		names := make([]string, len(files))
		for i, f := range files {
			names[i] = util.GetFilename(f)
		}
		outputDir := workDir
		if opts.Neighbour {
			outputDir = "(next to each input)"
		}
		deps.Reporter.BatchStarted(reporter.BatchStartInfo{
			TotalFiles: len(files),
			FileList:   names,
			OutputDir:  outputDir,
		})
	}

	batchStart := time.Now()
	var results []EncodeResult
	for i, input := range files {
		dir := util.OutputDirFor(input, opts.Neighbour, workDir)
		output := util.AllocateOutputPath(template, util.GetFileStem(input), filepath.Ext(input), dir)

		deps.Reporter.FileProgress(reporter.FileProgressContext{
			CurrentFile: i + 1,
			TotalFiles:  len(files),
			InputFile:   input,
			OutputFile:  output,
		})

		result, err := EncodeFile(tmpl, input, output, deps)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}

	if len(files) > 1 {
		deps.Reporter.BatchComplete(summarize(results, len(files), time.Since(batchStart)))
	}
	return results, nil
}

// EncodeFile probes input, resolves the encoder arguments, runs the
// pipeline into output and removes the source's sidecar files. Sidecars
// are only removed after a successful encode. Failures are also sent to
// the reporter as an error event.
func EncodeFile(tmpl Template, input, output string, deps Deps) (EncodeResult, error) {
	deps = deps.withDefaults()
	result, err := encodeFile(tmpl, input, output, deps)
	if err != nil {
		deps.Reporter.Error(reporter.ReporterError{
			Title:   "Encoding failed",
			Message: err.Error(),
			Context: input,
		})
	}
	return result, err
}

func encodeFile(tmpl Template, input, output string, deps Deps) (EncodeResult, error) {
	log := deps.Log.Named("encode")

	log.Info("encoding", "file", input)
	log.Info("saving to", "file", output)

	probe, err := deps.Prober.Probe(input)
	if err != nil {
		if perrors.IsKind(err, perrors.KindMediaProbe) {
			return EncodeResult{}, err
		}
		return EncodeResult{}, perrors.NewMediaProbeError("cannot read media info for "+input, err)
	}
	log.Debug("probed", "codec", probe.Codec, "width", probe.Width, "height", probe.Height,
		"dar", probe.DisplayAspectRatio, "lookup_height", ffmpeg.EffectiveHeight(probe),
		"duration", util.FormatDuration(probe.DurationSecs))

	args, err := ffmpeg.BuildCommand(tmpl.Args, tmpl.Overrides, probe, input)
	if err != nil {
		return EncodeResult{}, err
	}
	settings := ffmpeg.SettingsOf(args)
	log.Info("encoder settings",
		"profile", settings.Profile,
		"level", settings.Level,
		"maxrate", settings.Maxrate,
		"crf", settings.CRF,
		"preset", settings.Preset)
	log.Debug("ffmpeg arguments", "args", strings.Join(args.Tokens(), " "))

	deps.Reporter.EncodingConfig(reporter.EncodingConfigSummary{
		Codec:      probe.Codec,
		Resolution: fmt.Sprintf("%dx%d", probe.Width, probe.Height),
		Preset:     settings.Preset,
		CRF:        settings.CRF,
		Profile:    settings.Profile,
		Level:      settings.Level,
		Maxrate:    settings.Maxrate,
		Bufsize:    settings.Bufsize,
	})

	filter := vspipe.NewInvocation(tmpl.VS, input)
	job := pipeline.Job{
		Input:        input,
		Output:       output,
		Frames:       probe.FrameCount,
		DurationSecs: probe.DurationSecs,
	}
	elapsed, err := deps.Encoder.Run(job, filter, args.Tokens())
	if err != nil {
		return EncodeResult{}, err
	}

	for _, err := range util.RemoveSidecars(input) {
		log.Warn("cannot remove sidecar", "error", err)
		deps.Reporter.Warning(err.Error())
	}

	log.Info("finished encoding", "file", input)
	log.Info(fmt.Sprintf("it took %d minutes", util.WholeMinutes(elapsed)))

	inputSize, _ := util.GetFileSize(input)
	outputSize, _ := util.GetFileSize(output)
	deps.Reporter.EncodingComplete(reporter.EncodingOutcome{
		InputFile:    input,
		OutputFile:   output,
		OriginalSize: inputSize,
		EncodedSize:  outputSize,
		TotalTime:    elapsed,
	})

	return EncodeResult{
		Input:      input,
		Output:     output,
		Settings:   settings,
		Elapsed:    elapsed,
		InputSize:  inputSize,
		OutputSize: outputSize,
	}, nil
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = logging.Discard()
	}
	if d.Reporter == nil {
		d.Reporter = reporter.NullReporter{}
	}
	return d
}

func summarize(results []EncodeResult, total int, elapsed time.Duration) reporter.BatchSummary {
	summary := reporter.BatchSummary{
		SuccessfulCount: len(results),
		TotalFiles:      total,
		TotalDuration:   elapsed,
	}
	for _, r := range results {
		summary.TotalOriginalSize += r.InputSize
		summary.TotalEncodedSize += r.OutputSize
		summary.FileResults = append(summary.FileResults, reporter.FileResult{
			Filename:  util.GetFilename(r.Output),
			Reduction: util.CalculateSizeReduction(r.InputSize, r.OutputSize),
			Elapsed:   r.Elapsed,
		})
	}
	return summary
}
