// Package pencode encodes video files by piping a VapourSynth script through
// vspipe into ffmpeg.
//
// Encoder arguments come from a TOML config file whose [ffmpeg.auto] tables
// override individual flags per source codec or per resolution bucket.
//
// Basic usage:
//
//	cfg, err := pencode.LoadConfig("config.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	encoder := pencode.New(cfg)
//	batch, err := encoder.EncodeBatch("/media/rips", pencode.Options{Ext: "mkv"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Encoded %d files\n", batch.SuccessfulCount)
package pencode

import (
	"log/slog"
	"time"

	"github.com/five82/pencode/internal/config"
	"github.com/five82/pencode/internal/discovery"
	"github.com/five82/pencode/internal/logging"
	"github.com/five82/pencode/internal/mediainfo"
	"github.com/five82/pencode/internal/pipeline"
	"github.com/five82/pencode/internal/processing"
	"github.com/five82/pencode/internal/reporter"
	"github.com/five82/pencode/internal/util"
)

// Config is a loaded and validated configuration file.
type Config = config.Config

// Reporter receives progress events.
type Reporter = reporter.Reporter

// NullReporter discards every event.
type NullReporter = reporter.NullReporter

// LoadConfig reads and validates the TOML config file at path.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// DefaultConfigPath returns config.toml next to the running executable.
func DefaultConfigPath() string {
	return config.DefaultPath()
}

// Encoder is the main entry point for video encoding.
type Encoder struct {
	config   *config.Config
	log      *logging.Logger
	reporter reporter.Reporter
}

// Options selects the files of a batch and names the outputs.
type Options struct {
	// Ext filters files when the path is a directory. Defaults to "mkv".
	Ext string
	// Neighbour writes each output next to its input.
	Neighbour bool
	// Filename is the output name template with {name} and {ext}.
	// Defaults to "{name}-encoded".
	Filename string
	// WorkDir receives outputs when Neighbour is unset. Defaults to the
	// process working directory.
	WorkDir string
}

// Result contains the result of a single file encode.
type Result struct {
	InputFile            string
	OutputFile           string
	OriginalSize         uint64
	EncodedSize          uint64
	SizeReductionPercent float64
	Elapsed              time.Duration
}

// BatchResult contains the result of a batch encode.
type BatchResult struct {
	Results            []Result
	SuccessfulCount    int
	TotalSizeReduction float64
}

// Option configures the encoder.
type Option func(*Encoder)

// New creates an Encoder for cfg.
func New(cfg *Config, opts ...Option) *Encoder {
	e := &Encoder{
		config:   cfg,
		log:      logging.Discard(),
		reporter: reporter.NullReporter{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithLogger sends log records to l.
func WithLogger(l *slog.Logger) Option {
	return func(e *Encoder) {
		e.log = &logging.Logger{Logger: l}
	}
}

// WithReporter sends progress events to r.
func WithReporter(r Reporter) Option {
	return func(e *Encoder) {
		if r != nil {
			e.reporter = r
		}
	}
}

func (e *Encoder) deps() processing.Deps {
	return processing.Deps{
		Prober: mediainfo.NewProber(e.config.Tools.MediaInfo),
		Encoder: &pipeline.Runner{
			VSPipe:   e.config.Tools.VSPipe,
			FFmpeg:   e.config.Tools.FFmpeg,
			Log:      e.log.Named("pipeline"),
			Reporter: e.reporter,
		},
		Log:      e.log,
		Reporter: e.reporter,
	}
}

// Encode encodes input into output. Sidecar files of input are removed
// after a successful encode.
func (e *Encoder) Encode(input, output string) (*Result, error) {
	tmpl, err := processing.NewTemplate(e.config)
	if err != nil {
		return nil, err
	}
	r, err := processing.EncodeFile(tmpl, input, output, e.deps())
	if err != nil {
		return nil, err
	}
	res := toResult(r)
	return &res, nil
}

// EncodeBatch encodes path, a file or a directory searched recursively for
// *.<Ext>. It stops at the first failing file and returns the results of
// the files finished before it together with the error.
func (e *Encoder) EncodeBatch(path string, opts Options) (*BatchResult, error) {
	results, err := processing.Run(e.config, path, processing.Options{
		Ext:       opts.Ext,
		Neighbour: opts.Neighbour,
		Filename:  opts.Filename,
		WorkDir:   opts.WorkDir,
	}, e.deps())

	batch := &BatchResult{}
	var totalInputSize, totalOutputSize uint64
	for _, r := range results {
		batch.Results = append(batch.Results, toResult(r))
		batch.SuccessfulCount++
		totalInputSize += r.InputSize
		totalOutputSize += r.OutputSize
	}
	batch.TotalSizeReduction = util.CalculateSizeReduction(totalInputSize, totalOutputSize)

	return batch, err
}

// FindFiles lists the files EncodeBatch would encode for root.
func FindFiles(root, ext string) ([]string, error) {
	return discovery.FindFiles(root, ext)
}

func toResult(r processing.EncodeResult) Result {
	return Result{
		InputFile:            r.Input,
		OutputFile:           r.Output,
		OriginalSize:         r.InputSize,
		EncodedSize:          r.OutputSize,
		SizeReductionPercent: util.CalculateSizeReduction(r.InputSize, r.OutputSize),
		Elapsed:              r.Elapsed,
	}
}
