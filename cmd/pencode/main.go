// Package main provides the CLI entry point for pencode.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/five82/pencode"
	"github.com/five82/pencode/internal/config"
	"github.com/five82/pencode/internal/logging"
	"github.com/five82/pencode/internal/reporter"
)

const (
	appName    = "pencode"
	appVersion = "0.1.0"
)

// errLogged marks failures already reported at critical level.
var errLogged = errors.New("fatal error logged")

// usageError is a command-line mistake; it exits with status 2.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }

// encodeArgs holds the parsed command-line flags.
type encodeArgs struct {
	ext        string
	neighbour  bool
	filename   string
	verbose    int
	configPath string
	logFile    string
	json       bool
}

func main() {
	cmd := newRootCmd()
	err := cmd.Execute()
	if err == nil {
		return
	}

	var ue usageError
	switch {
	case errors.Is(err, errLogged):
		os.Exit(1)
	case errors.As(err, &ue):
		fmt.Fprintf(os.Stderr, "Error: %v\n\n%s", ue.err, cmd.UsageString())
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var ea encodeArgs

	cmd := &cobra.Command{
		Use:     appName + " [flags] PATH",
		Short:   "Encode video files through a VapourSynth script and ffmpeg",
		Version: appVersion,
		Long: `Encode a file, or every matching file below a directory, by piping a
VapourSynth script through vspipe into ffmpeg. Encoder arguments come from
the config file and are adjusted per source codec and resolution.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageError{fmt.Errorf("expected exactly one PATH, got %d", len(args))}
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cmd.Flags(), ea, args[0])
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	fs := cmd.Flags()
	fs.StringVarP(&ea.ext, "ext", "e", config.DefaultExtension,
		"Only files with this extension are encoded when PATH is a directory")
	fs.BoolVarP(&ea.neighbour, "neighbour", "n", false,
		"Write each encode next to its source instead of the working directory")
	fs.StringVarP(&ea.filename, "filename", "f", config.DefaultFilenameTemplate,
		"Output filename template; {name} and {ext} refer to the source")
	fs.CountVarP(&ea.verbose, "verbose", "v",
		"Verbosity: unset INFO, -v DEBUG, -vv WARNING, -vvv ERROR, -vvvv CRITICAL")
	fs.StringVar(&ea.configPath, "config", "",
		"Config file (default: config.toml next to the executable)")
	fs.StringVar(&ea.logFile, "log-file", "", "Also append log records to this file")
	fs.BoolVar(&ea.json, "json", false, "Print progress events as JSON lines on stdout")

	return cmd
}

// applyConfigDefaults fills flags the user did not set from [general].
func applyConfigDefaults(fs *pflag.FlagSet, general config.General, ea *encodeArgs) {
	if general.Ext != nil && !fs.Changed("ext") {
		ea.ext = *general.Ext
	}
	if general.Neighbour != nil && !fs.Changed("neighbour") {
		ea.neighbour = *general.Neighbour
	}
	if general.Filename != nil && !fs.Changed("filename") {
		ea.filename = *general.Filename
	}
	if general.Verbose != nil && !fs.Changed("verbose") {
		ea.verbose = *general.Verbose
	}
}

func runEncode(fs *pflag.FlagSet, ea encodeArgs, path string) error {
	configPath := ea.configPath
	if configPath == "" {
		configPath = config.DefaultPath()
	}

	cfg, cfgErr := pencode.LoadConfig(configPath)
	if cfg != nil {
		applyConfigDefaults(fs, cfg.General, &ea)
	}

	level, err := logging.LevelForVerbosity(ea.verbose)
	if err != nil {
		return usageError{err}
	}

	isTTY := term.IsTerminal(int(os.Stderr.Fd()))
	logCfg := logging.DefaultConfig()
	logCfg.Level = level
	logCfg.Color = isTTY
	logCfg.FilePath = ea.logFile
	logger, err := logging.New(logCfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	logger.Info("config file location", "path", configPath)
	if cfgErr != nil {
		logger.Critical(cfgErr.Error())
		return errLogged
	}

	var rep reporter.Reporter = reporter.NullReporter{}
	switch {
	case ea.json:
		rep = reporter.NewJSONReporter()
	case isTTY:
		rep = reporter.NewTerminalReporter()
	}

	encoder := pencode.New(cfg, pencode.WithLogger(logger.Logger), pencode.WithReporter(rep))
	if _, err := encoder.EncodeBatch(path, pencode.Options{
		Ext:       ea.ext,
		Neighbour: ea.neighbour,
		Filename:  ea.filename,
	}); err != nil {
		logger.Critical(err.Error())
		return errLogged
	}
	return nil
}
