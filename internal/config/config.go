package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/BurntSushi/toml"

	perrors "github.com/five82/pencode/internal/errors"
)

// Default constants
const (
	// DefaultFileName is the config file looked up next to the executable.
	DefaultFileName = "config.toml"

	// DefaultExtension is the extension filter used when PATH is a directory.
	DefaultExtension = "mkv"

	// DefaultFilenameTemplate is the output filename template.
	DefaultFilenameTemplate = "{name}-encoded"

	// DefaultVSPipe is the VapourSynth pipe binary.
	DefaultVSPipe = "vspipe"

	// DefaultFFmpeg is the encoder binary.
	DefaultFFmpeg = "ffmpeg"

	// DefaultMediaInfo is the media probing binary.
	DefaultMediaInfo = "mediainfo"
)

// General holds CLI defaults. A nil field means the CLI default applies.
type General struct {
	Ext       *string `toml:"ext"`
	Neighbour *bool   `toml:"neighbour"`
	Filename  *string `toml:"filename"`
	Verbose   *int    `toml:"verbose"`
}

// Tools names the external binaries.
type Tools struct {
	VSPipe    string `toml:"vspipe"`
	FFmpeg    string `toml:"ffmpeg"`
	MediaInfo string `toml:"mediainfo"`
}

// Flag is a single vspipe flag in document order.
// Value is the decoded TOML value (string, int64, float64 or bool).
type Flag struct {
	Name  string
	Value any
}

// VS is the [vs] section.
type VS struct {
	Script string
	Flags  []Flag
}

// Override holds the raw [ffmpeg.auto."<flag>"] table for one flag.
// Keys are codec identifiers or digit-only resolution thresholds.
type Override struct {
	Flag   string
	Values map[string]string
}

// FFmpeg is the [ffmpeg] section.
type FFmpeg struct {
	Args      []string
	Overrides []Override
}

// Config is the immutable, process-wide configuration.
type Config struct {
	Path    string
	General General
	Tools   Tools
	VS      VS
	FFmpeg  FFmpeg
}

// document mirrors the TOML layout before ordering is recovered.
type document struct {
	General General        `toml:"general"`
	Tools   Tools          `toml:"tools"`
	VS      map[string]any `toml:"vs"`
	FFmpeg  struct {
		Args []any                     `toml:"args"`
		Auto map[string]map[string]any `toml:"auto"`
	} `toml:"ffmpeg"`
}

// DefaultPath returns config.toml next to the running executable.
func DefaultPath() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(filepath.Dir(exe), DefaultFileName)
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return nil, configError("cannot load "+path, ErrEmpty)
	}

	var doc document
	md, err := toml.DecodeFile(path, &doc)
	if err != nil {
		return nil, configError(fmt.Sprintf("cannot parse %s", path), err)
	}
	if len(md.Keys()) == 0 {
		return nil, configError("cannot load "+path, ErrEmpty)
	}

	cfg := &Config{
		Path:    path,
		General: doc.General,
		Tools:   doc.Tools,
	}
	cfg.applyToolDefaults()

	for _, key := range md.Keys() {
		if len(key) != 2 || key[0] != "vs" {
			continue
		}
		name := key[1]
		if name == "script" {
			script, ok := doc.VS[name].(string)
			if !ok {
				return nil, configError("vs.script must be a string", ErrMissingScript)
			}
			cfg.VS.Script = script
			continue
		}
		cfg.VS.Flags = append(cfg.VS.Flags, Flag{Name: name, Value: doc.VS[name]})
	}

	cfg.FFmpeg.Overrides = orderedOverrides(md.Keys(), doc.FFmpeg.Auto)

	for _, v := range doc.FFmpeg.Args {
		cfg.FFmpeg.Args = append(cfg.FFmpeg.Args, FormatValue(v))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyToolDefaults() {
	if c.Tools.VSPipe == "" {
		c.Tools.VSPipe = DefaultVSPipe
	}
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = DefaultFFmpeg
	}
	if c.Tools.MediaInfo == "" {
		c.Tools.MediaInfo = DefaultMediaInfo
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.VS.Script == "" {
		return configError("invalid [vs] section", ErrMissingScript)
	}
	if len(c.FFmpeg.Args) == 0 {
		return configError("invalid [ffmpeg] section", ErrMissingArgs)
	}

	defined := make(map[string]bool, len(c.FFmpeg.Args))
	for i, tok := range c.FFmpeg.Args {
		// The last token has no value slot to override.
		if i < len(c.FFmpeg.Args)-1 {
			defined[tok] = true
		}
	}
	for _, o := range c.FFmpeg.Overrides {
		if !defined[o.Flag] {
			return configError(o.Flag, ErrUndefinedFlag)
		}
	}
	return nil
}

// FormatValue renders a decoded TOML value as a command-line token.
// Integral floats keep one decimal place so 4.0 stays "4.0".
func FormatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return strconv.FormatFloat(t, 'f', 1, 64)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// orderedOverrides builds one Override per [ffmpeg.auto] flag, in the order
// the flag first appears in the document. Tables, dotted keys and inline
// tables all decode into auto; keys only recover their order.
func orderedOverrides(keys []toml.Key, auto map[string]map[string]any) []Override {
	var order []string
	seen := make(map[string]bool, len(auto))
	for _, key := range keys {
		if len(key) < 3 || key[0] != "ffmpeg" || key[1] != "auto" || seen[key[2]] {
			continue
		}
		seen[key[2]] = true
		order = append(order, key[2])
	}
	var rest []string
	for flag := range auto {
		if !seen[flag] {
			rest = append(rest, flag)
		}
	}
	sort.Strings(rest)
	order = append(order, rest...)

	overrides := make([]Override, 0, len(order))
	for _, flag := range order {
		values := make(map[string]string, len(auto[flag]))
		for k, v := range auto[flag] {
			values[k] = FormatValue(v)
		}
		overrides = append(overrides, Override{Flag: flag, Values: values})
	}
	return overrides
}

func configError(message string, underlying error) error {
	return perrors.NewConfigError(message, underlying)
}
