package ffmpeg

import "github.com/five82/pencode/internal/mediainfo"

// Settings contains the resolved encoder values for display purposes.
type Settings struct {
	Preset  string
	CRF     string
	Profile string
	Level   string
	Maxrate string
	Bufsize string
}

// SettingsOf reads the display values from a resolved argument vector.
// Flags missing from the template are reported as "-".
func SettingsOf(a *Args) Settings {
	get := func(flag string) string {
		if v, ok := a.Value(flag); ok {
			return v
		}
		return "-"
	}
	return Settings{
		Preset:  get("-preset"),
		CRF:     get("-crf"),
		Profile: get("-profile"),
		Level:   get("-level"),
		Maxrate: get("-maxrate"),
		Bufsize: get("-bufsize"),
	}
}

// BuildCommand resolves overrides for probe and expands the input
// placeholders, returning the encoder arguments without the output path.
func BuildCommand(base *Args, table OverrideTable, probe mediainfo.Probe, input string) (*Args, error) {
	args, err := Resolve(base, probe, table)
	if err != nil {
		return nil, err
	}
	args.ExpandInputs(input)
	return args, nil
}
