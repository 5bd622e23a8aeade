// Package mediainfo probes source files for the video properties the
// encoder settings depend on.
package mediainfo

import (
	"bytes"
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"

	perrors "github.com/five82/pencode/internal/errors"
)

// codecAliases maps commercial names onto the codec ids used by Matroska so
// override tables only need one spelling.
var codecAliases = map[string]string{
	"MPEG-2 Video": "V_MPEG2",
}

// VideoTrack contains video track information from MediaInfo.
type VideoTrack struct {
	Format             string `json:"Format"`
	FormatCommercial   string `json:"Format_Commercial_IfAny"`
	CodecID            string `json:"CodecID"`
	Width              string `json:"Width"`
	Height             string `json:"Height"`
	DisplayAspectRatio string `json:"DisplayAspectRatio"`
	FrameCount         string `json:"FrameCount"`
	Duration           string `json:"Duration"`
}

// Track represents a MediaInfo track with type information.
type Track struct {
	Type  string `json:"@type"`
	Video VideoTrack
}

// UnmarshalJSON implements custom JSON unmarshaling for Track.
func (t *Track) UnmarshalJSON(data []byte) error {
	var typeOnly struct {
		Type string `json:"@type"`
	}
	if err := json.Unmarshal(data, &typeOnly); err != nil {
		return err
	}
	t.Type = typeOnly.Type

	if t.Type == "Video" {
		return json.Unmarshal(data, &t.Video)
	}
	return nil
}

// Media contains the track array.
type Media struct {
	Track []Track `json:"track"`
}

// Response is the root MediaInfo response structure.
type Response struct {
	Media Media `json:"media"`
}

// Probe is the subset of a file's video metadata used to derive encoder
// arguments.
type Probe struct {
	Codec              string
	Width              int
	Height             int
	DisplayAspectRatio string
	FrameCount         uint64
	DurationSecs       float64
}

// Prober runs the mediainfo binary.
type Prober struct {
	Binary string
}

// NewProber creates a prober for the given mediainfo binary.
func NewProber(binary string) *Prober {
	if binary == "" {
		binary = "mediainfo"
	}
	return &Prober{Binary: binary}
}

// Probe runs MediaInfo on path and extracts the first video track.
func (p *Prober) Probe(path string) (Probe, error) {
	cmd := exec.Command(p.Binary, "--Output=JSON", path)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return Probe{}, perrors.NewMediaProbeError("cannot read "+path,
			perrors.WrapExecError(p.Binary, err, strings.TrimSpace(stderr.String())))
	}

	resp, err := parseMediaInfoOutput(output)
	if err != nil {
		return Probe{}, perrors.NewMediaProbeError("cannot read "+path, err)
	}
	return FromResponse(resp)
}

// parseMediaInfoOutput parses MediaInfo JSON output into the Response structure.
func parseMediaInfoOutput(data []byte) (*Response, error) {
	var result Response
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FromResponse builds a Probe from the first video track of resp.
func FromResponse(resp *Response) (Probe, error) {
	var track *VideoTrack
	for i := range resp.Media.Track {
		if resp.Media.Track[i].Type == "Video" {
			track = &resp.Media.Track[i].Video
			break
		}
	}
	if track == nil {
		return Probe{}, perrors.NewMediaProbeError("no video track", nil)
	}

	width, err := strconv.Atoi(track.Width)
	if err != nil {
		return Probe{}, perrors.NewMediaProbeError("invalid width "+strconv.Quote(track.Width), err)
	}
	height, err := strconv.Atoi(track.Height)
	if err != nil {
		return Probe{}, perrors.NewMediaProbeError("invalid height "+strconv.Quote(track.Height), err)
	}

	probe := Probe{
		Codec:              codecOf(track),
		Width:              width,
		Height:             height,
		DisplayAspectRatio: track.DisplayAspectRatio,
	}
	// Frame count and duration only feed the progress display.
	if n, err := strconv.ParseUint(track.FrameCount, 10, 64); err == nil {
		probe.FrameCount = n
	}
	if d, err := strconv.ParseFloat(track.Duration, 64); err == nil {
		probe.DurationSecs = d
	}
	return probe, nil
}

// codecOf prefers the container codec id over the commercial format name.
func codecOf(track *VideoTrack) string {
	codec := track.CodecID
	if codec == "" {
		codec = track.FormatCommercial
	}
	if codec == "" {
		codec = track.Format
	}
	if alias, ok := codecAliases[codec]; ok {
		return alias
	}
	return codec
}
