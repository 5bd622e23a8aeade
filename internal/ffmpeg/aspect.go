package ffmpeg

import (
	"strconv"
	"strings"

	"github.com/five82/pencode/internal/mediainfo"
)

// Display aspect ratios at one decimal place that keep the stored height.
const (
	widescreenRounded = "1.8" // 16:9
	fullscreenRounded = "1.3" // 4:3
)

// EffectiveHeight returns the height used for resolution-bucket lookups.
// Sources whose display aspect ratio is neither 16:9 nor 4:3 are treated as
// if letterboxed to 16:9, so a 1920x800 scope film buckets as 1080.
func EffectiveHeight(p mediainfo.Probe) int {
	if p.Width <= 0 {
		return p.Height
	}
	ratio, ok := ParseAspectRatio(p.DisplayAspectRatio)
	if !ok {
		return p.Height
	}
	// FormatFloat rounds the exact binary value and breaks exact ties to
	// even, so 5:4 gives "1.2" while 1.85 gives "1.9".
	switch strconv.FormatFloat(ratio, 'f', 1, 64) {
	case widescreenRounded, fullscreenRounded:
		return p.Height
	}
	return p.Width * 9 / 16
}

// ParseAspectRatio parses "16:9", "1.85:1" or a decimal such as "1.778".
func ParseAspectRatio(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	num, den, found := strings.Cut(s, ":")
	if !found {
		r, err := strconv.ParseFloat(s, 64)
		if err != nil || r <= 0 {
			return 0, false
		}
		return r, true
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d <= 0 {
		return 0, false
	}
	return n / d, true
}
