package ffmpeg

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/five82/pencode/internal/util"
)

// Progress represents encoding progress information.
type Progress struct {
	CurrentFrame uint64
	TotalFrames  uint64
	Percent      float32
	Speed        float32
	FPS          float32
	ETA          time.Duration
	Bitrate      string
	ElapsedSecs  float64
}

// ProgressCallback is called with progress updates during encoding.
type ProgressCallback func(Progress)

var timeRegex = regexp.MustCompile(`time=(\d{2}:\d{2}:\d{2}\.?\d*)`)

// stderrTailSize bounds how much of ffmpeg's stderr is kept for errors.
const stderrTailSize = 4096

// ProgressWriter consumes ffmpeg's stderr, reports progress lines and keeps
// the tail of the output for error messages.
type ProgressWriter struct {
	mu          sync.Mutex
	line        []byte
	tail        []byte
	duration    float64
	totalFrames uint64
	callback    ProgressCallback
}

// NewProgressWriter creates a writer for a source of the given duration and
// frame count. Either may be zero when unknown.
func NewProgressWriter(duration float64, totalFrames uint64, callback ProgressCallback) *ProgressWriter {
	return &ProgressWriter{
		duration:    duration,
		totalFrames: totalFrames,
		callback:    callback,
	}
}

// Write implements io.Writer. Progress lines end with \r or \n.
func (w *ProgressWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.tail = append(w.tail, p...)
	if len(w.tail) > stderrTailSize {
		w.tail = w.tail[len(w.tail)-stderrTailSize:]
	}

	for _, b := range p {
		if b != '\r' && b != '\n' {
			w.line = append(w.line, b)
			continue
		}
		line := string(w.line)
		w.line = w.line[:0]
		if w.callback != nil && strings.Contains(line, "frame=") {
			if progress := parseProgressLine(line, w.duration, w.totalFrames); progress != nil {
				w.callback(*progress)
			}
		}
	}
	return len(p), nil
}

// Tail returns the last few KiB written, trimmed of surrounding whitespace.
func (w *ProgressWriter) Tail() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return strings.TrimSpace(string(w.tail))
}

// parseProgressLine extracts progress information from an FFmpeg progress line.
func parseProgressLine(line string, duration float64, totalFrames uint64) *Progress {
	var elapsedSecs float64
	if matches := timeRegex.FindStringSubmatch(line); len(matches) >= 2 {
		if secs, ok := util.ParseFFmpegTime(matches[1]); ok {
			elapsedSecs = secs
		}
	}

	var frame uint64
	if v := fieldValue(line, "frame="); v != "" {
		if f, err := strconv.ParseUint(v, 10, 64); err == nil {
			frame = f
		}
	}

	var fps float32
	if v := fieldValue(line, "fps="); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			fps = float32(f)
		}
	}

	bitrate := fieldValue(line, "bitrate=")

	var speed float32
	if v := strings.TrimSuffix(fieldValue(line, "speed="), "x"); v != "" {
		if s, err := strconv.ParseFloat(v, 32); err == nil {
			speed = float32(s)
		}
	}

	// Frame counts are exact when known; otherwise fall back to time.
	var percent float32
	switch {
	case totalFrames > 0:
		percent = float32(float64(frame) / float64(totalFrames) * 100)
	case duration > 0:
		percent = float32(elapsedSecs / duration * 100)
	}
	if percent > 100 {
		percent = 100
	}

	var eta time.Duration
	if speed > 0 && duration > 0 && elapsedSecs < duration {
		eta = time.Duration((duration-elapsedSecs)/float64(speed)) * time.Second
	}

	return &Progress{
		CurrentFrame: frame,
		TotalFrames:  totalFrames,
		Percent:      percent,
		Speed:        speed,
		FPS:          fps,
		ETA:          eta,
		Bitrate:      bitrate,
		ElapsedSecs:  elapsedSecs,
	}
}

// fieldValue returns the whitespace-delimited token after key, skipping the
// padding ffmpeg inserts after '='.
func fieldValue(line, key string) string {
	idx := strings.Index(line, key)
	if idx < 0 {
		return ""
	}
	remaining := strings.TrimLeft(line[idx+len(key):], " ")
	if end := strings.IndexAny(remaining, " \t"); end >= 0 {
		remaining = remaining[:end]
	}
	return remaining
}
