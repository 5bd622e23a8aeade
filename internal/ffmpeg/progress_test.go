package ffmpeg

import (
	"strings"
	"testing"
	"time"
)

func TestParseProgressLine(t *testing.T) {
	line := "frame= 1200 fps= 48.0 q=28.0 size=   10240kB time=00:00:50.05 bitrate=1676.0kbits/s speed=2.00x"

	t.Run("frames known", func(t *testing.T) {
		p := parseProgressLine(line, 100, 2400)
		if p.CurrentFrame != 1200 {
			t.Errorf("CurrentFrame = %d, want 1200", p.CurrentFrame)
		}
		if p.Percent != 50 {
			t.Errorf("Percent = %v, want 50", p.Percent)
		}
		if p.FPS != 48 {
			t.Errorf("FPS = %v, want 48", p.FPS)
		}
		if p.Speed != 2 {
			t.Errorf("Speed = %v, want 2", p.Speed)
		}
		if p.Bitrate != "1676.0kbits/s" {
			t.Errorf("Bitrate = %q", p.Bitrate)
		}
		if p.ETA != 24*time.Second {
			t.Errorf("ETA = %v, want 24s", p.ETA)
		}
	})

	t.Run("duration only", func(t *testing.T) {
		p := parseProgressLine(line, 200.2, 0)
		if p.Percent < 24.9 || p.Percent > 25.1 {
			t.Errorf("Percent = %v, want ~25", p.Percent)
		}
	})

	t.Run("nothing known", func(t *testing.T) {
		p := parseProgressLine(line, 0, 0)
		if p.Percent != 0 || p.ETA != 0 {
			t.Errorf("Percent = %v, ETA = %v, want zero", p.Percent, p.ETA)
		}
	})

	t.Run("clamped", func(t *testing.T) {
		p := parseProgressLine(line, 0, 1000)
		if p.Percent != 100 {
			t.Errorf("Percent = %v, want 100", p.Percent)
		}
	})
}

func TestProgressWriter(t *testing.T) {
	var updates []Progress
	w := NewProgressWriter(0, 100, func(p Progress) { updates = append(updates, p) })

	chunks := []string{
		"Input #0, yuv4mpegpipe, from 'pipe:':\n",
		"frame=   10 fps=0.0 q=0.0 size=       0kB time=00:00:00.41 bitrate=   0.0kbits/s speed=0.8x\r",
		"frame=   5",
		"0 fps= 25 q=28.0 size=     256kB time=00:00:02.08 bitrate=1000.0kbits/s speed=1.0x\r",
		"[out#0/matroska] video:1kB\n",
	}
	for _, c := range chunks {
		if _, err := w.Write([]byte(c)); err != nil {
			t.Fatal(err)
		}
	}

	if len(updates) != 2 {
		t.Fatalf("got %d updates, want 2", len(updates))
	}
	if updates[1].CurrentFrame != 50 || updates[1].Percent != 50 {
		t.Errorf("second update = %+v", updates[1])
	}
	if !strings.HasSuffix(w.Tail(), "video:1kB") {
		t.Errorf("Tail() = %q", w.Tail())
	}
}

func TestProgressWriterTailIsBounded(t *testing.T) {
	w := NewProgressWriter(0, 0, nil)
	_, _ = w.Write([]byte(strings.Repeat("x", stderrTailSize)))
	_, _ = w.Write([]byte("error: broken pipe"))

	tail := w.Tail()
	if len(tail) != stderrTailSize {
		t.Errorf("len(Tail()) = %d, want %d", len(tail), stderrTailSize)
	}
	if !strings.HasSuffix(tail, "error: broken pipe") {
		t.Errorf("Tail() lost the latest output")
	}
}
