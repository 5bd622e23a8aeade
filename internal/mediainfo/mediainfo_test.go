package mediainfo

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	perrors "github.com/five82/pencode/internal/errors"
)

// loadTestData loads a JSON fixture from the testdata directory.
func loadTestData(t *testing.T, filename string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", filename))
	if err != nil {
		t.Fatalf("failed to load test data %s: %v", filename, err)
	}
	return data
}

func TestFromResponse(t *testing.T) {
	tests := []struct {
		fixture string
		want    Probe
	}{
		{
			fixture: "video_avc_scope.json",
			want: Probe{
				Codec:              "V_MPEG4/ISO/AVC",
				Width:              1920,
				Height:             800,
				DisplayAspectRatio: "2.400",
				FrameCount:         129472,
				DurationSecs:       5400.04,
			},
		},
		{
			// No CodecID: the commercial name is remapped.
			fixture: "video_mpeg2_dvd.json",
			want: Probe{
				Codec:              "V_MPEG2",
				Width:              720,
				Height:             480,
				DisplayAspectRatio: "1.778",
				DurationSecs:       2640.48,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.fixture, func(t *testing.T) {
			resp, err := parseMediaInfoOutput(loadTestData(t, tt.fixture))
			if err != nil {
				t.Fatalf("parseMediaInfoOutput() error = %v", err)
			}
			got, err := FromResponse(resp)
			if err != nil {
				t.Fatalf("FromResponse() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("FromResponse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFromResponse_NoVideoTrack(t *testing.T) {
	resp, err := parseMediaInfoOutput(loadTestData(t, "audio_only.json"))
	if err != nil {
		t.Fatalf("parseMediaInfoOutput() error = %v", err)
	}
	_, err = FromResponse(resp)
	if !perrors.IsKind(err, perrors.KindMediaProbe) {
		t.Errorf("FromResponse() error = %v, want media probe error", err)
	}
}

func TestFromResponse_InvalidHeight(t *testing.T) {
	resp := &Response{Media: Media{Track: []Track{
		{Type: "Video", Video: VideoTrack{Format: "AVC", Width: "1920", Height: ""}},
	}}}
	if _, err := FromResponse(resp); !perrors.IsKind(err, perrors.KindMediaProbe) {
		t.Errorf("FromResponse() error = %v, want media probe error", err)
	}
}

func TestCodecOf(t *testing.T) {
	tests := []struct {
		name  string
		track VideoTrack
		want  string
	}{
		{"codec id wins", VideoTrack{CodecID: "V_MPEGH/ISO/HEVC", Format: "HEVC"}, "V_MPEGH/ISO/HEVC"},
		{"commercial name fallback", VideoTrack{FormatCommercial: "MPEG-2 Video", Format: "MPEG Video"}, "V_MPEG2"},
		{"format fallback", VideoTrack{Format: "VC-1"}, "VC-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := codecOf(&tt.track); got != tt.want {
				t.Errorf("codecOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProberProbe(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script in place of mediainfo")
	}

	dir := t.TempDir()
	fixture, err := filepath.Abs(filepath.Join("testdata", "video_avc_scope.json"))
	if err != nil {
		t.Fatal(err)
	}
	script := filepath.Join(dir, "mediainfo")
	body := "#!/bin/sh\n[ \"$1\" = \"--Output=JSON\" ] || exit 2\ncat '" + fixture + "'\n"
	if err := os.WriteFile(script, []byte(body), 0755); err != nil {
		t.Fatal(err)
	}

	probe, err := NewProber(script).Probe("/media/films/scope.mkv")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if probe.Height != 800 || probe.Codec != "V_MPEG4/ISO/AVC" {
		t.Errorf("Probe() = %+v", probe)
	}

	failing := filepath.Join(dir, "mediainfo-fail")
	if err := os.WriteFile(failing, []byte("#!/bin/sh\necho 'cannot open' >&2\nexit 1\n"), 0755); err != nil {
		t.Fatal(err)
	}
	_, err = NewProber(failing).Probe("/missing.mkv")
	if !perrors.IsKind(err, perrors.KindMediaProbe) {
		t.Errorf("Probe() error = %v, want media probe error", err)
	}
	if perrors.ExitCode(err) != 1 {
		t.Errorf("ExitCode() = %d, want 1", perrors.ExitCode(err))
	}
}
