package ffmpeg

import (
	"errors"
	"strings"
	"testing"

	"github.com/five82/pencode/internal/config"
	perrors "github.com/five82/pencode/internal/errors"
	"github.com/five82/pencode/internal/mediainfo"
)

var baseTemplate = []string{
	"-i", "-", "-i", "{file}",
	"-preset", "slow", "-crf", "18",
	"-profile", "high", "-level", "4.1",
	"-maxrate", "20M", "-bufsize", "25M",
}

func mustTable(t *testing.T, raw ...config.Override) OverrideTable {
	t.Helper()
	table, err := NewOverrideTable(raw)
	if err != nil {
		t.Fatalf("NewOverrideTable() error = %v", err)
	}
	return table
}

func widescreen(height int) mediainfo.Probe {
	return mediainfo.Probe{Codec: "V_MPEG4/ISO/AVC", Width: height * 16 / 9, Height: height, DisplayAspectRatio: "1.778"}
}

func TestResolve_ResolutionBuckets(t *testing.T) {
	table := mustTable(t, config.Override{
		Flag:   "-maxrate",
		Values: map[string]string{"360": "a", "720": "b", "1080": "c"},
	})

	tests := []struct {
		name   string
		height int
		want   string
	}{
		{"between thresholds picks lower", 900, "b"},
		{"exact threshold", 1080, "c"},
		{"above all thresholds", 2160, "c"},
		{"below all thresholds keeps default", 200, "20M"},
		{"lowest threshold", 360, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(NewArgs(baseTemplate), widescreen(tt.height), table)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if v, _ := got.Value("-maxrate"); v != tt.want {
				t.Errorf("-maxrate = %q, want %q", v, tt.want)
			}
		})
	}
}

func TestResolve_CodecOverride(t *testing.T) {
	table := mustTable(t, config.Override{
		Flag:   "-crf",
		Values: map[string]string{"V_MPEG2": "16"},
	})

	mpeg2 := mediainfo.Probe{Codec: "V_MPEG2", Width: 720, Height: 480, DisplayAspectRatio: "4:3"}
	got, err := Resolve(NewArgs(baseTemplate), mpeg2, table)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if v, _ := got.Value("-crf"); v != "16" {
		t.Errorf("-crf = %q, want 16", v)
	}

	got, err = Resolve(NewArgs(baseTemplate), widescreen(1080), table)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if v, _ := got.Value("-crf"); v != "18" {
		t.Errorf("-crf = %q, want template default 18", v)
	}
}

func TestResolve_ResolutionWinsOverCodec(t *testing.T) {
	table := mustTable(t, config.Override{
		Flag:   "-crf",
		Values: map[string]string{"V_MPEG4/ISO/AVC": "15", "720": "20"},
	})

	got, err := Resolve(NewArgs(baseTemplate), widescreen(1080), table)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if v, _ := got.Value("-crf"); v != "20" {
		t.Errorf("-crf = %q, want resolution override 20", v)
	}

	// No bucket applies, so the codec override stands.
	got, err = Resolve(NewArgs(baseTemplate), widescreen(480), table)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if v, _ := got.Value("-crf"); v != "15" {
		t.Errorf("-crf = %q, want codec override 15", v)
	}
}

func TestResolve_UndefinedFlag(t *testing.T) {
	templates := [][]string{
		baseTemplate,
		{"-crf", "18"},
		{"-tune"}, // flag present but without a value slot
	}
	table := mustTable(t, config.Override{
		Flag:   "-tune",
		Values: map[string]string{"V_MPEG2": "film"},
	})

	for _, tmpl := range templates {
		_, err := Resolve(NewArgs(tmpl), widescreen(1080), table)
		if !perrors.IsKind(err, perrors.KindConfig) {
			t.Errorf("Resolve(%v) error = %v, want config error", tmpl, err)
		}
		if !errors.Is(err, config.ErrUndefinedFlag) {
			t.Errorf("Resolve(%v) error = %v, want ErrUndefinedFlag", tmpl, err)
		}
	}
}

func TestResolve_AspectCorrection(t *testing.T) {
	table := mustTable(t, config.Override{
		Flag:   "-level",
		Values: map[string]string{"720": "4.0", "1080": "4.2"},
	})

	// 1920x1038 at 1.85:1 buckets as 1080, not 720.
	flat := mediainfo.Probe{Codec: "V_MPEG4/ISO/AVC", Width: 1920, Height: 1038, DisplayAspectRatio: "1.85:1"}
	got, err := Resolve(NewArgs(baseTemplate), flat, table)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if v, _ := got.Value("-level"); v != "4.2" {
		t.Errorf("-level = %q, want 4.2", v)
	}
}

func TestResolve_DoesNotMutateBase(t *testing.T) {
	base := NewArgs(baseTemplate)
	table := mustTable(t, config.Override{Flag: "-preset", Values: map[string]string{"0": "veryslow"}})

	if _, err := Resolve(base, widescreen(1080), table); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if v, _ := base.Value("-preset"); v != "slow" {
		t.Errorf("base -preset = %q, want slow", v)
	}
}

func TestNewOverrideTable(t *testing.T) {
	table := mustTable(t, config.Override{
		Flag:   "-bufsize",
		Values: map[string]string{"1080": "c", "0": "a", "V_MPEG2": "m", "720": "b"},
	})

	if len(table) != 1 {
		t.Fatalf("len(table) = %d, want 1", len(table))
	}
	fo := table[0]
	if fo.Codec["V_MPEG2"] != "m" || len(fo.Codec) != 1 {
		t.Errorf("Codec = %v", fo.Codec)
	}
	want := []int{0, 720, 1080}
	if len(fo.Buckets) != len(want) {
		t.Fatalf("Buckets = %v", fo.Buckets)
	}
	for i, th := range want {
		if fo.Buckets[i].Threshold != th {
			t.Errorf("Buckets[%d].Threshold = %d, want %d", i, fo.Buckets[i].Threshold, th)
		}
	}
}

func TestNewOverrideTable_DuplicateThreshold(t *testing.T) {
	_, err := NewOverrideTable([]config.Override{{
		Flag:   "-maxrate",
		Values: map[string]string{"720": "10M", "0720": "12M", "0": "4M"},
	}})
	if err == nil {
		t.Fatal("NewOverrideTable() expected error for equal thresholds")
	}
	if !errors.Is(err, config.ErrDuplicateThreshold) {
		t.Errorf("error = %v, want ErrDuplicateThreshold", err)
	}
	if !perrors.IsKind(err, perrors.KindConfig) {
		t.Errorf("error kind = %v, want config", err)
	}
	if !strings.Contains(err.Error(), `"0720" and "720"`) {
		t.Errorf("error = %q, want both keys named", err.Error())
	}
}
