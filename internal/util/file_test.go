package util

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func TestExpandTemplate(t *testing.T) {
	vars := map[string]string{"name": "movie", "ext": "m2ts"}
	tests := []struct {
		tmpl string
		want string
	}{
		{"{name}-encoded", "movie-encoded"},
		{"{name}.{ext}", "movie.m2ts"},
		{"{name}{season}", "movie"},
		{"{}{name}", "movie"},
		{"plain", "plain"},
		{"{name", "{name"},
	}

	for _, tt := range tests {
		t.Run(tt.tmpl, func(t *testing.T) {
			if got := ExpandTemplate(tt.tmpl, vars); got != tt.want {
				t.Errorf("ExpandTemplate(%q) = %q, want %q", tt.tmpl, got, tt.want)
			}
		})
	}
}

func TestAllocateOutputPath(t *testing.T) {
	dir := t.TempDir()

	got := AllocateOutputPath("{name}-encoded", "movie", ".mkv", dir)
	if want := filepath.Join(dir, "movie-encoded.mkv"); got != want {
		t.Errorf("AllocateOutputPath() = %q, want %q", got, want)
	}

	touch(t, filepath.Join(dir, "movie-encoded.mkv"))
	touch(t, filepath.Join(dir, "movie-encoded (1).mkv"))

	got = AllocateOutputPath("{name}-encoded", "movie", ".mkv", dir)
	if want := filepath.Join(dir, "movie-encoded (2).mkv"); got != want {
		t.Errorf("AllocateOutputPath() = %q, want %q", got, want)
	}
}

func TestAllocateOutputPath_ExtensionIsFixed(t *testing.T) {
	dir := t.TempDir()

	got := AllocateOutputPath("{name}-{ext}", "title01", ".mpg", dir)
	if want := filepath.Join(dir, "title01-mpg.mkv"); got != want {
		t.Errorf("AllocateOutputPath() = %q, want %q", got, want)
	}
}

func TestAllocateOutputPath_DottedStem(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "show.s01e01-encoded.mkv"))

	got := AllocateOutputPath("{name}-encoded", "show.s01e01", ".mkv", dir)
	if want := filepath.Join(dir, "show.s01e01-encoded (1).mkv"); got != want {
		t.Errorf("AllocateOutputPath() = %q, want %q", got, want)
	}
}

func TestAllocateOutputPath_DirectoryCollides(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "movie-encoded.mkv"), 0755); err != nil {
		t.Fatal(err)
	}

	got := AllocateOutputPath("{name}-encoded", "movie", ".mkv", dir)
	if want := filepath.Join(dir, "movie-encoded (1).mkv"); got != want {
		t.Errorf("AllocateOutputPath() = %q, want %q", got, want)
	}
}

func TestOutputDirFor(t *testing.T) {
	input := filepath.Join("media", "films", "movie.mkv")

	if got := OutputDirFor(input, true, "/work"); got != filepath.Join("media", "films") {
		t.Errorf("OutputDirFor(neighbour) = %q", got)
	}
	if got := OutputDirFor(input, false, "/work"); got != "/work" {
		t.Errorf("OutputDirFor(cwd) = %q", got)
	}
}

func TestGetFileStem(t *testing.T) {
	tests := map[string]string{
		"/media/movie.mkv":      "movie",
		"/media/show.s01e01.ts": "show.s01e01",
		"noext":                 "noext",
	}
	for in, want := range tests {
		if got := GetFileStem(in); got != want {
			t.Errorf("GetFileStem(%q) = %q, want %q", in, got, want)
		}
	}
}
