package services

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestParseInfo(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		stdout    string
		wantTitle string
		wantID    string
		wantErr   bool
	}{
		{
			name:      "single json line",
			stdout:    `{"id":"dQw4w9WgXcQ","title":"Never Gonna Give You Up","duration":213,"uploader":"Rick Astley"}` + "\n",
			wantTitle: "Never Gonna Give You Up",
			wantID:    "dQw4w9WgXcQ",
		},
		{
			name:      "noise before json",
			stdout:    "[youtube] Extracting URL\n{\"id\":\"abc\",\"title\":\"Song\"}\n",
			wantTitle: "Song",
			wantID:    "abc",
		},
		{
			name:      "json without title",
			stdout:    `{"id":"abc"}`,
			wantTitle: "unknown title",
			wantID:    "abc",
		},
		{
			name:      "empty title is kept",
			stdout:    `{"id":"abc","title":""}`,
			wantTitle: "",
			wantID:    "abc",
		},
		{
			name:      "null title",
			stdout:    `{"id":"abc","title":null}`,
			wantTitle: "unknown title",
			wantID:    "abc",
		},
		{
			name:      "no json at all",
			stdout:    "",
			wantTitle: "unknown title",
		},
		{
			name:    "broken json",
			stdout:  `{"id":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			info, err := parseInfo(tt.stdout)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseInfo: %v", err)
			}
			if info.Title != tt.wantTitle || info.ID != tt.wantID {
				t.Errorf("got id=%q title=%q, want id=%q title=%q", info.ID, info.Title, tt.wantID, tt.wantTitle)
			}
		})
	}
}

func TestLocateFFmpeg(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Run("explicit binary", func(t *testing.T) {
		got, err := LocateFFmpeg(bin)
		if err != nil || got != bin {
			t.Errorf("LocateFFmpeg(%q) = %q, %v", bin, got, err)
		}
	})

	t.Run("directory", func(t *testing.T) {
		got, err := LocateFFmpeg(dir)
		if err != nil || got != bin {
			t.Errorf("LocateFFmpeg(%q) = %q, %v", dir, got, err)
		}
	})

	t.Run("directory without binary", func(t *testing.T) {
		if _, err := LocateFFmpeg(t.TempDir()); err == nil {
			t.Error("Expected error for directory without ffmpeg")
		}
	})

	t.Run("missing path", func(t *testing.T) {
		if _, err := LocateFFmpeg(filepath.Join(dir, "nope")); err == nil {
			t.Error("Expected error for missing path")
		}
	})

	t.Run("PATH lookup", func(t *testing.T) {
		t.Setenv("PATH", dir)
		got, err := LocateFFmpeg("")
		if err != nil || got != bin {
			t.Errorf("LocateFFmpeg(\"\") = %q, %v", got, err)
		}
	})
}

// writeFakeYtdlp installs a shell script standing in for yt-dlp. It records its
// arguments one per line in the returned file and then runs body.
func writeFakeYtdlp(t *testing.T, body string) (executable, argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in requires a POSIX shell")
	}
	dir := t.TempDir()
	argsFile = filepath.Join(dir, "args")
	executable = filepath.Join(dir, "yt-dlp")
	script := "#!/bin/sh\nprintf '%s\\n' \"$@\" > '" + argsFile + "'\n" + body + "\n"
	if err := os.WriteFile(executable, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake yt-dlp: %v", err)
	}
	return executable, argsFile
}

func readArgs(t *testing.T, argsFile string) []string {
	t.Helper()
	data, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read recorded args: %v", err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// hasFlag accepts both "--flag value" and "--flag=value".
func hasFlag(args []string, flag, value string) bool {
	for i, arg := range args {
		if value == "" && arg == flag {
			return true
		}
		if arg == flag+"="+value {
			return true
		}
		if arg == flag && i+1 < len(args) && args[i+1] == value {
			return true
		}
	}
	return false
}

func TestYtdlpDownloader_Download(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "audio")
	infoJSON := `{"id":"dQw4w9WgXcQ","title":"Never Gonna Give You Up","filename":"` + filepath.Join(outDir, "Never Gonna Give You Up.webm") + `"}`
	executable, argsFile := writeFakeYtdlp(t, "echo '"+infoJSON+"'")

	opts := DefaultDownloadOptions()
	opts.OutputDir = outDir
	opts.FFmpegLocation = "/opt/ffmpeg/bin/ffmpeg"

	url := "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	info, err := NewYtdlpDownloader(executable).Download(context.Background(), url, opts)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}

	if info.Title != "Never Gonna Give You Up" || info.ID != "dQw4w9WgXcQ" {
		t.Errorf("Unexpected info %+v", info)
	}
	if want := filepath.Join(outDir, "Never Gonna Give You Up.mp3"); info.Filename != want {
		t.Errorf("Filename = %q, want %q", info.Filename, want)
	}

	args := readArgs(t, argsFile)
	expected := []struct{ flag, value string }{
		{"--format", "bestaudio/best"},
		{"--extract-audio", ""},
		{"--audio-format", "mp3"},
		{"--audio-quality", "192K"},
		{"--output", filepath.Join(outDir, "%(title)s.%(ext)s")},
		{"--no-warnings", ""},
		{"--no-playlist", ""},
		{"--ffmpeg-location", "/opt/ffmpeg/bin/ffmpeg"},
	}
	for _, e := range expected {
		if !hasFlag(args, e.flag, e.value) {
			t.Errorf("Expected %s %q in yt-dlp arguments %q", e.flag, e.value, args)
		}
	}
	if args[len(args)-1] != url {
		t.Errorf("Expected URL as last argument, got %q", args[len(args)-1])
	}
}

func TestYtdlpDownloader_DownloadFailure(t *testing.T) {
	executable, _ := writeFakeYtdlp(t, strings.Join([]string{
		"echo 'WARNING: [youtube] falling back' >&2",
		"echo 'ERROR: [youtube] abc: Private video' >&2",
		"echo 'ERROR: [youtube] abc: Video unavailable' >&2",
		"exit 1",
	}, "\n"))

	opts := DefaultDownloadOptions()
	opts.OutputDir = t.TempDir()

	_, err := NewYtdlpDownloader(executable).Download(context.Background(), "https://youtu.be/abc", opts)
	if err == nil {
		t.Fatal("Expected error from failing yt-dlp")
	}
	if err.Error() != "ERROR: [youtube] abc: Video unavailable" {
		t.Errorf("error = %q, want the last ERROR line", err.Error())
	}
}

func TestYtdlpDownloader_Probe(t *testing.T) {
	executable, argsFile := writeFakeYtdlp(t, `echo '{"id":"abc","title":"Song","duration":61}'`)

	info, err := NewYtdlpDownloader(executable).Probe(context.Background(), "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if info.Title != "Song" || info.Duration != 61 {
		t.Errorf("Unexpected info %+v", info)
	}

	args := readArgs(t, argsFile)
	if !hasFlag(args, "--skip-download", "") {
		t.Errorf("Expected --skip-download in %q", args)
	}
	if hasFlag(args, "--extract-audio", "") {
		t.Errorf("Probe must not extract audio, got %q", args)
	}
}
