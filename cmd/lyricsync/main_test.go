package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const transcript = "[00:01.00] <00:01.00> Hello <00:01.50> world <00:02.00>\n" +
	"[00:03.00] <00:03.00> Second <00:03.40> line <00:04.00>\n"

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func writeTranscript(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "song.lrc")
	if err := os.WriteFile(path, []byte(transcript), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("%v failed: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestInspect(t *testing.T) {
	out := execute(t, "inspect", writeTranscript(t))
	t.Log(out)
	for _, want := range []string{"enhanced mode, 4 records, 2 sentences", "Hello", "00:03.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestInspectWritesScript(t *testing.T) {
	path := writeTranscript(t)
	chdir(t, t.TempDir())

	out := execute(t, "inspect", path, "--write-script")
	if !strings.Contains(out, "[+] Importance script written") {
		t.Fatalf("no script written:\n%s", out)
	}
	files, err := filepath.Glob(filepath.Join("scripts", "importance_*.yaml"))
	if err != nil || len(files) != 1 {
		t.Fatalf("scripts = %v, %v", files, err)
	}

	out = execute(t, "render", path, "--at", "1900", "--script", "latest")
	if !strings.Contains(out, "Hello") {
		t.Errorf("render with script:\n%s", out)
	}
}

func TestRender(t *testing.T) {
	out := execute(t, "render", writeTranscript(t), "--at", "1200")
	t.Log(out)
	if !strings.Contains(out, "Scene at 00:01.20 of 00:04.00") {
		t.Errorf("unexpected header:\n%s", out)
	}
	if !strings.Contains(out, "AnimText") {
		t.Error("layer table missing runs")
	}
}

func TestRenderRejectsBadSeek(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"render", writeTranscript(t), "--at=-5", "--log-level", "error"})
	if err := cmd.Execute(); err == nil {
		t.Error("negative seek accepted")
	}
}

func TestPlayShortRange(t *testing.T) {
	out := execute(t, "play", writeTranscript(t), "--from", "3850", "--for", "5s", "--stats")
	t.Log(out)
	if !strings.Contains(out, "[>]") || !strings.Contains(out, "Second line") {
		t.Errorf("active line not printed:\n%s", out)
	}
	if !strings.Contains(out, "[+] Stopped at 00:00.00") {
		t.Errorf("playback did not rewind at the end:\n%s", out)
	}
}
