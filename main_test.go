package main

import (
	"encoding/json"
	"io"
	"os"
	"testing"
)

func TestRun_StampsBuildInfo(t *testing.T) {
	version, commit, buildTime = "v1.2.3", "0123abc", "2026-10-19T08:00:00Z"
	t.Cleanup(func() { version, commit, buildTime = "dev", "", "" })

	oldArgs, oldStdout := os.Args, os.Stdout
	t.Cleanup(func() { os.Args, os.Stdout = oldArgs, oldStdout })

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Args = []string{"normscan", "version", "-o", "json"}
	os.Stdout = w

	code := run()
	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if code != 0 {
		t.Fatalf("run() = %d, output:\n%s", code, out)
	}

	var info map[string]string
	if err := json.Unmarshal(out, &info); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	want := map[string]string{"version": "v1.2.3", "commit": "0123abc", "built": "2026-10-19T08:00:00Z"}
	for k, v := range want {
		if info[k] != v {
			t.Errorf("%s = %q, want %q", k, info[k], v)
		}
	}
}
