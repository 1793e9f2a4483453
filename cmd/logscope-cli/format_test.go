package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/data2rest/logscope/client"
)

// captureStdout replaces os.Stdout with a pipe, calls f, then returns the
// captured output and restores os.Stdout. It is NOT safe for parallel use
// because os.Stdout is a package-level variable.
func captureStdout(t *testing.T, f func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w

	done := make(chan struct{})
	var buf bytes.Buffer
	go func() {
		io.Copy(&buf, r) //nolint:errcheck
		close(done)
	}()

	f()

	w.Close()
	<-done
	os.Stdout = orig
	r.Close()
	return buf.String()
}

func TestFormatJSON(t *testing.T) {
	out := captureStdout(t, func() {
		formatJSON(map[string]string{"kind": "all"})
	})

	var got map[string]string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	if got["kind"] != "all" {
		t.Errorf("got %v", got)
	}
	if !strings.Contains(out, "\n  ") {
		t.Errorf("expected indented output, got %q", out)
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	writeTable(&buf, []string{"ID", "ACTION"}, [][]string{{"1", "LOGIN"}, {"1234", "API_GET"}})

	want := "ID    ACTION\n----  -------\n1     LOGIN\n1234  API_GET\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestOutputQuiet(t *testing.T) {
	resetFlags(t)
	flagFmt = "quiet"

	out := captureStdout(t, func() {
		output(nil, []string{"7", "8"}, func() { t.Error("table renderer called in quiet mode") })
	})

	if out != "7\n8\n" {
		t.Errorf("got %q", out)
	}
}

func TestPrintLogTable(t *testing.T) {
	name := "alice"
	page := &client.LogPage{
		Logs: []client.LogEntry{
			{ID: 2, Action: "API_GET", Username: &name, Payload: json.RawMessage(`"ok"`),
				CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
			{ID: 1, Action: "LOGIN", CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
		Stats:   client.Stats{APICalls: 1, Window: 2, TopEndpoints: []client.EndpointCount{{Action: "API_GET", Count: 3}}},
		HasMore: true,
	}

	var buf bytes.Buffer
	printLogTable(&buf, page)
	out := buf.String()

	for _, want := range []string{"2026-01-02T03:04:05Z", "alice", "-", "api calls: 1", "API_GET", "--offset"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("got %q", got)
	}
}
