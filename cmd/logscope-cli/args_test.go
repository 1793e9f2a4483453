package main

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// executeArgs runs the given root command with args and returns any error.
// It suppresses cobra's usage/error output so test output stays clean.
func executeArgs(t *testing.T, root *cobra.Command, args ...string) error {
	t.Helper()
	root.SetOut(&strings.Builder{})
	root.SetErr(&strings.Builder{})
	root.SetArgs(args)
	_, err := root.ExecuteC()
	return err
}

// newTestRoot builds the real command tree with PersistentPreRun stubbed out
// so the API client is never initialised.
func newTestRoot(t *testing.T) *cobra.Command {
	t.Helper()
	resetFlags(t)
	root := newRootCmd()
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {}
	return root
}

func TestLogsRejectsBadFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad since", []string{"logs", "--since", "yesterday"}, "--since"},
		{"bad until", []string{"logs", "--until", "2026/01/02"}, "--until"},
		{"inverted range", []string{"logs", "--since", "2026-02-01", "--until", "2026-01-01"}, "after"},
		{"negative limit", []string{"logs", "--limit", "-1"}, "negative"},
		{"export bad since", []string{"logs", "export", "--since", "x"}, "--since"},
		{"positional arg", []string{"logs", "extra"}, "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := executeArgs(t, newTestRoot(t), tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestExportHasNoPagingFlags(t *testing.T) {
	err := executeArgs(t, newTestRoot(t), "logs", "export", "--limit", "5")
	if err == nil || !strings.Contains(err.Error(), "unknown flag") {
		t.Fatalf("expected unknown flag error, got %v", err)
	}
}

func TestLogFlagsOptions(t *testing.T) {
	f := logFlags{
		user: "u1", action: "API_GET", search: "timeout",
		since: "2026-01-01", until: "2026-01-31", limit: 10, offset: 20,
	}

	opts, err := f.options()
	if err != nil {
		t.Fatalf("options() error: %v", err)
	}

	if opts.UserID != "u1" || opts.Action != "API_GET" || opts.Search != "timeout" {
		t.Errorf("unexpected options %+v", opts)
	}
	if opts.Limit != 10 || opts.Offset != 20 {
		t.Errorf("unexpected paging %d/%d", opts.Limit, opts.Offset)
	}
	if opts.StartDate == nil || opts.StartDate.Format("2006-01-02") != "2026-01-01" {
		t.Errorf("unexpected start %v", opts.StartDate)
	}
	if opts.EndDate == nil || opts.EndDate.Format("2006-01-02") != "2026-01-31" {
		t.Errorf("unexpected end %v", opts.EndDate)
	}
}

func TestLogFlagsOptionsEmpty(t *testing.T) {
	opts, err := (&logFlags{}).options()
	if err != nil {
		t.Fatalf("options() error: %v", err)
	}
	if opts.StartDate != nil || opts.EndDate != nil {
		t.Errorf("empty flags should leave dates unset: %+v", opts)
	}
}
