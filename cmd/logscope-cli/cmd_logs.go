package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/data2rest/logscope/client"
)

type logFlags struct {
	user, action, since, until, search string
	limit, offset                      int
}

func (f *logFlags) register(cmd *cobra.Command, paged bool) {
	cmd.Flags().StringVar(&f.user, "user", "", "Only entries written by this actor ID")
	cmd.Flags().StringVar(&f.action, "action", "", "Only entries with this action")
	cmd.Flags().StringVar(&f.since, "since", "", "First day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.until, "until", "", "Last day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.search, "search", "", "Case-insensitive text to find in details")
	if paged {
		cmd.Flags().IntVar(&f.limit, "limit", 0, "Max entries to return (server default when 0)")
		cmd.Flags().IntVar(&f.offset, "offset", 0, "Entries to skip")
	}
}

// options validates the flags and converts them to client options.
func (f *logFlags) options() (*client.ListOptions, error) {
	opts := &client.ListOptions{
		UserID: f.user,
		Action: f.action,
		Search: f.search,
		Limit:  f.limit,
		Offset: f.offset,
	}

	if f.limit < 0 || f.offset < 0 {
		return nil, fmt.Errorf("--limit and --offset must not be negative")
	}

	var err error
	if opts.StartDate, err = parseDay(f.since, "--since"); err != nil {
		return nil, err
	}
	if opts.EndDate, err = parseDay(f.until, "--until"); err != nil {
		return nil, err
	}
	if opts.StartDate != nil && opts.EndDate != nil && opts.StartDate.After(*opts.EndDate) {
		return nil, fmt.Errorf("--since %s is after --until %s", f.since, f.until)
	}

	return opts, nil
}

func parseDay(s, flag string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("%s: expected YYYY-MM-DD, got %q", flag, s)
	}
	return &t, nil
}

func newLogsCmd() *cobra.Command {
	var f logFlags
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List activity log entries visible to you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options()
			if err != nil {
				return err
			}
			page, err := apiClient.Logs.List(context.Background(), opts)
			if err != nil {
				fatal("list logs", err)
			}
			quiet := make([]string, len(page.Logs))
			for i, e := range page.Logs {
				quiet[i] = strconv.FormatInt(e.ID, 10)
			}
			output(page, quiet, func() { printLogTable(os.Stdout, page) })
			return nil
		},
	}
	f.register(cmd, true)
	cmd.AddCommand(logsFiltersCmd())
	cmd.AddCommand(logsExportCmd())
	return cmd
}

func printLogTable(w io.Writer, page *client.LogPage) {
	rows := make([][]string, len(page.Logs))
	for i, e := range page.Logs {
		rows[i] = []string{
			strconv.FormatInt(e.ID, 10),
			e.CreatedAt.UTC().Format(time.RFC3339),
			deref(e.Username),
			e.Action,
			truncate(string(e.Payload), 60),
		}
	}
	writeTable(w, []string{"ID", "TIME", "USER", "ACTION", "DETAILS"}, rows)

	fmt.Fprintf(w, "\napi calls: %d  data changes: %d  (last %d entries)\n",
		page.Stats.APICalls, page.Stats.DataChanges, page.Stats.Window)
	for _, ep := range page.Stats.TopEndpoints {
		fmt.Fprintf(w, "  %-40s %d\n", ep.Action, ep.Count)
	}
	if page.HasMore {
		fmt.Fprintln(w, "more entries available: use --offset")
	}
}

func logsFiltersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: "List the actors and actions you can filter by",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			opts, err := apiClient.Logs.Filters(context.Background())
			if err != nil {
				fatal("filter options", err)
			}
			output(opts, opts.Actions, func() {
				rows := make([][]string, 0, len(opts.Actors))
				for _, a := range opts.Actors {
					rows = append(rows, []string{a.ID, deref(a.Username)})
				}
				formatTable([]string{"ACTOR", "USERNAME"}, rows)
				fmt.Println()
				for _, a := range opts.Actions {
					fmt.Println(a)
				}
			})
		},
	}
}

func logsExportCmd() *cobra.Command {
	var (
		f   logFlags
		out string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export visible entries as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options()
			if err != nil {
				return err
			}

			toFile := out != "" && out != "-"

			var w io.Writer = os.Stdout
			if toFile {
				file, err := os.Create(out)
				if err != nil {
					fatal("create output file", err)
				}
				defer file.Close()
				w = file
			}

			n, err := apiClient.Logs.Export(context.Background(), opts, w)
			if err != nil {
				fatal("export logs", err)
			}
			if toFile {
				fmt.Fprintf(os.Stderr, "wrote %d bytes to %s\n", n, out)
			}
			return nil
		},
	}
	f.register(cmd, false)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (stdout when empty or -)")
	return cmd
}
