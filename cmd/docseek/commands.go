package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"docseek/internal/tui"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Segment files and store their chunks in the configured corpus",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		reports, err := a.ingest(args)
		for _, r := range reports {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  pages=%d chunks=%d tokens=%d\n",
				r.DocumentID, r.Path, r.Pages, r.Chunks, r.Tokens)
			if r.Summary != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", r.Summary)
			}
		}
		return err
	},
}

var (
	searchDoc       string
	searchThreshold float64
	searchLimit     int
	searchFiles     []string
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a fuzzy search against the corpus",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.ingest(searchFiles); err != nil {
			return err
		}

		opts := a.cfg.Search
		opts.DocumentID = searchDoc
		if cmd.Flags().Changed("threshold") {
			opts.Threshold = searchThreshold
		}
		if cmd.Flags().Changed("limit") {
			opts.MaxResults = searchLimit
		}

		resp, err := a.svc.Search(a.ctx, strings.Join(args, " "), opts)
		if err != nil {
			return err
		}
		if err := resp.Err(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if searchJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(resp.Results)
		}
		for _, f := range resp.Failures {
			fmt.Fprintf(os.Stderr, "warning: %v\n", f)
		}
		for i, r := range resp.Results {
			fmt.Fprintf(out, "%2d. [%s %.1f] %s page %d\n    %s\n",
				i+1, r.MatchType, r.Score, r.Chunk.Key(), r.Chunk.PageNumber, r.HighlightedContent)
		}
		if len(resp.Results) == 0 {
			fmt.Fprintln(out, "no results")
		}
		return nil
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui [file]...",
	Short: "Ingest files and open the interactive search screen",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		reports, err := a.ingest(args)
		if err != nil {
			return err
		}
		var summaries []string
		for _, r := range reports {
			if r.Summary != "" {
				summaries = append(summaries, r.Summary)
			}
		}

		m := tui.New(a.ctx, a.svc, a.cfg.Search, strings.Join(summaries, " "))
		_, err = tea.NewProgram(m, tea.WithContext(a.ctx)).Run()
		return err
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchDoc, "doc", "", "restrict the search to one document id")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 10, "minimum score to keep")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "maximum number of results")
	searchCmd.Flags().StringSliceVar(&searchFiles, "ingest", nil, "files to ingest before searching (for the memory corpus)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print results as JSON")
}
