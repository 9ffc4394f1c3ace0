package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/dedupe-cli/internal/match"
	"github.com/sells-group/dedupe-cli/internal/model"
	"github.com/sells-group/dedupe-cli/pkg/notion"
)

var (
	scanWorkspace string
	scanMinScore  int
	scanOutput    string
	scanNotion    bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a workspace for likely duplicate contacts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		workspace := scanWorkspace
		if workspace == "" {
			workspace = cfg.Match.Workspace
		}

		contacts, err := st.ListContacts(ctx, workspace)
		if err != nil {
			return eris.Wrap(err, "scan: list contacts")
		}

		pairs, stats := match.Scan(contacts)
		pairs = filterPairs(pairs, scanMinScore)

		zap.L().Info("scan complete",
			zap.String("workspace", workspace),
			zap.Int("records", stats.Records),
			zap.Int("pairs", len(pairs)),
		)

		if err := writePairs(cmd.OutOrStdout(), pairs, scanOutput); err != nil {
			return err
		}

		if scanNotion {
			if cfg.Notion.Token == "" || cfg.Notion.ReportDB == "" {
				return eris.New("notion token and report DB are required (DEDUPE_NOTION_TOKEN, DEDUPE_NOTION_REPORT_DB)")
			}
			client := notion.NewClient(cfg.Notion.Token)
			created, err := notion.PublishReport(ctx, client, cfg.Notion.ReportDB, pairs)
			if err != nil {
				return eris.Wrap(err, "scan: publish notion report")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nPublished %d new pairs to Notion\n", created)
		}

		return nil
	},
}

// filterPairs drops pairs below the operator's score floor. The cascade
// already enforces the minimum match score; this only tightens it.
func filterPairs(pairs []model.CandidatePair, minScore int) []model.CandidatePair {
	if minScore <= match.MinScore {
		return pairs
	}
	out := pairs[:0:0]
	for _, p := range pairs {
		if p.Score >= minScore {
			out = append(out, p)
		}
	}
	return out
}

func writePairs(out io.Writer, pairs []model.CandidatePair, format string) error {
	switch format {
	case "table":
		formatPairsTable(out, pairs)
		return nil
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(pairs)
	case "yaml":
		data, err := yaml.Marshal(pairs)
		if err != nil {
			return eris.Wrap(err, "scan: marshal yaml")
		}
		_, err = out.Write(data)
		return err
	default:
		return eris.Errorf("unknown output format %q (want table, json, or yaml)", format)
	}
}

func formatPairsTable(out io.Writer, pairs []model.CandidatePair) {
	if len(pairs) == 0 {
		fmt.Fprintln(out, "No duplicate candidates found.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SCORE\tREASON\tRECORD A\tRECORD B")
	_, _ = fmt.Fprintln(w, "-----\t------\t--------\t--------")
	for _, p := range pairs {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			p.Score, p.Reason, contactLabel(p.A), contactLabel(p.B))
	}
	_ = w.Flush()
}

// contactLabel renders a one-line identifier for table output.
func contactLabel(c model.Contact) string {
	name := c.FullName()
	switch {
	case name != "" && c.Email != "":
		return fmt.Sprintf("%s <%s>", name, c.Email)
	case name != "":
		return fmt.Sprintf("%s (%s)", name, c.ID)
	case c.Email != "":
		return c.Email
	default:
		return c.ID
	}
}

func init() {
	scanCmd.Flags().StringVar(&scanWorkspace, "workspace", "", "workspace to scan (default from config)")
	scanCmd.Flags().IntVar(&scanMinScore, "min-score", 0, "only report pairs at or above this score")
	scanCmd.Flags().StringVar(&scanOutput, "output", "table", "output format: table, json, or yaml")
	scanCmd.Flags().BoolVar(&scanNotion, "notion", false, "publish the report to the configured Notion database")
	rootCmd.AddCommand(scanCmd)
}
