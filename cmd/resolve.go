package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/dedupe-cli/internal/match"
	"github.com/sells-group/dedupe-cli/internal/model"
	"github.com/sells-group/dedupe-cli/internal/review"
	"github.com/sells-group/dedupe-cli/pkg/notion"
)

var (
	resolveWorkspace string
	resolveA         string
	resolveB         string
	resolveAction    string
	resolveKeep      string
	resolveNotion    bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a single duplicate pair non-interactively",
	Long:  "Applies one resolution action to the pair formed by --a and --b: merge (losing record folded into --keep, then deleted), delete (the record named by --keep survives, the other is deleted), or keep (both records stay, the pair is dismissed).",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		workspace := resolveWorkspace
		if workspace == "" {
			workspace = cfg.Match.Workspace
		}

		contacts, err := st.ListContacts(ctx, workspace)
		if err != nil {
			return eris.Wrap(err, "resolve: list contacts")
		}

		r := review.NewReviewer(st, match.FindDuplicates(contacts))
		key := model.NewPairKey(resolveA, resolveB)

		if _, ok := r.State().Find(key); !ok {
			return eris.Errorf("records %s and %s are not a duplicate candidate", resolveA, resolveB)
		}

		switch resolveAction {
		case "merge":
			if !keepInPair(key, resolveKeep) {
				return eris.Errorf("--keep must name %s or %s", key.Lo, key.Hi)
			}
			if err := r.Merge(ctx, key, resolveKeep); err != nil {
				return err
			}
		case "delete":
			if !keepInPair(key, resolveKeep) {
				return eris.Errorf("--keep must name %s or %s", key.Lo, key.Hi)
			}
			loser := key.Lo
			if loser == resolveKeep {
				loser = key.Hi
			}
			if err := r.DeleteOne(ctx, key, loser); err != nil {
				return err
			}
		case "keep":
			r.KeepBoth(key)
		default:
			return eris.Errorf("unknown action %q (want merge, delete, or keep)", resolveAction)
		}

		if resolveNotion && cfg.Notion.Token != "" && cfg.Notion.ReportDB != "" {
			client := notion.NewClient(cfg.Notion.Token)
			if err := notion.MarkResolved(ctx, client, cfg.Notion.ReportDB, key); err != nil {
				return eris.Wrap(err, "resolve: update notion report")
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Resolved %s / %s (%s)\n", resolveA, resolveB, resolveAction)
		return nil
	},
}

// keepInPair reports whether keep names one of the pair's records. A
// mistyped ID must fail validation rather than fall through to deleting
// whichever record the derivation happens to land on.
func keepInPair(key model.PairKey, keep string) bool {
	return keep == key.Lo || keep == key.Hi
}

func init() {
	resolveCmd.Flags().StringVar(&resolveWorkspace, "workspace", "", "workspace (default from config)")
	resolveCmd.Flags().StringVar(&resolveA, "a", "", "first record ID (required)")
	resolveCmd.Flags().StringVar(&resolveB, "b", "", "second record ID (required)")
	resolveCmd.Flags().StringVar(&resolveAction, "action", "", "merge, delete, or keep (required)")
	resolveCmd.Flags().StringVar(&resolveKeep, "keep", "", "ID of the record that survives (merge and delete)")
	resolveCmd.Flags().BoolVar(&resolveNotion, "notion", false, "mark the pair resolved in the Notion report")
	_ = resolveCmd.MarkFlagRequired("a")
	_ = resolveCmd.MarkFlagRequired("b")
	_ = resolveCmd.MarkFlagRequired("action")
	rootCmd.AddCommand(resolveCmd)
}
