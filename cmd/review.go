package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/dedupe-cli/internal/match"
	"github.com/sells-group/dedupe-cli/internal/model"
	"github.com/sells-group/dedupe-cli/internal/review"
)

var reviewWorkspace string

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Interactively resolve duplicate candidates",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		workspace := reviewWorkspace
		if workspace == "" {
			workspace = cfg.Match.Workspace
		}

		contacts, err := st.ListContacts(ctx, workspace)
		if err != nil {
			return eris.Wrap(err, "review: list contacts")
		}

		pairs := match.FindDuplicates(contacts)
		if len(pairs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No duplicate candidates found.")
			return nil
		}

		r := review.NewReviewer(st, pairs)
		return runReviewLoop(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), r)
	},
}

// runReviewLoop walks the operator through each pending pair. Resolving a
// pair can invalidate later ones (deleting or merging a record drops every
// pair that referenced it), so the loop re-reads pending state after each
// action instead of iterating a snapshot.
func runReviewLoop(ctx context.Context, in io.Reader, out io.Writer, r *review.Reviewer) error {
	scanner := bufio.NewScanner(in)
	skipped := make(map[model.PairKey]bool)

	for {
		pair, ok := nextPending(r, skipped)
		if !ok {
			if len(skipped) > 0 {
				fmt.Fprintf(out, "Done. %d pairs skipped.\n", len(skipped))
			} else {
				fmt.Fprintln(out, "All pairs resolved.")
			}
			return nil
		}

		printPair(out, pair)
		fmt.Fprint(out, "[1] keep first  [2] keep second  [d1]/[d2] delete  [k] keep both  [s] skip  [q] quit > ")

		if !scanner.Scan() {
			return scanner.Err()
		}

		var actErr error
		switch strings.TrimSpace(strings.ToLower(scanner.Text())) {
		case "1":
			actErr = r.Merge(ctx, pair.Key(), pair.A.ID)
		case "2":
			actErr = r.Merge(ctx, pair.Key(), pair.B.ID)
		case "d1":
			actErr = r.DeleteOne(ctx, pair.Key(), pair.A.ID)
		case "d2":
			actErr = r.DeleteOne(ctx, pair.Key(), pair.B.ID)
		case "k":
			r.KeepBoth(pair.Key())
		case "s":
			skipped[pair.Key()] = true
		case "q":
			return nil
		default:
			fmt.Fprintln(out, "Unrecognized choice.")
			continue
		}
		// A failed store write leaves the pair pending; tell the operator
		// and offer the same pair again rather than killing the session.
		if actErr != nil {
			fmt.Fprintf(out, "Action failed: %v\n", actErr)
		}
	}
}

// nextPending returns the first pending pair the operator has not skipped.
func nextPending(r *review.Reviewer, skipped map[model.PairKey]bool) (model.CandidatePair, bool) {
	for _, p := range r.State().Pending() {
		if !skipped[p.Key()] {
			return p, true
		}
	}
	return model.CandidatePair{}, false
}

func printPair(out io.Writer, p model.CandidatePair) {
	fmt.Fprintf(out, "\n%s (score %d)\n", p.Reason, p.Score)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "\tFIRST\tSECOND")
	_, _ = fmt.Fprintf(w, "ID\t%s\t%s\n", p.A.ID, p.B.ID)
	_, _ = fmt.Fprintf(w, "Name\t%s\t%s\n", p.A.FullName(), p.B.FullName())
	_, _ = fmt.Fprintf(w, "Email\t%s\t%s\n", p.A.Email, p.B.Email)
	_, _ = fmt.Fprintf(w, "Phone\t%s\t%s\n", p.A.Phone, p.B.Phone)
	_, _ = fmt.Fprintf(w, "Company\t%s\t%s\n", p.A.Company, p.B.Company)
	_, _ = fmt.Fprintf(w, "Profile\t%s\t%s\n", p.A.ProfileURL, p.B.ProfileURL)
	_ = w.Flush()
}

func init() {
	reviewCmd.Flags().StringVar(&reviewWorkspace, "workspace", "", "workspace to review (default from config)")
	rootCmd.AddCommand(reviewCmd)
}
