package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/focuslog/internal/focus"
)

func orphansCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orphans",
		Short: "List today's sessions and breaks that were never completed",
		Long: `An orphan is a focus session or break that was started but never completed,
usually because the program exited mid-countdown. Orphans past their planned
length plus a five minute grace are marked stale.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := a.now()
			rep, err := a.svc.Recovery.Scan(now)
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), rep)
			}
			if rep.Empty() {
				fmt.Fprintln(cmd.OutOrStdout(), "No orphaned sessions.")
				return nil
			}
			tw := newTable(cmd.OutOrStdout(), "Kind", "ID", "Title", "Started", "Planned", "Stale")
			for _, s := range rep.Sessions {
				tw.AppendRow([]any{"session", shortID(s.ID), s.TaskTitle, ago(s.StartedAt, now), fmt.Sprintf("%dm", s.Duration), check(focus.IsStale(s, now))})
			}
			for _, b := range rep.Breaks {
				tw.AppendRow([]any{"break", shortID(b.ID), optional(b.Activity), ago(b.StartedAt, now), fmt.Sprintf("%dm", b.Duration), check(focus.IsStale(b, now))})
			}
			tw.Render()
			return nil
		},
	}
	cmd.AddCommand(orphansResolveCmd(a))
	return cmd
}

func orphansResolveCmd(a *app) *cobra.Command {
	var kind, action string
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Complete or delete today's orphans",
		RunE: func(cmd *cobra.Command, args []string) error {
			act, err := focus.ParseResolveAction(action)
			if err != nil {
				return err
			}
			var kinds []focus.OrphanKind
			if kind == "all" {
				kinds = []focus.OrphanKind{focus.OrphanSessions, focus.OrphanBreaks}
			} else {
				k, err := focus.ParseOrphanKind(kind)
				if err != nil {
					return err
				}
				kinds = []focus.OrphanKind{k}
			}

			now := a.now()
			for _, k := range kinds {
				n, err := a.svc.Recovery.Resolve(now, k, act)
				if err != nil {
					return fmt.Errorf("resolve %s: %w", k, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d %s\n", act, n, k)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "all", "sessions, breaks or all")
	cmd.Flags().StringVarP(&action, "action", "a", string(focus.ActionComplete), "complete, delete or keep")
	return cmd
}
