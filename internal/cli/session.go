package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func sessionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "session", Short: "Inspect focus sessions"}
	cmd.AddCommand(sessionListCmd(a))
	return cmd
}

func sessionListCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the focus sessions of a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := dateFlag(date, a.now())
			if err != nil {
				return err
			}
			sessions, err := a.svc.Ledger.SessionsOn(day)
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), sessions)
			}
			tw := newTable(cmd.OutOrStdout(), "ID", "Task", "Started", "Minutes", "Done", "Notes")
			total := 0
			for _, s := range sessions {
				if s.Completed {
					total += s.Duration
				}
				tw.AppendRow([]any{shortID(s.ID), s.TaskTitle, clock(s.StartedAt), s.Duration, check(s.Completed), optional(s.Notes)})
			}
			tw.AppendFooter([]any{"", "", "", fmt.Sprintf("%d focused", total), "", ""})
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "day to list (YYYY-MM-DD, default today)")
	return cmd
}

func breakCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "break", Short: "Inspect breaks"}
	cmd.AddCommand(breakListCmd(a))
	return cmd
}

func breakListCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the breaks of a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := dateFlag(date, a.now())
			if err != nil {
				return err
			}
			breaks, err := a.svc.Ledger.BreaksOn(day)
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), breaks)
			}
			tw := newTable(cmd.OutOrStdout(), "ID", "Activity", "Started", "Minutes", "Done")
			for _, b := range breaks {
				tw.AppendRow([]any{shortID(b.ID), optional(b.Activity), clock(b.StartedAt), b.Duration, check(b.Completed)})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "day to list (YYYY-MM-DD, default today)")
	return cmd
}

func adviseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "advise",
		Short: "Show whether a break is due",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.svc.Advisor.Recommend(a.now())
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), rec)
			}
			if !rec.ShouldBreak {
				fmt.Fprintln(cmd.OutOrStdout(), "No break needed right now.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), rec.Message)
			return nil
		},
	}
}
