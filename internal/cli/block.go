package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/focuslog/internal/calendar"
)

func blockCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "block",
		Short: "Manage weekday time blocks",
		Long:  "A time block assigns a project to a range of days. Only weekdays count toward a block.",
	}
	cmd.AddCommand(
		blockAddCmd(a),
		blockListCmd(a),
		blockUpdateCmd(a),
		blockRemoveCmd(a),
		blockTodayCmd(a),
	)
	return cmd
}

func blockAddCmd(a *app) *cobra.Command {
	var color string
	cmd := &cobra.Command{
		Use:   "add <project> <start> <end>",
		Short: "Add a time block (dates as YYYY-MM-DD)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := calendar.ParseDate(args[1])
			if err != nil {
				return fmt.Errorf("start date: %w", err)
			}
			end, err := calendar.ParseDate(args[2])
			if err != nil {
				return fmt.Errorf("end date: %w", err)
			}
			b, err := a.store.CreateBlock(calendar.TimeBlock{
				Project:   args[0],
				StartDate: start,
				EndDate:   end,
				Color:     strings.ToUpper(color),
			})
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), b)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s %s (%d weekdays)\n", b.ID, b.Project, b.WeekdayCount())
			return nil
		},
	}
	cmd.Flags().StringVar(&color, "color", "", "swatch from the palette (default: next in rotation)")
	return cmd
}

func blockListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all time blocks",
		RunE: func(cmd *cobra.Command, args []string) error {
			blocks, err := a.store.ListBlocks()
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), blocks)
			}
			tw := newTable(cmd.OutOrStdout(), "ID", "Project", "Start", "End", "Weekdays", "Color")
			for _, b := range blocks {
				tw.AppendRow([]any{b.ID, b.Project, calendar.FormatDate(b.StartDate), calendar.FormatDate(b.EndDate), b.WeekdayCount(), b.Color})
			}
			tw.Render()
			return nil
		},
	}
}

func blockUpdateCmd(a *app) *cobra.Command {
	var project, start, end, color string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a time block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.store.GetBlock(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("project") {
				b.Project = project
			}
			if cmd.Flags().Changed("start") {
				if b.StartDate, err = calendar.ParseDate(start); err != nil {
					return fmt.Errorf("start date: %w", err)
				}
			}
			if cmd.Flags().Changed("end") {
				if b.EndDate, err = calendar.ParseDate(end); err != nil {
					return fmt.Errorf("end date: %w", err)
				}
			}
			b.Color = strings.ToUpper(color)
			if err := a.store.UpdateBlock(*b); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", b.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "project name")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&color, "color", "", "swatch from the palette")
	return cmd
}

func blockRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Delete a time block",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.DeleteBlock(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			return nil
		},
	}
}

func blockTodayCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show the blocks active on a day with their progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := dateFlag(date, a.now())
			if err != nil {
				return err
			}
			blocks, err := a.store.ListBlocks()
			if err != nil {
				return err
			}
			active := calendar.BlocksActiveOn(blocks, day)

			type progress struct {
				calendar.TimeBlock
				Progress string `json:"progress"`
			}
			out := make([]progress, 0, len(active))
			for _, b := range active {
				p, _ := calendar.Progress(b, day)
				out = append(out, progress{TimeBlock: b, Progress: p})
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), out)
			}
			if len(out) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No blocks on %s.\n", calendar.FormatDate(day))
				return nil
			}
			tw := newTable(cmd.OutOrStdout(), "Project", "Progress", "Color")
			for _, p := range out {
				tw.AppendRow([]any{p.Project, p.Progress, p.Color})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "day to show (YYYY-MM-DD, default today)")
	return cmd
}
