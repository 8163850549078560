package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/focuslog/internal/focus"
)

func taskCmd(a *app) *cobra.Command {
	task := &cobra.Command{
		Use:   "task",
		Short: "Manage today's tasks",
		Long:  "Tasks belong to the day they were created on. Ids may be shortened to any unambiguous prefix.",
	}
	task.AddCommand(
		taskAddCmd(a),
		taskListCmd(a),
		taskSetDoneCmd(a, "done", true),
		taskSetDoneCmd(a, "undone", false),
		taskRenameCmd(a),
		taskRemoveCmd(a),
	)
	return task
}

func taskAddCmd(a *app) *cobra.Command {
	var category string
	var estimate int
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task for today",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var est *int
			if cmd.Flags().Changed("estimate") {
				est = &estimate
			}
			t, err := a.svc.Tasks.Add(a.now(), strings.Join(args, " "), focus.Category(category), est)
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), t)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s %s\n", shortID(t.ID), t.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", string(focus.CategoryOther), "category: "+categoryList())
	cmd.Flags().IntVarP(&estimate, "estimate", "e", 0, "estimated sessions")
	return cmd
}

func taskListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List today's tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := a.svc.Tasks.List(a.now())
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), tasks)
			}
			tw := newTable(cmd.OutOrStdout(), "ID", "Title", "Category", "Sessions", "Done")
			for _, t := range tasks {
				sessions := strconv.Itoa(t.SessionsCompleted)
				if t.EstimatedSessions != nil {
					sessions += "/" + strconv.Itoa(*t.EstimatedSessions)
				}
				tw.AppendRow([]any{shortID(t.ID), t.Title, t.Category.Label(), sessions, check(t.Completed)})
			}
			tw.Render()
			return nil
		},
	}
}

func taskSetDoneCmd(a *app, use string, done bool) *cobra.Command {
	short := "Mark a task completed"
	if !done {
		short = "Mark a task not completed"
	}
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.patchTask(cmd, args[0], focus.TaskPatch{Completed: &done})
		},
	}
}

func taskRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Change a task's title",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args[1:], " ")
			return a.patchTask(cmd, args[0], focus.TaskPatch{Title: &title})
		},
	}
}

func taskRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := a.now()
			tasks, err := a.svc.Tasks.List(now)
			if err != nil {
				return err
			}
			t, err := resolveTask(tasks, args[0])
			if err != nil {
				return err
			}
			if err := a.svc.Tasks.Remove(now, t.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s %s\n", shortID(t.ID), t.Title)
			return nil
		},
	}
}

func (a *app) patchTask(cmd *cobra.Command, ref string, p focus.TaskPatch) error {
	now := a.now()
	tasks, err := a.svc.Tasks.List(now)
	if err != nil {
		return err
	}
	t, err := resolveTask(tasks, ref)
	if err != nil {
		return err
	}
	if err := a.svc.Tasks.Update(now, t.ID, p); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", shortID(t.ID))
	return nil
}

func categoryList() string {
	names := make([]string, len(focus.Categories))
	for i, c := range focus.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
