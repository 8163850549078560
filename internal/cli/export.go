package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/focuslog/internal/calendar"
	"github.com/sadopc/focuslog/internal/export"
)

func exportCmd(a *app) *cobra.Command {
	var from, to, format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write focus sessions and breaks to a CSV, JSON or YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := a.now()
			start, err := dateFlag(from, now)
			if err != nil {
				return err
			}
			end, err := dateFlag(to, now)
			if err != nil {
				return err
			}
			format = strings.ToLower(format)
			if out == "" {
				out = fmt.Sprintf("focuslog-%s.%s", calendar.FormatDate(now), format)
			}

			rows, err := export.Collect(a.svc.Ledger, start, end)
			if err != nil {
				return err
			}
			if err := export.Write(format, rows, out); err != nil {
				return err
			}
			a.log.Info("exported", "rows", len(rows), "format", format, "path", out)
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d rows to %s\n", len(rows), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&to, "to", "", "last day (YYYY-MM-DD, default today)")
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv, json or yaml")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default focuslog-<date>.<format>)")
	return cmd
}
