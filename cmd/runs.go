package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/draftworks/manualj-cli/internal/model"
	"github.com/draftworks/manualj-cli/internal/report"
	"github.com/draftworks/manualj-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect analysis run history",
	Long:  "Commands for listing and viewing past blueprint analyses.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List analysis runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		status, _ := cmd.Flags().GetString("status")
		project, _ := cmd.Flags().GetString("project")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status:    model.RunStatus(status),
			ProjectID: project,
			Limit:     limit,
		})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		fmt.Println(report.RenderRunList(runs))
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show full details of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON || run.Result == nil {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(run)
		}

		fmt.Printf("run %s  status=%s  created=%s\n\n",
			run.ID, run.Status, run.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Println(report.RenderSummary(run.Result))
		fmt.Println(report.RenderPhases(run.Result.Phases))
		return nil
	},
}

// -- runs loads --

var runsLoadsCmd = &cobra.Command{
	Use:   "loads <run-id>",
	Short: "Show the stored per-room load schedule of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		loads, err := st.GetRoomLoads(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs loads")
		}
		if len(loads) == 0 {
			fmt.Fprintln(os.Stderr, "No room loads stored for this run.")
			return nil
		}

		var heating, cooling float64
		for _, l := range loads {
			heating += l.HeatingBTUHr
			cooling += l.CoolingBTUHr()
		}
		fmt.Println(report.RenderLoadSchedule(&model.HVACLoads{
			TotalHeatingBTUHr: heating,
			TotalCoolingBTUHr: cooling,
			Rooms:             loads,
		}))
		return nil
	},
}

func init() {
	runsListCmd.Flags().String("status", "", "filter by run status")
	runsListCmd.Flags().String("project", "", "filter by project ID")
	runsListCmd.Flags().Int("limit", 50, "maximum runs to list")
	runsShowCmd.Flags().Bool("json", false, "print the raw run record as JSON")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsLoadsCmd)
	rootCmd.AddCommand(runsCmd)
}
