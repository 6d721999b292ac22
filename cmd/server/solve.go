package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arnavshah/tabling-scheduler/pkg/availability"
	"github.com/arnavshah/tabling-scheduler/pkg/export"
	"github.com/arnavshah/tabling-scheduler/pkg/logger"
	"github.com/arnavshah/tabling-scheduler/pkg/models"
	"github.com/arnavshah/tabling-scheduler/pkg/roster"
	"github.com/arnavshah/tabling-scheduler/pkg/scheduler"
	"github.com/spf13/cobra"
)

var (
	solveDays []string
	solveOut  string
)

var solveCmd = &cobra.Command{
	Use:   "solve <roster file>",
	Short: "Build a schedule from a signup sheet and write it to a workbook",
	Args:  cobra.ExactArgs(1),
	RunE:  solveOffline,
}

func init() {
	solveCmd.Flags().StringSliceVarP(&solveDays, "days", "d", nil, "active days (defaults to the configured days)")
	solveCmd.Flags().StringVarP(&solveOut, "out", "o", "schedule.xlsx", "output file (.xlsx or .csv)")
	rootCmd.AddCommand(solveCmd)
}

func solveOffline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New("solve")

	days, err := cfg.ActiveDays()
	if err != nil {
		return err
	}
	if len(solveDays) > 0 {
		days = days[:0]
		for _, s := range solveDays {
			d, err := models.ParseDay(s)
			if err != nil {
				return err
			}
			days = append(days, d)
		}
	}

	in, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer in.Close()
	r, warnings, err := roster.Parse(filepath.Base(args[0]), in, nil)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		log.Warnf("%s", w.Message)
	}

	store, err := availability.NewStore(r)
	if err != nil {
		return err
	}
	eng := scheduler.NewScheduler(store,
		scheduler.WithOptions(cfg.Solver),
		scheduler.WithLogger(log),
	)
	sched, err := eng.Solve(days, nil)
	if err != nil {
		return err
	}

	out, err := os.Create(solveOut)
	if err != nil {
		return err
	}
	write := export.WriteXLSX
	if strings.EqualFold(filepath.Ext(solveOut), ".csv") {
		write = export.WriteCSV
	}
	if err := write(out, store, sched); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	for _, c := range eng.Diagnose(sched) {
		log.Infof("%s short by %d: %s", store.Label(c.Slot), c.Missing, strings.Join(c.Reasons, "; "))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d members, %d unassigned, fairness %.1f\n",
		solveOut, store.Len(), len(sched.Unassigned), eng.FairnessScore(sched))
	return nil
}
