package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/clickforge/clicker-core/internal/config"
	"github.com/clickforge/clicker-core/internal/save"
	"github.com/clickforge/clicker-core/internal/sim"
	"github.com/clickforge/clicker-core/internal/upgrade"
)

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	warnColor  = color.New(color.FgYellow)
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dir, profile string
	root := &cobra.Command{
		Use:           "clicker",
		Short:         "Inspect and balance the clicker economy",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dir, "config", "", "config directory (default $"+config.EnvConfigDir+")")
	root.PersistentFlags().StringVar(&profile, "profile", "", "config profile (default $"+config.EnvProfile+")")

	load := func() (config.Balance, error) {
		if dir == "" {
			dir = os.Getenv(config.EnvConfigDir)
		}
		if profile == "" {
			profile = os.Getenv(config.EnvProfile)
		}
		if dir == "" {
			return config.Default(), nil
		}
		return config.NewLoader(dir).Load(profile)
	}

	root.AddCommand(newCatalogCmd(load), newSimulateCmd(load), newInspectCmd())
	return root
}

func newCatalogCmd(load func() (config.Balance, error)) *cobra.Command {
	var batch int
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List upgrades with their prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			bal, err := load()
			if err != nil {
				return err
			}
			cat, err := bal.Catalog()
			if err != nil {
				return err
			}
			return printCatalog(cmd.OutOrStdout(), bal.Version, upgrade.NewLedger(cat), batch)
		},
	}
	cmd.Flags().IntVar(&batch, "batch", 10, "show the price of buying this many at once")
	return cmd
}

func printCatalog(w io.Writer, version string, l *upgrade.Ledger, batch int) error {
	titleColor.Fprintf(w, "Upgrade catalog (balance %s)\n", version)

	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"ID", "Name", "Kind", "Cost", "Step", fmt.Sprintf("Cost x%d", batch), "Bonus"}),
	)
	for _, d := range l.Catalog().Definitions() {
		cost, err := l.BatchCost(d.ID, batch)
		if err != nil {
			return err
		}
		bonus := "-"
		if d.Kind == upgrade.KindClickBonus {
			bonus = fmt.Sprintf("+%g (+%g/unit)", d.FlatBonus, d.BonusIncrement)
		}
		step := fmt.Sprintf("%d", d.PriceIncrease)
		if d.SingleInstance {
			step = "once"
		}
		table.Append([]string{
			d.ID,
			d.Name,
			string(d.Kind),
			fmt.Sprintf("%d", d.BaseCost),
			step,
			fmt.Sprintf("%d", cost),
			bonus,
		})
	}
	return table.Render()
}

func newSimulateCmd(load func() (config.Balance, error)) *cobra.Command {
	var (
		trials   int
		duration time.Duration
		cps      float64
		seed     uint64
		priority string
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Monte Carlo a scripted player against the balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			bal, err := load()
			if err != nil {
				return err
			}
			p := sim.Params{
				Balance:  bal,
				Strategy: sim.Strategy{ClicksPerSecond: cps},
				Duration: duration,
				Trials:   trials,
				Seed:     seed,
			}
			if priority != "" {
				p.Strategy.Priority = strings.Split(priority, ",")
			}
			res, err := sim.Run(cmd.Context(), p)
			if err != nil {
				return err
			}
			return printSim(cmd.OutOrStdout(), p, res)
		},
	}
	cmd.Flags().IntVar(&trials, "trials", 200, "number of simulated sessions")
	cmd.Flags().DurationVar(&duration, "duration", 30*time.Minute, "play time per session")
	cmd.Flags().Float64Var(&cps, "cps", 5, "manual clicks per second")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "seed of the first trial")
	cmd.Flags().StringVar(&priority, "priority", "", "comma-separated purchase order (default: built-in)")
	return cmd
}

func printSim(w io.Writer, p sim.Params, res sim.Result) error {
	titleColor.Fprintf(w, "%d sessions, %s each, %.1f clicks/s\n", res.Trials, p.Duration, p.Strategy.ClicksPerSecond)

	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Metric", "Mean", "StdDev", "Min", "P50", "P90", "P99", "Max"}),
	)
	rows := []struct {
		name string
		s    sim.Stats
	}{
		{"final score", res.Score},
		{"points earned", res.Earned},
		{"workers hired", res.Hired},
	}
	for _, r := range rows {
		table.Append([]string{
			r.name,
			fmt.Sprintf("%.1f", r.s.Mean),
			fmt.Sprintf("%.1f", r.s.StdDev),
			fmt.Sprintf("%d", r.s.Min),
			fmt.Sprintf("%.1f", r.s.P50),
			fmt.Sprintf("%.1f", r.s.P90),
			fmt.Sprintf("%.1f", r.s.P99),
			fmt.Sprintf("%d", r.s.Max),
		})
	}
	return table.Render()
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <save.json>",
		Short: "Print the contents of a save file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, ok, err := save.NewStore(args[0]).Load()
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no save at %s", args[0])
			}
			return printSave(cmd.OutOrStdout(), snap)
		},
	}
}

func printSave(w io.Writer, snap save.Snapshot) error {
	titleColor.Fprintf(w, "Save v%d from %s\n", snap.Version, snap.SavedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "   Score: %d\n", snap.Score)
	fmt.Fprintf(w, "   Worker cap: %v\n", snap.CapacityLimitEnabled)
	if snap.Skipped > 0 {
		warnColor.Fprintf(w, "   %d corrupt entries skipped\n", snap.Skipped)
	}

	ids := make([]string, 0, len(snap.Purchased))
	for id := range snap.Purchased {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	upgrades := tablewriter.NewTable(w, tablewriter.WithHeader([]string{"Upgrade", "Owned"}))
	for _, id := range ids {
		upgrades.Append([]string{id, fmt.Sprintf("%d", snap.Purchased[id])})
	}
	if err := upgrades.Render(); err != nil {
		return err
	}

	workers := tablewriter.NewTable(w, tablewriter.WithHeader([]string{"Worker", "Paid", "Budget", "Remaining"}))
	for _, s := range snap.Workers {
		workers.Append([]string{
			s.ID,
			fmt.Sprintf("%d", s.PaidSoFar),
			fmt.Sprintf("%d", s.TotalBudget),
			(time.Duration(s.RemainingMs) * time.Millisecond).String(),
		})
	}
	return workers.Render()
}
