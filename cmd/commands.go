package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/salestrack/internal/app"
	"github.com/okian/salestrack/internal/domain/window"
	"github.com/okian/salestrack/internal/export"
	"github.com/okian/salestrack/internal/seed"
)

func (c *cli) newRepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rep",
		Short: "Manage sales representatives",
	}
	cmd.AddCommand(c.newRepAddCmd(), c.newRepListCmd(), c.newRepRemoveCmd())
	return cmd
}

func (c *cli) newRepAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME",
		Short: "Add a representative",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, closeFn, err := c.openService(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			rep, out, err := svc.AddRepresentative(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			c.warn(out)
			fmt.Fprintf(c.out, "added %s (id %d)\n", rep.Name, rep.ID)
			return nil
		},
	}
}

func (c *cli) newRepListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List representatives in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, closeFn, err := c.openService(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tDEALS\tREVENUE")
			for _, r := range svc.Representatives(ctx) {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", r.ID, r.Name, r.Deals, c.formatMoney(r.Revenue))
			}
			return tw.Flush()
		},
	}
}

func (c *cli) newRepRemoveCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "remove ID",
		Short: "Remove a representative and all of their deals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			svc, closeFn, err := c.openService(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			rep, err := svc.Representative(ctx, id)
			if errors.Is(err, app.ErrRepNotFound) {
				fmt.Fprintf(c.out, "no representative with id %d\n", id)
				return nil
			}
			if !yes {
				fmt.Fprintf(c.out, "Remove %s and all %d deals? [y/N] ", rep.Name, rep.Deals)
				if !confirmed(cmd) {
					fmt.Fprintln(c.out, "cancelled")
					return nil
				}
			}
			out, err := svc.RemoveRepresentative(ctx, id)
			if err != nil {
				return err
			}
			c.warn(out)
			fmt.Fprintf(c.out, "removed %s\n", rep.Name)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (c *cli) newDealCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deal",
		Short: "Record deals",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "record ID AMOUNT",
		Short: "Record a closed deal; invalid amounts are recorded as 0",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			svc, closeFn, err := c.openService(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			rep, out, err := svc.RecordDeal(ctx, id, app.CoerceAmount(args[1]))
			if errors.Is(err, app.ErrRepNotFound) {
				fmt.Fprintf(c.out, "no representative with id %d\n", id)
				return nil
			}
			if err != nil {
				return err
			}
			c.warn(out)
			last, _ := rep.LastDeal()
			fmt.Fprintf(c.out, "recorded %s for %s (%d deals, %s total)\n",
				c.formatMoney(last.Amount), rep.Name, rep.Deals, c.formatMoney(rep.Revenue))
			return nil
		},
	})
	return cmd
}

func (c *cli) newStatsCmd() *cobra.Command {
	var selector, from, to string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the dashboard for a time window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := window.ParseFilter(selector, from, to)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			svc, closeFn, err := c.openService(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			d := svc.DashboardFor(ctx, f)
			fmt.Fprintf(c.out, "Filter:         %s\n", d.Filter)
			fmt.Fprintf(c.out, "Total revenue:  %s\n", c.formatMoney(d.Summary.TotalRevenue))
			fmt.Fprintf(c.out, "Total deals:    %d\n", d.Summary.TotalDeals)
			fmt.Fprintf(c.out, "Avg deal size:  %s\n", c.formatMoney(d.Summary.AvgDealSize))
			fmt.Fprintf(c.out, "Highest deal:   %s\n", c.formatMoney(d.HighestDeal))
			fmt.Fprintf(c.out, "Deals today:    %d\n", d.DealsToday)
			if d.TopPerformer != nil {
				fmt.Fprintf(c.out, "Top performer:  %s\n", d.TopPerformer.Name)
			}
			fmt.Fprintln(c.out)

			tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "RANK\tNAME\tDEALS\tREVENUE")
			for i, v := range d.Reps {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", i+1, v.Name, v.Deals, c.formatMoney(v.Revenue))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&selector, "filter", "all", "time window: all, today, week, month or custom")
	cmd.Flags().StringVar(&from, "from", "", "custom window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "custom window end (YYYY-MM-DD)")
	return cmd
}

func (c *cli) newExportCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:       "export csv|json",
		Short:     "Write a sales report",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(export.FormatCSV), string(export.FormatJSON)},
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			svc, closeFn, err := c.openService(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			snap := svc.Snapshot(ctx)
			if format == export.FormatCSV && len(snap.Reps) == 0 {
				return export.ErrNothingToExport
			}
			opt := export.WithLocation(svc.Location())
			if outPath == "-" {
				return export.Write(c.out, format, snap.Reps, snap.At, opt)
			}
			if outPath == "" {
				outPath = export.FileName(format, snap.At.In(svc.Location()))
			}
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create report: %w", err)
			}
			if err := export.Write(f, format, snap.Reps, snap.At, opt); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close report: %w", err)
			}
			fmt.Fprintf(c.out, "wrote %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file; \"-\" writes to stdout")
	return cmd
}

func (c *cli) newSeedCmd() *cobra.Command {
	cfg := seed.DefaultConfig()
	days := 60
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Add demo representatives and deals spread over recent days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, closeFn, err := c.openService(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			st, err := seed.New(svc,
				seed.WithLogger(c.log.Named("seed")),
				seed.WithHistory(time.Duration(days)*24*time.Hour),
			).Run(ctx, cfg)
			if err != nil {
				return err
			}
			c.warn(app.Outcome{Warnings: st.Warnings})
			fmt.Fprintf(c.out, "added %d representatives (%d skipped) with %d deals worth %s\n",
				st.RepsAdded, st.RepsSkipped, st.DealsRecorded, c.formatMoney(st.Revenue))
			return nil
		},
	}
	cmd.Flags().IntVar(&cfg.Reps, "reps", cfg.Reps, "number of representatives")
	cmd.Flags().IntVar(&cfg.DealsPerRep, "deals", cfg.DealsPerRep, "maximum deals per representative")
	cmd.Flags().IntVar(&days, "days", days, "spread deal dates over this many past days")
	return cmd
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid representative id %q", raw)
	}
	return id, nil
}

func confirmed(cmd *cobra.Command) bool {
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
