package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/okian/hoopsrank/internal/domain/draft"
	"github.com/okian/hoopsrank/internal/domain/model"
	"github.com/okian/hoopsrank/internal/domain/types"
)

func newRankCmd(c *cli) *cobra.Command {
	var (
		sortBy string
		asc    bool
		punt   string
		team   string
		status string
	)
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Print the ranked table",
		Long: `Print athletes ordered by a rating column.

A column is OVERALL, AVAILABILITY, COMBINED, a category such as PTS, an ISO
week such as 2025-W07, or a punt variant such as PUNT_FT_TOV with an optional
:AVAILABILITY or :COMBINED suffix. With --punt and no --sort the table is
ordered by that variant's Overall.

With --team the table shows each athlete's status for that team, and
--status keeps only athletes with that status (on_team, available or
unavailable).`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&sortBy, "sort", "s", "", "Column to sort by (default OVERALL)")
	cmd.Flags().BoolVar(&asc, "asc", false, "Sort ascending")
	cmd.Flags().StringVarP(&punt, "punt", "p", "", "Punt variant to show, e.g. PUNT_FT_TOV")
	cmd.Flags().StringVarP(&team, "team", "t", "", "Team whose athlete statuses are shown")
	cmd.Flags().StringVar(&status, "status", "", "Only show athletes with this status for --team")

	cmd.RunE = c.run(func(ctx context.Context, _ []string) error {
		snap, err := c.svc.Snapshot(ctx)
		if err != nil {
			return err
		}

		var puntKey string
		if punt != "" {
			col, err := columnOf(snap, punt)
			if err != nil {
				return err
			}
			if col.Kind != types.KindPunt {
				return fmt.Errorf("%w: %s is not a punt variant", types.ErrUnknownColumn, punt)
			}
			puntKey = col.Punt
			if sortBy == "" {
				sortBy = col.String()
			}
		}
		if sortBy == "" {
			sortBy = types.FieldOverall.String()
		}
		col, err := columnOf(snap, sortBy)
		if err != nil {
			return err
		}

		var (
			statuses map[model.AthleteID]draft.Status
			keep     func(types.RankedRow) bool
		)
		if team != "" {
			if statuses, err = c.svc.PlayerStatuses(ctx, team); err != nil {
				return err
			}
		}
		if status != "" {
			if team == "" {
				return errors.New("--status needs --team")
			}
			want, err := draft.ParseStatus(status)
			if err != nil {
				return err
			}
			keep = func(r types.RankedRow) bool {
				st, ok := statuses[r.AthleteID]
				if !ok {
					st = draft.StatusAvailable
				}
				return st == want
			}
		}
		idx := snap.Index(col, !asc, keep)
		return c.out.Ranked(snap, snap.Ranked(idx, c.cfg.Top), puntKey, statuses)
	})
	return cmd
}

func newWeeklyCmd(c *cli) *cobra.Command {
	var week string
	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Print schedule-weighted ratings per week",
		Long: `Print one column per schedule week. Athletes whose team has no games in
the schedule show N/A. Rows are ordered by Overall, or by --week.`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&week, "week", "w", "", "ISO week to sort by, e.g. 2025-W07")

	cmd.RunE = c.run(func(ctx context.Context, _ []string) error {
		snap, err := c.svc.Snapshot(ctx)
		if err != nil {
			return err
		}
		col := types.Column{Kind: types.KindComposite, Field: types.FieldOverall}
		if week != "" {
			if col, err = columnOf(snap, week); err != nil {
				return err
			}
		}
		idx := snap.Index(col, true, nil)
		rank := func(id model.AthleteID) int {
			e, _ := idx.Rank(id)
			return e.Rank
		}
		t := snap.WeeklyTable()
		slices.SortFunc(t.Rows, func(a, b types.WeeklyRow) int { return rank(a.AthleteID) - rank(b.AthleteID) })
		return c.out.Weekly(t, c.cfg.Top)
	})
	return cmd
}

func newVarianceCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "variance",
		Short: "Print per-category game-to-game variance",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = c.run(func(ctx context.Context, _ []string) error {
		variance, cats, err := c.svc.Variance(ctx)
		if err != nil {
			return err
		}
		return c.out.Variance(cats, variance)
	})
	return cmd
}

func newAveragesCmd(c *cli) *cobra.Command {
	var team string
	cmd := &cobra.Command{
		Use:   "averages [ATHLETE_ID...]",
		Short: "Average the ratings of a set of athletes",
		Long: `Average the ratings of the given athletes, or with --team of the athletes
whose status for that team is on_team.`,
	}
	cmd.Flags().StringVarP(&team, "team", "t", "", "Average the team's on_team athletes")
	cmd.Args = func(cmd *cobra.Command, args []string) error {
		if team != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	}
	cmd.RunE = c.run(func(ctx context.Context, args []string) error {
		if team != "" {
			avg, snap, err := c.svc.RosterAverages(ctx, team)
			if err != nil {
				return err
			}
			return c.out.TeamAverage(snap, avg)
		}
		ids, err := athleteIDs(args)
		if err != nil {
			return err
		}
		avg, snap, err := c.svc.TeamAverages(ctx, ids)
		if err != nil {
			return err
		}
		return c.out.TeamAverage(snap, avg)
	})
	return cmd
}

// columnOf parses name and checks the snapshot carries it.
func columnOf(snap *types.Snapshot, name string) (types.Column, error) {
	col, err := types.ParseColumn(name)
	if err != nil {
		return types.Column{}, err
	}
	if !snap.HasColumn(col) {
		return types.Column{}, fmt.Errorf("%w: %s not in this run", types.ErrUnknownColumn, col)
	}
	return col, nil
}

func athleteIDs(args []string) ([]model.AthleteID, error) {
	ids := make([]model.AthleteID, len(args))
	for i, a := range args {
		n, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid athlete id %q: %w", a, err)
		}
		ids[i] = model.AthleteID(n)
	}
	return ids, nil
}
