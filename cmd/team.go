package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/okian/hoopsrank/internal/domain/draft"
)

func newTeamCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Show or edit athlete statuses for a team",
		Long: `Each team marks athletes on_team, available or unavailable. Athletes with
no stored status are available. Averages over on_team athletes are printed
again whenever an athlete joins or leaves the team.`,
	}
	cmd.AddCommand(newTeamListCmd(c), newTeamSetCmd(c))
	return cmd
}

func newTeamListCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list TEAM",
		Short: "Print the athletes with a stored status",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = c.run(func(ctx context.Context, args []string) error {
		snap, err := c.svc.Snapshot(ctx)
		if err != nil {
			return err
		}
		statuses, err := c.svc.PlayerStatuses(ctx, args[0])
		if err != nil {
			return err
		}
		return c.out.Statuses(args[0], snap, statuses)
	})
	return cmd
}

func newTeamSetCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set TEAM ATHLETE_ID STATUS",
		Short: "Set an athlete's status: on_team, available or unavailable",
		Args:  cobra.ExactArgs(3),
	}
	cmd.RunE = c.run(func(ctx context.Context, args []string) error {
		ids, err := athleteIDs(args[1:2])
		if err != nil {
			return err
		}
		status, err := draft.ParseStatus(args[2])
		if err != nil {
			return err
		}
		update, snap, err := c.svc.SetPlayerStatus(ctx, args[0], ids[0], status)
		if err != nil {
			return err
		}
		if err := c.out.StatusChange(update.StatusChange); err != nil {
			return err
		}
		if update.Averages == nil {
			return nil
		}
		return c.out.TeamAverage(snap, *update.Averages)
	})
	return cmd
}
