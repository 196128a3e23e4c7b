package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newDraftCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Show or edit a team's draft order",
		Long: `Each team keeps its own order of picks numbered 1..N. The first read of a
team seeds it from the ranked table by Overall.`,
	}
	cmd.AddCommand(newDraftOrderCmd(c), newDraftMoveCmd(c), newDraftSetCmd(c))
	return cmd
}

func newDraftOrderCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order TEAM",
		Short: "Print the team's draft order",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = c.run(func(ctx context.Context, args []string) error {
		return c.printOrder(ctx, args[0])
	})
	return cmd
}

func newDraftMoveCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move TEAM ATHLETE_ID PICK",
		Short: "Move an athlete to a pick, swapping with its holder",
		Args:  cobra.ExactArgs(3),
	}
	cmd.RunE = c.run(func(ctx context.Context, args []string) error {
		ids, err := athleteIDs(args[1:2])
		if err != nil {
			return err
		}
		pick, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid pick %q: %w", args[2], err)
		}
		// seed first so a move on a fresh team sees the ranked order
		if _, _, err := c.svc.DraftOrder(ctx, args[0]); err != nil {
			return err
		}
		if err := c.svc.MoveDraftPick(ctx, args[0], ids[0], pick); err != nil {
			return err
		}
		return c.printOrder(ctx, args[0])
	})
	return cmd
}

func newDraftSetCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set TEAM ATHLETE_ID...",
		Short: "Replace the team's draft order",
		Long:  `Number the given athletes 1..N in order. Unranked and repeated ids are skipped.`,
		Args:  cobra.MinimumNArgs(2),
	}
	cmd.RunE = c.run(func(ctx context.Context, args []string) error {
		ids, err := athleteIDs(args[1:])
		if err != nil {
			return err
		}
		if _, err := c.svc.SetDraftOrder(ctx, args[0], ids); err != nil {
			return err
		}
		return c.printOrder(ctx, args[0])
	})
	return cmd
}

func (c *cli) printOrder(ctx context.Context, team string) error {
	entries, snap, err := c.svc.DraftOrder(ctx, team)
	if err != nil {
		return err
	}
	return c.out.DraftOrder(team, entries, snap)
}
