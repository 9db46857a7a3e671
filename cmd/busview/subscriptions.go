package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/busview/busview/internal/core/display"
)

var (
	flagSubPeekCount  int
	flagSubDeadLetter bool
)

var subscriptionsCmd = &cobra.Command{
	Use:     "subscriptions",
	Aliases: []string{"subs"},
	Short:   "Manage topic subscriptions",
}

func init() {
	subscriptionsCmd.AddCommand(subsListCmd)
	subscriptionsCmd.AddCommand(subsCreateCmd)
	subscriptionsCmd.AddCommand(subsDeleteCmd)
	subscriptionsCmd.AddCommand(subsPeekCmd)
	subscriptionsCmd.AddCommand(subsPurgeCmd)

	subsPeekCmd.Flags().IntVar(&flagSubPeekCount, "count", 0, "maximum messages to peek (0 = everything available)")
	subsPeekCmd.Flags().BoolVar(&flagSubDeadLetter, "deadletter", false, "peek the dead-letter sub-queue")
	subsPurgeCmd.Flags().BoolVar(&flagSubDeadLetter, "deadletter", false, "purge the dead-letter sub-queue")
}

var subsListCmd = &cobra.Command{
	Use:   "list <topic>",
	Short: "List a topic's subscriptions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newExplorer()
		if err != nil {
			return err
		}
		defer svc.Close()
		if _, err := svc.ListTopics(context.Background()); err != nil {
			return err
		}
		return printJSON(svc.Subscriptions(args[0]))
	},
}

var subsCreateCmd = &cobra.Command{
	Use:   "create <topic> <name> [option=value ...]",
	Short: "Create a subscription",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := parseOptionArgs(args[2:])
		if err != nil {
			return err
		}
		svc, err := newExplorer()
		if err != nil {
			return err
		}
		defer svc.Close()
		if _, err := svc.ListTopics(context.Background()); err != nil {
			return err
		}
		sub, err := svc.CreateSubscription(context.Background(), args[0], args[1], opts)
		if err != nil {
			return err
		}
		return printJSON(sub)
	},
}

var subsDeleteCmd = &cobra.Command{
	Use:   "delete <topic> <name>",
	Short: "Delete a subscription",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm(fmt.Sprintf("Delete subscription '%s' of topic '%s'?", args[1], args[0])) {
			return nil
		}
		svc, err := newExplorer()
		if err != nil {
			return err
		}
		defer svc.Close()
		if err := svc.DeleteSubscription(context.Background(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Println("Subscription deleted")
		return nil
	},
}

var subsPeekCmd = &cobra.Command{
	Use:   "peek <topic> <name>",
	Short: "Peek subscription messages without consuming them",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newExplorer()
		if err != nil {
			return err
		}
		defer svc.Close()
		kind := display.Normal
		if flagSubDeadLetter {
			kind = display.DeadLetter
		}
		ctx, cancel := peekContext()
		defer cancel()
		msgs, err := svc.PeekSubscription(ctx, args[0], args[1], flagSubPeekCount, kind)
		if err != nil {
			return err
		}
		return printJSON(msgs)
	},
}

var subsPurgeCmd = &cobra.Command{
	Use:   "purge <topic> <name>",
	Short: "Remove all messages from a subscription",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm(fmt.Sprintf("Purge subscription '%s' of topic '%s'?", args[1], args[0])) {
			return nil
		}
		svc, err := newExplorer()
		if err != nil {
			return err
		}
		defer svc.Close()
		kind := display.Normal
		if flagSubDeadLetter {
			kind = display.DeadLetter
		}
		purged, err := svc.PurgeSubscription(context.Background(), args[0], args[1], kind)
		if err != nil {
			return err
		}
		fmt.Printf("Purged %d messages\n", purged)
		return nil
	},
}
