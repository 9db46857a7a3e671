package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/busview/busview/internal/core/display"
	"github.com/busview/busview/internal/core/models"
)

var (
	flagPeekCount  int
	flagDeadLetter bool
)

var queuesCmd = &cobra.Command{
	Use:   "queues",
	Short: "Manage queues",
}

func init() {
	queuesCmd.AddCommand(queuesListCmd)
	queuesCmd.AddCommand(queuesCreateCmd)
	queuesCmd.AddCommand(queuesDeleteCmd)
	queuesCmd.AddCommand(queuesSendCmd)
	queuesCmd.AddCommand(queuesPeekCmd)
	queuesCmd.AddCommand(queuesPurgeCmd)

	queuesPeekCmd.Flags().IntVar(&flagPeekCount, "count", 0, "maximum messages to peek (0 = everything available)")
	queuesPeekCmd.Flags().BoolVar(&flagDeadLetter, "deadletter", false, "peek the dead-letter sub-queue")
	queuesPurgeCmd.Flags().BoolVar(&flagDeadLetter, "deadletter", false, "purge the dead-letter sub-queue")
}

func cliMessageKind() display.MessageKind {
	if flagDeadLetter {
		return display.DeadLetter
	}
	return display.Normal
}

var queuesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List queues",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newExplorer()
		if err != nil {
			return err
		}
		defer svc.Close()
		queues, err := svc.ListQueues(context.Background())
		if err != nil {
			return err
		}
		return printJSON(queues)
	},
}

var queuesCreateCmd = &cobra.Command{
	Use:   "create <name> [option=value ...]",
	Short: "Create a queue",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := parseOptionArgs(args[1:])
		if err != nil {
			return err
		}
		svc, err := newExplorer()
		if err != nil {
			return err
		}
		defer svc.Close()
		if _, err := svc.ListQueues(context.Background()); err != nil {
			return err
		}
		queue, err := svc.CreateQueue(context.Background(), args[0], opts)
		if err != nil {
			return err
		}
		return printJSON(queue)
	},
}

var queuesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a queue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm(fmt.Sprintf("Delete queue '%s'?", args[0])) {
			return nil
		}
		svc, err := newExplorer()
		if err != nil {
			return err
		}
		defer svc.Close()
		if err := svc.DeleteQueue(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Println("Queue deleted")
		return nil
	},
}

var queuesSendCmd = &cobra.Command{
	Use:   "send <name> <body>",
	Short: "Send a message to a queue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newExplorer()
		if err != nil {
			return err
		}
		defer svc.Close()
		req := models.SendMessageRequest{Body: args[1]}
		if err := svc.SendToQueue(context.Background(), args[0], req); err != nil {
			return err
		}
		fmt.Println("Message sent")
		return nil
	},
}

var queuesPeekCmd = &cobra.Command{
	Use:   "peek <name>",
	Short: "Peek messages without consuming them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newExplorer()
		if err != nil {
			return err
		}
		defer svc.Close()
		ctx, cancel := peekContext()
		defer cancel()
		msgs, err := svc.PeekQueue(ctx, args[0], flagPeekCount, cliMessageKind())
		if err != nil {
			return err
		}
		return printJSON(msgs)
	},
}

var queuesPurgeCmd = &cobra.Command{
	Use:   "purge <name>",
	Short: "Remove all messages from a queue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm(fmt.Sprintf("Purge queue '%s'?", args[0])) {
			return nil
		}
		svc, err := newExplorer()
		if err != nil {
			return err
		}
		defer svc.Close()
		purged, err := svc.PurgeQueue(context.Background(), args[0], cliMessageKind())
		if err != nil {
			return err
		}
		fmt.Printf("Purged %d messages\n", purged)
		return nil
	},
}
