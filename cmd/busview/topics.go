package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/busview/busview/internal/core/models"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Manage topics",
}

func init() {
	topicsCmd.AddCommand(topicsListCmd)
	topicsCmd.AddCommand(topicsCreateCmd)
	topicsCmd.AddCommand(topicsDeleteCmd)
	topicsCmd.AddCommand(topicsSendCmd)
}

var topicsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List topics",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newExplorer()
		if err != nil {
			return err
		}
		defer svc.Close()
		topics, err := svc.ListTopics(context.Background())
		if err != nil {
			return err
		}
		return printJSON(topics)
	},
}

var topicsCreateCmd = &cobra.Command{
	Use:   "create <name> [option=value ...]",
	Short: "Create a topic",
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
		if _, err := svc.ListTopics(context.Background()); err != nil {
			return err
		}
		topic, err := svc.CreateTopic(context.Background(), args[0], opts)
		if err != nil {
			return err
		}
		return printJSON(topic)
	},
}

var topicsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a topic and all of its subscriptions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm(fmt.Sprintf("Delete topic '%s' and all of its subscriptions?", args[0])) {
			return nil
		}
		svc, err := newExplorer()
		if err != nil {
			return err
		}
		defer svc.Close()
		if err := svc.DeleteTopic(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Println("Topic deleted")
		return nil
	},
}

var topicsSendCmd = &cobra.Command{
	Use:   "send <name> <body>",
	Short: "Send a message to a topic",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newExplorer()
		if err != nil {
			return err
		}
		defer svc.Close()
		req := models.SendMessageRequest{Body: args[1]}
		if err := svc.SendToTopic(context.Background(), args[0], req); err != nil {
			return err
		}
		fmt.Println("Message sent")
		return nil
	},
}
