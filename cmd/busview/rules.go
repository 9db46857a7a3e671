package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage subscription rules",
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesCreateCmd)
	rulesCmd.AddCommand(rulesDeleteCmd)
}

var rulesListCmd = &cobra.Command{
	Use:   "list <topic> <subscription>",
	Short: "List a subscription's rules",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newExplorer()
		if err != nil {
			return err
		}
		defer svc.Close()
		if _, err := svc.ListTopics(context.Background()); err != nil {
			return err
		}
		return printJSON(svc.Rules(args[0], args[1]))
	},
}

var rulesCreateCmd = &cobra.Command{
	Use:   "create <topic> <subscription> <name> [option=value ...]",
	Short: "Create a rule",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := parseOptionArgs(args[3:])
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
		rule, err := svc.CreateRule(context.Background(), args[0], args[1], args[2], opts)
		if err != nil {
			return err
		}
		return printJSON(rule)
	},
}

var rulesDeleteCmd = &cobra.Command{
	Use:   "delete <topic> <subscription> <name>",
	Short: "Delete a rule",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm(fmt.Sprintf("Delete rule '%s'?", args[2])) {
			return nil
		}
		svc, err := newExplorer()
		if err != nil {
			return err
		}
		defer svc.Close()
		if err := svc.DeleteRule(context.Background(), args[0], args[1], args[2]); err != nil {
			return err
		}
		fmt.Println("Rule deleted")
		return nil
	},
}
