package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/busview/busview/internal/gateway/rabbit"
	"github.com/busview/busview/internal/settingsdb"
)

var connectCmd = &cobra.Command{
	Use:   "connect <connection-string>",
	Short: "Verify a broker connection and persist it as the default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		connectionString := args[0]

		// Prove the descriptor works before saving it
		gw, err := rabbit.New(rabbit.Config{
			ConnectionString: connectionString,
			ManagementURL:    cfg.ManagementURL,
		})
		if err != nil {
			return err
		}
		gw.Close()

		settingsdb.SetDbPath(cfg.SettingsPath)
		if err := settingsdb.InitDB(); err != nil {
			return err
		}
		if err := settingsdb.OpenDB(); err != nil {
			return err
		}
		defer settingsdb.CloseDB()
		if err := settingsdb.PutSetting(settingsdb.KeyConnectionString, connectionString); err != nil {
			return err
		}
		fmt.Println("Connection verified and saved")
		return nil
	},
}
