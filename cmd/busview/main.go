package main

import (
	"os"
)

var (
	VERSION = ""
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
