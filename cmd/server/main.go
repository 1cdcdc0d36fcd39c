// Package main is the entry point for the interview service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "interview-server",
	Short:         "AI interview service",
	Long:          "Serves timed AI-driven job interviews: question generation, answer submission and transcripts.",
	SilenceUsage:  true,
	SilenceErrors: true,
	// bare invocation behaves like "serve"
	RunE: runServe,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
