package main

import (
	"fmt"
	"os"

	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/terminal"
)

func main() {
	cli.LoadEnvFile()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(os.Getenv("LOG_LEVEL")),
		Format:    "text",
		Component: log.ComponentCLI,
		Output:    os.Stderr,
	})

	if err := terminal.NewCLI(terminal.Options{Logger: logger}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
