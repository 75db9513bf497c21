package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gcbaptista/go-word-finder/internal/cmd"
)

func main() {
	rootCmd := cmd.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, cmd.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
