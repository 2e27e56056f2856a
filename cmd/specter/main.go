// Command specter serves the token console API.
package main

import (
	"fmt"
	"os"

	"github.com/aussiebroadwan/specter/internal/console/app"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "specter: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	console, err := app.New(app.LoadConfig())
	if err != nil {
		return fmt.Errorf("initializing console: %w", err)
	}
	return console.Run()
}
