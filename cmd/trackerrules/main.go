package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/TimurManjosov/trackerrules/cmd/trackerrules/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		if errors.Is(err, commands.ErrRejected) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
