package main

import (
	"errors"
	"os"

	"github.com/alimpfard/readline"
	"github.com/alimpfard/readline/example/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, readline.ErrInterrupted) {
			os.Exit(cmd.ExitInterrupted)
		}
		os.Exit(1)
	}
}
