package main

import (
	"os"

	"github.com/Maxservais/chat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
