package main

import (
	"os"

	"github.com/noah-isme/peerroom-api/cmd/roomctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
