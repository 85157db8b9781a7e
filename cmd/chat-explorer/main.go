package main

import (
	"os"

	"github.com/baaaaaaaka/chat_explorer/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
