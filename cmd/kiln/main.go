package main

import (
	"os"

	"kiln/internal/cli"
)

func main() {
	os.Exit(cli.Run("kiln", os.Args[1:]))
}
