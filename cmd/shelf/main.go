package main

import (
	"fmt"
	"os"

	"github.com/printandread/shelf/cmd/shelf/cmd"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	if err := cmd.Execute(Version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
