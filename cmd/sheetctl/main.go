// sheetctl is the command-line client for the sheetd daemon.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "sheetctl: %v\n", err)
		os.Exit(1)
	}
}
