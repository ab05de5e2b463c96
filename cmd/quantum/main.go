// Command quantum is the operator CLI: it values the portfolio, refreshes
// snapshots and dispatches the analytics job from a terminal.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
