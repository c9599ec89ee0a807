// Command entityform renders, edits and lists entity forms backed by a
// JHipster-style REST API, a SQLite file or an in-memory store.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
