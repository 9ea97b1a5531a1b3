// Command revmetrics collects per-revision source metrics into a history database.
package main

import (
	"fmt"
	"os"

	"github.com/huangsam/revmetrics/cmd"
	"github.com/huangsam/revmetrics/internal/persist"
)

func main() {
	err := cmd.Execute()
	persist.CloseStores()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
