//go:build ignore

package main

import (
	"fmt"
	"os"

	"github.com/rmercier/bluescan/internal/btdata"
	"github.com/rmercier/bluescan/internal/scan"
)

// Validates a lookup-overrides file before it is dropped into the config
// directory. Reports parse errors, then runs a few sample resolutions so
// the override author can see their entries taking effect.
//
// Usage: go run tools/validate_lookups.go <overrides.yaml> [address...]
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: validate_lookups <overrides.yaml> [address...]")
		fmt.Println("Example: validate_lookups lookups.yaml 70:FC:8F:00:11:22")
		os.Exit(1)
	}

	tables, err := btdata.LoadOverrides(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "INVALID: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK: %s parsed and merged over builtin tables\n", os.Args[1])

	for _, raw := range os.Args[2:] {
		canonical, ok := scan.NormalizeAddress(raw)
		if !ok {
			fmt.Printf("  %s: not a normalizable address\n", raw)
			continue
		}
		hint, found := tables.PrefixHint(canonical)
		if !found {
			fmt.Printf("  %s: no prefix entry\n", canonical)
			continue
		}
		fmt.Printf("  %s: %s / %s (%s)\n", canonical, hint.Company, hint.Model, hint.FriendlyName)
	}
}
