// Command tessitura is the thin CLI front end over the core engine: it
// wires flags/config to the catalog store, source clients, rules engine,
// and workflow engine described in spec.md, and contains no business
// logic of its own (SPEC_FULL.md "CLI scaffold (external collaborator,
// thin)").
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
