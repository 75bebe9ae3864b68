// Command portalctl is the operator CLI for the form portal: it renders
// prompts offline, inspects and exercises the webhook registry, and
// produces password hashes for seeding users.
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
