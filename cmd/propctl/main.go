// Command propctl runs the extraction pipeline locally, without MySQL or
// redis: over a crawler dump, or over a single title/price for debugging.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
