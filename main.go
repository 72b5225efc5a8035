// Command tellersim simulates a bank with a single teller.
package main

import (
	"github.com/tebeka/atexit"

	"github.com/sarchlab/tellersim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
