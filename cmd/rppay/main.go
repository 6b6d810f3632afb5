// Command rppay drives the payment dashboard from a terminal.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, nil).Execute(); err != nil {
		os.Exit(1)
	}
}
