// Command mansa runs the Reddit crawler described in DESIGN.md:
// durable task scheduling over CouchDB, rate-limited account pooling,
// and a bounded worker pool. See cli.RootCmd for flags.
package main

import (
	"os"

	"github.com/evalgo/mansa/cli"
	"github.com/evalgo/mansa/common"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		common.Logger.WithError(err).Error("mansa: fatal startup error")
		os.Exit(1)
	}
}
