// Command namesrv runs the route-information-manager name service: the
// registration/heartbeat/route-pickup listener brokers and clients talk
// to, fronted by a small CLI (start, init, version) in the shape of the
// teacher's cmd/dittofs binary.
package main

import (
	"fmt"
	"os"

	"github.com/rocketmq-go/namesrv/cmd/namesrv/commands"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
