// Package main is the entry point for the normscan CLI
package main

import (
	"os"

	"github.com/alt-project/normscan/cmd"
)

// Set at build time, e.g.
//
//	go build -ldflags "-X main.version=v1.2.0 -X main.commit=$(git rev-parse HEAD) -X main.buildTime=$(date -u +%FT%TZ)"
var (
	version   = "dev"
	commit    string
	buildTime string
)

func main() {
	os.Exit(run())
}

func run() int {
	cmd.SetVersion(version)
	cmd.SetBuildInfo(commit, buildTime)
	if err := cmd.Execute(); err != nil {
		return cmd.HandleError(err)
	}
	return 0
}
