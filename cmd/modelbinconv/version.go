package main

import (
	"context"
	"fmt"
	rdebug "runtime/debug"

	"github.com/urfave/cli/v3"
)

// version is set with -ldflags "-X main.version=...".
var version = ""

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			v := version
			if info, ok := rdebug.ReadBuildInfo(); ok && v == "" {
				v = info.Main.Version
			}
			if v == "" {
				v = "(devel)"
			}
			fmt.Printf("version: %s\n", v)
			return nil
		},
	}
}
