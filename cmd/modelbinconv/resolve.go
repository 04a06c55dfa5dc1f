package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
)

func resolveCmd() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Show which file a Game:\\ reference resolves to",
		ArgsUsage: "<reference>...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "car-folder", Aliases: []string{"c"}, Usage: "folder to search from"},
			&cli.StringFlag{Name: "game-root", Usage: "folder that Game:\\ references start from"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			conf := *configFrom(ctx)
			if cmd.IsSet("car-folder") {
				conf.CarFolder = cmd.String("car-folder")
			}
			if cmd.IsSet("game-root") {
				conf.GameRoot = cmd.String("game-root")
			}
			if conf.CarFolder == "" {
				return errors.New("car folder is required")
			}
			if cmd.Args().Len() == 0 {
				return errors.New("no reference")
			}
			imp := newImporter(ctx, &conf)
			missing := 0
			for _, ref := range cmd.Args().Slice() {
				if p, ok := imp.Resolver().Resolve(ref); ok {
					fmt.Printf("%s\t%s\n", ref, p)
				} else {
					fmt.Printf("%s\t(not found)\n", ref)
					missing++
				}
			}
			if missing > 0 {
				return errors.Errorf("%d of %d references not found", missing, cmd.Args().Len())
			}
			return nil
		},
	}
}
