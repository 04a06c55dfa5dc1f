package main

import (
	"context"
	"os"

	"github.com/binzume/modelbinconv/inspect"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
)

func inspectCmd() *cli.Command {
	var dump bool
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the structure of a modelbin, materialbin or swatchbin file",
		ArgsUsage: "<file>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dump", Usage: "dump the decoded structures instead of a JSON summary", Destination: &dump},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return errors.New("no input file")
			}
			for _, path := range cmd.Args().Slice() {
				if dump {
					if err := inspect.Dump(os.Stdout, path); err != nil {
						return errors.Wrap(err, path)
					}
					continue
				}
				report, err := inspect.File(path)
				if report == nil {
					return errors.Wrap(err, path)
				}
				if err := inspect.WriteJSON(os.Stdout, report); err != nil {
					return err
				}
				if err != nil {
					return errors.Wrap(err, path)
				}
			}
			return nil
		},
	}
}
