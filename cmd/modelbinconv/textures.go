package main

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/binzume/modelbinconv/logger"
	"github.com/binzume/modelbinconv/swatchbin"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
)

func texturesCmd() *cli.Command {
	var outDir string
	return &cli.Command{
		Name:      "textures",
		Usage:     "Extract every swatchbin under a folder as a DDS file",
		ArgsUsage: "<folder>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output folder (default: next to each swatchbin)", Destination: &outDir},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			root := cmd.Args().First()
			if root == "" {
				root = configFrom(ctx).CarFolder
			}
			if root == "" {
				return errors.New("folder is required")
			}
			written, failed := 0, 0
			err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() || !strings.EqualFold(filepath.Ext(p), ".swatchbin") {
					return nil
				}
				tex, err := swatchbin.Load(p)
				if err != nil {
					log.Warn("skipping texture", "path", p, "err", err)
					failed++
					return nil
				}
				dst := strings.TrimSuffix(p, filepath.Ext(p)) + ".dds"
				if outDir != "" {
					rel, _ := filepath.Rel(root, dst)
					dst = filepath.Join(outDir, rel)
					if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
						return err
					}
				}
				if err := os.WriteFile(dst, tex.DDS, 0o644); err != nil {
					return err
				}
				log.Debug("extracted", "path", dst, "format", tex.FormatName(), "width", tex.W(), "height", tex.H())
				written++
				return nil
			})
			if err != nil {
				return err
			}
			log.Info("textures extracted", "written", written, "failed", failed)
			return nil
		},
	}
}
