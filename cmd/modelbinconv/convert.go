package main

import (
	"context"
	"path/filepath"

	"github.com/binzume/modelbinconv/converter"
	"github.com/binzume/modelbinconv/gltfutil"
	"github.com/binzume/modelbinconv/importer"
	"github.com/binzume/modelbinconv/logger"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
)

func defaultOutputFile(carFolder string) string {
	abs, err := filepath.Abs(carFolder)
	if err != nil {
		abs = carFolder
	}
	return filepath.Base(abs) + ".glb"
}

func convertCmd() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Import every modelbin of a car folder and write one glTF scene",
		ArgsUsage: "<car folder>",
		Flags: append(importFlags(),
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output .glb or .gltf file"},
			&cli.FloatFlag{Name: "scale", Usage: "scale applied to positions", Value: 1},
			&cli.FloatFlag{Name: "texture-scale", Usage: "scale applied to loose images", Value: 1},
			&cli.IntFlag{Name: "texture-limit", Usage: "max loose image size in pixels (0 = unlimited)"},
			&cli.BoolFlag{Name: "no-dds", Usage: "do not embed DDS textures"},
			&cli.BoolFlag{Name: "webp", Usage: "re-encode loose images as WebP"},
			&cli.BoolFlag{Name: "no-skeleton", Usage: "omit bone nodes"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			conf, err := settings(ctx, cmd)
			if err != nil {
				return err
			}
			if cmd.IsSet("output") {
				conf.Output = cmd.String("output")
			}
			if conf.Output == "" {
				conf.Output = defaultOutputFile(conf.CarFolder)
			}
			if cmd.IsSet("scale") {
				conf.Scale = float32(cmd.Float("scale"))
			}
			if cmd.IsSet("texture-scale") {
				conf.TextureScale = cmd.Float("texture-scale")
			}
			if cmd.IsSet("texture-limit") {
				conf.TextureLimit = int(cmd.Int("texture-limit"))
			}
			if cmd.IsSet("no-dds") {
				conf.EmbedDDS = !cmd.Bool("no-dds")
			}

			imp := newImporter(ctx, conf)
			results, err := imp.ImportAll(ctx)
			if err != nil {
				return err
			}
			var models []*importer.Model
			meshes, skipped := 0, 0
			for _, r := range results {
				if r.Err != nil {
					continue
				}
				models = append(models, r.Model)
				meshes += len(r.Model.Meshes)
				skipped += r.Model.Skipped
			}
			if len(models) == 0 {
				return errors.Errorf("no model could be imported from %s", conf.CarFolder)
			}

			conv := converter.NewModelbinToGLTFConverter(&converter.ModelbinToGLTFOption{
				Scale:                  conf.Scale,
				EmbedDDS:               conf.EmbedDDS,
				TextureScale:           float32(conf.TextureScale),
				TextureResolutionLimit: conf.TextureLimit,
				TextureWebP:            cmd.Bool("webp"),
				SkipSkeleton:           cmd.Bool("no-skeleton"),
			}, log)
			doc, err := conv.Convert(models)
			if err != nil {
				return err
			}
			if err := gltfutil.Save(doc, conf.Output); err != nil {
				return errors.Wrap(err, conf.Output)
			}
			log.Info("converted", "files", len(results), "imported", len(models), "meshes", meshes,
				"skipped_meshes", skipped, "output", conf.Output)
			log.Debug("caches", "stats", imp.Stats())
			return nil
		},
	}
}
