package main

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/binzume/modelbinconv/config"
	"github.com/binzume/modelbinconv/importer"
	"github.com/binzume/modelbinconv/logger"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
)

var (
	configPath string
	logLevel   string
	logFormat  string
	debug      bool
)

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "config file (default: " + config.DefaultPath() + ")",
			Destination: &configPath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "shorthand for --log-level debug",
			Destination: &debug,
		},
	}
}

// setupLogging loads the config file and installs the logger. Explicit flags
// win over the file.
func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return ctx, err
	}
	if !cmd.IsSet("log-level") {
		logLevel = conf.LogLevel
	}
	if !cmd.IsSet("log-format") {
		logFormat = conf.LogFormat
	}
	if debug {
		logLevel = "debug"
	}
	log := logger.ForFormat(logFormat, os.Stderr, logger.ParseLevel(logLevel))
	ctx = logger.WithContext(ctx, log)
	return context.WithValue(ctx, configKey{}, conf), nil
}

type configKey struct{}

func configFrom(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return config.Default()
}

func importFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "game-root", Usage: "folder that Game:\\ references start from"},
		&cli.StringFlag{Name: "lods", Usage: "comma separated LOD levels to import, 0-7", Value: "0"},
		&cli.BoolFlag{Name: "no-materials", Usage: "skip materials and textures"},
		&cli.BoolFlag{Name: "internal-names", Usage: "name materials by their internal name instead of the file name"},
		&cli.IntFlag{Name: "workers", Aliases: []string{"j"}, Usage: "files imported in parallel", Value: 4},
	}
}

func parseLODs(s string) ([]int, error) {
	var lods []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		l, err := strconv.Atoi(f)
		if err != nil {
			return nil, errors.Wrapf(err, "lod %q", f)
		}
		lods = append(lods, l)
	}
	return lods, nil
}

// settings merges the config file with the flags set on cmd. The car folder
// comes from the first argument when given.
func settings(ctx context.Context, cmd *cli.Command) (*config.Config, error) {
	conf := *configFrom(ctx)
	if cmd.Args().Len() > 0 {
		conf.CarFolder = cmd.Args().First()
	}
	if cmd.IsSet("game-root") {
		conf.GameRoot = cmd.String("game-root")
	}
	if cmd.IsSet("lods") {
		lods, err := parseLODs(cmd.String("lods"))
		if err != nil {
			return nil, err
		}
		conf.LODs = lods
	}
	if cmd.IsSet("no-materials") {
		conf.Materials = !cmd.Bool("no-materials")
	}
	if cmd.IsSet("internal-names") {
		conf.UseMaterialFilename = !cmd.Bool("internal-names")
	}
	if cmd.IsSet("workers") {
		conf.Workers = int(cmd.Int("workers"))
	}
	if conf.CarFolder == "" {
		return nil, errors.New("car folder is required")
	}
	if st, err := os.Stat(conf.CarFolder); err != nil || !st.IsDir() {
		return nil, errors.Errorf("car folder %q is not a directory", conf.CarFolder)
	}
	return &conf, conf.Validate()
}

func newImporter(ctx context.Context, conf *config.Config) *importer.Importer {
	return importer.New(&importer.Options{
		CarFolder:           conf.CarFolder,
		GameRoot:            conf.GameRoot,
		LODMask:             conf.LODMask(),
		Materials:           conf.Materials,
		UseMaterialFilename: conf.UseMaterialFilename,
		Workers:             conf.Workers,
	}, logger.FromContext(ctx))
}
