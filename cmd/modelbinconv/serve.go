package main

import (
	"context"
	"net/http"
	"time"

	"github.com/binzume/modelbinconv/logger"
	"github.com/binzume/modelbinconv/server"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:      "serve",
		Usage:     "Serve a read-only inspection API for a car folder",
		ArgsUsage: "<car folder>",
		Flags: append(importFlags(),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			conf, err := settings(ctx, cmd)
			if err != nil {
				return err
			}
			if !cmd.IsSet("addr") && conf.ServerAddress != "" {
				addr = conf.ServerAddress
			}

			srv := server.NewServer(conf.CarFolder, newImporter(ctx, conf), log.WithGroup("server"))
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			srv.Register(e)
			log.Info("starting server", "address", addr, "car_folder", conf.CarFolder)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(hs *http.Server) error {
					hs.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
