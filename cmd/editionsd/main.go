package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	weave "github.com/iov-one/weave-editions"
	editionsd "github.com/iov-one/weave-editions/cmd/editionsd/app"
	"github.com/iov-one/weave-editions/commands/server"
	"github.com/iov-one/weave-editions/x/events/relay"
	"github.com/urfave/cli/v2"
)

func main() {
	cfg := config{
		Home:     filepath.Join(os.ExpandEnv("$HOME"), ".editionsd"),
		Bind:     "tcp://localhost:26658",
		LogLevel: "info",
	}

	app := &cli.App{
		Name:  "editionsd",
		Usage: "Collectible editions node",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "YAML file with node settings",
				EnvVars:     []string{"EDITIONSD_CONFIG"},
				Destination: &cfg.file,
			},
			&cli.StringFlag{
				Name:    "home",
				Usage:   "directory to store files under",
				EnvVars: []string{"EDITIONSD_HOME"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "one of debug, info, error or none",
				EnvVars: []string{"EDITIONSD_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "write logs to this file, rotated, instead of stdout",
				EnvVars: []string{"EDITIONSD_LOG_FILE"},
			},
		},
		Before: func(c *cli.Context) error {
			if cfg.file != "" {
				if err := loadConfigFile(cfg.file, &cfg); err != nil {
					return err
				}
			}
			overrideString(c, "home", &cfg.Home)
			overrideString(c, "log-level", &cfg.LogLevel)
			overrideString(c, "log-file", &cfg.LogFile.Path)
			return nil
		},
		Commands: []*cli.Command{
			initCommand(&cfg),
			startCommand(&cfg),
			validateCommand(),
			{
				Name:  "version",
				Usage: "print the app version",
				Action: func(c *cli.Context) error {
					fmt.Println(weave.Version())
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}

// overrideString sets *dst from the named flag when it was given.
func overrideString(c *cli.Context, name string, dst *string) {
	if c.IsSet(name) {
		*dst = c.String(name)
	}
}

func initCommand(cfg *config) *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "initialize app_state in the genesis file",
		ArgsUsage: "[owner address]",
		Action: func(c *cli.Context) error {
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			return server.InitGenesis(editionsd.GenInitOptions, logger, cfg.Home, c.Args().Slice())
		},
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "load genesis files into a throwaway state",
		ArgsUsage: "<genesis file>...",
		Action: func(c *cli.Context) error {
			return server.ValidateGenesis(editionsd.Initializers(), c.Args().Slice())
		},
	}
}

func startCommand(cfg *config) *cli.Command {
	return &cli.Command{
		Name:  "start",
		Usage: "run the abci server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "bind",
				Usage:   "address server listens on",
				EnvVars: []string{"EDITIONSD_BIND"},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "return full error information",
			},
			&cli.BoolFlag{
				Name:    "relay",
				Usage:   "relay committed events to the log",
				EnvVars: []string{"EDITIONSD_RELAY"},
			},
		},
		Action: func(c *cli.Context) error {
			overrideString(c, "bind", &cfg.Bind)
			if c.IsSet("debug") {
				cfg.Debug = c.Bool("debug")
			}
			if c.IsSet("relay") {
				cfg.Relay = c.Bool("relay")
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			kv, err := editionsd.CommitKVStore(filepath.Join(cfg.Home, "editions.db"))
			if err != nil {
				return err
			}
			defer kv.Close()

			components := editionsd.NewComponents(nil)
			application := editionsd.Application("editionsd", components, kv, cfg.Debug)
			application.WithLogger(logger)

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.Relay {
				r := relay.New(relay.Config{
					Source: relay.NewStoreSource(kv),
					Sender: relay.NewLogSender(logger.With("module", "events")),
					Logger: logger,
				})
				defer r.Close()
				go func() {
					if err := r.Run(ctx); err != nil && err != context.Canceled {
						logger.Error("relay stopped", "err", err)
					}
				}()
			}

			return server.Start(ctx, application, logger, server.StartOptions{
				Bind:  cfg.Bind,
				Debug: cfg.Debug,
			})
		},
	}
}
