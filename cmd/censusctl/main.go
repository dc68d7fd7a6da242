package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
	"github.com/urfave/cli/v2"

	"github.com/clubkit/census-bot/app/eventbus"
	censusevents "github.com/clubkit/census-bot/app/modules/census/events"
	"github.com/clubkit/census-bot/app/modules/census/infrastructure/platform"
	"github.com/clubkit/census-bot/config"
)

func main() {
	cliApp := &cli.App{
		Name:  "censusctl",
		Usage: "operate the guild census bot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "config.yaml",
				Usage: "path to the configuration file",
			},
		},
		Commands: []*cli.Command{
			triggerCommand(),
			watchCommand(),
			checkCommand(),
			diagnoseCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	return config.LoadConfig(c.String("config"))
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func triggerCommand() *cli.Command {
	return &cli.Command{
		Name:      "trigger",
		Usage:     "request a reconciliation run for a guild",
		ArgsUsage: "<guild-id>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "count",
				Usage: "explicit member count; skips the settle delay and count fetch",
			},
		},
		Action: func(c *cli.Context) error {
			guildID := c.Args().First()
			if guildID == "" {
				return fmt.Errorf("guild ID argument is required")
			}

			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			bus, err := eventbus.NewNATSEventBus(context.Background(), cfg.NATS.URL, quietLogger())
			if err != nil {
				return err
			}
			defer bus.Close()

			payload := censusevents.ReconcileRequestedPayloadV1{GuildID: guildID}
			if c.IsSet("count") {
				count := c.Int("count")
				payload.ExplicitCount = &count
			}
			body, err := json.Marshal(payload)
			if err != nil {
				return err
			}

			msg := message.NewMessage(watermill.NewUUID(), body)
			if err := bus.Publish(censusevents.ReconcileRequestedV1, msg); err != nil {
				return fmt.Errorf("publish trigger: %w", err)
			}

			fmt.Printf("reconciliation requested for guild %s\n", guildID)
			return nil
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "edit the watch list",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "print the watched guilds",
				Action: func(c *cli.Context) error {
					store, err := openWatchList(c)
					if err != nil {
						return err
					}
					for _, entry := range store.Entries() {
						fmt.Printf("%s\t%s\n", entry.GuildID, entry.NameTemplate)
					}
					return nil
				},
			},
			{
				Name:      "add",
				Usage:     "watch a guild (template must contain {count})",
				ArgsUsage: "<guild-id> <name-template>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return fmt.Errorf("expected <guild-id> <name-template>")
					}
					store, err := openWatchList(c)
					if err != nil {
						return err
					}
					return store.Add(c.Args().Get(0), c.Args().Get(1))
				},
			},
			{
				Name:      "remove",
				Usage:     "stop watching a guild",
				ArgsUsage: "<guild-id>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("expected <guild-id>")
					}
					store, err := openWatchList(c)
					if err != nil {
						return err
					}
					return store.Remove(c.Args().First())
				},
			},
		},
	}
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "validate configuration and the watch list",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			store, err := config.LoadWatchList(cfg.Census.WatchListPath, quietLogger())
			if err != nil {
				return err
			}

			entries := store.Entries()
			fmt.Printf("nats url: %s\n", cfg.NATS.URL)
			fmt.Printf("watch list: %s (%d entries)\n", cfg.Census.WatchListPath, len(entries))
			fmt.Printf("update delay: %dms\n", cfg.Census.UpdateDelayMs)

			tokenless := store.TokenlessEntries()
			for _, entry := range tokenless {
				fmt.Printf("WARNING: guild %s template %q has no {count} token; the rendered name will never carry the count\n",
					entry.GuildID, entry.NameTemplate)
			}
			if len(tokenless) > 0 {
				return fmt.Errorf("%d watch list entr%s without {count} token", len(tokenless), plural(len(tokenless), "y", "ies"))
			}
			fmt.Println("ok")
			return nil
		},
	}
}

func diagnoseCommand() *cli.Command {
	return &cli.Command{
		Name:  "diagnose",
		Usage: "probe the gateway binding's rename capabilities",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			conn, err := nc.Connect(cfg.NATS.URL, nc.Name("censusctl"))
			if err != nil {
				return fmt.Errorf("connect to NATS: %w", err)
			}
			defer conn.Close()

			binding := platform.NewNATSBinding(conn, platform.WithSubjectPrefix(cfg.Census.GatewayPrefix))
			fmt.Printf("gateway prefix: %s\n", cfg.Census.GatewayPrefix)
			fmt.Println("capabilities:")
			for _, capability := range platform.Capabilities(binding) {
				fmt.Printf("  %s\n", capability)
			}
			fmt.Printf("rename strategies in order: ")
			for i, strategy := range platform.DefaultStrategies() {
				if i > 0 {
					fmt.Print(", ")
				}
				fmt.Print(strategy.Name())
			}
			fmt.Println()
			return nil
		},
	}
}

func openWatchList(c *cli.Context) (*config.WatchListStore, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return config.LoadWatchList(cfg.Census.WatchListPath, quietLogger())
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
