// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func verboseFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Enable debug logging",
	}
}

// syncCommand runs the full blog to playlist sync
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Scrape listing pages, match releases on Spotify and add new tracks to the destination playlists",
		Flags: []cli.Flag{
			configFlag(),
			verboseFlag(),
			&cli.IntFlag{
				Name:  "start",
				Usage: "First listing page (overrides scraper.start_page)",
			},
			&cli.IntFlag{
				Name:  "end",
				Usage: "Last listing page (overrides scraper.end_page)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Search and deduplicate without writing to playlists",
			},
			&cli.StringFlag{
				Name:  "report-dir",
				Usage: "Directory for the not-found report (overrides sync.report_dir)",
			},
		},
		Action: r.Sync,
	}
}

// scrapeCommand prints one listing page without touching Spotify
func scrapeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "scrape",
		Usage: "Print the releases on one listing page with their destination",
		Flags: []cli.Flag{
			configFlag(),
			verboseFlag(),
			&cli.IntFlag{
				Name:  "page",
				Usage: "Listing page to fetch",
				Value: 1,
			},
		},
		Action: r.Scrape,
	}
}

// classifyCommand maps tags to a destination
func classifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "Print the destination playlist for a set of tags",
		ArgsUsage: "[TAG...]",
		Action:    r.Classify,
	}
}

// setupCommand handles first-run setup
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write the example configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path of the config file to create",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}
