// Command lsiquery scores queries against a corpus file without running
// the search service.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "lsiquery: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "lsiquery",
		Usage: "Latent semantic scoring over a YAML corpus file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "corpus",
				Aliases:  []string{"c"},
				Usage:    "YAML or JSON corpus file (documents: [{id, title, body} | {tokens: [...]}])",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "case-sensitive",
				Usage: "Keep case when building the vocabulary",
			},
			&cli.StringFlag{
				Name:  "sort",
				Value: "none",
				Usage: "Vocabulary order: none or ascending",
			},
			&cli.StringFlag{
				Name:    "approximation",
				Aliases: []string{"a"},
				Value:   "none",
				Usage:   "Rank policy: none, fixed-k or percentage",
			},
			&cli.Float64Flag{
				Name:    "value",
				Aliases: []string{"k"},
				Usage:   "k for fixed-k, fraction in (0,1] for percentage",
			},
			&cli.IntFlag{
				Name:  "scale",
				Value: 4,
				Usage: "Denoise scale s; negatives above -10^-s count as zero",
			},
			&cli.BoolFlag{
				Name:  "stop-words",
				Usage: "Remove English stop-words",
			},
			&cli.BoolFlag{
				Name:  "stem",
				Usage: "Apply the Porter2 stemmer",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
				Usage: "debug, info, warn or error (logs go to stderr)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "score",
				Usage:     "Print the similarity of every document in corpus order",
				ArgsUsage: "<query terms...>",
				Action:    scoreCommand,
			},
			{
				Name:      "rank",
				Usage:     "Print documents ordered by similarity",
				ArgsUsage: "<query terms...>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Value:   10,
						Usage:   "Maximum results (0 for all)",
					},
					&cli.Float64Flag{
						Name:  "min-score",
						Value: -1,
						Usage: "Drop results at or below this score",
					},
				},
				Action: rankCommand,
			},
			{
				Name:  "info",
				Usage: "Describe the decomposition; \"|\" follows the last retained singular value",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "terms",
						Usage: "Also print the vocabulary",
					},
				},
				Action: infoCommand,
			},
		},
	}
}
