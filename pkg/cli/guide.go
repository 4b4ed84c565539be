package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/guidebook/pkg/cli/config"
	"github.com/secmon-lab/guidebook/pkg/domain/model"
	"github.com/secmon-lab/guidebook/pkg/repository/memory"
	"github.com/secmon-lab/guidebook/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdGuide() *cli.Command {
	var topicIndex int
	var asJSON bool
	var geminiCfg config.Gemini
	var catalogCfg config.Catalog

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "topic-index",
			Aliases:     []string{"i"},
			Usage:       "Index of the topic in the catalog",
			Required:    true,
			Destination: &topicIndex,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Print the guide as JSON",
			Destination: &asJSON,
		},
	}
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, catalogCfg.Flags()...)

	return &cli.Command{
		Name:    "guide",
		Aliases: []string{"g"},
		Usage:   "Generate a 21-day guide and print it without storing it",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			catalog, err := catalogCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load topic catalog")
			}

			client, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure generation engine")
			}
			if client == nil {
				return goerr.Wrap(config.ErrMissingRequired, "gemini-project is required", goerr.V(config.OptionKey, "gemini-project"))
			}

			uc := usecase.New(memory.New(), client, usecase.WithTopicCatalog(catalog))
			guide, attempts, err := uc.Guide.Synthesize(ctx, topicIndex)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(writerOf(c))
				enc.SetIndent("", "  ")
				if err := enc.Encode(toGuideJSON(guide)); err != nil {
					return goerr.Wrap(err, "failed to encode guide")
				}
				return nil
			}

			return printGuide(writerOf(c), guide, attempts)
		},
	}
}

type guideJSON struct {
	Goal  string    `json:"goal"`
	Guide []dayJSON `json:"guide"`
}

type dayJSON struct {
	Day        int      `json:"day"`
	Title      string   `json:"title"`
	Approaches []string `json:"approaches"`
}

func toGuideJSON(g *model.Guide) guideJSON {
	out := guideJSON{Goal: g.Goal, Guide: make([]dayJSON, len(g.Entries))}
	for i, e := range g.Entries {
		out.Guide[i] = dayJSON{Day: e.Day, Title: e.Title, Approaches: e.Approaches}
	}
	return out
}

func writerOf(c *cli.Command) io.Writer {
	if w := c.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// printGuide renders the guide as colored text
func printGuide(w io.Writer, guide *model.Guide, attempts int) error {
	title := color.New(color.FgHiWhite, color.Bold)
	day := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.FgWhite)

	if _, err := title.Fprintf(w, "%s\n", guide.Goal); err != nil {
		return goerr.Wrap(err, "failed to write guide")
	}
	if _, err := dim.Fprintf(w, "generated in %d attempt(s)\n\n", attempts); err != nil {
		return goerr.Wrap(err, "failed to write guide")
	}

	for _, e := range guide.Entries {
		if _, err := day.Fprintf(w, "Day %2d ", e.Day); err != nil {
			return goerr.Wrap(err, "failed to write guide")
		}
		if _, err := fmt.Fprintln(w, e.Title); err != nil {
			return goerr.Wrap(err, "failed to write guide")
		}
		for _, a := range e.Approaches {
			if _, err := fmt.Fprintf(w, "  - %s\n", a); err != nil {
				return goerr.Wrap(err, "failed to write guide")
			}
		}
	}
	return nil
}
