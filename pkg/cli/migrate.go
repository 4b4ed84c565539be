package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/guidebook/pkg/repository/firestore"
	"github.com/secmon-lab/guidebook/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var projectID string
	var databaseID string
	var dryRun bool

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Create the Firestore indexes guidebook queries rely on",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore Project ID",
				Required:    true,
				Sources:     cli.EnvVars("GUIDEBOOK_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore Database ID (default: (default))",
				Sources:     cli.EnvVars("GUIDEBOOK_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Log the changes without applying them",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if databaseID == "" {
				databaseID = "(default)"
			}
			indexes := getIndexConfig()
			logger := logging.Default()

			client, err := fireconf.New(ctx, projectID, databaseID, indexes,
				fireconf.WithLogger(logger),
				fireconf.WithDryRun(dryRun),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client",
					goerr.V("project_id", projectID), goerr.V("database_id", databaseID))
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close fireconf client", "error", err.Error())
				}
			}()

			logger.Info("Applying Firestore indexes",
				"project_id", projectID,
				"database_id", databaseID,
				"collections", len(indexes.Collections),
				"dry_run", dryRun)
			if err := client.Migrate(ctx); err != nil {
				return goerr.Wrap(err, "failed to apply index migration")
			}

			msg := "Firestore indexes are up to date"
			if dryRun {
				msg = "dry run finished, no index was changed"
			}
			_, err = color.New(color.FgGreen).Fprintln(writerOf(c), msg)
			return err
		},
	}
}

// getIndexConfig lists the composite indexes. Progress is read per user
// ordered by topic then day.
func getIndexConfig() *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: firestore.ProgressCollection,
				Indexes: []fireconf.Index{
					{
						Fields: []fireconf.IndexField{
							{Path: "topic", Order: fireconf.OrderAscending},
							{Path: "day", Order: fireconf.OrderAscending},
						},
					},
				},
			},
		},
	}
}
