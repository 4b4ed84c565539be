package cli

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/secmon-lab/guidebook/pkg/cli/config"
	"github.com/secmon-lab/guidebook/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger
	var closer func()

	// .env is optional; values already set in the environment win
	envErr := godotenv.Load()

	app := &cli.Command{
		Name:    "guidebook",
		Usage:   "AI mentor that builds 21-day growth guides",
		Version: version,
		Flags:   loggerCfg.Flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closer = f

			logging.Default().Info("Starting guidebook", "logger", loggerCfg, "dotenv_loaded", envErr == nil)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if closer != nil {
				closer()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(version),
			cmdGuide(),
			cmdMigrate(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}
