package clicommand

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/ci-scripts/jenkins-helper/buildmeta"
	"github.com/ci-scripts/jenkins-helper/jobserver"
	"github.com/ci-scripts/jenkins-helper/logger"
	"github.com/ci-scripts/jenkins-helper/secrets"
	"github.com/urfave/cli"
)

type JobSubmitConfig struct {
	ServerURL string `cli:"server-url"`
	Dotenv    string `cli:"dotenv" normalize:"filepath"`
	DebugHTTP bool   `cli:"debug-http"`

	// Global flags
	Debug    bool   `cli:"debug"`
	LogLevel string `cli:"log-level"`
	NoColor  bool   `cli:"no-color"`
	Profile  string `cli:"profile"`
}

var JobSubmitCommand = cli.Command{
	Name:  "submit",
	Usage: "Submit a record of the current build to the job-record server",
	Description: `Usage:

    jenkins-helper job submit [options...]

Description:

Collects the build's identity from the Jenkins environment (JOB_NAME,
BUILD_NUMBER, BUILD_URL, GIT_COMMIT, GIT_BRANCH and NODE_NAME), stamps it
with a fresh UUID and the current UTC time, and posts it to the job-record
server as JSON. Empty variables are left out of the record, and a run where
none of them are set is refused rather than submitted.

The server's health endpoint is checked first and the submission only
proceeds when the server reports itself alive.

Example:

    $ jenkins-helper job submit --server-url http://records.internal:8080`,
	Flags: slices.Concat(globalFlags(), []cli.Flag{
		cli.StringFlag{
			Name:   "server-url",
			Usage:  "Base URL of the job-record server",
			EnvVar: "JOB_SERVER_URL",
		},
		DotenvFlag,
		DebugHTTPFlag,
	}),
	Action: func(c *cli.Context) error {
		ctx := context.Background()
		cfg, l, done := setupLoggerAndConfig[JobSubmitConfig](c)
		defer done()

		return submitJob(ctx, cfg, l)
	},
}

func submitJob(ctx context.Context, cfg JobSubmitConfig, l logger.Logger) error {
	environ, err := loadJobEnvironment(l, cfg.Dotenv)
	if err != nil {
		return err
	}

	resolver := secrets.FromEnvironment(l, environ,
		secrets.WithDotenvPath(cfg.Dotenv),
		secrets.WithDebugHTTP(cfg.DebugHTTP),
	)

	serverURL := cfg.ServerURL
	if serverURL == "" {
		serverURL, err = resolver.Get(ctx, "JOB_SERVER_URL")
		if err != nil {
			return fmt.Errorf("resolving the job server URL: %w", err)
		}
	}

	client := jobserver.NewClient(l, jobserver.Config{
		Endpoint:  serverURL,
		DebugHTTP: cfg.DebugHTTP,
	})

	l.Info("Checking server health at %s/healthcheck", serverURL)
	if err := client.Healthcheck(ctx); err != nil {
		l.Error("Server health check failed: %v", err)
		return err
	}
	l.Info("Server health check passed")

	build := buildmeta.NewBuild(environ)
	if build.Empty() {
		return errors.New("no build metadata found in the environment, refusing to submit an empty record")
	}

	l.Info("Uploading build metadata to %s", serverURL)
	if _, err := client.SubmitBuild(ctx, build); err != nil {
		l.Error("Failed to submit job record to server: %v", err)
		return err
	}

	l.Info("Successfully submitted build record %s", build.ID)
	return nil
}
