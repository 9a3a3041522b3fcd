package clicommand

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/ci-scripts/jenkins-helper/env"
	"github.com/ci-scripts/jenkins-helper/logger"
	"github.com/ci-scripts/jenkins-helper/secrets"
	"github.com/urfave/cli"
)

type SecretGetConfig struct {
	Key         string `cli:"arg:0" label:"secret key" validate:"required"`
	SkipNewline bool   `cli:"skip-newline"`
	Dotenv      string `cli:"dotenv" normalize:"filepath"`

	// Jenkins credential store
	JenkinsURL   string `cli:"jenkins-url"`
	JenkinsUser  string `cli:"jenkins-user"`
	JenkinsToken string `cli:"jenkins-token"`
	DebugHTTP    bool   `cli:"debug-http"`

	// Global flags
	Debug    bool   `cli:"debug"`
	LogLevel string `cli:"log-level"`
	NoColor  bool   `cli:"no-color"`
	Profile  string `cli:"profile"`
}

var SecretGetCommand = cli.Command{
	Name:  "get",
	Usage: "Resolve a secret by key and print its value to stdout",
	Description: `Usage:

    jenkins-helper secret get [options...] <key>

Description:

Resolves a secret and prints its value to stdout. The process environment is
checked first. When running under Jenkins (JENKINS_HOME is set) the Jenkins
credential store is consulted next, which requires JENKINS_URL, JENKINS_USER
and JENKINS_TOKEN to be configured; a store failure other than "not found"
stops the resolution. Outside of Jenkins a local .env file stands in for the
store instead.

Log lines go to stdout as well, so use ′--log-level error′ (or capture with
′--skip-newline′ inside $()) when the output feeds another command.

Examples:

    $ jenkins-helper secret get DEPLOY_KEY
    hunter2

    # Inside command substitution, drop the trailing newline
    $ key=$(jenkins-helper secret get --log-level error --skip-newline DEPLOY_KEY)`,
	Flags: slices.Concat(globalFlags(), []cli.Flag{
		cli.StringFlag{
			Name:   "jenkins-url",
			Usage:  "Base URL of the Jenkins controller that hosts the credential store",
			EnvVar: "JENKINS_URL",
		},
		cli.StringFlag{
			Name:   "jenkins-user",
			Usage:  "Username used to authenticate against the Jenkins API",
			EnvVar: "JENKINS_USER",
		},
		cli.StringFlag{
			Name:   "jenkins-token",
			Usage:  "API token used to authenticate against the Jenkins API",
			EnvVar: "JENKINS_TOKEN",
		},
		cli.BoolFlag{
			Name:   "skip-newline",
			Usage:  "Print the secret value without a trailing newline",
			EnvVar: "JENKINS_HELPER_SKIP_NEWLINE",
		},
		DotenvFlag,
		DebugHTTPFlag,
	}),
	Action: func(c *cli.Context) error {
		ctx := context.Background()
		cfg, l, done := setupLoggerAndConfig[SecretGetConfig](c)
		defer done()

		return getSecret(ctx, cfg, l, c.App.Writer)
	},
}

func getSecret(ctx context.Context, cfg SecretGetConfig, l logger.Logger, w io.Writer) error {
	environ := env.FromSlice(os.Environ())

	// Explicit flags win over whatever the environment carries.
	if cfg.JenkinsURL != "" {
		environ.Set("JENKINS_URL", cfg.JenkinsURL)
	}
	if cfg.JenkinsUser != "" {
		environ.Set("JENKINS_USER", cfg.JenkinsUser)
	}
	if cfg.JenkinsToken != "" {
		environ.Set("JENKINS_TOKEN", cfg.JenkinsToken)
	}

	resolver := secrets.FromEnvironment(l, environ,
		secrets.WithDotenvPath(cfg.Dotenv),
		secrets.WithDebugHTTP(cfg.DebugHTTP),
	)

	value, err := resolver.Get(ctx, cfg.Key)
	if err != nil {
		return err
	}

	if cfg.SkipNewline {
		_, err = fmt.Fprint(w, value)
	} else {
		_, err = fmt.Fprintln(w, value)
	}
	return err
}
