package clicommand

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/ci-scripts/jenkins-helper/buildmeta"
	"github.com/ci-scripts/jenkins-helper/internal/uploader"
	"github.com/ci-scripts/jenkins-helper/jobserver"
	"github.com/ci-scripts/jenkins-helper/logger"
	"github.com/ci-scripts/jenkins-helper/secrets"
	"github.com/ci-scripts/jenkins-helper/shell"
	"github.com/urfave/cli"
)

type PackageUploadConfig struct {
	Path string `cli:"arg:0" env:"TEST_FILE"`

	ServerURL string `cli:"server-url"`
	Dotenv    string `cli:"dotenv" normalize:"filepath"`
	DebugHTTP bool   `cli:"debug-http"`

	// Global flags
	Debug    bool   `cli:"debug"`
	LogLevel string `cli:"log-level"`
	NoColor  bool   `cli:"no-color"`
	Profile  string `cli:"profile"`
}

var PackageUploadCommand = cli.Command{
	Name:  "upload",
	Usage: "Upload a build package to Azure Blob Storage and register it",
	Description: `Usage:

    jenkins-helper package upload [options...] [path]

Description:

Uploads a package file to Azure Blob Storage via azcopy, then registers its
metadata with the job-record server. The file is renamed to a fresh UUID
before the transfer so that repeated builds of the same package can never
overwrite each other; the original name travels along as metadata.

The storage account, key and container are resolved as secrets
(AZURE_STORAGE_ACCOUNT, AZURE_STORAGE_KEY, AZURE_CONTAINER_NAME), as are
the package's registration details (PACKAGE_MODE, COMMIT_SHA). When no path
argument is given the TEST_FILE secret names the file to upload.

A failed upload fails the command. A failed registration does not: the
package is already in storage at that point, so the error is logged and the
command exits 0.

Example:

    $ jenkins-helper package upload dist/dataset.zip`,
	Flags: slices.Concat(globalFlags(), []cli.Flag{
		cli.StringFlag{
			Name:   "server-url",
			Usage:  "Base URL of the job-record server",
			EnvVar: "SERVER_ENDPOINT",
		},
		DotenvFlag,
		DebugHTTPFlag,
	}),
	Action: func(c *cli.Context) error {
		ctx := context.Background()
		cfg, l, done := setupLoggerAndConfig[PackageUploadConfig](c)
		defer done()

		return uploadPackage(ctx, cfg, l, c.App.Writer)
	},
}

func uploadPackage(ctx context.Context, cfg PackageUploadConfig, l logger.Logger, w io.Writer) error {
	// Command-level lines carry their own logger name; the secret
	// resolution keeps the base one.
	ul := l.WithPrefix("package-uploader")

	environ, err := loadJobEnvironment(ul, cfg.Dotenv)
	if err != nil {
		return err
	}

	resolver := secrets.FromEnvironment(l, environ,
		secrets.WithDotenvPath(cfg.Dotenv),
		secrets.WithDebugHTTP(cfg.DebugHTTP),
	)

	serverURL := cfg.ServerURL
	if serverURL == "" {
		serverURL, err = resolver.Get(ctx, "SERVER_ENDPOINT")
		if err != nil {
			return fmt.Errorf("resolving the job server URL: %w", err)
		}
	}

	client := jobserver.NewClient(ul, jobserver.Config{
		Endpoint:  serverURL,
		DebugHTTP: cfg.DebugHTTP,
	})

	ul.Info("Checking server health at %s/healthcheck", serverURL)
	if err := client.Healthcheck(ctx); err != nil {
		ul.Error("Server health check failed: %v", err)
		return err
	}
	ul.Info("Server health check passed")

	path := cfg.Path
	if path == "" {
		path, err = resolver.Get(ctx, "TEST_FILE")
		if err != nil {
			return fmt.Errorf("resolving the package path: %w", err)
		}
	}

	storageAccount, err := resolver.Get(ctx, "AZURE_STORAGE_ACCOUNT")
	if err != nil {
		return err
	}
	storageKey, err := resolver.Get(ctx, "AZURE_STORAGE_KEY")
	if err != nil {
		return err
	}
	containerName, err := resolver.Get(ctx, "AZURE_CONTAINER_NAME")
	if err != nil {
		return err
	}

	sh, err := shell.New(shell.WithLogger(ul), shell.WithStdout(w))
	if err != nil {
		return err
	}

	up, err := uploader.New(ul, sh, uploader.Config{
		StorageAccount: storageAccount,
		StorageKey:     storageKey,
		ContainerName:  containerName,
	})
	if err != nil {
		return err
	}

	pkg, err := up.Upload(ctx, path)
	if err != nil {
		ul.Error("Failed to upload package: %v", err)
		return err
	}

	// The package is in storage; registration failures are reported but
	// don't fail the build.
	if err := registerPackage(ctx, resolver, client, ul, pkg); err != nil {
		ul.Error("Error registering package metadata: %v", err)
	}

	return nil
}

func registerPackage(ctx context.Context, resolver *secrets.Resolver, client *jobserver.Client, l logger.Logger, pkg *buildmeta.Package) error {
	mode, err := resolver.Get(ctx, "PACKAGE_MODE")
	if err != nil {
		return err
	}
	commit, err := resolver.Get(ctx, "COMMIT_SHA")
	if err != nil {
		return err
	}
	pkg.Mode = mode
	pkg.Commit = commit

	l.Info("Registering package metadata: %s", pkg.ID)
	resp, err := client.RegisterPackage(ctx, pkg)
	if err != nil {
		return err
	}

	l.Info("Successfully registered package %s (%s)", pkg.ID, resp.Status)
	return nil
}
