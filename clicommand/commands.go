package clicommand

import "github.com/urfave/cli"

var JenkinsHelperCommands = []cli.Command{
	{
		Name:  "secret",
		Usage: "Resolve secrets from the environment, Jenkins, or a .env file",
		Subcommands: []cli.Command{
			SecretGetCommand,
		},
	},
	RunCommand,
	{
		Name:  "file",
		Usage: "File helpers for build artifacts",
		Subcommands: []cli.Command{
			FileRenameCommand,
		},
	},
	{
		Name:  "job",
		Usage: "Report builds to the job-record server",
		Subcommands: []cli.Command{
			JobSubmitCommand,
		},
	},
	{
		Name:  "package",
		Usage: "Upload and register build packages",
		Subcommands: []cli.Command{
			PackageUploadCommand,
		},
	},
}
