package clicommand

import (
	"fmt"
	"io"

	"github.com/ci-scripts/jenkins-helper/logger"
	"github.com/ci-scripts/jenkins-helper/uuidfile"
	"github.com/urfave/cli"
)

type FileRenameConfig struct {
	Path string `cli:"arg:0" label:"file path" validate:"required"`

	// Global flags
	Debug    bool   `cli:"debug"`
	LogLevel string `cli:"log-level"`
	NoColor  bool   `cli:"no-color"`
	Profile  string `cli:"profile"`
}

var FileRenameCommand = cli.Command{
	Name:  "rename",
	Usage: "Rename a file to a fresh UUID, keeping its extension",
	Description: `Usage:

    jenkins-helper file rename [options...] <path>

Description:

Renames the file to a newly generated UUID within the same directory,
preserving the file extension, and prints the new path to stdout. Because
the file never leaves its directory the rename is atomic on any sane
filesystem.

Example:

    $ jenkins-helper file rename --log-level error dist/report.csv
    dist/33c99d18-7b48-4fcd-a6c4-0a12571a3091.csv`,
	Flags: globalFlags(),
	Action: func(c *cli.Context) error {
		cfg, l, done := setupLoggerAndConfig[FileRenameConfig](c)
		defer done()

		return renameFile(cfg, l, c.App.Writer)
	},
}

func renameFile(cfg FileRenameConfig, l logger.Logger, w io.Writer) error {
	newPath, err := uuidfile.Rename(cfg.Path)
	if err != nil {
		return err
	}

	l.Info("Renamed file to %s", newPath)
	_, err = fmt.Fprintln(w, newPath)
	return err
}
