package clicommand

import (
	"fmt"
	"os"

	"github.com/ci-scripts/jenkins-helper/env"
	"github.com/ci-scripts/jenkins-helper/internal/osutil"
	"github.com/ci-scripts/jenkins-helper/logger"
	"github.com/joho/godotenv"
)

// loadJobEnvironment snapshots the process environment for a command run.
// Outside of Jenkins (no JENKINS_HOME) the .env file at dotenvPath is merged
// into the snapshot, with variables already present in the environment
// winning over the file. A missing .env file is not an error; an unparseable
// one is.
func loadJobEnvironment(l logger.Logger, dotenvPath string) (*env.Environment, error) {
	environ := env.FromSlice(os.Environ())

	if jenkinsHome, _ := environ.Get("JENKINS_HOME"); jenkinsHome != "" {
		l.Info("Running in Jenkins environment")
		return environ, nil
	}

	l.Info("Not detected in Jenkins environment, loading secrets from .env file")

	if !osutil.FileExists(dotenvPath) {
		return environ, nil
	}

	vars, err := godotenv.Read(dotenvPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dotenvPath, err)
	}
	environ.MergeMissing(env.FromMap(vars))

	return environ, nil
}
