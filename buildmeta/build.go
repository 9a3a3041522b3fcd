// Package buildmeta describes builds and uploaded packages to the job-record
// server, derived from the variables Jenkins exports into build steps.
package buildmeta

import (
	"time"

	"github.com/ci-scripts/jenkins-helper/env"
	"github.com/google/uuid"
)

// Build identifies one run of a Jenkins job. Fields Jenkins did not provide
// stay empty and are dropped from the JSON encoding.
type Build struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	JobName     string    `json:"jobname,omitempty"`
	BuildNumber string    `json:"buildnumber,omitempty"`
	BuildURL    string    `json:"buildurl,omitempty"`
	Commit      string    `json:"commit,omitempty"`
	Branch      string    `json:"branch,omitempty"`
	NodeName    string    `json:"nodename,omitempty"`
}

// NewBuild captures the current build's identity from an environment
// snapshot.
func NewBuild(e *env.Environment) *Build {
	get := func(key string) string {
		value, _ := e.Get(key)
		return value
	}

	return &Build{
		ID:          uuid.New().String(),
		Timestamp:   time.Now().UTC(),
		JobName:     get("JOB_NAME"),
		BuildNumber: get("BUILD_NUMBER"),
		BuildURL:    get("BUILD_URL"),
		Commit:      get("GIT_COMMIT"),
		Branch:      get("GIT_BRANCH"),
		NodeName:    get("NODE_NAME"),
	}
}

// Empty reports whether the snapshot provided none of the Jenkins build
// variables, which usually means we are not running inside a build at all.
func (b *Build) Empty() bool {
	return b.JobName == "" &&
		b.BuildNumber == "" &&
		b.BuildURL == "" &&
		b.Commit == "" &&
		b.Branch == "" &&
		b.NodeName == ""
}
