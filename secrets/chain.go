package secrets

import (
	"context"

	"github.com/ci-scripts/jenkins-helper/env"
	"github.com/ci-scripts/jenkins-helper/jenkins"
	"github.com/ci-scripts/jenkins-helper/logger"
)

// DefaultDotenvPath is the dotenv file consulted when not running under
// Jenkins, relative to the working directory.
const DefaultDotenvPath = ".env"

// Environment variables that shape the chain.
const (
	jenkinsHomeEnv  = "JENKINS_HOME"
	jenkinsURLEnv   = "JENKINS_URL"
	jenkinsUserEnv  = "JENKINS_USER"
	jenkinsTokenEnv = "JENKINS_TOKEN"
)

type chainConfig struct {
	dotenvPath string
	debugHTTP  bool
	client     *jenkins.Client
}

type Option = func(*chainConfig)

// WithDotenvPath overrides the dotenv file consulted outside of Jenkins.
func WithDotenvPath(path string) Option { return func(c *chainConfig) { c.dotenvPath = path } }

// WithDebugHTTP dumps credential-store requests and responses to the logger.
func WithDebugHTTP(d bool) Option { return func(c *chainConfig) { c.debugHTTP = d } }

// WithJenkinsClient substitutes the credential-store client, primarily for
// testing.
func WithJenkinsClient(client *jenkins.Client) Option {
	return func(c *chainConfig) { c.client = client }
}

// FromEnvironment assembles the resolution chain for an environment
// snapshot.
//
// Under Jenkins (JENKINS_HOME set non-empty) the chain is the environment,
// the credential store, then the environment again. The store needs a
// complete controller identity (JENKINS_URL, JENKINS_USER and JENKINS_TOKEN);
// when any of those is missing its slot in the chain fails every lookup
// with *CredentialsUnavailableError before making a request.
//
// Outside Jenkins the chain is the environment, then the dotenv file.
func FromEnvironment(l logger.Logger, e *env.Environment, opts ...Option) *Resolver {
	conf := chainConfig{dotenvPath: DefaultDotenvPath}
	for _, opt := range opts {
		opt(&conf)
	}

	envSource := &EnvSource{Env: e}

	if home, _ := e.Get(jenkinsHomeEnv); home == "" {
		return New(l, envSource, &DotenvSource{Path: conf.dotenvPath, Env: e})
	}

	jenkinsURL, _ := e.Get(jenkinsURLEnv)
	jenkinsUser, _ := e.Get(jenkinsUserEnv)
	jenkinsToken, _ := e.Get(jenkinsTokenEnv)

	var missing []string
	if jenkinsURL == "" {
		missing = append(missing, jenkinsURLEnv)
	}
	if jenkinsUser == "" {
		missing = append(missing, jenkinsUserEnv)
	}
	if jenkinsToken == "" {
		missing = append(missing, jenkinsTokenEnv)
	}
	if len(missing) > 0 {
		return New(l, envSource, unavailableSource{missing: missing})
	}

	client := conf.client
	if client == nil {
		client = jenkins.NewClient(l, jenkins.Config{
			URL:       jenkinsURL,
			Username:  jenkinsUser,
			APIToken:  jenkinsToken,
			DebugHTTP: conf.debugHTTP,
		})
	}

	return New(l, envSource, &CredentialStoreSource{Client: client}, envSource)
}

// unavailableSource holds the credential store's place in the chain when the
// controller identity is incomplete. Every lookup is a hard error.
type unavailableSource struct {
	missing []string
}

func (s unavailableSource) Name() string { return "jenkins-credentials" }

func (s unavailableSource) Lookup(context.Context, string) (string, error) {
	return "", &CredentialsUnavailableError{Missing: s.missing}
}
