package secrets

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ci-scripts/jenkins-helper/env"
	"github.com/ci-scripts/jenkins-helper/internal/osutil"
	"github.com/ci-scripts/jenkins-helper/jenkins"
	"github.com/joho/godotenv"
)

// EnvSource resolves keys from an environment snapshot. A variable set to
// the empty string counts as unset.
type EnvSource struct {
	Env *env.Environment
}

func (s *EnvSource) Name() string { return "environment" }

func (s *EnvSource) Lookup(_ context.Context, key string) (string, error) {
	value, has := s.Env.Get(key)
	if !has || value == "" {
		return "", ErrNotFound
	}
	return value, nil
}

// CredentialStoreSource resolves keys against the Jenkins credential store,
// using the key as the credential ID.
type CredentialStoreSource struct {
	Client *jenkins.Client
}

func (s *CredentialStoreSource) Name() string { return "jenkins-credentials" }

func (s *CredentialStoreSource) Lookup(ctx context.Context, key string) (string, error) {
	credential, _, err := s.Client.GetCredential(ctx, key)
	switch {
	case jenkins.IsErrHavingStatus(err, http.StatusNotFound):
		return "", ErrNotFound
	case err != nil:
		return "", &CredentialStoreError{Err: err}
	case credential.Secret == "":
		return "", ErrNotFound
	}
	return credential.Secret, nil
}

// DotenvSource resolves keys from a dotenv file. The file's variables are
// merged into the environment snapshot without overriding anything already
// set, then the snapshot is checked again. A missing file is a pass, an
// unreadable one is a hard error.
type DotenvSource struct {
	Path string
	Env  *env.Environment
}

func (s *DotenvSource) Name() string { return "dotenv" }

func (s *DotenvSource) Lookup(_ context.Context, key string) (string, error) {
	if !osutil.FileExists(s.Path) {
		return "", ErrNotFound
	}

	vars, err := godotenv.Read(s.Path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", s.Path, err)
	}

	s.Env.MergeMissing(env.FromMap(vars))

	value, has := s.Env.Get(key)
	if !has || value == "" {
		return "", ErrNotFound
	}
	return value, nil
}
