package secrets

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by a Source whose store simply does not hold the
// key. The resolver treats it as "keep looking".
var ErrNotFound = errors.New("secret not found")

// NotFoundError is the terminal failure from Resolver.Get: every source was
// consulted and none held the key.
type NotFoundError struct {
	Key     string
	Sources []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("secret %q not found (looked in %s)", e.Key, strings.Join(e.Sources, ", "))
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// CredentialsUnavailableError means JENKINS_HOME indicated we are running
// under Jenkins but the controller identity needed to query its credential
// store was incomplete. No request is made in this state.
type CredentialsUnavailableError struct {
	Missing []string
}

func (e *CredentialsUnavailableError) Error() string {
	return fmt.Sprintf("jenkins credential store unavailable: %s not set", strings.Join(e.Missing, ", "))
}

// CredentialStoreError wraps a failure talking to the Jenkins credential
// store. It is a hard stop: resolution does not fall through to later
// sources.
type CredentialStoreError struct {
	Err error
}

func (e *CredentialStoreError) Error() string {
	return fmt.Sprintf("jenkins credential store: %v", e.Err)
}

func (e *CredentialStoreError) Unwrap() error { return e.Err }
