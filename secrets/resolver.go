// Package secrets resolves named secrets through an ordered chain of
// sources: environment variables, the Jenkins credential store, and a local
// dotenv file. Each source either finds the key, passes (ErrNotFound), or
// stops the whole resolution with a hard error.
package secrets

import (
	"context"
	"errors"

	"github.com/ci-scripts/jenkins-helper/logger"
)

// A Source is one place a secret may come from. Lookup returns the value, or
// ErrNotFound (possibly wrapped) when the key is absent and the resolver
// should try the next source. Any other error aborts resolution.
type Source interface {
	Name() string
	Lookup(ctx context.Context, key string) (string, error)
}

// Resolver walks an ordered list of sources until one finds the key.
type Resolver struct {
	logger  logger.Logger
	sources []Source
}

// New returns a Resolver consulting the given sources in order.
func New(l logger.Logger, sources ...Source) *Resolver {
	return &Resolver{logger: l, sources: sources}
}

// Get resolves key against each source in turn. It returns the first value
// found, the first hard error, or *NotFoundError once every source has
// passed.
func (r *Resolver) Get(ctx context.Context, key string) (string, error) {
	checked := make([]string, 0, len(r.sources))

	for _, source := range r.sources {
		r.logger.Debug("Looking up secret %q in %s", key, source.Name())
		checked = append(checked, source.Name())

		value, err := source.Lookup(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			r.logger.Error("Looking up secret %q in %s: %v", key, source.Name(), err)
			return "", err
		}

		r.logger.Info("Found secret %q in %s", key, source.Name())
		return value, nil
	}

	return "", &NotFoundError{Key: key, Sources: checked}
}
