package jobserver

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ci-scripts/jenkins-helper/buildmeta"
	"github.com/ci-scripts/jenkins-helper/internal/httpclient"
	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
)

// Healthcheck asks the server whether it is alive. Anything other than a 200
// answering "Alive" is a failure.
func (c *Client) Healthcheck(ctx context.Context) error {
	timeout := c.conf.Timeout
	if timeout == 0 {
		timeout = DefaultHealthcheckTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := c.newRequest(ctx, "GET", joinURLPath(c.conf.Endpoint, "healthcheck"), nil)
	if err != nil {
		return err
	}

	resp, err := httpclient.Do(c.logger, c.client, req,
		httpclient.WithDebugHTTP(c.conf.DebugHTTP),
	)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != "Alive" {
		return &ErrorResponse{Response: resp, Body: strings.TrimSpace(string(body))}
	}

	return nil
}

// SubmitBuild records a build. A zero ID or Timestamp is filled in before
// sending, so callers may hand over a partially constructed record. The
// server acknowledges with exactly 200.
func (c *Client) SubmitBuild(ctx context.Context, build *buildmeta.Build) (*Response, error) {
	if build.ID == "" {
		build.ID = uuid.New().String()
	}
	if build.Timestamp.IsZero() {
		build.Timestamp = time.Now().UTC()
	}

	req, err := c.newRequest(ctx, "POST", submitURL(c.conf.Endpoint), build)
	if err != nil {
		return nil, err
	}

	return c.doRequest(req, http.StatusOK)
}

// RegisterPackage records an uploaded package. The server takes the metadata
// as query parameters and acknowledges with 200, 201 or 204.
func (c *Client) RegisterPackage(ctx context.Context, pkg *buildmeta.Package) (*Response, error) {
	qs, err := query.Values(pkg)
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, "POST", submitURL(c.conf.Endpoint)+"?"+qs.Encode(), nil)
	if err != nil {
		return nil, err
	}

	return c.doRequest(req, http.StatusOK, http.StatusCreated, http.StatusNoContent)
}
