// Package jobserver talks to the job-record server: the internal service
// that keeps a register of builds and uploaded packages. It exposes a health
// check plus one submission endpoint fed either a JSON build record or
// URL-encoded package metadata.
package jobserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/ci-scripts/jenkins-helper/internal/httpclient"
	"github.com/ci-scripts/jenkins-helper/logger"
	"github.com/ci-scripts/jenkins-helper/version"
)

// DefaultHealthcheckTimeout bounds Healthcheck when Config.Timeout is zero.
const DefaultHealthcheckTimeout = 10 * time.Second

// Config is configuration for the job server Client.
type Config struct {
	// Endpoint of the job-record server, e.g. "http://records.internal:8080".
	Endpoint string

	// User agent used when communicating with the server.
	UserAgent string

	// Timeout bounds the health check. Zero means DefaultHealthcheckTimeout.
	Timeout time.Duration

	// If true, requests and responses will be dumped to the logger.
	DebugHTTP bool

	// The http client used, leave nil for the default.
	HTTPClient *http.Client
}

// A Client manages communication with the job-record server.
type Client struct {
	conf   Config
	client *http.Client
	logger logger.Logger
}

// NewClient returns a new job server Client. The server is unauthenticated,
// so unlike the Jenkins client there are no credentials to carry.
func NewClient(l logger.Logger, conf Config) *Client {
	if conf.UserAgent == "" {
		conf.UserAgent = version.UserAgent()
	}

	client := conf.HTTPClient
	if client == nil {
		client = httpclient.NewClient(httpclient.WithAllowHTTP2(true))
	}

	return &Client{
		conf:   conf,
		client: client,
		logger: l,
	}
}

// Config returns the internal configuration for the Client.
func (c *Client) Config() Config {
	return c.conf
}

// newRequest creates a request against the absolute URL u, JSON encoding
// body when it is non-nil.
func (c *Client) newRequest(ctx context.Context, method, u string, body any) (*http.Request, error) {
	buf := new(bytes.Buffer)
	if body != nil {
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, u, buf)
	if err != nil {
		return nil, err
	}

	req.Header.Add("User-Agent", c.conf.UserAgent)

	if body != nil {
		req.Header.Add("Content-Type", "application/json")
	}

	return req, nil
}

// Response is a job server response. This wraps the standard http.Response.
type Response struct {
	*http.Response
}

func newResponse(r *http.Response) *Response {
	return &Response{Response: r}
}

// doRequest sends the request and checks the status against the allowed set.
// Anything else comes back as an *ErrorResponse carrying the reply body.
func (c *Client) doRequest(req *http.Request, allowed ...int) (*Response, error) {
	resp, err := httpclient.Do(c.logger, c.client, req,
		httpclient.WithDebugHTTP(c.conf.DebugHTTP),
	)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	defer io.Copy(io.Discard, resp.Body)

	response := newResponse(resp)

	if !slices.Contains(allowed, resp.StatusCode) {
		errorResponse := &ErrorResponse{Response: resp}
		if data, err := io.ReadAll(resp.Body); err == nil {
			errorResponse.Body = strings.TrimSpace(string(data))
		}
		return response, errorResponse
	}

	return response, nil
}

// ErrorResponse is a reply the server did not accept.
type ErrorResponse struct {
	Response *http.Response // HTTP response that caused this error
	Body     string         // reply body, trimmed
}

func (r *ErrorResponse) Error() string {
	s := fmt.Sprintf("%v %v: %s",
		r.Response.Request.Method, r.Response.Request.URL,
		r.Response.Status)

	if r.Body != "" {
		s = fmt.Sprintf("%s: %s", s, r.Body)
	}

	return s
}

// submitURL appends the submission path unless the endpoint already names
// it.
func submitURL(endpoint string) string {
	if strings.HasSuffix(endpoint, "/submit") {
		return endpoint
	}
	return joinURLPath(endpoint, "submit")
}

func joinURLPath(endpoint string, path string) string {
	return strings.TrimRight(endpoint, "/") + "/" + strings.TrimLeft(path, "/")
}
