package jenkins

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ci-scripts/jenkins-helper/internal/httpclient"
	"github.com/ci-scripts/jenkins-helper/logger"
	"github.com/ci-scripts/jenkins-helper/version"
)

// Config is configuration for the Jenkins API Client.
type Config struct {
	// URL of the Jenkins controller, e.g. "https://jenkins.example.com/".
	URL string

	// Username of the Jenkins user the API token belongs to.
	Username string

	// APIToken authenticates requests against the Jenkins REST API.
	APIToken string

	// User agent used when communicating with the Jenkins API.
	UserAgent string

	// If true, HTTP2 is disabled.
	DisableHTTP2 bool

	// If true, requests and responses will be dumped to the logger.
	DebugHTTP bool

	// The http client used, leave nil for the default.
	HTTPClient *http.Client

	// optional TLS configuration primarily used for testing
	TLSConfig *tls.Config
}

// A Client manages communication with the Jenkins REST API.
type Client struct {
	// The client configuration
	conf Config

	// HTTP client used to communicate with the API.
	client *http.Client

	// The logger used
	logger logger.Logger
}

// NewClient returns a new Jenkins API Client.
func NewClient(l logger.Logger, conf Config) *Client {
	if conf.UserAgent == "" {
		conf.UserAgent = version.UserAgent()
	}

	if conf.HTTPClient != nil {
		return &Client{
			logger: l,
			client: conf.HTTPClient,
			conf:   conf,
		}
	}

	return &Client{
		logger: l,
		client: httpclient.NewClient(
			httpclient.WithBasicAuth(conf.Username, conf.APIToken),
			httpclient.WithAllowHTTP2(!conf.DisableHTTP2),
			httpclient.WithTLSConfig(conf.TLSConfig),
		),
		conf: conf,
	}
}

// Config returns the internal configuration for the Client.
func (c *Client) Config() Config {
	return c.conf
}

// newRequest creates an API request. The urlStr is resolved relative to the
// configured Jenkins URL and should be specified without a preceding slash.
// If specified, the value pointed to by body is JSON encoded and included as
// the request body.
func (c *Client) newRequest(ctx context.Context, method, urlStr string, body any) (*http.Request, error) {
	u := joinURLPath(c.conf.URL, urlStr)

	buf := new(bytes.Buffer)
	if body != nil {
		err := json.NewEncoder(buf).Encode(body)
		if err != nil {
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

// Response is a Jenkins API response. This wraps the standard http.Response.
type Response struct {
	*http.Response
}

// newResponse creates a new Response for the provided http.Response.
func newResponse(r *http.Response) *Response {
	return &Response{Response: r}
}

// doRequest sends an API request and returns the API response. The API
// response is JSON decoded and stored in the value pointed to by v, or
// returned as an error if an API error has occurred. If v implements the
// io.Writer interface, the raw response body will be written to v, without
// attempting to first decode it.
func (c *Client) doRequest(req *http.Request, v any) (*Response, error) {
	resp, err := httpclient.Do(c.logger, c.client, req,
		httpclient.WithDebugHTTP(c.conf.DebugHTTP),
	)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	defer io.Copy(io.Discard, resp.Body)

	response := newResponse(resp)

	if err := checkResponse(resp); err != nil {
		// even though there was an error, we still return the response
		// in case the caller wants to inspect it further
		return response, err
	}

	if v != nil {
		if w, ok := v.(io.Writer); ok {
			io.Copy(w, resp.Body)
		} else if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return response, fmt.Errorf("failed to decode JSON response: %w", err)
		}
	}

	return response, nil
}

// ErrorResponse provides a message.
type ErrorResponse struct {
	Response *http.Response // HTTP response that caused this error
	Message  string         `json:"message"` // error message
}

func (r *ErrorResponse) Error() string {
	s := fmt.Sprintf("%v %v: %s",
		r.Response.Request.Method, r.Response.Request.URL,
		r.Response.Status)

	if r.Message != "" {
		s = fmt.Sprintf("%s: %v", s, r.Message)
	}

	return s
}

// IsErrHavingStatus reports whether err is an *ErrorResponse for a response
// with the given HTTP status code.
func IsErrHavingStatus(err error, code int) bool {
	var apierr *ErrorResponse
	return errors.As(err, &apierr) && apierr.Response.StatusCode == code
}

func checkResponse(r *http.Response) error {
	if c := r.StatusCode; 200 <= c && c <= 299 {
		return nil
	}

	errorResponse := &ErrorResponse{Response: r}
	data, err := io.ReadAll(r.Body)
	if err == nil && data != nil {
		// Jenkins error pages are often HTML, in which case the message
		// stays empty and the status line carries the information.
		json.Unmarshal(data, errorResponse)
	}

	return errorResponse
}

func joinURLPath(endpoint string, path string) string {
	return strings.TrimRight(endpoint, "/") + "/" + strings.TrimLeft(path, "/")
}
