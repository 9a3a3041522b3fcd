package jobserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/ci-scripts/jenkins-helper/buildmeta"
	"github.com/ci-scripts/jenkins-helper/env"
	"github.com/ci-scripts/jenkins-helper/jobserver"
	"github.com/ci-scripts/jenkins-helper/logger"
	"github.com/google/uuid"
	"gotest.tools/v3/assert"
)

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	for _, test := range []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{name: "alive", status: http.StatusOK, body: "Alive"},
		{name: "alive_with_newline", status: http.StatusOK, body: "Alive\n"},
		{name: "wrong_body", status: http.StatusOK, body: "OK", wantErr: true},
		{name: "unavailable", status: http.StatusServiceUnavailable, body: "down for maintenance", wantErr: true},
	} {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
				assert.Equal(t, req.URL.Path, "/healthcheck")
				rw.WriteHeader(test.status)
				io.WriteString(rw, test.body)
			}))
			t.Cleanup(server.Close)

			client := jobserver.NewClient(logger.Discard, jobserver.Config{Endpoint: server.URL})

			err := client.Healthcheck(context.Background())
			if test.wantErr {
				assert.Check(t, err != nil, "expected the health check to fail")
			} else {
				assert.NilError(t, err)
			}
		})
	}
}

func TestHealthcheckTimeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		time.Sleep(time.Second)
		io.WriteString(rw, "Alive")
	}))
	t.Cleanup(server.Close)

	client := jobserver.NewClient(logger.Discard, jobserver.Config{
		Endpoint: server.URL,
		Timeout:  50 * time.Millisecond,
	})

	err := client.Healthcheck(context.Background())
	assert.Check(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestSubmitBuild(t *testing.T) {
	t.Parallel()

	records := make(chan map[string]any, 1)
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		assert.Equal(t, req.URL.Path, "/submit")
		assert.Equal(t, req.Method, "POST")
		assert.Equal(t, req.Header.Get("Content-Type"), "application/json")

		var record map[string]any
		assert.NilError(t, json.NewDecoder(req.Body).Decode(&record))
		records <- record

		io.WriteString(rw, `{"status":"recorded"}`)
	}))
	t.Cleanup(server.Close)

	client := jobserver.NewClient(logger.Discard, jobserver.Config{Endpoint: server.URL})

	build := buildmeta.NewBuild(env.FromMap(map[string]string{
		"JOB_NAME":     "nightly-etl",
		"BUILD_NUMBER": "142",
	}))

	resp, err := client.SubmitBuild(context.Background(), build)
	assert.NilError(t, err)
	assert.Equal(t, resp.StatusCode, http.StatusOK)

	record := <-records
	assert.Equal(t, record["jobname"], "nightly-etl")
	assert.Equal(t, record["buildnumber"], "142")
	_, hasURL := record["buildurl"]
	assert.Check(t, !hasURL, "unset fields should be omitted")

	id, ok := record["id"].(string)
	assert.Assert(t, ok, "record is missing an id: %v", record)
	_, err = uuid.Parse(id)
	assert.NilError(t, err)

	timestamp, ok := record["timestamp"].(string)
	assert.Assert(t, ok, "record is missing a timestamp: %v", record)
	_, err = time.Parse(time.RFC3339Nano, timestamp)
	assert.NilError(t, err)
}

func TestSubmitBuildFillsIdentity(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		io.WriteString(rw, "{}")
	}))
	t.Cleanup(server.Close)

	client := jobserver.NewClient(logger.Discard, jobserver.Config{Endpoint: server.URL})

	build := &buildmeta.Build{JobName: "nightly-etl"}
	_, err := client.SubmitBuild(context.Background(), build)
	assert.NilError(t, err)

	_, err = uuid.Parse(build.ID)
	assert.NilError(t, err)
	assert.Check(t, !build.Timestamp.IsZero())
}

func TestSubmitBuildOnlyAccepts200(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		rw.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(server.Close)

	client := jobserver.NewClient(logger.Discard, jobserver.Config{Endpoint: server.URL})

	resp, err := client.SubmitBuild(context.Background(), &buildmeta.Build{JobName: "nightly-etl"})

	var errResp *jobserver.ErrorResponse
	assert.Check(t, errors.As(err, &errResp), "got %v", err)
	assert.Equal(t, resp.StatusCode, http.StatusCreated)
}

func TestSubmitBuildEndpointNormalization(t *testing.T) {
	t.Parallel()

	paths := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		paths <- req.URL.Path
	}))
	t.Cleanup(server.Close)

	for _, endpoint := range []string{server.URL, server.URL + "/", server.URL + "/submit"} {
		client := jobserver.NewClient(logger.Discard, jobserver.Config{Endpoint: endpoint})

		_, err := client.SubmitBuild(context.Background(), &buildmeta.Build{JobName: "nightly-etl"})
		assert.NilError(t, err)
		assert.Equal(t, <-paths, "/submit")
	}
}

func TestRegisterPackage(t *testing.T) {
	t.Parallel()

	queries := make(chan url.Values, 1)
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		assert.Equal(t, req.URL.Path, "/submit")
		assert.Equal(t, req.Method, "POST")
		queries <- req.URL.Query()
		rw.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	client := jobserver.NewClient(logger.Discard, jobserver.Config{Endpoint: server.URL})

	resp, err := client.RegisterPackage(context.Background(), &buildmeta.Package{
		ID:     "f81d4fae-7dec-11d0-a765-00a0c91e6bf6",
		Mode:   "release",
		Name:   "dataset.zip",
		Commit: "0f5c2e7",
		Format: ".zip",
		Size:   2048,
	})
	assert.NilError(t, err)
	assert.Equal(t, resp.StatusCode, http.StatusNoContent)

	params := <-queries
	assert.Equal(t, params.Get("id"), "f81d4fae-7dec-11d0-a765-00a0c91e6bf6")
	assert.Equal(t, params.Get("packagemode"), "release")
	assert.Equal(t, params.Get("packagename"), "dataset.zip")
	assert.Equal(t, params.Get("commit"), "0f5c2e7")
	assert.Equal(t, params.Get("packageformat"), ".zip")
	assert.Equal(t, params.Get("packagesize"), "2048")
}

func TestRegisterPackageRejected(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		http.Error(rw, "record store unavailable", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client := jobserver.NewClient(logger.Discard, jobserver.Config{Endpoint: server.URL})

	_, err := client.RegisterPackage(context.Background(), &buildmeta.Package{ID: "x", Name: "dataset.zip"})

	var errResp *jobserver.ErrorResponse
	assert.Check(t, errors.As(err, &errResp), "got %v", err)
	assert.ErrorContains(t, err, "record store unavailable")
}
