package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg, err := NewConfig(Config{Addr: "127.0.0.1:0", LogLevel: "debug"})
	require.NoError(t, err)
	srv := httptest.NewServer(NewApp(io.Discard, io.Discard, cfg).Router())
	t.Cleanup(srv.Close)
	return srv
}

func TestRouter_Health(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "OK\n", string(body))
}

func TestRouter_Schema(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/v1/schema")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var schema map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&schema))
	assert.Equal(t, "Pipeline blueprint", schema["title"])
}

func TestRouter_Blueprints(t *testing.T) {
	const valid = `{
		"pipeline": {"service": "orders", "branch": "main", "useDefaults": true, "liveStage": {"enabled": false}},
		"environment": {"account": "123456789012", "region": "eu-west-1"}
	}`

	testCases := []struct {
		name        string
		query       string
		body        string
		wantStatus  int
		wantType    string
		bodyContain string
	}{
		{
			name:        "json blueprint",
			body:        valid,
			wantStatus:  http.StatusOK,
			wantType:    "application/json",
			bodyContain: `"name": "ordersMaster"`,
		},
		{
			name:        "yaml blueprint",
			query:       "?format=yaml",
			body:        valid,
			wantStatus:  http.StatusOK,
			wantType:    "application/yaml",
			bodyContain: "name: ordersMaster",
		},
		{
			name: "parameter path without leading slash",
			body: `{
				"pipeline": {"service": "orders", "branch": "main", "useDefaults": true, "repo": "ssm:cicd/orders/repo"},
				"environment": {"account": "123456789012", "region": "eu-west-1"}
			}`,
			wantStatus:  http.StatusOK,
			wantType:    "application/json",
			bodyContain: `"default": "cicd/orders/repo"`,
		},
		{
			name:        "unknown format",
			query:       "?format=xml",
			body:        valid,
			wantStatus:  http.StatusBadRequest,
			bodyContain: "unsupported output format",
		},
		{
			name:        "malformed body",
			body:        `{"pipeline":`,
			wantStatus:  http.StatusBadRequest,
			bodyContain: "invalid request body",
		},
		{
			name:        "missing pipeline",
			body:        `{}`,
			wantStatus:  http.StatusBadRequest,
			bodyContain: "pipeline is required",
		},
		{
			name:        "unknown key",
			body:        `{"pipeline": {"service": "orders", "stackNameDev": "x"}}`,
			wantStatus:  http.StatusBadRequest,
			bodyContain: "stackNameDev",
		},
		{
			name:        "validation problems",
			body:        `{"pipeline": {"service": "orders"}, "environment": {"account": "1", "region": "eu-west-1"}}`,
			wantStatus:  http.StatusUnprocessableEntity,
			bodyContain: `"problems"`,
		},
		{
			name:        "missing environment",
			body:        `{"pipeline": {"service": "orders", "branch": "main", "useDefaults": true}}`,
			wantStatus:  http.StatusUnprocessableEntity,
			bodyContain: "deployment account is required",
		},
	}

	srv := newTestServer(t)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/v1/blueprints"+tc.query, "application/json", strings.NewReader(tc.body))
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, resp.StatusCode, string(body))
			if tc.wantType != "" {
				assert.Equal(t, tc.wantType, resp.Header.Get("Content-Type"))
			}
			assert.Contains(t, string(body), tc.bodyContain)
		})
	}
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	cfg, err := NewConfig(Config{Addr: "127.0.0.1:0"})
	require.NoError(t, err)
	a := NewApp(io.Discard, io.Discard, cfg)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://%s/health", addr))
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
