package http

import (
	"context"
	"encoding/json"
	"io"
	gohttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*gohttp.Request) (*gohttp.Response, error)

func (f roundTripFunc) RoundTrip(r *gohttp.Request) (*gohttp.Response, error) { return f(r) }

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "abc", r.Header.Get("X-Trace"))
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		w.WriteHeader(gohttp.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["msg"]})
	}))
	defer srv.Close()

	resp, err := Post(srv.URL).Header("X-Trace", "abc").Body(map[string]string{"msg": "hi"}).Send()
	require.NoError(t, err)
	assert.True(t, resp.OK())
	require.NoError(t, resp.Throw())

	var out map[string]string
	require.NoError(t, resp.JSON(&out))
	assert.Equal(t, "hi", out["echo"])
}

func TestThrowOnError(t *testing.T) {
	DefaultClient.Transport = roundTripFunc(func(r *gohttp.Request) (*gohttp.Response, error) {
		return &gohttp.Response{StatusCode: 502, Body: io.NopCloser(strings.NewReader("bad gateway")), Header: gohttp.Header{}}, nil
	})
	defer ResetTransport()

	resp, err := Get("http://upstream.test/x").Send()
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.EqualError(t, resp.Throw(), "http: request failed with status 502")
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	_, err := Get(srv.URL).WithContext(context.Background()).Timeout(20 * time.Millisecond).Send()
	assert.Error(t, err)
}
