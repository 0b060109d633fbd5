package testkit

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// RunFile runs every step in path, in order, as subtests of t. A failing
// step stops the rest of the file since later steps depend on its captures.
func RunFile(t *testing.T, handler http.Handler, path string) {
	t.Helper()

	steps, err := Load(path)
	require.NoError(t, err)

	vars := map[string]string{}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	t.Run(name, func(t *testing.T) {
		for _, step := range steps {
			if !t.Run(step.Name, func(t *testing.T) { runStep(t, handler, step, vars) }) {
				return
			}
		}
	})
}

// RunDir runs every *.json file in dir with RunFile.
func RunDir(t *testing.T, handler http.Handler, dir string) {
	t.Helper()

	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "testkit: no scenario files in %q", dir)

	for _, p := range paths {
		RunFile(t, handler, p)
	}
}

func runStep(t *testing.T, handler http.Handler, s Step, vars map[string]string) {
	var body io.Reader
	switch {
	case s.RawBody != "":
		body = strings.NewReader(expand(s.RawBody, vars))
	case len(s.Body) > 0:
		body = bytes.NewReader([]byte(expand(string(s.Body), vars)))
	}

	req := httptest.NewRequest(strings.ToUpper(s.Method), expand(s.URL, vars), body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range s.Headers {
		req.Header.Set(k, expand(v, vars))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	AssertStatusCode(t, s, rec.Code, rec.Body.Bytes())
	if len(s.ExpectedBody) > 0 {
		AssertJSONSubset(t, s, []byte(expand(string(s.ExpectedBody), vars)), rec.Body.Bytes())
	}

	if len(s.Capture) == 0 {
		return
	}
	var decoded any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), "[%s] capture needs a JSON body", s.Name)
	for name, path := range s.Capture {
		v, ok := lookup(decoded, path)
		require.True(t, ok, "[%s] capture %q: no value at %q", s.Name, name, path)
		vars[name] = v
	}
}

func expand(s string, vars map[string]string) string {
	for k, v := range vars {
		s = strings.ReplaceAll(s, "{{"+k+"}}", v)
	}
	return s
}
