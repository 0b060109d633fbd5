// Package testkit runs JSON-described HTTP scenarios against an http.Handler.
//
// A scenario file holds an ordered list of steps that share state: values
// captured from one response can be used in the URL, headers or body of the
// next step as {{name}}.
//
//	[
//	  {
//	    "name": "create",
//	    "method": "POST",
//	    "url": "/products",
//	    "body": {"name": "A", "description": "d", "price": 10, "count": 5},
//	    "expectedCode": 201,
//	    "expectedBody": {"product": {"stock": 5}},
//	    "capture": {"id": "product.id"}
//	  },
//	  {"name": "fetch", "url": "/products/{{id}}", "expectedCode": 200}
//	]
//
// expectedBody is matched as a subset: every key it names must be present
// with an equal value, other keys are ignored.
//
//	testkit.RunFile(t, handler, "testdata/catalogue.json")
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Step is one request and what its response must look like.
type Step struct {
	Name    string            `json:"name"`
	Method  string            `json:"method"` // default GET
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`

	// Body is sent as JSON. RawBody, when set, is sent verbatim instead.
	Body    json.RawMessage `json:"body"`
	RawBody string          `json:"rawBody"`

	ExpectedCode int             `json:"expectedCode"`
	ExpectedBody json.RawMessage `json:"expectedBody"`

	// Capture maps a variable name to a dotted path in the response body
	// ("product.id", "0.name").
	Capture map[string]string `json:"capture"`
}

// Load reads the steps of a scenario file.
func Load(path string) ([]Step, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var steps []Step
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}

	for i := range steps {
		if err := steps[i].validate(); err != nil {
			return nil, fmt.Errorf("testkit: %q step %d: %w", abs, i, err)
		}
	}
	return steps, nil
}

func (s *Step) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.URL == "" {
		return fmt.Errorf("url is required")
	}
	if s.ExpectedCode == 0 {
		return fmt.Errorf("expectedCode is required")
	}
	if s.Method == "" {
		s.Method = "GET"
	}
	return nil
}
