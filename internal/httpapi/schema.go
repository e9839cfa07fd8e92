// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/ivanlelis-27/amesco-plus-be/internal/auth"
)

// schemaError lists the schema violations of a request body.
type schemaError struct {
	details []string
}

func (e *schemaError) Error() string {
	return "request body does not match schema"
}

// schemas caches one compiled JSON Schema per request type.
type schemas struct {
	mu       sync.Mutex
	compiled map[reflect.Type]*jschema.Schema
}

var requestSchemas = &schemas{compiled: make(map[reflect.Type]*jschema.Schema)}

// RequestSchema returns the JSON Schema generated from a request type.
func RequestSchema(v any) ([]byte, error) {
	r := jsonschema.Reflector{
		Anonymous:                 true,
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}
	data, err := json.Marshal(r.Reflect(v))
	if err != nil {
		return nil, oops.Code("SCHEMA_GENERATE_FAILED").Wrap(err)
	}
	return data, nil
}

func (s *schemas) get(v any) (*jschema.Schema, error) {
	t := reflect.TypeOf(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	if sch, ok := s.compiled[t]; ok {
		return sch, nil
	}

	raw, err := RequestSchema(v)
	if err != nil {
		return nil, err
	}
	doc, err := jschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").Wrap(err)
	}
	url := "mem://requests/" + t.String() + ".json"
	c := jschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").With("type", t.String()).Wrap(err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").With("type", t.String()).Wrap(err)
	}
	s.compiled[t] = sch
	return sch, nil
}

// decode reads the body, validates it against the schema of dst and
// unmarshals it into dst.
func (h *handlers) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := h.readBody(w, r)
	if err != nil {
		return err
	}
	instance, err := jschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return oops.Code(auth.CodeInvalidRequest).Errorf("request body is not valid JSON")
	}

	sch, err := requestSchemas.get(dst)
	if err != nil {
		return err
	}
	if err := sch.Validate(instance); err != nil {
		return oops.Code(auth.CodeInvalidRequest).Wrap(&schemaError{details: violationLines(err)})
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return oops.Code(auth.CodeInvalidRequest).Errorf("request body is not valid JSON")
	}
	return nil
}

// violationLines turns a validation error into one line per violation.
func violationLines(err error) []string {
	var ve *jschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	lines := strings.Split(ve.Error(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines[1:] {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		if line != "" {
			out = append(out, line)
		}
	}
	if len(out) == 0 {
		out = append(out, strings.TrimSpace(lines[0]))
	}
	return out
}
