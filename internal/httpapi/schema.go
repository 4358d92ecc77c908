package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrMissingField marks a schema field absent from the payload
var ErrMissingField = errors.New("missing field")

// SchemaError reports a payload that does not match the expected schema
type SchemaError struct {
	Endpoint string
	Field    string
	Err      error
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: schema mismatch: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("%s: schema mismatch at %q: %v", e.Endpoint, e.Field, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// Decode unmarshals body into out and then checks that every field of out
// without omitempty was present in the payload. Nested structs and slices of
// structs are checked recursively; a null struct counts as missing, a null
// pointer does not.
func Decode(endpoint string, body []byte, out any) error {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return &SchemaError{Endpoint: endpoint, Err: fmt.Errorf("malformed json: %w", err)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		se := &SchemaError{Endpoint: endpoint, Err: err}
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			se.Field = te.Field
		}
		return se
	}

	t := reflect.TypeOf(out)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if path, missing := missingField(t, raw, ""); missing {
		if path == "" {
			path = "(root)"
		}
		return &SchemaError{Endpoint: endpoint, Field: path, Err: ErrMissingField}
	}
	return nil
}

// lookupKey finds name in obj, falling back to the case-insensitive match
// encoding/json uses when decoding.
func lookupKey(obj map[string]any, name string) (any, bool) {
	if v, ok := obj[name]; ok {
		return v, true
	}
	for k, v := range obj {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

func missingField(t reflect.Type, raw any, path string) (string, bool) {
	if t.Kind() == reflect.Pointer {
		if raw == nil {
			return "", false
		}
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		obj, ok := raw.(map[string]any)
		if !ok {
			return path, true
		}
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			name, omitempty := jsonName(sf)
			if name == "-" {
				continue
			}
			if sf.Anonymous && name == "" {
				if p, missing := missingField(sf.Type, raw, path); missing {
					return p, true
				}
				continue
			}
			if name == "" {
				name = sf.Name
			}
			fieldPath := joinPath(path, name)
			v, present := lookupKey(obj, name)
			if !present {
				if omitempty {
					continue
				}
				return fieldPath, true
			}
			if p, missing := missingField(sf.Type, v, fieldPath); missing {
				return p, true
			}
		}
	case reflect.Slice, reflect.Array:
		items, ok := raw.([]any)
		if !ok {
			return "", false
		}
		for i, item := range items {
			if p, missing := missingField(t.Elem(), item, fmt.Sprintf("%s[%d]", path, i)); missing {
				return p, true
			}
		}
	}
	return "", false
}

func jsonName(sf reflect.StructField) (string, bool) {
	tag, ok := sf.Tag.Lookup("json")
	if !ok {
		return "", false
	}
	name, opts, _ := strings.Cut(tag, ",")
	return name, strings.Contains(","+opts+",", ",omitempty,")
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
