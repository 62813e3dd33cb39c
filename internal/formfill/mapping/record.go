package mapping

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// DecodeRecord parses a JSON application record. Numbers are kept as
// json.Number so literals such as "10.00" survive formatting.
func DecodeRecord(r io.Reader) (interface{}, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var record interface{}
	if err := dec.Decode(&record); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return record, nil
}

// DecodeRecordBytes is DecodeRecord over a byte slice.
func DecodeRecordBytes(data []byte) (interface{}, error) {
	return DecodeRecord(bytes.NewReader(data))
}

type object = map[string]interface{}

// record gives typed, tolerant access to the root of an application.
type record struct {
	root object
	app  object
}

func newRecord(root object) record {
	app, _ := asMap(root["application"])
	return record{root: root, app: app}
}

// scalar looks a loan-level field up at the root first, then under the
// nested application object.
func (r record) scalar(key string) interface{} {
	if v, ok := r.root[key]; ok && v != nil {
		return v
	}
	if r.app != nil {
		return r.app[key]
	}
	return nil
}

// list returns a root collection. A collection may also live under the
// nested application object.
func (r record) list(key string) []object {
	if v, ok := r.root[key]; ok && v != nil {
		return asList(v)
	}
	if r.app != nil {
		return asList(r.app[key])
	}
	return nil
}

func asMap(v interface{}) (object, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok
}

// asList keeps the object elements of v. Anything that is not a list reads
// as empty.
func asList(v interface{}) []object {
	items, ok := v.([]interface{})
	if !ok {
		if objs, ok := v.([]map[string]interface{}); ok {
			return objs
		}
		return nil
	}
	out := make([]object, 0, len(items))
	for _, it := range items {
		if m, ok := asMap(it); ok {
			out = append(out, m)
		}
	}
	return out
}

// str renders scalars as plain text; structured values read as "".
func str(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	}
	if s, ok := plainNumber(v); ok {
		return s
	}
	return ""
}

// token normalises an enumerated value: "Full Time" and "full-time" both
// become "full_time".
func token(v interface{}) string {
	s := strings.ToLower(strings.TrimSpace(str(v)))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

// firstNonBlank returns the first value that is not nil or whitespace.
func firstNonBlank(vals ...interface{}) interface{} {
	for _, v := range vals {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}

// Truthy is the checkbox interpretation of an arbitrary value.
func Truthy(v interface{}) bool {
	return truthy(v)
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1", "on":
			return true
		}
		return false
	}
	d, state := parseAmount(v)
	return state == amountValid && !d.IsZero()
}
