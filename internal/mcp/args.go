package mcp

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// argumentGetter is the part of mcp.CallToolRequest used for binding.
type argumentGetter interface {
	GetArguments() map[string]any
}

type whereArgs struct {
	Name string `json:"name"`
}

type pathArgs struct {
	Path string `json:"path"`
}

type depsArgs struct {
	Path    string `json:"path"`
	Depth   int    `json:"depth"`
	Reverse bool   `json:"reverse"`
}

// bindArguments decodes request arguments into target using json tags.
// Clients sometimes send every parameter as a string, so numbers and
// booleans encoded as strings are coerced.
func bindArguments[T any](request argumentGetter, target *T) error {
	coerce := func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		raw := strings.TrimSpace(data.(string))
		if raw == "" {
			return data, nil
		}
		switch {
		case t.Kind() == reflect.Bool:
			if raw == "true" || raw == "false" {
				return raw == "true", nil
			}
		case t.Kind() >= reflect.Int && t.Kind() <= reflect.Float64:
			var n json.Number
			if err := json.Unmarshal([]byte(raw), &n); err == nil {
				return n, nil
			}
		}
		return data, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       coerce,
		Result:           target,
		TagName:          "json",
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(request.GetArguments()); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// requireString reports a missing or empty required argument.
func requireString(key, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s parameter is required", key)
	}
	return nil
}
