// Copyright 2026 The Songbridge Authors
// SPDX-License-Identifier: Apache-2.0

package dispatch

import "fmt"

// Params is the decoded params object of a request. JSON numbers
// arrive as float64; the typed getters convert and apply per-argument
// defaults, returning an error only on a present value of the wrong
// type.
type Params map[string]any

// Float returns the named parameter as a float64, or the default when
// the parameter is absent.
func (p Params) Float(key string, def float64) (float64, error) {
	value, ok := p[key]
	if !ok || value == nil {
		return def, nil
	}
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return 0, fmt.Errorf("parameter %q: expected a number, got %T", key, value)
}

// Int returns the named parameter as an int, or the default when the
// parameter is absent. Fractional values truncate toward zero.
func (p Params) Int(key string, def int) (int, error) {
	value, ok := p[key]
	if !ok || value == nil {
		return def, nil
	}
	switch v := value.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	}
	return 0, fmt.Errorf("parameter %q: expected a number, got %T", key, value)
}

// Bool returns the named parameter as a bool, or the default when the
// parameter is absent.
func (p Params) Bool(key string, def bool) (bool, error) {
	value, ok := p[key]
	if !ok || value == nil {
		return def, nil
	}
	v, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("parameter %q: expected a boolean, got %T", key, value)
	}
	return v, nil
}

// String returns the named parameter as a string, or the default when
// the parameter is absent.
func (p Params) String(key string, def string) (string, error) {
	value, ok := p[key]
	if !ok || value == nil {
		return def, nil
	}
	v, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("parameter %q: expected a string, got %T", key, value)
	}
	return v, nil
}

// List returns the named parameter as a slice, or nil when the
// parameter is absent.
func (p Params) List(key string) ([]any, error) {
	value, ok := p[key]
	if !ok || value == nil {
		return nil, nil
	}
	v, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("parameter %q: expected a list, got %T", key, value)
	}
	return v, nil
}

// Object returns the named parameter as a nested params object, or
// nil when the parameter is absent.
func (p Params) Object(key string) (Params, error) {
	value, ok := p[key]
	if !ok || value == nil {
		return nil, nil
	}
	v, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parameter %q: expected an object, got %T", key, value)
	}
	return Params(v), nil
}
