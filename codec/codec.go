// Package codec provides the wire encodings for instrument readings.
//
// Encoders are pluggable: the publisher is handed one at construction
// and applies it uniformly to every instrument. Both encoders here are
// deterministic for an unchanged value, which the publisher's
// byte-level dedup relies on.
package codec

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/itsneelabh/goprobe/core"
)

// JSON encodes readings as compact JSON.
type JSON struct{}

func (JSON) Encode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// YAML encodes readings as YAML documents.
type YAML struct{}

func (YAML) Encode(v interface{}) ([]byte, error) {
	return yaml.Marshal(v)
}

// ForName returns the encoder named by a configuration string.
func ForName(name string) (core.Encoder, error) {
	switch name {
	case "json":
		return JSON{}, nil
	case "yaml":
		return YAML{}, nil
	default:
		return nil, fmt.Errorf("unknown encoding %q: %w", name, core.ErrInvalidConfiguration)
	}
}
