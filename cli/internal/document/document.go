// Package document reads the input of the safejson CLI into the value model of safejson.
package document

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"sigs.k8s.io/yaml"

	"ocm.software/open-component-model/bindings/go/safejson"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatAuto = "auto"
)

// Formats lists the accepted input formats, the default first.
var Formats = []string{FormatJSON, FormatYAML, FormatAuto}

// DetectFormat returns FormatJSON if data looks like JSON and FormatYAML otherwise.
func DetectFormat(data []byte) string {
	if mimetype.Detect(data).Is("application/json") {
		return FormatJSON
	}
	return FormatYAML
}

// ToJSON returns data as JSON. YAML documents are converted, their mappings
// come out sorted by key.
func ToJSON(data []byte, format string) ([]byte, error) {
	if format == FormatAuto {
		format = DetectFormat(data)
	}
	switch format {
	case FormatJSON:
		return data, nil
	case FormatYAML:
		converted, err := yaml.YAMLToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("could not convert yaml to json: %w", err)
		}
		return converted, nil
	default:
		return nil, fmt.Errorf("unsupported input format %q", format)
	}
}

// Decode parses data in the given format. Object member order is kept for JSON input.
// Every check is run on the JSON form of data before it is decoded; the first
// error is returned as is.
func Decode(data []byte, format string, checks ...func(raw []byte) error) (any, error) {
	raw, err := ToJSON(data, format)
	if err != nil {
		return nil, err
	}
	for _, check := range checks {
		if err := check(raw); err != nil {
			return nil, err
		}
	}
	value, err := safejson.Unmarshal(raw)
	if err != nil {
		return nil, fmt.Errorf("could not decode document: %w", err)
	}
	return value, nil
}
