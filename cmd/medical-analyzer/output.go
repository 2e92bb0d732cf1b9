package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"medical-analyzer/pkg"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func checkFormat(format string) error {
	switch format {
	case formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want json or yaml)", format)
}

// render writes v as indented JSON or as YAML.
func render(w io.Writer, format string, v any) error {
	if format == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parsePrescriptionRequest decodes a request file.  .yaml and .yml files are
// read as YAML, everything else as JSON.  YAML is converted to JSON first so
// both formats accept the same free-form shapes.
func parsePrescriptionRequest(data []byte, ext string) (pkg.PrescriptionRequest, error) {
	var req pkg.PrescriptionRequest
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return req, fmt.Errorf("parse yaml request: %w", err)
		}
		b, err := json.Marshal(doc)
		if err != nil {
			return req, fmt.Errorf("parse yaml request: %w", err)
		}
		if err := json.Unmarshal(b, &req); err != nil {
			return req, fmt.Errorf("parse yaml request: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &req); err != nil {
			return req, fmt.Errorf("parse json request: %w", err)
		}
	}
	return req, nil
}
