package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	deployerrors "github.com/alexisbeaulieu97/lambda-deploy/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// ParseConfig loads a deployment document from disk, applies defaults,
// validates it, and returns the resulting model.
func ParseConfig(path string) (*Document, error) {
	doc, err := DecodeConfig(path)
	if err != nil {
		return nil, err
	}
	if err := Finalize(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// DecodeConfig reads and decodes a document without defaults or validation,
// so callers can layer overrides on top before calling Finalize.
func DecodeConfig(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, deployerrors.NewParseError(path, 0, err)
	}
	return Decode(path, data)
}

// Decode decodes raw YAML. Unknown keys are rejected.
func Decode(path string, data []byte) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, deployerrors.NewParseError(path, extractLine(err), err)
	}
	return &doc, nil
}

// Finalize applies defaults and validates doc.
func Finalize(doc *Document) error {
	if doc == nil {
		return deployerrors.NewValidationError("document", "document is nil", nil)
	}
	doc.ApplyDefaults()
	return ValidateDocument(doc)
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
