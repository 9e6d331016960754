package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rgehrsitz/withholding/internal/domain"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of calculation request files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads one or more requests from a YAML or JSON file. JSON
// files use the HTTP field names (employeeId); YAML files use snake_case
// (employee_id). Either format may hold a single request or a list.
func (ip *InputParser) LoadFromFile(filename string) ([]domain.TaxCalculationRequest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var requests []domain.TaxCalculationRequest
	if isJSON(filename, data) {
		requests, err = ip.ParseJSON(data)
	} else {
		requests, err = ip.ParseYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if len(requests) == 0 {
		return nil, fmt.Errorf("%s: no requests found", filename)
	}
	return requests, nil
}

// ParseJSON decodes a request object or an array of them.
func (ip *InputParser) ParseJSON(data []byte) ([]domain.TaxCalculationRequest, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var requests []domain.TaxCalculationRequest
		if err := json.Unmarshal(trimmed, &requests); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		return requests, nil
	}
	var req domain.TaxCalculationRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return []domain.TaxCalculationRequest{req}, nil
}

// ParseYAML decodes a request mapping or a sequence of them.
func (ip *InputParser) ParseYAML(data []byte) ([]domain.TaxCalculationRequest, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	root := node.Content[0]
	if root.Kind == yaml.SequenceNode {
		var requests []domain.TaxCalculationRequest
		if err := root.Decode(&requests); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		return requests, nil
	}
	var req domain.TaxCalculationRequest
	if err := root.Decode(&req); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return []domain.TaxCalculationRequest{req}, nil
}

func isJSON(filename string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return true
	case ".yaml", ".yml":
		return false
	}
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}
