package db

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/exam-timetabler/pkg/core/model"
)

// FileStore serves a dataset held in memory, read from a YAML or JSON file or built in code
type FileStore struct {
	dataset *Dataset
}

// NewFileStore wraps an in-memory dataset
func NewFileStore(dataset *Dataset) *FileStore {
	return &FileStore{dataset: dataset}
}

// OpenFileStore reads and validates the dataset at path. The format is chosen by extension:
// .yaml and .yml are parsed as YAML, .json as JSON.
func OpenFileStore(path string) (*FileStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}

	var dataset *Dataset
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dataset, err = parseYAML(data)
	case ".json":
		dataset, err = parseJSON(data)
	default:
		return nil, fmt.Errorf("unsupported dataset file extension %q", ext)
	}
	if err != nil {
		return nil, err
	}

	if err := dataset.Validate(); err != nil {
		return nil, err
	}

	return NewFileStore(dataset), nil
}

func parseYAML(data []byte) (*Dataset, error) {
	var dataset Dataset
	if err := yaml.Unmarshal(data, &dataset); err != nil {
		return nil, fmt.Errorf("failed to parse dataset file: %w", err)
	}
	return &dataset, nil
}

// parseJSON decodes through a generic map so unknown keys are reported instead of dropped
func parseJSON(data []byte) (*Dataset, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse dataset file: %w", err)
	}

	var dataset Dataset
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		ErrorUnused: true,
		DecodeHook:  wholeNumberHook,
		Result:      &dataset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode dataset file: %w", err)
	}
	return &dataset, nil
}

// wholeNumberHook rejects JSON numbers with a fraction bound for integer fields,
// which mapstructure would otherwise truncate
func wholeNumberHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.Float64 {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
	default:
		return data, nil
	}

	if f := data.(float64); f != math.Trunc(f) {
		return nil, fmt.Errorf("expected a whole number, got %v", f)
	}
	return data, nil
}

func (s *FileStore) GetDepartments(ctx context.Context) ([]model.Department, error) {
	return append([]model.Department(nil), s.dataset.Departments...), nil
}

func (s *FileStore) GetCourses(ctx context.Context) ([]model.Course, error) {
	return append([]model.Course(nil), s.dataset.Courses...), nil
}

func (s *FileStore) GetRooms(ctx context.Context) ([]model.Room, error) {
	return append([]model.Room(nil), s.dataset.Rooms...), nil
}

func (s *FileStore) GetConstraints(ctx context.Context) ([]model.Constraint, error) {
	return append([]model.Constraint(nil), s.dataset.Constraints...), nil
}

// WriteDataset writes the dataset to path as YAML or JSON, chosen by extension
func WriteDataset(path string, dataset *Dataset) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(dataset)
	case ".json":
		data, err = json.MarshalIndent(dataset, "", "  ")
	default:
		return fmt.Errorf("unsupported dataset file extension %q", ext)
	}
	if err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write dataset file: %w", err)
	}
	return nil
}
