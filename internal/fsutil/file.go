package fsutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedType is returned by ReadFile and WriteFile for extensions
// they do not know how to handle.
var ErrUnsupportedType = errors.New("unsupported file type")

// ReadFile reads path according to its extension:
//   - ".txt": []string, one element per line
//   - ".json": the decoded JSON document
//   - ".yaml", ".yml": the decoded YAML document
func ReadFile(path string) (any, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt":
		return ReadLines(path)
	case ".json":
		var doc any
		if err := ReadJSON(path, &doc); err != nil {
			return nil, err
		}
		return doc, nil
	case ".yaml", ".yml":
		var doc any
		if err := ReadYAML(path, &doc); err != nil {
			return nil, err
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
}

// WriteFile writes data to path according to its extension. ".txt" accepts
// []string or string; ".json", ".yaml" and ".yml" accept any encodable value.
// Missing parent directories are created.
func WriteFile(path string, data any) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt":
		switch v := data.(type) {
		case []string:
			return WriteLines(path, v)
		case string:
			return WriteLines(path, strings.Split(strings.TrimSuffix(v, "\n"), "\n"))
		default:
			return fmt.Errorf("%w: cannot write %T as text", ErrUnsupportedType, data)
		}
	case ".json":
		return WriteJSON(path, data)
	case ".yaml", ".yml":
		return WriteYAML(path, data)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
}

// ReadLines returns the lines of a text file without their terminators.
// A trailing newline does not produce an empty last line.
func ReadLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	text := strings.TrimSuffix(string(raw), "\n")
	if text == "" {
		return []string{}, nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines, nil
}

// WriteLines writes lines separated and terminated by "\n".
func WriteLines(path string, lines []string) error {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return writeBytes(path, []byte(b.String()))
}

// ReadJSON decodes a JSON file into v.
func ReadJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// WriteJSON encodes v as indented JSON.
func WriteJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return writeBytes(path, append(raw, '\n'))
}

// ReadYAML decodes a YAML file into v.
func ReadYAML(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// WriteYAML encodes v as YAML.
func WriteYAML(path string, v any) error {
	raw, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return writeBytes(path, raw)
}

func writeBytes(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
