// Package source loads the camera curve tree exported from the game asset.
package source

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source yields the generic curve tree of a camera motion asset.
type Source interface {
	Curves() ([]Curve, error)
	Name() string
}

// Asset is the document root.
type Asset struct {
	Name   string  `yaml:"name"`
	Curves []Curve `yaml:"curves"`
}

// Curve is one animated property: a path (the object), attribute tags
// describing the property, and the flat keyframe array.
type Curve struct {
	Path    string   `yaml:"path"`
	Attribs []string `yaml:"attribs"`
	Values  []Sample `yaml:"values"`
}

// HasAttrib reports whether the curve carries the attribute tag a.
func (c Curve) HasAttrib(a string) bool {
	for _, v := range c.Attribs {
		if v == a {
			return true
		}
	}
	return false
}

// Floats returns the keyframe array as plain floats.
func (c Curve) Floats() []float64 {
	out := make([]float64, len(c.Values))
	for i, v := range c.Values {
		out[i] = float64(v)
	}
	return out
}

// Sample is a number that also accepts the exporter's "Infinity" strings.
type Sample float64

func (s *Sample) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number, got %s", value.Line, kindName(value.Kind))
	}
	switch strings.TrimSpace(value.Value) {
	case "Infinity", "+Infinity", ".inf", "+.inf":
		*s = Sample(math.Inf(1))
		return nil
	case "-Infinity", "-.inf":
		*s = Sample(math.Inf(-1))
		return nil
	}
	f, err := strconv.ParseFloat(value.Value, 64)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*s = Sample(f)
	return nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	default:
		return "scalar"
	}
}

// Decode reads an asset document. JSON exports are valid YAML, so both load.
func Decode(r io.Reader) (*Asset, error) {
	var asset Asset
	if err := yaml.NewDecoder(r).Decode(&asset); err != nil {
		return nil, fmt.Errorf("decode asset: %w", err)
	}
	return &asset, nil
}

// FileSource reads the curve tree from a file on disk.
type FileSource struct {
	path string
}

func NewFileSource(path string) (*FileSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return &FileSource{path: path}, nil
}

func (f *FileSource) Name() string {
	return f.path
}

func (f *FileSource) Curves() ([]Curve, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	asset, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}
	return asset.Curves, nil
}

// Static is an in-memory Source.
type Static []Curve

func (s Static) Name() string             { return "memory" }
func (s Static) Curves() ([]Curve, error) { return s, nil }
