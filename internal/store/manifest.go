package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/beetlebugorg/intertidal/internal/geom"
)

// Manifest describes a workspace: its feature collections and any stored
// regions that exist before the first zonation run.
//
// Example:
//
//	collections:
//	  - name: known_tracks
//	    fields:
//	      - {name: type, type: string}
//	    features:
//	      - id: 1
//	        geometry: {type: LineString, coordinates: [[0, 0], [1, 1]]}
//	        attributes: {type: footpath}
//	  - name: user_tracks
//	    file: user_tracks.yaml
//	regions:
//	  - name: intertidal_zone
//	    rings: [[[0, 0], [4, 0], [4, 1], [0, 1], [0, 0]]]
type Manifest struct {
	Collections []CollectionSpec `yaml:"collections"`
	Regions     []RegionSpec     `yaml:"regions"`

	dir string
}

// CollectionSpec is a collection inline in the manifest or in its own file.
// File is resolved relative to the manifest.
type CollectionSpec struct {
	Name     string        `yaml:"name"`
	File     string        `yaml:"file,omitempty"`
	Fields   []Field       `yaml:"fields,omitempty"`
	Features []FeatureSpec `yaml:"features,omitempty"`
}

// FeatureSpec is the YAML form of a Feature. A zero id is replaced by the
// feature's 1-based position.
type FeatureSpec struct {
	ID         int64                  `yaml:"id"`
	Geometry   GeometrySpec           `yaml:"geometry"`
	Attributes map[string]interface{} `yaml:"attributes"`
}

// GeometrySpec is the YAML form of a Geometry.
type GeometrySpec struct {
	Type        string      `yaml:"type"`
	Coordinates [][]float64 `yaml:"coordinates"`
}

// RegionSpec is a stored region.
type RegionSpec struct {
	Name  string        `yaml:"name"`
	Kind  string        `yaml:"kind,omitempty"`
	Rings [][][]float64 `yaml:"rings"`
}

// ReadManifest parses a manifest file.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return &m, nil
}

// resolve returns the spec's file path relative to the manifest directory.
func (m *Manifest) resolve(file string) string {
	if filepath.IsAbs(file) || m.dir == "" {
		return file
	}
	return filepath.Join(m.dir, file)
}

// readCollectionFile loads a collection stored in its own YAML file.
// The name in the manifest wins over a name in the file.
func readCollectionFile(path, name string) (CollectionSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CollectionSpec{}, err
	}
	var spec CollectionSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return CollectionSpec{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if name != "" {
		spec.Name = name
	}
	return spec, nil
}

// Build converts the spec into a Collection.
func (spec CollectionSpec) Build() (*Collection, error) {
	features := make([]Feature, len(spec.Features))
	for i, fs := range spec.Features {
		typ, ok := geom.ParseGeometryType(fs.Geometry.Type)
		if !ok && len(fs.Geometry.Coordinates) > 0 {
			return nil, fmt.Errorf("collection %s feature %d: unknown geometry type %q",
				spec.Name, i+1, fs.Geometry.Type)
		}
		id := fs.ID
		if id == 0 {
			id = int64(i + 1)
		}
		attrs := fs.Attributes
		if attrs == nil {
			attrs = map[string]interface{}{}
		}
		features[i] = Feature{
			ID:         id,
			Geometry:   geom.Geometry{Type: typ, Coordinates: fs.Geometry.Coordinates},
			Attributes: attrs,
		}
	}
	return NewCollection(spec.Name, spec.Fields, features)
}

// Build converts the spec into a Region. Rings are closed if needed.
func (spec RegionSpec) Build() (*geom.Region, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("region has empty name")
	}
	rings := make([]geom.Ring, 0, len(spec.Rings))
	for i, coords := range spec.Rings {
		ring, err := geom.NewRing(coords)
		if err != nil {
			return nil, fmt.Errorf("region %s ring %d: %w", spec.Name, i, err)
		}
		rings = append(rings, ring)
	}
	kind := spec.Kind
	if kind == "" {
		kind = "stored"
	}
	return geom.NewRegion(spec.Name, kind, rings), nil
}
