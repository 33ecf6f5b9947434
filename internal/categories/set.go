package categories

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var defaultTables []byte

// Set holds the three lookups used to classify a crash record.
type Set struct {
	Cause      *Lookup
	Weather    *Lookup
	Trafficway *Lookup
}

type tablesFile struct {
	Cause      []Group `yaml:"cause"`
	Weather    []Group `yaml:"weather"`
	Trafficway []Group `yaml:"trafficway"`
}

var loadDefault = sync.OnceValues(func() (*Set, error) {
	return Load(bytes.NewReader(defaultTables))
})

// Default returns the built-in tables. They are parsed once per process.
func Default() (*Set, error) {
	return loadDefault()
}

// Load parses a YAML document with cause, weather and trafficway sections.
func Load(r io.Reader) (*Set, error) {
	var f tablesFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode category tables: %w", err)
	}

	cause, err := NewLookup(Cause, f.Cause)
	if err != nil {
		return nil, err
	}
	weather, err := NewLookup(Weather, f.Weather)
	if err != nil {
		return nil, err
	}
	trafficway, err := NewLookup(Trafficway, f.Trafficway)
	if err != nil {
		return nil, err
	}
	return &Set{Cause: cause, Weather: weather, Trafficway: trafficway}, nil
}

// LoadFile reads tables from path, or returns the defaults when path is empty.
func LoadFile(path string) (*Set, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open category tables: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Lookup returns the lookup for a dimension.
func (s *Set) Lookup(dim Dimension) *Lookup {
	switch dim {
	case Cause:
		return s.Cause
	case Weather:
		return s.Weather
	case Trafficway:
		return s.Trafficway
	}
	return nil
}
