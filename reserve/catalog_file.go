package reserve

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/bindkit/gpucore"
)

// Format is the encoding of a catalog file.
type Format string

// Catalog file formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatOf returns the format implied by a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
}

// catalogFile is the on-disk form of a catalog:
//
//	variant = "bindless"
//
//	[[entries]]
//	name = "engine_timing"
//	kind = "uniform"
type catalogFile struct {
	Variant Variant     `toml:"variant" yaml:"variant"`
	Entries []fileEntry `toml:"entries" yaml:"entries"`
}

type fileEntry struct {
	Name string              `toml:"name" yaml:"name"`
	Kind gpucore.BindingType `toml:"kind" yaml:"kind"`
}

// LoadCatalog reads a catalog from a TOML or YAML file, chosen by
// extension.
func LoadCatalog(path string) (*Catalog, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reserve: read catalog: %w", err)
	}
	c, err := DecodeCatalog(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// DecodeCatalog decodes a catalog. Unknown fields are rejected, and the
// entries go through NewCatalog, so duplicate names fail as well.
func DecodeCatalog(r io.Reader, format Format) (*Catalog, error) {
	var f catalogFile
	switch format {
	case FormatTOML:
		if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&f); err != nil {
			return nil, fmt.Errorf("reserve: decode toml catalog: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reserve: decode yaml catalog: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	entries := make([]Metadata, len(f.Entries))
	for i, e := range f.Entries {
		if e.Name == "" {
			return nil, fmt.Errorf("reserve: catalog entry %d has no name", i)
		}
		if e.Kind == gpucore.BindingTypeUndefined {
			return nil, fmt.Errorf("reserve: catalog entry %q has no kind", e.Name)
		}
		entries[i] = Metadata(e)
	}
	return NewCatalog(f.Variant, entries...)
}
