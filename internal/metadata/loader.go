package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type entityDoc struct {
	Name   string     `yaml:"name"`
	Table  string     `yaml:"table"`
	Fields []fieldDoc `yaml:"fields"`
}

type fieldDoc struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Unique  bool   `yaml:"unique"`
	NotNull bool   `yaml:"not_null"`
	Select  bool   `yaml:"select"`
	SQLType string `yaml:"sql_type"`
}

// logicalTypes maps definition-file type names to the Go types whose zero
// values are handed to the ColumnMapper.
var logicalTypes = map[string]reflect.Type{
	"string":    reflect.TypeFor[string](),
	"text":      reflect.TypeFor[string](),
	"int":       reflect.TypeFor[int32](),
	"bigint":    reflect.TypeFor[int64](),
	"float":     reflect.TypeFor[float64](),
	"boolean":   reflect.TypeFor[bool](),
	"bool":      reflect.TypeFor[bool](),
	"uuid":      reflect.TypeFor[uuid.UUID](),
	"timestamp": reflect.TypeFor[time.Time](),
	"json":      reflect.TypeFor[json.RawMessage](),
	"bytes":     reflect.TypeFor[[]byte](),
}

// Parse reads one or more YAML entity documents from r. source is only used
// in error messages.
func Parse(r io.Reader, source string) ([]*Entity, error) {
	dec := yaml.NewDecoder(r)
	var entities []*Entity
	for {
		var doc entityDoc
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", source, err)
		}
		if doc.Name == "" && len(doc.Fields) == 0 {
			continue
		}
		e, err := doc.entity()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", source, err)
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func (d entityDoc) entity() (*Entity, error) {
	if strings.TrimSpace(d.Name) == "" {
		return nil, fmt.Errorf("entity name is required")
	}
	fields := make([]Field, 0, len(d.Fields))
	for _, fd := range d.Fields {
		f := Field{Name: fd.Name, Unique: fd.Unique, NotNull: fd.NotNull, Select: fd.Select}
		if fd.Type != "" {
			t, ok := logicalTypes[strings.ToLower(fd.Type)]
			if !ok {
				return nil, fmt.Errorf("entity %s: field %s: unknown type %q", d.Name, fd.Name, fd.Type)
			}
			f.Type = t
		}
		if fd.SQLType != "" {
			f.Column = Explicit(fd.SQLType)
		}
		fields = append(fields, f)
	}
	return NewEntity(d.Name, fields, WithTable(d.Table))
}

// LoadFile reads all entity documents from a YAML file.
func LoadFile(path string) ([]*Entity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open definition: %w", err)
	}
	defer f.Close()
	return Parse(f, path)
}

// LoadDir reads every .yaml/.yml file in dir (not recursive), in file name
// order. Entity names must be unique across files.
func LoadDir(dir string) ([]*Entity, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read definitions dir: %w", err)
	}
	var paths []string
	for _, ent := range entries {
		if ent.IsDir() || !IsDefinitionFile(ent.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, ent.Name()))
	}
	sort.Strings(paths)

	seen := make(map[string]string)
	var all []*Entity
	for _, p := range paths {
		entities, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		for _, e := range entities {
			if prev, dup := seen[e.Name()]; dup {
				return nil, fmt.Errorf("entity %s defined in both %s and %s", e.Name(), prev, p)
			}
			seen[e.Name()] = p
			all = append(all, e)
		}
	}
	log.Printf("Loaded %d entities from %d files in %s", len(all), len(paths), dir)
	return all, nil
}

// IsDefinitionFile reports whether a file name looks like an entity definition.
func IsDefinitionFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
