// Package treegen materializes declarative fixture trees on disk. A tree is
// described in YAML (or constructed directly as a Schema value) and written
// under a root directory, which makes filesystem tests readable: the test
// states the shape of the tree instead of a sequence of os calls.
package treegen

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/treekit/treekit/pkg/fsutil"
)

// 🌳 Schema is the root of a declarative tree description.
type Schema struct {
	Entries []Node `yaml:"entries"`
}

// Node describes one entry in the tree. Exactly one of the kind-specific
// field groups applies, selected by Kind.
type Node struct {
	// Path is relative to the materialization root, forward slashes.
	Path string `yaml:"path"`
	Kind string `yaml:"kind"` // dir | file | symlink | broken-symlink

	// File fields. Content wins over Size; Size fills the file with
	// deterministic pseudo-random bytes derived from Seed.
	Content string `yaml:"content,omitempty"`
	Size    int64  `yaml:"size,omitempty"`
	Seed    int64  `yaml:"seed,omitempty"`

	// Symlink fields. Target is stored verbatim in the link; DirTarget
	// selects a directory-type link on platforms that distinguish them.
	Target    string `yaml:"target,omitempty"`
	DirTarget bool   `yaml:"dir_target,omitempty"`
}

const (
	KindDir           = "dir"
	KindFile          = "file"
	KindSymlink       = "symlink"
	KindBrokenSymlink = "broken-symlink"
)

// Parse decodes a YAML tree description. Unknown fields are rejected.
func Parse(data []byte) (*Schema, error) {
	var schema Schema
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&schema); err != nil {
		return nil, errors.Errorf("parsing tree schema: %w", err)
	}
	return &schema, nil
}

// Materialize writes every entry of the schema under root, creating parent
// directories as needed. Entries are applied in declaration order so a file
// may precede its sibling directory freely, but a symlink whose target must
// exist should be declared after that target.
func Materialize(root string, schema *Schema) error {
	for _, node := range schema.Entries {
		if err := materializeNode(root, node); err != nil {
			return errors.Errorf("materializing %s: %w", node.Path, err)
		}
	}
	return nil
}

// MaterializeYAML parses and materializes in one step.
func MaterializeYAML(root string, data []byte) error {
	schema, err := Parse(data)
	if err != nil {
		return err
	}
	return Materialize(root, schema)
}

func materializeNode(root string, node Node) error {
	path := filepath.Join(root, filepath.FromSlash(node.Path))

	switch node.Kind {
	case KindDir:
		if err := os.MkdirAll(path, 0o755); err != nil {
			return errors.Errorf("creating directory: %w", err)
		}
		return nil

	case KindFile:
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return errors.Errorf("creating parent directory: %w", err)
		}
		return os.WriteFile(path, fileContent(node), 0o644)

	case KindSymlink, KindBrokenSymlink:
		if node.Target == "" {
			return errors.New("symlink entry needs a target")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return errors.Errorf("creating parent directory: %w", err)
		}
		kind := fsutil.SymlinkToFile
		if node.DirTarget {
			kind = fsutil.SymlinkToDirectory
		}
		return fsutil.CreateSymlink(node.Target, path, kind)

	default:
		return errors.Errorf("unknown entry kind %q", node.Kind)
	}
}

func fileContent(node Node) []byte {
	if node.Content != "" || node.Size == 0 {
		return []byte(node.Content)
	}
	buf := make([]byte, node.Size)
	rng := rand.New(rand.NewSource(node.Seed))
	rng.Read(buf)
	return buf
}
