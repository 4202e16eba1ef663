package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/patchlens/internal/highlight"
	"github.com/zjrosen/patchlens/internal/log"
)

// SaveStyle writes spec for style into the config file at configPath.
// Other settings, comments and formatting are preserved by editing the
// yaml.Node tree. A missing file is created.
func SaveStyle(configPath string, style highlight.StyleID, spec highlight.Spec) error {
	if _, err := highlight.ParseStyleID(string(style)); err != nil {
		return err
	}
	if spec.Background != "" && !ValidColor(spec.Background) {
		return fmt.Errorf("invalid background color %q (use #RGB or #RRGGBB)", spec.Background)
	}
	if spec.Foreground != "" && !ValidColor(spec.Foreground) {
		return fmt.Errorf("invalid foreground color %q (use #RGB or #RRGGBB)", spec.Foreground)
	}

	doc, err := readDocument(configPath)
	if err != nil {
		return err
	}

	root := rootMapping(doc)
	styleNode := childMapping(childMapping(root, "styles"), string(style))
	setScalar(styleNode, "background", spec.Background, "")
	if spec.Foreground != "" {
		setScalar(styleNode, "foreground", spec.Foreground, "")
	} else {
		removeKey(styleNode, "foreground")
	}
	setScalar(styleNode, "rounded", strconv.FormatBool(spec.Rounded), "!!bool")

	if err := writeDocument(configPath, doc); err != nil {
		return err
	}
	log.Info(log.CatConfig, "Saved style", "path", configPath, "style", style, "background", spec.Background)
	return nil
}

func readDocument(configPath string) (*yaml.Node, error) {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode}
	}
	return &doc, nil
}

// rootMapping returns the top-level mapping, creating it if needed.
func rootMapping(doc *yaml.Node) *yaml.Node {
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		doc.Content = []*yaml.Node{{Kind: yaml.MappingNode}}
	}
	return doc.Content[0]
}

// childMapping returns the mapping stored under key, replacing any
// non-mapping value.
func childMapping(parent *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(parent.Content); i += 2 {
		if parent.Content[i].Value == key {
			if parent.Content[i+1].Kind != yaml.MappingNode {
				parent.Content[i+1] = &yaml.Node{Kind: yaml.MappingNode}
			}
			return parent.Content[i+1]
		}
	}
	child := &yaml.Node{Kind: yaml.MappingNode}
	parent.Content = append(parent.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		child,
	)
	return child
}

// setScalar sets key to value in place so comments and quoting attached to
// the value node survive.
func setScalar(parent *yaml.Node, key, value, tag string) {
	for i := 0; i+1 < len(parent.Content); i += 2 {
		if parent.Content[i].Value == key {
			n := parent.Content[i+1]
			n.Kind = yaml.ScalarNode
			n.Value = value
			n.Tag = tag
			n.Content = nil
			return
		}
	}
	parent.Content = append(parent.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Value: value, Tag: tag},
	)
}

func removeKey(parent *yaml.Node, key string) {
	for i := 0; i+1 < len(parent.Content); i += 2 {
		if parent.Content[i].Value == key {
			parent.Content = append(parent.Content[:i], parent.Content[i+2:]...)
			return
		}
	}
}

// writeDocument encodes doc and replaces configPath atomically.
func writeDocument(configPath string, doc *yaml.Node) error {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".patchlens.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(buf.Bytes()); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, configPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
