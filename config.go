/*
   Copyright 2024 Arborist Labs

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package behaviortree

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// NodeConfig is the declarative, serializable description of a single tree
// node, following utils.config_loader.NodeConfig of the Python original.
type NodeConfig struct {
	Name       string                 `json:"name" yaml:"name"`
	Type       string                 `json:"type" yaml:"type"`
	Properties map[string]any         `json:"properties,omitempty" yaml:"properties,omitempty"`
	Children   []NodeConfig           `json:"children,omitempty" yaml:"children,omitempty"`
}

// TreeConfig is the root of a loadable tree definition: a name plus the
// root NodeConfig.
type TreeConfig struct {
	Name string     `json:"name" yaml:"name"`
	Root NodeConfig `json:"root" yaml:"root"`
}

// ConfigValidationError reports a NodeConfig that the registry could not
// turn into a Node, identifying the offending node's path within the tree.
type ConfigValidationError struct {
	Path   string
	Reason string
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("behaviortree: invalid config at %q: %s", e.Path, e.Reason)
}

// NodeBuilder constructs a *Node from its config and already-built
// children. It is invoked bottom-up: children are built before their
// parent.
type NodeBuilder func(cfg NodeConfig, children []*Node) (*Node, error)

// Registry maps node-type names (as used in NodeConfig.Type) to the
// builder that constructs them, the Go analogue of ConfigLoader's
// introspection-based _collect_node_types.
type Registry struct {
	builders map[string]NodeBuilder
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]NodeBuilder)}
}

// Register associates typeName with builder. Registering the same
// typeName twice overwrites the previous builder.
func (r *Registry) Register(typeName string, builder NodeBuilder) {
	r.builders[typeName] = builder
}

// Has reports whether typeName has a registered builder.
func (r *Registry) Has(typeName string) bool {
	_, ok := r.builders[typeName]
	return ok
}

// Build recursively constructs a *Node tree from cfg, validating that every
// referenced type name is registered.
func (r *Registry) Build(cfg NodeConfig) (*Node, error) {
	return r.build(cfg, cfg.Name)
}

func (r *Registry) build(cfg NodeConfig, path string) (*Node, error) {
	builder, ok := r.builders[cfg.Type]
	if !ok {
		return nil, &ConfigValidationError{Path: path, Reason: fmt.Sprintf("unknown node type %q", cfg.Type)}
	}
	children := make([]*Node, 0, len(cfg.Children))
	for _, childCfg := range cfg.Children {
		childPath := path + "/" + childCfg.Name
		child, err := r.build(childCfg, childPath)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	node, err := builder(cfg, children)
	if err != nil {
		return nil, &ConfigValidationError{Path: path, Reason: err.Error()}
	}
	return node, nil
}

// ConfigFormat is the closed set of encodings LoadTreeConfigFile understands
// from a file extension, mirroring utils.config_loader.ConfigFormat. The
// Python original's third encoding (a Python module) has no direct Go
// analogue; ConfigProvider below is the idiomatic substitute.
type ConfigFormat int

const (
	FormatJSON ConfigFormat = iota
	FormatYAML
)

func detectFormat(path string) (ConfigFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("behaviortree: cannot detect config format from extension of %q", path)
	}
}

// LoadTreeConfigFile reads and parses a TreeConfig from path, detecting
// JSON vs YAML from its extension.
func LoadTreeConfigFile(path string) (TreeConfig, error) {
	format, err := detectFormat(path)
	if err != nil {
		return TreeConfig{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return TreeConfig{}, err
	}
	return ParseTreeConfig(data, format)
}

// ParseTreeConfig decodes data as either JSON or YAML into a TreeConfig.
func ParseTreeConfig(data []byte, format ConfigFormat) (TreeConfig, error) {
	var cfg TreeConfig
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &cfg)
	case FormatYAML:
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = fmt.Errorf("behaviortree: unknown config format %d", format)
	}
	return cfg, err
}

// ConfigProvider is a Go-native substitute for the Python original's
// "Python module" config encoding: instead of dynamically importing code,
// callers hand LoadFromProvider a plain function that builds and returns a
// TreeConfig, which LoadFromProvider then turns into a tree via Build.
type ConfigProvider func() (TreeConfig, error)

// LoadFromProvider invokes provider and builds the resulting tree using r.
func (r *Registry) LoadFromProvider(provider ConfigProvider) (*Node, error) {
	cfg, err := provider()
	if err != nil {
		return nil, err
	}
	return r.Build(cfg.Root)
}

// SaveTreeConfig writes cfg to path as JSON or YAML, per path's extension.
func SaveTreeConfig(path string, cfg TreeConfig) error {
	format, err := detectFormat(path)
	if err != nil {
		return err
	}
	var data []byte
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(cfg, "", "  ")
	case FormatYAML:
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// MergeConfig overlays override onto base: override's Type and any
// non-empty Properties entries win, and children are merged positionally
// by Name where present in both, otherwise appended. This is carried over
// from the original implementation's ConfigMerger, which has no
// counterpart in spec.md.
func MergeConfig(base, override NodeConfig) NodeConfig {
	merged := base
	if override.Type != "" {
		merged.Type = override.Type
	}
	if override.Name != "" {
		merged.Name = override.Name
	}
	if len(override.Properties) > 0 {
		props := make(map[string]any, len(base.Properties)+len(override.Properties))
		for k, v := range base.Properties {
			props[k] = v
		}
		for k, v := range override.Properties {
			props[k] = v
		}
		merged.Properties = props
	}
	merged.Children = mergeChildren(base.Children, override.Children)
	return merged
}

func mergeChildren(base, override []NodeConfig) []NodeConfig {
	byName := make(map[string]int, len(base))
	result := make([]NodeConfig, len(base))
	copy(result, base)
	for i, c := range base {
		byName[c.Name] = i
	}
	for _, oc := range override {
		if i, ok := byName[oc.Name]; ok {
			result[i] = MergeConfig(result[i], oc)
		} else {
			result = append(result, oc)
		}
	}
	return result
}
