// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package attribute

import (
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/yumeengine/attrcore/pkg/variant"
)

// Spec is the configuration form of a Definition. Default is the text form
// of the default value.
type Spec struct {
	Name        string `yaml:"name" json:"name" koanf:"name"`
	Type        string `yaml:"type" json:"type" koanf:"type"`
	Default     string `yaml:"default,omitempty" json:"default,omitempty" koanf:"default"`
	Description string `yaml:"description,omitempty" json:"description,omitempty" koanf:"description"`
}

// Definition converts s, rejecting unknown type names.
func (s Spec) Definition() (Definition, error) {
	t := variant.TypeFromName(s.Type)
	if t == variant.TypeNone {
		return Definition{}, oops.Code("ATTR_INVALID_TYPE").
			With("attribute", s.Name).
			With("type", s.Type).
			Errorf("unknown attribute type %q", s.Type)
	}
	def := Definition{Name: s.Name, Type: t, Description: s.Description}
	if s.Default != "" {
		def.Default = variant.ParseType(t, s.Default)
	}
	return def, nil
}

// RegisterSpecs registers every spec, stopping at the first failure.
func (r *Registry) RegisterSpecs(specs []Spec) error {
	for _, s := range specs {
		def, err := s.Definition()
		if err != nil {
			return err
		}
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// LoadYAML registers the specs of a YAML list.
func (r *Registry) LoadYAML(data []byte) error {
	var specs []Spec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return oops.Code("ATTR_SPEC_INVALID").Wrap(err)
	}
	return r.RegisterSpecs(specs)
}
