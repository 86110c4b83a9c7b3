// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package attrdoc

import (
	"maps"
	"slices"

	"github.com/Masterminds/semver/v3"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/yumeengine/attrcore/pkg/variant"
)

// FormatVersion is the document format written by this package.
const FormatVersion = "1.1.0"

// SupportedFormats is the semver constraint a document's format must meet.
const SupportedFormats = ">= 1.0.0, < 2.0.0"

var supported = semver.MustParse(FormatVersion)

// Document is a named set of attributes belonging to one entity.
type Document struct {
	Format     string          `json:"format" yaml:"format" msgpack:"format" jsonschema:"description=Document format version (semver)"`
	Entity     string          `json:"entity,omitempty" yaml:"entity,omitempty" msgpack:"entity,omitempty" jsonschema:"description=Owning entity ULID"`
	Attributes map[string]Node `json:"attributes" yaml:"attributes" msgpack:"attributes"`
}

// NewDocument builds a document for entity from attribute variants.
// A zero entity is omitted.
func NewDocument(entity ulid.ULID, attrs map[string]variant.Variant) Document {
	doc := Document{Format: FormatVersion, Attributes: make(map[string]Node, len(attrs))}
	if entity != (ulid.ULID{}) {
		doc.Entity = entity.String()
	}
	for name, v := range attrs {
		doc.Attributes[name] = Encode(v)
	}
	return doc
}

// CheckFormat verifies that version satisfies SupportedFormats.
func CheckFormat(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return oops.Code("DOC_FORMAT_INVALID").With("format", version).
			Hint("format must be a semantic version such as " + FormatVersion).Wrap(err)
	}
	c, err := semver.NewConstraint(SupportedFormats)
	if err != nil {
		return oops.Code("DOC_FORMAT_INVALID").Wrap(err)
	}
	if !c.Check(v) {
		return oops.Code("DOC_FORMAT_UNSUPPORTED").
			With("format", version).
			With("supported", SupportedFormats).
			Errorf("document format %s is not supported by %s", version, supported)
	}
	return nil
}

// Validate checks the format version and the entity id.
func (d Document) Validate() error {
	if err := CheckFormat(d.Format); err != nil {
		return err
	}
	if d.Entity != "" {
		if _, err := ulid.ParseStrict(d.Entity); err != nil {
			return oops.Code("DOC_ENTITY_INVALID").With("entity", d.Entity).Wrap(err)
		}
	}
	return nil
}

// EntityID returns the parsed entity id, or the zero ULID when absent.
func (d Document) EntityID() (ulid.ULID, error) {
	if d.Entity == "" {
		return ulid.ULID{}, nil
	}
	id, err := ulid.ParseStrict(d.Entity)
	if err != nil {
		return ulid.ULID{}, oops.Code("DOC_ENTITY_INVALID").With("entity", d.Entity).Wrap(err)
	}
	return id, nil
}

// Variants decodes every attribute.
func (d Document) Variants() (map[string]variant.Variant, error) {
	out := make(map[string]variant.Variant, len(d.Attributes))
	for _, name := range d.Names() {
		v, err := decode(d.Attributes[name], name)
		if err != nil {
			return nil, oops.With("attribute", name).Wrap(err)
		}
		out[name] = v
	}
	return out, nil
}

// Names returns the attribute names in sorted order.
func (d Document) Names() []string {
	return slices.Sorted(maps.Keys(d.Attributes))
}

// Marshal validates doc and encodes it with c.
func Marshal(c Codec, doc Document) ([]byte, error) {
	if doc.Format == "" {
		doc.Format = FormatVersion
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return c.Marshal(doc)
}

// Unmarshal decodes a document with c and validates it.
func Unmarshal(c Codec, data []byte) (Document, error) {
	var doc Document
	if err := c.Unmarshal(data, &doc); err != nil {
		return Document{}, err
	}
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}
