// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/yumeengine/attrcore/internal/attrdoc"
	"github.com/yumeengine/attrcore/pkg/variant"
)

// stdio names standard input or output in path arguments.
const stdio = "-"

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == stdio {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, oops.Code("INPUT_READ_FAILED").With("path", path).Wrap(err)
		}
		return data, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, oops.Code("INPUT_READ_FAILED").With("path", path).Wrap(err)
	}
	return data, nil
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == stdio {
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return oops.Code("OUTPUT_WRITE_FAILED").Wrap(err)
		}
		return nil
	}
	if err := os.WriteFile(filepath.Clean(path), data, 0o600); err != nil {
		return oops.Code("OUTPUT_WRITE_FAILED").With("path", path).Wrap(err)
	}
	return nil
}

// codecFor returns the codec called name, or the one implied by path when
// name is empty. Standard input falls back to fallback.
func codecFor(name, path string, fallback attrdoc.Codec) (attrdoc.Codec, error) {
	if name != "" {
		return attrdoc.ByName(name)
	}
	if path == stdio || path == "" {
		return fallback, nil
	}
	return attrdoc.ByExtension(path)
}

// readDocument loads an attribute document from path.
func (a *app) readDocument(cmd *cobra.Command, path, from string) (attrdoc.Document, error) {
	codec, err := codecFor(from, path, a.cfg.Codec())
	if err != nil {
		return attrdoc.Document{}, err
	}
	data, err := readInput(cmd, path)
	if err != nil {
		return attrdoc.Document{}, err
	}
	doc, err := attrdoc.Unmarshal(codec, data)
	if err != nil {
		return attrdoc.Document{}, oops.With("path", path).With("codec", codec.Name()).Wrap(err)
	}
	a.logger.Debug("document read", "path", path, "codec", codec.Name(), "attributes", len(doc.Attributes))
	return doc, nil
}

// toMap keys named attributes by their hash.
func toMap(attrs map[string]variant.Variant) variant.Map {
	m := make(variant.Map, len(attrs))
	for name, v := range attrs {
		m.Set(name, v)
	}
	return m
}

// fromMap names hashed attributes, using the hex form for unregistered hashes.
func fromMap(m variant.Map) map[string]variant.Variant {
	out := make(map[string]variant.Variant, len(m))
	for h, v := range m {
		out[attrdoc.KeyName(h)] = v
	}
	return out
}
