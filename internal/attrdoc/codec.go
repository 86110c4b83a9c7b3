// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package attrdoc

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/samber/oops"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Codec encodes and decodes documents and cache entries.
type Codec interface {
	// Marshal serializes v into bytes.
	Marshal(v any) ([]byte, error)
	// Unmarshal deserializes data into v (must be a pointer).
	Unmarshal(data []byte, v any) error
	// Name returns the codec identifier used in config and diagnostics.
	Name() string
}

// JSON encodes indented JSON.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, oops.Code("CODEC_ENCODE").With("codec", "json").Wrap(err)
	}
	return append(data, '\n'), nil
}

func (JSON) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return oops.Code("CODEC_DECODE").With("codec", "json").Wrap(err)
	}
	return nil
}

func (JSON) Name() string { return "json" }

// YAML encodes YAML 1.2 via yaml.v3.
type YAML struct{}

func (YAML) Marshal(v any) ([]byte, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, oops.Code("CODEC_ENCODE").With("codec", "yaml").Wrap(err)
	}
	return data, nil
}

func (YAML) Unmarshal(data []byte, v any) error {
	if err := yaml.Unmarshal(data, v); err != nil {
		return oops.Code("CODEC_DECODE").With("codec", "yaml").Wrap(err)
	}
	return nil
}

func (YAML) Name() string { return "yaml" }

// MsgPack is a compact binary codec using MessagePack encoding.
type MsgPack struct{}

func (MsgPack) Marshal(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, oops.Code("CODEC_ENCODE").With("codec", "msgpack").Wrap(err)
	}
	return data, nil
}

func (MsgPack) Unmarshal(data []byte, v any) error {
	if err := msgpack.Unmarshal(data, v); err != nil {
		return oops.Code("CODEC_DECODE").With("codec", "msgpack").Wrap(err)
	}
	return nil
}

func (MsgPack) Name() string { return "msgpack" }

// Brotli compresses the output of Inner.
type Brotli struct {
	Inner Codec
	// Level is the brotli quality, 0-11. Zero means brotli.DefaultCompression.
	Level int
}

func (b Brotli) Marshal(v any) ([]byte, error) {
	raw, err := b.Inner.Marshal(v)
	if err != nil {
		return nil, err
	}
	level := b.Level
	if level == 0 {
		level = brotli.DefaultCompression
	}
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, level)
	if _, err := w.Write(raw); err != nil {
		return nil, oops.Code("CODEC_ENCODE").With("codec", b.Name()).Wrap(err)
	}
	if err := w.Close(); err != nil {
		return nil, oops.Code("CODEC_ENCODE").With("codec", b.Name()).Wrap(err)
	}
	return buf.Bytes(), nil
}

func (b Brotli) Unmarshal(data []byte, v any) error {
	raw, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
	if err != nil {
		return oops.Code("CODEC_DECODE").With("codec", b.Name()).Wrap(err)
	}
	return b.Inner.Unmarshal(raw, v)
}

func (b Brotli) Name() string { return b.Inner.Name() + "+br" }

// Default is the codec used when none is configured.
var Default Codec = YAML{}

// ByName returns the codec called name: json, yaml or msgpack, each
// optionally suffixed with "+br" for brotli compression.
func ByName(name string) (Codec, error) {
	base, compressed := strings.CutSuffix(strings.ToLower(strings.TrimSpace(name)), "+br")
	var c Codec
	switch base {
	case "json":
		c = JSON{}
	case "yaml", "yml":
		c = YAML{}
	case "msgpack":
		c = MsgPack{}
	default:
		return nil, oops.Code("CODEC_UNKNOWN").With("codec", name).
			Hint("use json, yaml or msgpack, optionally with +br").
			Errorf("unknown codec %q", name)
	}
	if compressed {
		c = Brotli{Inner: c}
	}
	return c, nil
}

// ByExtension picks a codec from a file name: .json, .yaml/.yml, .msgpack/.mp,
// each optionally followed by .br.
func ByExtension(path string) (Codec, error) {
	lower := strings.ToLower(path)
	lower, compressed := strings.CutSuffix(lower, ".br")
	var name string
	switch {
	case strings.HasSuffix(lower, ".json"):
		name = "json"
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		name = "yaml"
	case strings.HasSuffix(lower, ".msgpack"), strings.HasSuffix(lower, ".mp"):
		name = "msgpack"
	default:
		return nil, oops.Code("CODEC_UNKNOWN").With("path", path).
			Errorf("cannot infer codec from file extension")
	}
	if compressed {
		name += "+br"
	}
	return ByName(name)
}
