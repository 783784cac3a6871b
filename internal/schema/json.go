package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// The pack schema is closed: unknown fields are rejected everywhere except
// PackMetadata, MediaConfig, GenericMediaTypeConfig, and ToolParameters,
// which collect unrecognized fields into an Extra sidecar instead. Those
// four types implement json.Unmarshaler by hand so a strict outer decoder
// does not reject their extras, while their known fields (and any nested
// closed structs) stay strictly decoded.

func strictUnmarshal(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// UnmarshalJSON decodes pack metadata, preserving unknown fields in Extra.
func (m *PackMetadata) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	out := PackMetadata{}
	for key, val := range raw {
		var err error
		switch key {
		case "domain":
			err = strictUnmarshal(val, &out.Domain)
		case "language":
			err = strictUnmarshal(val, &out.Language)
		case "tags":
			err = strictUnmarshal(val, &out.Tags)
		case "cost_estimate":
			err = strictUnmarshal(val, &out.CostEstimate)
		default:
			var extra any
			if err = json.Unmarshal(val, &extra); err == nil {
				if out.Extra == nil {
					out.Extra = make(map[string]any)
				}
				out.Extra[key] = extra
			}
		}
		if err != nil {
			return fmt.Errorf("metadata.%s: %w", key, err)
		}
	}

	*m = out
	return nil
}

// MarshalJSON re-merges Extra fields so parse/serialize round-trips.
func (m PackMetadata) MarshalJSON() ([]byte, error) {
	type packMetadata PackMetadata
	return marshalWithExtra(packMetadata(m), m.Extra)
}

// UnmarshalJSON decodes a media config, preserving unknown fields in Extra.
func (m *MediaConfig) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	out := MediaConfig{}
	for key, val := range raw {
		var err error
		switch key {
		case "enabled":
			err = strictUnmarshal(val, &out.Enabled)
		case "supported_types":
			err = strictUnmarshal(val, &out.SupportedTypes)
		case "image":
			err = strictUnmarshal(val, &out.Image)
		case "audio":
			err = strictUnmarshal(val, &out.Audio)
		case "video":
			err = strictUnmarshal(val, &out.Video)
		case "document":
			err = strictUnmarshal(val, &out.Document)
		case "examples":
			err = strictUnmarshal(val, &out.Examples)
		default:
			var extra any
			if err = json.Unmarshal(val, &extra); err == nil {
				if out.Extra == nil {
					out.Extra = make(map[string]any)
				}
				out.Extra[key] = extra
			}
		}
		if err != nil {
			return fmt.Errorf("media.%s: %w", key, err)
		}
	}

	*m = out
	return nil
}

// MarshalJSON re-merges Extra fields so parse/serialize round-trips.
func (m MediaConfig) MarshalJSON() ([]byte, error) {
	type mediaConfig MediaConfig
	return marshalWithExtra(mediaConfig(m), m.Extra)
}

// GenericType decodes the Extra entry for a custom media type, if present,
// into a GenericMediaTypeConfig.
func (m *MediaConfig) GenericType(name string) (*GenericMediaTypeConfig, bool) {
	if m == nil || m.Extra == nil {
		return nil, false
	}
	raw, ok := m.Extra[name]
	if !ok {
		return nil, false
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, false
	}
	var cfg GenericMediaTypeConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, false
	}
	return &cfg, true
}

// UnmarshalJSON decodes a generic media-type config, preserving unknown
// fields in Extra.
func (g *GenericMediaTypeConfig) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	out := GenericMediaTypeConfig{}
	for key, val := range raw {
		var err error
		switch key {
		case "max_size_mb":
			err = strictUnmarshal(val, &out.MaxSizeMB)
		case "allowed_formats":
			err = strictUnmarshal(val, &out.AllowedFormats)
		case "require_metadata":
			err = strictUnmarshal(val, &out.RequireMetadata)
		case "validation_params":
			err = strictUnmarshal(val, &out.ValidationParams)
		default:
			var extra any
			if err = json.Unmarshal(val, &extra); err == nil {
				if out.Extra == nil {
					out.Extra = make(map[string]any)
				}
				out.Extra[key] = extra
			}
		}
		if err != nil {
			return fmt.Errorf("media type config %s: %w", key, err)
		}
	}

	*g = out
	return nil
}

// MarshalJSON re-merges Extra fields so parse/serialize round-trips.
func (g GenericMediaTypeConfig) MarshalJSON() ([]byte, error) {
	type genericConfig GenericMediaTypeConfig
	return marshalWithExtra(genericConfig(g), g.Extra)
}

// UnmarshalJSON decodes tool parameters, preserving unknown JSON Schema
// keywords in Extra.
func (t *ToolParameters) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	out := ToolParameters{Type: "object"}
	for key, val := range raw {
		var err error
		switch key {
		case "type":
			err = strictUnmarshal(val, &out.Type)
		case "properties":
			err = strictUnmarshal(val, &out.Properties)
		case "required":
			err = strictUnmarshal(val, &out.Required)
		default:
			var extra any
			if err = json.Unmarshal(val, &extra); err == nil {
				if out.Extra == nil {
					out.Extra = make(map[string]any)
				}
				out.Extra[key] = extra
			}
		}
		if err != nil {
			return fmt.Errorf("parameters.%s: %w", key, err)
		}
	}

	*t = out
	return nil
}

// MarshalJSON re-merges Extra fields so parse/serialize round-trips.
func (t ToolParameters) MarshalJSON() ([]byte, error) {
	type toolParameters ToolParameters
	m := toolParameters(t)
	if m.Type == "" {
		m.Type = "object"
	}
	return marshalWithExtra(m, t.Extra)
}

func marshalWithExtra(known any, extra map[string]any) ([]byte, error) {
	b, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return b, nil
	}

	var merged map[string]any
	if err := json.Unmarshal(b, &merged); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}
