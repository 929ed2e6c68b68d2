// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// settingsTable locates the singleton settings document.
type settingsTable struct {
	collection     string
	idColumn       string
	documentColumn string
}

var defaultSettingsTable = settingsTable{
	collection:     "app_settings",
	idColumn:       "id",
	documentColumn: "settings",
}

// SettingsDocument is the single settings row: its identifier plus the
// mapping from section name (e.g. "payment") to that section's object.
type SettingsDocument struct {
	ID       any
	Sections map[string]any
}

// Section returns the named section, or nil when it is absent.
func (d *SettingsDocument) Section(name string) any {
	if d == nil {
		return nil
	}
	return d.Sections[name]
}

// Settings fetches the singleton settings document. A missing row is reported
// as a *RemoteCallError wrapping ErrNoRows.
func (g *Gateway) Settings(ctx context.Context) (*SettingsDocument, error) {
	ctx, reqID := ensureRequestID(ctx)
	op := "select " + g.settings.collection

	doc, err := g.readSettings(ctx)
	if err != nil {
		g.log.Error("settings read failed",
			zap.String("op", op),
			zap.String("request_id", reqID),
			zap.Error(err))
		return nil, &RemoteCallError{Op: op, Err: err}
	}
	return doc, nil
}

// SettingsSection fetches the settings document and returns one section of it.
func (g *Gateway) SettingsSection(ctx context.Context, section string) (any, error) {
	doc, err := g.Settings(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Section(section), nil
}

// UpdateSettingsSection replaces one section of the settings document and writes
// the whole document back under its own identifier. Every other section is
// preserved; the written section is replaced wholesale, not merged.
//
// The document is read right before the write with no concurrency token, so two
// concurrent writers race and the last write wins.
func (g *Gateway) UpdateSettingsSection(ctx context.Context, section string, value any) (bool, error) {
	ctx, reqID := ensureRequestID(ctx)
	op := fmt.Sprintf("update %s.%s", g.settings.collection, section)

	doc, err := g.readSettings(ctx)
	if err != nil {
		g.log.Error("settings read before update failed",
			zap.String("op", op),
			zap.String("request_id", reqID),
			zap.Error(err))
		return false, &RemoteCallError{Op: op, Err: err}
	}

	merged := make(map[string]any, len(doc.Sections)+1)
	for k, v := range doc.Sections {
		merged[k] = v
	}
	merged[section] = value

	values := merged
	if g.settings.documentColumn != "" {
		values = map[string]any{g.settings.documentColumn: merged}
	}

	if err := g.backend.Update(ctx, g.settings.collection, g.settings.idColumn, doc.ID, values); err != nil {
		g.log.Error("settings write failed",
			zap.String("op", op),
			zap.String("request_id", reqID),
			zap.Any("id", doc.ID),
			zap.Error(err))
		return false, &RemoteCallError{Op: op, Err: err}
	}
	return true, nil
}

func (g *Gateway) readSettings(ctx context.Context) (*SettingsDocument, error) {
	row, err := g.backend.SelectSingle(ctx, g.settings.collection)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrNoRows
	}
	return g.settings.decode(row)
}

// decode splits a settings row into identifier and sections.
func (t settingsTable) decode(row map[string]any) (*SettingsDocument, error) {
	id, ok := row[t.idColumn]
	if !ok || id == nil {
		return nil, fmt.Errorf("settings row has no %q value", t.idColumn)
	}

	if t.documentColumn == "" {
		sections := make(map[string]any, len(row))
		for k, v := range row {
			if k != t.idColumn {
				sections[k] = v
			}
		}
		return &SettingsDocument{ID: id, Sections: sections}, nil
	}

	sections, err := sectionMap(row[t.documentColumn])
	if err != nil {
		return nil, fmt.Errorf("settings column %q: %w", t.documentColumn, err)
	}
	return &SettingsDocument{ID: id, Sections: sections}, nil
}

// sectionMap accepts the shapes a JSON column arrives in across transports.
func sectionMap(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	case string:
		return unmarshalSections([]byte(v))
	case []byte:
		return unmarshalSections(v)
	default:
		return nil, fmt.Errorf("unexpected type %T", raw)
	}
}

func unmarshalSections(b []byte) (map[string]any, error) {
	out := map[string]any{}
	if len(b) == 0 {
		return out, nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}
