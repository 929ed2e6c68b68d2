// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"
)

// render prints a backend payload: raw JSON with --json, otherwise a table
// for lists of records, a key/value table for a single record, and the bare
// value for scalars.
func render(w io.Writer, title string, payload any) error {
	if jsonOutput {
		b, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}

	switch v := payload.(type) {
	case nil:
		fmt.Fprintln(w, pterm.FgGray.Sprint("(no data)"))
		return nil
	case []any:
		if len(v) == 0 {
			fmt.Fprintln(w, pterm.FgGray.Sprint("(no "+title+")"))
			return nil
		}
		data, ok := recordTable(v)
		if !ok {
			return renderJSONBox(w, title, payload)
		}
		s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, s)
		return nil
	case map[string]any:
		s, err := pterm.DefaultTable.WithData(keyValueTable(v)).Srender()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, pterm.DefaultBox.WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(title)).Sprint(s))
		return nil
	default:
		fmt.Fprintln(w, formatCell(v))
		return nil
	}
}

func renderJSONBox(w io.Writer, title string, payload any) error {
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, pterm.DefaultBox.WithTitle(title).WithPadding(1).Sprint(string(b)))
	return nil
}

// recordTable lays out a list of records with the union of their keys as
// header. ok is false when an element is not a record.
func recordTable(rows []any) (pterm.TableData, bool) {
	seen := map[string]bool{}
	var cols []string
	for _, r := range rows {
		m, ok := r.(map[string]any)
		if !ok {
			return nil, false
		}
		for k := range m {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sortColumns(cols)

	data := pterm.TableData{cols}
	for _, r := range rows {
		m := r.(map[string]any)
		line := make([]string, len(cols))
		for i, c := range cols {
			if v, ok := m[c]; ok {
				line[i] = formatCell(v)
			}
		}
		data = append(data, line)
	}
	return data, true
}

func keyValueTable(m map[string]any) pterm.TableData {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortColumns(keys)
	data := make(pterm.TableData, 0, len(keys))
	for _, k := range keys {
		data = append(data, []string{k, formatCell(m[k])})
	}
	return data
}

// sortColumns orders id-like columns first, the rest alphabetically.
func sortColumns(cols []string) {
	rank := func(c string) int {
		switch {
		case c == "id":
			return 0
		case strings.HasSuffix(c, "_id"):
			return 1
		default:
			return 2
		}
	}
	sort.Slice(cols, func(i, j int) bool {
		ri, rj := rank(cols[i]), rank(cols[j])
		if ri != rj {
			return ri < rj
		}
		return cols[i] < cols[j]
	})
}

// formatCell renders one value for a table cell.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return decimal.NewFromFloat(x).String()
	case decimal.Decimal:
		return x.String()
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}
