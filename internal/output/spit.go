// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v2"

	"github.com/staranto/clinicctl/internal/attrs"
	"github.com/staranto/clinicctl/internal/filters"
)

// Row is one projected record keyed by attr OutputKey.
type Row = map[string]interface{}

// SliceDiceSpit filters, transforms, sorts and renders the rows found at
// parent (a gjson path, or the whole document when empty) of raw.
func SliceDiceSpit(raw []byte, al attrs.AttrList, cmd *cli.Command, parent string, w io.Writer) error {
	return Render(raw, al, parent, OptionsFrom(cmd), w)
}

// Render is SliceDiceSpit with explicit options.
func Render(raw []byte, al attrs.AttrList, parent string, opts Options, w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}
	if opts.Format == FormatRaw {
		_, err := w.Write(raw)
		return err
	}

	rows, err := prepare(listAt(raw, parent), al, opts)
	if err != nil {
		return err
	}

	switch opts.Format {
	case FormatJSON:
		if rows == nil {
			rows = []Row{}
		}
		b, err := json.Marshal(rows)
		if err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	case FormatYAML:
		b, err := yaml.Marshal(rows)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		_, err = w.Write(b)
		return err
	}

	TableWriter(rows, al, opts, w)
	return nil
}

// listAt returns the array at parent. A single object, such as a doctor
// detail, becomes a one row list.
func listAt(raw []byte, parent string) gjson.Result {
	doc := gjson.ParseBytes(raw)
	if parent != "" {
		doc = doc.Get(parent)
	}
	if doc.IsArray() {
		return doc
	}
	log.Debugf("payload at %q is not a list, wrapping it", parent)
	return gjson.Parse("[" + doc.Raw + "]")
}

// prepare runs the row pipeline: filter and project, transform, sort, then
// drop the attrs that only served filtering and sorting.
func prepare(list gjson.Result, al attrs.AttrList, opts Options) ([]Row, error) {
	rows, err := filters.FilterDataset(list, al, opts.Filter)
	if err != nil {
		return nil, err
	}

	if opts.Local {
		for i := range al {
			al[i].TransformSpec += "t"
		}
	}

	var hidden []string
	for _, a := range al {
		if !a.Include {
			hidden = append(hidden, a.OutputKey)
		}
	}

	for _, row := range rows {
		for i := range al {
			if al[i].TransformSpec != "" {
				row[al[i].OutputKey] = al[i].Transform(row[al[i].OutputKey])
			}
		}
	}

	SortDataset(rows, opts.Sort)

	for _, row := range rows {
		for _, k := range hidden {
			delete(row, k)
		}
	}
	return rows, nil
}

// InterfaceToString renders a cell. Zero values become emptyValue, "" unless
// given.
func InterfaceToString(value interface{}, emptyValue ...string) string {
	empty := ""
	if len(emptyValue) > 0 {
		empty = emptyValue[0]
	}
	if value == nil || reflect.ValueOf(value).IsZero() {
		return empty
	}

	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case float64:
		// Ids and counts only, so render as an integer.
		return strconv.FormatFloat(v, 'f', 0, 64)
	}

	if b, err := json.Marshal(value); err == nil {
		return string(b)
	}
	return fmt.Sprint(value)
}
