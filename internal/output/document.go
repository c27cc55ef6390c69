// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v2"
)

// Document renders a single JSON document, such as cache statistics or a
// task status, that is not a list of rows. Text output is a two column
// key/value table of the flattened document.
func Document(raw []byte, opts Options, w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}

	switch opts.Format {
	case FormatRaw:
		_, err := w.Write(raw)
		return err
	case FormatJSON:
		_, err := fmt.Fprintln(w, string(raw))
		return err
	case FormatYAML:
		var v interface{}
		if err := yaml.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("failed to decode document: %w", err)
		}
		b, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		_, err = w.Write(b)
		return err
	}

	pairs := Flatten(gjson.ParseBytes(raw))
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, pairs[k]})
	}
	writeTable(w, []string{"key", "value"}, rows, opts)
	return nil
}

// Value renders any Go value the same way Document renders JSON.
func Value(v any, opts Options, w io.Writer) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return Document(b, opts, w)
}

// Flatten maps every scalar leaf of doc to its dotted path. Arrays use their
// index as a path segment and empty containers are kept as "[]" or "{}".
func Flatten(doc gjson.Result) map[string]string {
	out := map[string]string{}
	flatten("", doc, out)
	return out
}

func flatten(prefix string, r gjson.Result, out map[string]string) {
	join := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "." + k
	}

	switch {
	case r.IsObject():
		n := 0
		r.ForEach(func(k, v gjson.Result) bool {
			flatten(join(k.String()), v, out)
			n++
			return true
		})
		if n == 0 && prefix != "" {
			out[prefix] = "{}"
		}
	case r.IsArray():
		arr := r.Array()
		for i, v := range arr {
			flatten(join(fmt.Sprint(i)), v, out)
		}
		if len(arr) == 0 && prefix != "" {
			out[prefix] = "[]"
		}
	default:
		if prefix == "" {
			prefix = "value"
		}
		if r.Type == gjson.Null {
			out[prefix] = "-"
			return
		}
		out[prefix] = r.String()
	}
}
