// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package attrs parses the --attrs flag into the list of row fields a query
// command extracts, renames and transforms for output.
package attrs

import (
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"

	"github.com/staranto/clinicctl/internal/config"
)

var lengthRegex = regexp.MustCompile(`-?\d+`)

// Attr is one field to extract from each row of a JSON payload.
type Attr struct {
	// Key is the gjson path of the value within a row.
	Key string `yaml:"key"`
	// Include is false for attrs that only serve filtering and sorting.
	Include bool `yaml:"include"`
	// OutputKey names the value in output and is the column title for text.
	OutputKey string `yaml:"outputKey"`
	// TransformSpec is applied to string values at output time.
	TransformSpec string `yaml:"transformSpec"`
}

// timezone returns the zone used by the t transform: the config file's
// timezone key first, then TZ.
func timezone() string {
	if tz, err := config.GetString("timezone", ""); err == nil && tz != "" {
		return tz
	}
	return os.Getenv("TZ")
}

// Transform applies the attr's TransformSpec to value. Only strings are
// transformed; everything else passes through.
func (a *Attr) Transform(value interface{}) interface{} {
	s, ok := value.(string)
	if !ok || a.TransformSpec == "" {
		return value
	}

	spec := a.TransformSpec
	if strings.ContainsAny(spec, "tT") {
		s = localTime(s)
	}
	s = applyCase(s, spec)
	if n, ok := lastLength(spec); ok {
		s = truncate(s, n)
	}
	return s
}

// localTime renders an RFC3339 timestamp in the configured zone. Without a
// zone, or for anything that is not a timestamp, s is returned as is.
func localTime(s string) string {
	tz := timezone()
	if tz == "" {
		return s
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Debugf("unknown timezone %q: %v", tz, err)
		return s
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		log.Debugf("not a timestamp: %s", s)
		return s
	}
	return ts.In(loc).Format("2006-01-02T15:04:05MST")
}

// applyCase honors the last case letter in spec, so a per-attr case beats a
// global one prepended to it, e.g. --attrs '*::U,name::l'.
func applyCase(s, spec string) string {
	lower := strings.LastIndexAny(spec, "lL")
	upper := strings.LastIndexAny(spec, "uU")
	switch {
	case lower > upper:
		return strings.ToLower(s)
	case upper > lower:
		return strings.ToUpper(s)
	}
	return s
}

// lastLength returns the last integer in spec. Same last-wins rule as case.
func lastLength(spec string) (int, bool) {
	nums := lengthRegex.FindAllString(spec, -1)
	if len(nums) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(nums[len(nums)-1])
	return n, err == nil
}

// truncate cuts s to n bytes. A negative n keeps both ends around "..".
func truncate(s string, n int) string {
	width := int(math.Abs(float64(n)))
	if len(s) <= width {
		return s
	}
	if n >= 0 {
		return s[:n]
	}
	keep := max(width/2-1, 0)
	return s[:keep] + ".." + s[len(s)-keep:]
}

type AttrList []Attr

// String returns the list in --attrs syntax.
func (a *AttrList) String() string {
	result := make([]string, 0, len(*a))
	for _, attr := range *a {
		result = append(result, fmt.Sprintf("%s:%s:%s", attr.Key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(result, ",")
}

// Set parses a comma separated --attrs value and merges it into the list.
//
// Each spec is key[:output[:transform]]. A leading ! keeps the attr for
// filtering and sorting only. A leading . is accepted and ignored, so ".id"
// and "id" are the same path. Specs naming an attr already in the list
// update it in place.
func (a *AttrList) Set(value string) error {
	if value == "" || value == "*" {
		return nil
	}

	for _, spec := range strings.Split(value, ",") {
		attr, err := parseSpec(spec)
		if err != nil {
			return fmt.Errorf("%w in %q", err, value)
		}
		a.merge(attr)
	}
	return nil
}

func parseSpec(spec string) (Attr, error) {
	key, rest, _ := strings.Cut(spec, ":")
	output, transform, _ := strings.Cut(rest, ":")

	attr := Attr{Include: true, TransformSpec: strings.TrimSpace(transform)}

	key = strings.TrimSpace(key)
	if k, ok := strings.CutPrefix(key, "!"); ok {
		attr.Include = false
		key = k
	}
	attr.Key = strings.TrimPrefix(key, ".")
	if attr.Key == "" {
		return Attr{}, errors.New("empty attribute")
	}
	if attr.Key == "*" {
		attr.Include = false
	}

	// A bare key is titled by its last path segment.
	attr.OutputKey = strings.TrimSpace(output)
	if attr.OutputKey == "" {
		attr.OutputKey = attr.Key[strings.LastIndex(attr.Key, ".")+1:]
	}
	return attr, nil
}

// merge updates the attr matching by key or output key, or appends.
func (a *AttrList) merge(attr Attr) {
	for i := range *a {
		cur := &(*a)[i]
		if cur.Key == attr.Key || cur.OutputKey == attr.Key {
			cur.Include = attr.Include
			cur.OutputKey = attr.OutputKey
			cur.TransformSpec = attr.TransformSpec
			return
		}
	}
	*a = append(*a, attr)
}

// SetGlobalTransformSpec prepends the transform of the "*" attr, if any, to
// every attr in the list.
func (alist *AttrList) SetGlobalTransformSpec() error {
	spec := ""
	for a := range *alist {
		if (*alist)[a].Key == "*" {
			spec = (*alist)[a].TransformSpec
			break
		}
	}

	if spec == "" {
		return nil
	}

	for a := range *alist {
		(*alist)[a].TransformSpec = spec + "," + (*alist)[a].TransformSpec
	}

	return nil
}

func (a *AttrList) Type() string {
	return "list"
}
