// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/clinicctl/internal/attrs"
)

// Op is a filter comparison.
type Op byte

const (
	OpEqual    Op = '='
	OpFold     Op = '~'
	OpPrefix   Op = '^'
	OpLess     Op = '<'
	OpGreater  Op = '>'
	OpContains Op = '@'
	OpRegex    Op = '/'
)

// DelimEnv overrides the "," between filter expressions.
const DelimEnv = "CLINICCTL_FILTER_DELIM"

// Filter is one compiled --filter expression such as "years>10" or
// "dept!=Heart".
type Filter struct {
	Key    string
	Op     Op
	Negate bool
	Target string

	re *regexp.Regexp
}

// Parse compiles a single expression. The key is everything before the first
// operator, the target everything after it.
func Parse(expr string) (Filter, error) {
	i := strings.IndexAny(expr, "=~^<>@/")
	if i < 0 {
		return Filter{}, fmt.Errorf("invalid filter %q: no operator", expr)
	}

	f := Filter{Key: expr[:i], Op: Op(expr[i]), Target: expr[i+1:]}
	if strings.HasSuffix(f.Key, "!") {
		f.Key = strings.TrimSuffix(f.Key, "!")
		f.Negate = true
	}
	if f.Key == "" {
		return Filter{}, fmt.Errorf("invalid filter %q: missing key", expr)
	}

	if f.Op == OpRegex {
		re, err := regexp.Compile(f.Target)
		if err != nil {
			return Filter{}, fmt.Errorf("invalid filter %q: %w", expr, err)
		}
		f.re = re
	}

	return f, nil
}

// BuildFilters splits spec on the delimiter and parses each expression.
func BuildFilters(spec string) ([]Filter, error) {
	if spec == "" {
		return nil, nil
	}

	delim := ","
	if d, ok := os.LookupEnv(DelimEnv); ok && d != "" {
		delim = d
	}

	exprs := strings.Split(spec, delim)
	out := make([]Filter, 0, len(exprs))
	for _, expr := range exprs {
		f, err := Parse(expr)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func (f Filter) String() string {
	neg := ""
	if f.Negate {
		neg = "!"
	}
	return f.Key + neg + string(f.Op) + f.Target
}

// Match reports whether v passes the filter. A missing value never matches,
// negated or not.
func (f Filter) Match(v gjson.Result) bool {
	if !v.Exists() || v.Type == gjson.Null {
		return false
	}

	var hit bool
	switch {
	case v.IsArray() || v.IsObject():
		hit = f.matchCollection(v)
	case v.Type == gjson.Number:
		var ok bool
		if hit, ok = f.matchNumber(v.Float()); !ok {
			return false
		}
	default:
		// Strings and booleans compare on their text.
		hit = f.matchText(v.String())
	}
	return hit != f.Negate
}

func (f Filter) matchText(s string) bool {
	switch f.Op {
	case OpEqual:
		return s == f.Target
	case OpFold:
		return strings.EqualFold(s, f.Target)
	case OpPrefix:
		return strings.HasPrefix(s, f.Target)
	case OpLess:
		return s < f.Target
	case OpGreater:
		return s > f.Target
	case OpContains:
		return strings.Contains(s, f.Target)
	case OpRegex:
		return f.re != nil && f.re.MatchString(s)
	}
	return false
}

// matchNumber compares numerically. ok is false when the target is not a
// number or the operator has no numeric meaning.
func (f Filter) matchNumber(n float64) (hit, ok bool) {
	tgt, err := strconv.ParseFloat(strings.TrimSpace(f.Target), 64)
	if err != nil {
		log.Warnf("filter %s: target is not a number", f)
		return false, false
	}

	switch f.Op {
	case OpEqual:
		return n == tgt, true
	case OpLess:
		return n < tgt, true
	case OpGreater:
		return n > tgt, true
	}
	log.Warnf("filter %s: operator does not apply to numbers", f)
	return false, false
}

// matchCollection only understands @: array membership or object key.
func (f Filter) matchCollection(v gjson.Result) bool {
	if f.Op != OpContains {
		return false
	}
	if v.IsObject() {
		return v.Get(gjson.Escape(f.Target)).Exists()
	}
	for _, item := range v.Array() {
		if item.String() == f.Target {
			return true
		}
	}
	return false
}

// bound pairs a filter with the row path its key resolves to.
type bound struct {
	Filter
	path string
}

// bind resolves filter keys against the output keys of al. Keys naming no
// attr are dropped with a warning.
func bind(fs []Filter, al attrs.AttrList) []bound {
	paths := make(map[string]string, len(al))
	for _, a := range al {
		paths[a.OutputKey] = a.Key
	}

	out := make([]bound, 0, len(fs))
	for _, f := range fs {
		p, ok := paths[f.Key]
		if !ok {
			log.Warnf("filter key not found: %s", f.Key)
			continue
		}
		out = append(out, bound{Filter: f, path: p})
	}
	return out
}

// FilterDataset keeps the rows of candidates (a JSON array) that pass every
// filter in spec and projects each onto al, keyed by OutputKey. Transforms are
// left for output time.
func FilterDataset(candidates gjson.Result, al attrs.AttrList, spec string) ([]map[string]interface{}, error) {
	fs, err := BuildFilters(spec)
	if err != nil {
		return nil, err
	}
	checks := bind(fs, al)

	var rows []map[string]interface{}
	candidates.ForEach(func(_, row gjson.Result) bool {
		for _, c := range checks {
			if !c.Match(row.Get(c.path)) {
				return true
			}
		}

		projected := make(map[string]interface{}, len(al))
		for _, a := range al {
			if a.Key != "*" {
				projected[a.OutputKey] = row.Get(a.Key).Value()
			}
		}
		rows = append(rows, projected)
		return true
	})

	return rows, nil
}
