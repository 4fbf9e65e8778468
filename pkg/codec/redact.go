package codec

import (
	"fmt"
	"regexp"

	"github.com/aretw0/sessionlock/pkg/domain"
)

// Mask replaces redacted values.
const Mask = "***"

// DefaultRedactPatterns match the item keys that commonly hold secrets.
var DefaultRedactPatterns = []string{`(?i)pass(word)?`, `(?i)secret`, `(?i)token`, `(?i)card`}

// Redactor masks payload values whose keys match any of its patterns.
type Redactor struct {
	patterns []*regexp.Regexp
}

// NewRedactor compiles patterns. An empty list yields a Redactor that masks nothing.
func NewRedactor(patterns []string) (*Redactor, error) {
	r := &Redactor{patterns: make([]*regexp.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redact pattern %q: %w", p, err)
		}
		r.patterns = append(r.patterns, re)
	}
	return r, nil
}

// Redact returns a masked copy of items as a plain map. items is not modified.
func (r *Redactor) Redact(items *domain.Items) map[string]any {
	if items == nil {
		return nil
	}
	out := make(map[string]any, items.Len())
	items.Each(func(k string, v any) {
		out[k] = r.value(k, v)
	})
	return out
}

func (r *Redactor) value(key string, v any) any {
	if r.matches(key) {
		return Mask
	}
	// Recurse into nested maps
	if sub, ok := v.(map[string]any); ok {
		out := make(map[string]any, len(sub))
		for k, sv := range sub {
			out[k] = r.value(k, sv)
		}
		return out
	}
	return v
}

func (r *Redactor) matches(key string) bool {
	for _, p := range r.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
