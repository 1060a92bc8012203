package vnpay

import (
	"net/url"
	"slices"
	"strings"
)

// Params is the set of gateway fields that gets signed or transmitted.
// Iteration order is always the ordinal byte order of the keys.
type Params struct {
	values map[string]string
}

type Entry struct {
	Key   string
	Value string
}

func NewParams() *Params {
	return &Params{values: make(map[string]string)}
}

func (p *Params) Set(key, value string) {
	p.values[key] = value
}

func (p *Params) Get(key string) (string, bool) {
	value, ok := p.values[key]
	return value, ok
}

// Value returns the field value or "" when the field is absent.
func (p *Params) Value(key string) string {
	return p.values[key]
}

func (p *Params) Len() int {
	return len(p.values)
}

func (p *Params) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for key := range p.values {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	return keys
}

func (p *Params) Entries() []Entry {
	keys := p.Keys()

	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, Entry{Key: key, Value: p.values[key]})
	}

	return entries
}

// SigningString joins the raw values with "|" in key order. Empty values are kept.
func (p *Params) SigningString() string {
	keys := p.Keys()

	values := make([]string, 0, len(keys))
	for _, key := range keys {
		values = append(values, p.values[key])
	}

	return JoinFields(values...)
}

// Encode renders the set as a query string in key order.
func (p *Params) Encode() string {
	var sb strings.Builder
	for i, entry := range p.Entries() {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(entry.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(entry.Value))
	}

	return sb.String()
}

func (p *Params) Without(keys ...string) *Params {
	out := NewParams()
	for key, value := range p.values {
		if slices.Contains(keys, key) {
			continue
		}
		out.values[key] = value
	}

	return out
}

// StripPrefix returns the fields carrying prefix, keyed without it.
func (p *Params) StripPrefix(prefix string) map[string]string {
	out := make(map[string]string, len(p.values))
	for key, value := range p.values {
		if name, ok := strings.CutPrefix(key, prefix); ok {
			out[name] = value
		}
	}

	return out
}
