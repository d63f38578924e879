package features

import (
	"encoding/json"
	"sort"
)

// DefaultCode is returned for values absent from a table. Values unseen at
// training time must encode to something defined rather than fail at serving.
const DefaultCode = 0

// EncodingTable maps categorical values onto stable non-negative integer
// codes. Built once per training run, persisted, and loaded unchanged at
// serving time. Lookups never mutate the table, so a loaded table is safe for
// concurrent readers.
type EncodingTable struct {
	codes map[string]int
}

// BuildEncodingTable assigns 0-based codes in input order. Callers fix the
// iteration order (the training builder passes a sorted vocabulary) so that
// rebuilding from the same vocabulary reproduces identical codes.
func BuildEncodingTable(vocabulary []string) *EncodingTable {
	codes := make(map[string]int, len(vocabulary))
	for _, v := range vocabulary {
		if _, seen := codes[v]; seen {
			continue
		}
		codes[v] = len(codes)
	}
	return &EncodingTable{codes: codes}
}

// LoadEncodingTable wraps an already-persisted value→code mapping.
func LoadEncodingTable(codes map[string]int) *EncodingTable {
	if codes == nil {
		codes = map[string]int{}
	}
	return &EncodingTable{codes: codes}
}

// Code returns the value's code, or DefaultCode when the value was not part
// of the training vocabulary. Never fails.
func (t *EncodingTable) Code(value string) int {
	if t == nil {
		return DefaultCode
	}
	if c, ok := t.codes[value]; ok {
		return c
	}
	return DefaultCode
}

// Len returns the vocabulary size.
func (t *EncodingTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.codes)
}

// Codes returns a copy of the underlying mapping for persistence.
func (t *EncodingTable) Codes() map[string]int {
	out := make(map[string]int, len(t.codes))
	for k, v := range t.codes {
		out[k] = v
	}
	return out
}

// Values returns the vocabulary sorted by code.
func (t *EncodingTable) Values() []string {
	out := make([]string, 0, len(t.codes))
	for v := range t.codes {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return t.codes[out[i]] < t.codes[out[j]] })
	return out
}

// MarshalJSON serializes the table as a plain value→code object.
func (t *EncodingTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.codes)
}

// UnmarshalJSON restores a table from its persisted form.
func (t *EncodingTable) UnmarshalJSON(data []byte) error {
	m := map[string]int{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	t.codes = m
	return nil
}
