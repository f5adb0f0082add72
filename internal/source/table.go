package source

import (
	"fmt"
	"strconv"
	"strings"
)

type Kind int

const (
	KindText Kind = iota
	KindNumeric
)

// nullTokens are the cell contents read as missing, matching the extracts' spreadsheet tooling.
var nullTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NULL": {}, "null": {}, "NaN": {}, "nan": {},
	"-NaN": {}, "-nan": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "None": {}, "<NA>": {},
	"1.#IND": {}, "1.#QNAN": {}, "-1.#IND": {}, "-1.#QNAN": {},
}

// Value is one cell. Raw keeps the text as read; Kind is the kind of the whole column.
type Value struct {
	Raw  string
	Null bool
	Kind Kind
}

func NewValue(raw string) Value {
	_, null := nullTokens[raw]
	return Value{Raw: raw, Null: null}
}

// Text returns nil for null cells.
func (v Value) Text() *string {
	if v.Null {
		return nil
	}
	s := v.Raw
	return &s
}

// Number parses the raw text as a plain decimal number.
func (v Value) Number() (float64, error) {
	if v.Null {
		return 0, fmt.Errorf("null value")
	}
	return strconv.ParseFloat(strings.TrimSpace(v.Raw), 64)
}

// NumberPtr returns nil for null cells.
func (v Value) NumberPtr() (*float64, error) {
	if v.Null {
		return nil, nil
	}
	f, err := v.Number()
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Table is a header plus raw records, as read from one extract.
type Table struct {
	Name    string
	Header  []string
	Kinds   []Kind
	Records [][]string
	index   map[string]int
}

func NewTable(name string, header []string, records [][]string) *Table {
	t := &Table{Name: name, Header: dedupeHeader(header), Records: records}
	t.reindex()
	t.inferKinds()
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		t.index[h] = i
	}
}

func (t *Table) inferKinds() {
	t.Kinds = make([]Kind, len(t.Header))
	for c := range t.Header {
		numeric := false
		for _, rec := range t.Records {
			v := cellAt(rec, c)
			if v.Null {
				continue
			}
			if _, err := v.Number(); err != nil {
				numeric = false
				break
			}
			numeric = true
		}
		if numeric {
			t.Kinds[c] = KindNumeric
		}
	}
}

func (t *Table) Len() int { return len(t.Records) }

func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Require fails on the first column the table does not carry.
func (t *Table) Require(columns ...string) error {
	for _, c := range columns {
		if !t.Has(c) {
			return fmt.Errorf("missing column %q in %s", c, t.Name)
		}
	}
	return nil
}

// Cell returns a null value for columns the table does not carry.
func (t *Table) Cell(row int, column string) Value {
	c, ok := t.index[column]
	if !ok {
		return Value{Null: true}
	}
	v := cellAt(t.Records[row], c)
	v.Kind = t.Kinds[c]
	return v
}

// Set overwrites a column on every row, appending it when absent.
func (t *Table) Set(column, value string) {
	c, ok := t.index[column]
	if !ok {
		t.Header = append(t.Header, column)
		t.Kinds = append(t.Kinds, KindText)
		c = len(t.Header) - 1
		t.index[column] = c
	}
	for i, rec := range t.Records {
		for len(rec) <= c {
			rec = append(rec, "")
		}
		rec[c] = value
		t.Records[i] = rec
	}
	t.Kinds[c] = KindText
}

func cellAt(rec []string, c int) Value {
	if c >= len(rec) {
		return Value{Raw: "", Null: true}
	}
	return NewValue(rec[c])
}

// dedupeHeader suffixes repeated names with .1, .2 ... in order of appearance.
func dedupeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := map[string]int{}
	for i, h := range header {
		h = strings.TrimSpace(h)
		name := h
		if n, ok := seen[h]; ok {
			for {
				n++
				name = fmt.Sprintf("%s.%d", h, n)
				if _, taken := seen[name]; !taken {
					break
				}
			}
			seen[h] = n
		}
		seen[name] = 0
		out[i] = name
	}
	return out
}
