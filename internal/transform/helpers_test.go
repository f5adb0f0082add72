package transform

import (
	"gerencial/internal/source"
)

func sp(v string) *string { return &v }

func fp(v float64) *float64 { return &v }

// mkTable builds a table with the given columns; cells missing from a row are empty.
func mkTable(name string, columns []string, rows ...map[string]string) *source.Table {
	records := make([][]string, len(rows))
	for i, r := range rows {
		rec := make([]string, len(columns))
		for j, c := range columns {
			rec[j] = r[c]
		}
		records[i] = rec
	}
	return source.NewTable(name, append([]string(nil), columns...), records)
}

func newTestNormalizer() *Normalizer {
	return NewNormalizer(DefaultRules(), nil)
}
