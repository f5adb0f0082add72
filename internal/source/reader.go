// Package source reads the delimited ERP extracts into raw tables.
package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"gerencial/internal/etlerr"
)

const (
	EncodingLatin1 = "latin1"
	EncodingUTF8   = "utf8"

	// CompanyColumn is stamped on every row read.
	CompanyColumn = "Empresa"
)

type Reader struct {
	Delimiter rune
	Encoding  string
}

func NewReader(delimiter rune, encoding string) *Reader {
	if delimiter == 0 {
		delimiter = ';'
	}
	if encoding == "" {
		encoding = EncodingLatin1
	}
	return &Reader{Delimiter: delimiter, Encoding: encoding}
}

// Read loads one extract and stamps the company on every row.
func (r *Reader) Read(path, company string) (*Table, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, etlerr.NewFileNotFound(path, err)
		}
		return nil, etlerr.NewExtractionFailed(path, err)
	}

	t, err := r.Parse(filepath.Base(path), blob)
	if err != nil {
		return nil, etlerr.NewExtractionFailed(path, err)
	}
	t.Set(CompanyColumn, company)
	return t, nil
}

func (r *Reader) Parse(name string, blob []byte) (*Table, error) {
	var in io.Reader
	switch strings.ToLower(r.Encoding) {
	case EncodingLatin1, "latin-1", "iso-8859-1":
		in = transform.NewReader(bytes.NewReader(blob), charmap.ISO8859_1.NewDecoder())
	case EncodingUTF8, "utf-8":
		in = bytes.NewReader(bytes.TrimPrefix(blob, []byte("\xEF\xBB\xBF")))
	default:
		return nil, fmt.Errorf("unsupported encoding: %s", r.Encoding)
	}

	cr := csv.NewReader(in)
	cr.Comma = r.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty extract")
	}
	return NewTable(name, records[0], records[1:]), nil
}
