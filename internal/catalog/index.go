package catalog

import (
	"gerencial/internal"
	"gerencial/internal/util"
)

// Index is the join projection of one company's catalog, keyed by product code.
type Index struct {
	ByCode map[string][]internal.ProductRef
	size   int
}

func BuildIndex(refs []internal.ProductRef) *Index {
	idx := &Index{ByCode: map[string][]internal.ProductRef{}}
	for _, ref := range refs {
		key := util.CodeKey(ref.Code)
		if key == "" {
			continue
		}
		idx.ByCode[key] = append(idx.ByCode[key], ref)
		idx.size++
	}
	return idx
}

// Lookup returns every projection row sharing the code. A left join emits one output
// row per match, or one row with no enrichment when the slice is empty.
func (i *Index) Lookup(code string) []internal.ProductRef {
	if i == nil {
		return nil
	}
	return i.ByCode[util.CodeKey(code)]
}

func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return i.size
}
