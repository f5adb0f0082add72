package catalog

// stockKey identifies one aggregated stock position.
type stockKey struct {
	Material string
	Company  string
}

// Stock sums current-stock quantities per (material code, company).
type Stock struct {
	totals map[stockKey]float64
}

func NewStock() *Stock {
	return &Stock{totals: map[stockKey]float64{}}
}

// Add accumulates qty; a nil qty still registers the key with a zero contribution.
func (s *Stock) Add(material, company string, qty *float64) {
	key := stockKey{Material: material, Company: company}
	if _, ok := s.totals[key]; !ok {
		s.totals[key] = 0
	}
	if qty != nil {
		s.totals[key] += *qty
	}
}

func (s *Stock) Quantity(material, company string) (float64, bool) {
	v, ok := s.totals[stockKey{Material: material, Company: company}]
	return v, ok
}

func (s *Stock) Len() int { return len(s.totals) }
