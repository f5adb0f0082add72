package transform

import (
	"regexp"
	"time"

	"gerencial/internal"
)

// ThicknessFix rewrites a derived thickness for groups starting with GroupPrefix.
type ThicknessFix struct {
	GroupPrefix string
	From        float64
	To          float64
}

// SectorLetters appends Letters to a stock material code when the catalog sector
// equals Sector, or starts with it when Prefix is set.
type SectorLetters struct {
	Sector  string
	Prefix  bool
	Letters string
}

// Rules carries every lookup table the normalizers apply. Nothing in this package
// reads business constants from anywhere else.
type Rules struct {
	// Catalog and invoice anonymization of Descricao.1 / Descricao.2.
	GroupNames  map[string]string
	SectorNames map[string]string

	// Production: rows of ReassignFrom move to ReassignTo when any predicate matches.
	ReassignFrom        string
	ReassignTo          string
	MachineContains     []string
	MachinePrefixes     []string
	ResponsiblePrefixes []string

	// Invoice producing-company attribution.
	CompanyAProducts       []string
	OutsideProducer        string
	CarrierProducer        string
	Carriers               []string
	FlagshipCustomerPrefix string
	FlagshipCutoff         time.Time
	FlagshipProducer       string

	// Backlog business-unit codes.
	BusinessUnits map[int64]string

	// Backlog enrichment.
	BacklogCompanyBGroups []string
	RelabelCompany        string
	RelabelFrom           string
	RelabelTo             string
	SplitGroup            string
	MaterialLetters       map[string]string
	ThicknessFixes        []ThicknessFix
	CoatedBaseGroups      []string
	ResaleSector          string
	ResaleCode            string
	LaminatedGroupPrefix  string
	LaminatedMinThickness float64
	LaminatedFrom         string
	LaminatedTo           string

	// Stock reconciliation.
	StockGroupLetters  map[string]string
	StockSectorLetters []SectorLetters
	StockCodePattern   *regexp.Regexp
	StockCompanies     []string

	// Catalog production-group relabel applied after concatenation.
	ProductionGroupNames map[string]string
}

// FlagshipGroup is the first entry of the Empresa_A product whitelist.
func (r Rules) FlagshipGroup() string {
	if len(r.CompanyAProducts) == 0 {
		return ""
	}
	return r.CompanyAProducts[0]
}

func DefaultRules() Rules {
	return Rules{
		GroupNames: map[string]string{
			"CHAPA":  "CATEGORIA_X",
			"BOBINA": "CATEGORIA_Y",
		},
		SectorNames: map[string]string{
			"GALVALUME":   "MATERIAL_X",
			"ZINCADA":     "MATERIAL_Y",
			"FINA QUENTE": "MATERIAL_Z",
			"PRE-PINTADA": "MATERIAL_W",
			"FINA FRIA":   "MATERIAL_V",
		},

		ReassignFrom:        internal.CompanyA,
		ReassignTo:          internal.CompanyB,
		MachineContains:     []string{"STZ"},
		MachinePrefixes:     []string{"COLAGEM", "CABINE"},
		ResponsiblePrefixes: []string{"FUNCIONARIO_X"},

		CompanyAProducts: []string{
			"CATEGORIA_A", "CATEGORIA_B", "CATEGORIA_C", "CATEGORIA_D", "CATEGORIA_E",
			"CATEGORIA_F", "CATEGORIA_G", "CATEGORIA_H", "CATEGORIA_I",
			"CATEGORIA_J", "CATEGORIA_K", "CATEGORIA_L", "CATEGORIA_M",
			"CATEGORIA_N", "CATEGORIA_O", "CATEGORIA_P", "CATEGORIA_Q",
			"CATEGORIA_R", "CATEGORIA_S",
		},
		OutsideProducer:        internal.CompanyB,
		CarrierProducer:        internal.CompanyC,
		Carriers:               []string{"CLIENTE_X", "TRANSPORTADORA_Y", "TRANSPORTADORA_Z"},
		FlagshipCustomerPrefix: "CLIENTE_W",
		FlagshipCutoff:         time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		FlagshipProducer:       internal.CompanyA,

		BusinessUnits: map[int64]string{
			40: internal.CompanyA,
			1:  internal.CompanyB,
		},

		BacklogCompanyBGroups: []string{"CATEGORIA_T", "CATEGORIA_U", "CATEGORIA_V"},
		RelabelCompany:        internal.CompanyB,
		RelabelFrom:           "CATEGORIA_Y",
		RelabelTo:             "CATEGORIA_P",
		SplitGroup:            "CATEGORIA_T",
		MaterialLetters: map[string]string{
			"MATERIAL_X":      "GL",
			"MATERIAL_Y":      "ZN",
			"MATERIAL_Z":      "FQ",
			"MATERIAL_W":      "PP",
			"MATERIAL_V":      "FF",
			"ZINCADA POS-PIN": "ZN",
			"GALVALU POS-PIN": "GL",
		},
		ThicknessFixes: []ThicknessFix{
			{GroupPrefix: "CATEGORIA_B", From: 0.38, To: 0.35},
			{GroupPrefix: "CATEGORIA_B", From: 0.43, To: 0.38},
			{GroupPrefix: "CATEGORIA_B", From: 0.50, To: 0.47},
			{GroupPrefix: "CATEGORIA_B", From: 0.65, To: 0.60},
			{GroupPrefix: "CATEGORIA_Y", From: 0.43, To: 0.40},
			{GroupPrefix: "CATEGORIA_Y", From: 0.50, To: 0.47},
			{GroupPrefix: "CATEGORIA_Y", From: 0.65, To: 0.60},
			{GroupPrefix: "CATEGORIA_F", From: 0.43, To: 0.40},
		},
		CoatedBaseGroups:      []string{"CATEGORIA_F", "CATEGORIA_N", "CATEGORIA_O"},
		ResaleSector:          "CATEGORIA_I",
		ResaleCode:            "REVENDA",
		LaminatedGroupPrefix:  "CATEGORIA_N",
		LaminatedMinThickness: 12.7,
		LaminatedFrom:         "CFQ",
		LaminatedTo:           "LCG",

		StockGroupLetters: map[string]string{
			"CATEGORIA_X": "C",
			"CATEGORIA_Y": "B",
		},
		StockSectorLetters: []SectorLetters{
			{Sector: "MATERIAL_Z", Letters: "FQ"},
			{Sector: "MATERIAL_Y", Letters: "ZN"},
			{Sector: "MATERIAL_X", Prefix: true, Letters: "GL"},
			{Sector: "MATERIAL_W", Letters: "PP"},
			{Sector: "MATERIAL_V", Letters: "FF"},
		},
		StockCodePattern: regexp.MustCompile(`^(CF|BF|BG|BZ|BP|LC)`),
		StockCompanies:   []string{internal.CompanyA, internal.CompanyB},

		ProductionGroupNames: map[string]string{
			"BOBINA": "BOBINA VENDA",
		},
	}
}

// remap returns the mapped name, or the value unchanged when the table has no entry.
func remap(table map[string]string, v *string) *string {
	if v == nil {
		return nil
	}
	if mapped, ok := table[*v]; ok {
		return &mapped
	}
	out := *v
	return &out
}
