package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gerencial/internal"
)

func TestEnrichSplitsCategoriaT(t *testing.T) {
	lines := []internal.BacklogLine{
		{
			Order:               100,
			Company:             sp(internal.CompanyA),
			Group:               sp("CATEGORIA_T"),
			Sector:              sp("MATERIAL_X"),
			Thickness:           fp(0.43),
			MaterialDescription: sp("TELHA 0.43 GL 0.50 ZN"),
			OpenQty:             fp(10),
		},
		{Order: 50, Company: sp(internal.CompanyA), Group: sp("CATEGORIA_C"), Sector: sp("MATERIAL_Y"), Thickness: fp(0.80)},
	}

	out, err := newTestNormalizer().EnrichCarteira(lines, nil)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, 50.0, out[0].Order)
	assert.Equal(t, "BZN 0.80", *out[0].Material)

	first, second := out[1], out[2]
	assert.Equal(t, 0.43, *first.RealThickness)
	assert.Equal(t, "BGL 0.43", *first.Material)
	assert.Equal(t, 0.50, *second.RealThickness)
	assert.Equal(t, "BZN 0.50", *second.Material)
	for _, l := range []internal.BacklogLine{first, second} {
		assert.Equal(t, 100.0, l.Order)
		assert.Equal(t, 5.0, *l.OpenQty)
		assert.Equal(t, internal.CompanyB, *l.Production)
	}

	assert.Nil(t, lines[0].Material, "input must not be modified")
	assert.Equal(t, 10.0, *lines[0].OpenQty)
}

func TestEnrichSplitWithoutTokens(t *testing.T) {
	lines := []internal.BacklogLine{
		{Order: 7, Company: sp(internal.CompanyB), Group: sp("CATEGORIA_T"), MaterialDescription: sp("TELHA"), OpenQty: fp(4)},
	}
	out, err := newTestNormalizer().EnrichCarteira(lines, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].RealThickness)
	assert.Equal(t, "", out[0].ThicknessText)
	assert.Equal(t, "BNAN", *out[0].Material)
	assert.Equal(t, 2.0, *out[0].OpenQty)
}

func TestEnrichAttribution(t *testing.T) {
	lines := []internal.BacklogLine{
		{Order: 1, Company: sp(internal.CompanyB), Group: sp("CATEGORIA_Y")},
		{Order: 2, Company: sp(internal.CompanyB), Group: sp("CATEGORIA_A"), Customer: sp("CLIENTE_W SA")},
		{Order: 3, Company: sp(internal.CompanyA), Group: sp("CATEGORIA_U")},
		{Order: 4, Company: nil, Group: sp("CATEGORIA_A"), Customer: nil},
	}
	out, err := newTestNormalizer().EnrichCarteira(lines, nil)
	require.NoError(t, err)
	require.Len(t, out, 4)

	byOrder := map[float64]internal.BacklogLine{}
	for _, l := range out {
		byOrder[l.Order] = l
	}
	assert.Equal(t, "CATEGORIA_P", *byOrder[1].Group)
	assert.Equal(t, internal.CompanyB, *byOrder[1].Production)
	assert.Equal(t, internal.CompanyA, *byOrder[2].Production)
	assert.Equal(t, internal.CompanyB, *byOrder[3].Production)
	assert.Nil(t, byOrder[4].Production)
}

func TestEnrichThicknessFixes(t *testing.T) {
	lines := []internal.BacklogLine{
		{Order: 1, Company: sp(internal.CompanyA), Group: sp("CATEGORIA_B"), Sector: sp("MATERIAL_X"), Thickness: fp(0.43)},
		{Order: 2, Company: sp(internal.CompanyA), Group: sp("CATEGORIA_B"), Sector: sp("MATERIAL_X"), Thickness: fp(0.44)},
		{Order: 3, Company: sp(internal.CompanyA), Group: sp("CATEGORIA_B"), Sector: sp("MATERIAL_X"), Thickness: fp(0.38)},
	}
	out, err := newTestNormalizer().EnrichCarteira(lines, nil)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, 0.38, *out[0].RealThickness)
	assert.Equal(t, "BGL 0.38", *out[0].Material)
	assert.Equal(t, 0.44, *out[1].RealThickness)
	assert.Equal(t, "0.44", out[1].ThicknessText)
	assert.Equal(t, 0.35, *out[2].RealThickness)
}

func TestEnrichMaterialCodeOverrides(t *testing.T) {
	lines := []internal.BacklogLine{
		{Order: 1, Company: sp(internal.CompanyA), Group: sp("CATEGORIA_N"), Sector: sp("MATERIAL_Z"), Thickness: fp(13)},
		{Order: 2, Company: sp(internal.CompanyA), Group: sp("CATEGORIA_N"), Sector: sp("MATERIAL_Z"), Thickness: fp(12.7)},
		{Order: 3, Company: sp(internal.CompanyA), Group: sp("CATEGORIA_C"), Sector: sp("CATEGORIA_I"), Thickness: fp(1)},
		{Order: 4, Company: sp(internal.CompanyA), Group: sp("CATEGORIA_C"), Sector: sp("zincada pos-pin"), Thickness: fp(1)},
	}
	out, err := newTestNormalizer().EnrichCarteira(lines, nil)
	require.NoError(t, err)
	require.Len(t, out, 4)

	assert.Equal(t, "LCG 13.00", *out[0].Material)
	assert.Equal(t, "CFQ 12.70", *out[1].Material)
	assert.Equal(t, "REVENDA", *out[2].Material)
	assert.Equal(t, "BZINCADA POS-PIN 1.00", *out[3].Material)
}

func stockEntry(group, sector string, thickness float64, company string, qty *float64) internal.CatalogEntry {
	return internal.CatalogEntry{
		Code:         "1",
		Group:        sp(group),
		Sector:       sp(sector),
		Thickness:    fp(thickness),
		Company:      company,
		CurrentStock: qty,
	}
}

func TestBuildStock(t *testing.T) {
	products := []internal.CatalogEntry{
		stockEntry("CATEGORIA_Y", "MATERIAL_X", 0.43, internal.CompanyA, fp(1.5)),
		stockEntry("CATEGORIA_Y", "MATERIAL_X", 0.43, internal.CompanyA, fp(2)),
		stockEntry("CATEGORIA_Y", "MATERIAL_X", 0.43, internal.CompanyB, fp(4)),
		stockEntry("CATEGORIA_Y", "MATERIAL_X2", 0.43, internal.CompanyB, nil),
		stockEntry("CATEGORIA_Y", "MATERIAL_W", 0.5, internal.CompanyA, fp(3)),
		stockEntry("CATEGORIA_X", "MATERIAL_Z", 1, internal.CompanyA, fp(7)),
		stockEntry("CATEGORIA_X", "MATERIAL_Z", 1, internal.CompanyA, fp(0.5)),
		stockEntry("CATEGORIA_X", "MATERIAL_X", 0.43, internal.CompanyA, fp(9)),
		stockEntry("CATEGORIA_X", "MATERIAL_Q", 0.43, internal.CompanyA, fp(9)),
		stockEntry("CATEGORIA_B", "MATERIAL_X", 0.43, internal.CompanyA, fp(9)),
	}
	stock := newTestNormalizer().BuildStock(products)

	require.Equal(t, 4, stock.Len())
	qty, ok := stock.Quantity("BGL 0.43", internal.CompanyA)
	require.True(t, ok)
	assert.Equal(t, 3.5, qty)
	qty, ok = stock.Quantity("BGL 0.43", internal.CompanyB)
	require.True(t, ok)
	assert.Equal(t, 4.0, qty)
	qty, ok = stock.Quantity("BPP 0.50", internal.CompanyA)
	require.True(t, ok)
	assert.Equal(t, 3.0, qty)
	qty, ok = stock.Quantity("CFQ 1.00", internal.CompanyA)
	require.True(t, ok)
	assert.Equal(t, 7.5, qty)

	_, ok = stock.Quantity("CGL 0.43", internal.CompanyA)
	assert.False(t, ok, "CGL is outside the stock code whitelist")
	_, ok = stock.Quantity("C 0.43", internal.CompanyA)
	assert.False(t, ok)
}

func TestReconcileStockLeavesOtherCompanies(t *testing.T) {
	products := []internal.CatalogEntry{
		stockEntry("CATEGORIA_Y", "MATERIAL_X", 0.43, internal.CompanyA, fp(1.5)),
		stockEntry("CATEGORIA_Y", "MATERIAL_X", 0.43, internal.CompanyA, fp(2)),
		stockEntry("CATEGORIA_Y", "MATERIAL_X", 0.43, internal.CompanyB, fp(4)),
	}
	n := newTestNormalizer()
	stock := n.BuildStock(products)

	lines := []internal.BacklogLine{
		{Order: 1, Company: sp(internal.CompanyB), Material: sp("BGL 0.43")},
		{Order: 2, Company: sp(internal.CompanyC), Material: sp("BGL 0.43")},
		{Order: 3, Company: sp(internal.CompanyA), Material: sp("BGL 0.43")},
		{Order: 4, Company: nil, Material: sp("BGL 0.43")},
		{Order: 5, Company: sp(internal.CompanyA), Material: sp("BZN 0.50")},
	}
	untouched := []internal.BacklogLine{lines[1], lines[3]}

	matched := n.reconcileStock(&lines, stock)
	assert.Equal(t, 2, matched)
	require.Len(t, lines, 5)

	orders := make([]float64, len(lines))
	for i, l := range lines {
		orders[i] = l.Order
	}
	assert.Equal(t, []float64{2, 4, 3, 5, 1}, orders)

	assert.Equal(t, untouched, lines[:2])
	require.NotNil(t, lines[2].StockLocation)
	require.NotNil(t, lines[2].StockQty)
	assert.Equal(t, internal.CompanyA, *lines[2].StockLocation)
	assert.Equal(t, 3.5, *lines[2].StockQty)
	assert.Nil(t, lines[3].StockLocation)
	assert.Nil(t, lines[3].StockQty)
	require.NotNil(t, lines[4].StockLocation)
	require.NotNil(t, lines[4].StockQty)
	assert.Equal(t, internal.CompanyB, *lines[4].StockLocation)
	assert.Equal(t, 4.0, *lines[4].StockQty)
}
