package transform

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gerencial/internal"
	"gerencial/internal/catalog"
	"gerencial/internal/etlerr"
	"gerencial/internal/source"
)

func produtoRow(code, thickness string) map[string]string {
	return map[string]string{
		"Codigo":            code,
		"Descricao":         "CHAPA GALV",
		"Und.Estoque":       "KG",
		"Espessura":         thickness,
		"Largura":           "1.200",
		"Comprimento":       "3",
		"Descricao.1":       "CHAPA",
		"Descricao.2":       "GALVALUME",
		"Grupo de producao": "BOBINA",
		"Quantidade atual":  "2.500",
	}
}

func TestParseThicknessMixedKinds(t *testing.T) {
	got, err := parseThickness(source.Value{Raw: "1250", Kind: source.KindText})
	require.NoError(t, err)
	assert.InDelta(t, 12.5, *got, 1e-12)

	got, err = parseThickness(source.Value{Raw: "12.5", Kind: source.KindNumeric})
	require.NoError(t, err)
	assert.Equal(t, 12.5, *got)

	got, err = parseThickness(source.NewValue(""))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProdutos(t *testing.T) {
	n := newTestNormalizer()
	tbl := mkTable("produtos", produtosColumns, produtoRow("10", "1250"), produtoRow("11", "1.270.5"))

	entries, idx, err := n.Produtos(tbl, internal.CompanyA)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	e := entries[0]
	assert.InDelta(t, 12.5, *e.Thickness, 1e-12)
	assert.InDelta(t, 127.05, *entries[1].Thickness, 1e-9)
	assert.Equal(t, 120.0, *e.Width)
	assert.Equal(t, 3000.0, *e.Length)
	assert.Equal(t, 2.5, *e.CurrentStock)
	assert.Equal(t, "CATEGORIA_X", *e.Group)
	assert.Equal(t, "MATERIAL_X", *e.Sector)
	assert.Equal(t, internal.CompanyA, e.Company)

	assert.Equal(t, 2, idx.Len())
	refs := idx.Lookup("10")
	require.Len(t, refs, 1)
	assert.Equal(t, "CATEGORIA_X", *refs[0].Group)

	assert.Equal(t, 2, n.RelabelProductionGroups(entries))
	assert.Equal(t, "BOBINA VENDA", *entries[0].ProductionGroup)
}

func TestProdutosMissingColumn(t *testing.T) {
	tbl := mkTable("produtos", []string{"Codigo"}, map[string]string{"Codigo": "1"})
	_, _, err := newTestNormalizer().Produtos(tbl, internal.CompanyA)

	var te *etlerr.TransformError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, etlerr.StageCatalog, te.Stage)
}

func TestProducaoReassignment(t *testing.T) {
	idx := catalog.BuildIndex([]internal.ProductRef{{Code: "10", Group: sp("CATEGORIA_X")}})
	row := func(lot, machine, responsible string) map[string]string {
		return map[string]string{
			"Produto": "10", "Data producao": "05/03/2025", "OP": "77", "Descricao": "CHAPA",
			"Lote": lot, "Quantidade": "1.500", "Unidade": "KG", "Maquina": machine,
			"Grupo de producao": "CHAPAS", "Responsavel pesagem": responsible,
		}
	}
	tbl := mkTable("producao", producaoColumns,
		row("1", "STZ-01", "FUNCIONARIO_Y"),
		row("2", "FORNO-02", "FUNCIONARIO_Y"),
		row("3", "FORNO-02", "FUNCIONARIO_X SILVA"),
		row("", "STZ-01", "FUNCIONARIO_Y"),
	)

	recs, err := newTestNormalizer().Producao(tbl, idx, internal.CompanyA)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, internal.CompanyB, recs[0].Company)
	assert.Equal(t, internal.CompanyA, recs[1].Company)
	assert.Equal(t, internal.CompanyB, recs[2].Company)
	assert.Equal(t, int64(2), recs[1].Lot)
	assert.Equal(t, 1.5, *recs[0].Quantity)
	require.NotNil(t, recs[0].Ref)
	assert.Equal(t, "CATEGORIA_X", *recs[0].Ref.Group)
}

func TestProducaoKeepsOtherCompanies(t *testing.T) {
	tbl := mkTable("producao", producaoColumns, map[string]string{
		"Produto": "99", "Lote": "1", "Quantidade": "1", "Maquina": "STZ-01",
	})
	recs, err := newTestNormalizer().Producao(tbl, nil, internal.CompanyB)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, internal.CompanyB, recs[0].Company)
	assert.Nil(t, recs[0].Ref)
}

func TestProducaoBadLot(t *testing.T) {
	tbl := mkTable("producao", producaoColumns, map[string]string{"Produto": "1", "Lote": "A1"})
	_, err := newTestNormalizer().Producao(tbl, nil, internal.CompanyA)

	var te *etlerr.TransformError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, etlerr.StageProduction, te.Stage)
	var conv *etlerr.ConversionError
	require.True(t, errors.As(err, &conv))
	assert.Equal(t, "Lote", conv.Column)
}

func invoiceRow(customer, date, group, deliveryType string) map[string]string {
	return map[string]string{
		"Nota": "501", "Pedido": "900", "Razao Social": customer, "Produto": "10",
		"Descricao": "CHAPA", "Vlr.Total Produtos": "10.000", "Peso Liquido": "50.000",
		"Quantidade": "20.000", "Und": "KG", "Valor unitario": "50.000", "Total Liquido": "9.000",
		"Faturamento": date, "Cidade": "SAO PAULO", "UF": "SP", "Nome": "VENDEDOR",
		"Empresa": "1", "Descricao.1": "CHAPA", "Descricao.2": group, "Espessura": "0,43",
		"Largura": "1.200", "% Comissao": "2", "Nome.1": deliveryType,
	}
}

func TestFaturamentoAttributionPrecedence(t *testing.T) {
	tbl := mkTable("faturamento", faturamentoColumns,
		invoiceRow("OUTRO", "11/03/2025", "CATEGORIA_A", "CLIENTE_X"),
		invoiceRow("CLIENTE_W LTDA", "11/03/2025", "CATEGORIA_A", "CLIENTE_X"),
		invoiceRow("CLIENTE_W LTDA", "10/03/2025", "CATEGORIA_A", "CLIENTE_X"),
		invoiceRow("OUTRO", "11/03/2025", "CATEGORIA_Z", "PROPRIO"),
		invoiceRow("OUTRO", "11/03/2025", "CATEGORIA_B", "PROPRIO"),
	)

	lines, err := newTestNormalizer().Faturamento(tbl, internal.CompanyB)
	require.NoError(t, err)
	require.Len(t, lines, 5)

	want := []string{internal.CompanyC, internal.CompanyA, internal.CompanyC, internal.CompanyB, internal.CompanyB}
	for i, w := range want {
		assert.Equal(t, w, lines[i].ProducingCompany, "row %d", i)
	}

	l := lines[0]
	assert.Equal(t, 100.0, *l.ProductsTotal)
	assert.Equal(t, 50.0, *l.NetWeight)
	assert.Equal(t, 2.0, *l.Quantity)
	assert.Equal(t, 90.0, *l.NetTotal)
	assert.Equal(t, 120.0, *l.Width)
	assert.Equal(t, 2.0, *l.ValuePerKg)
	assert.Equal(t, 25.0, *l.WeightPerPiece)
	assert.Equal(t, "SAO PAULO-SP-Brasil", *l.Delivery)
	assert.Equal(t, "CATEGORIA_X", *l.Sector)
	assert.Equal(t, "CATEGORIA_A", *l.Group)
	assert.Equal(t, "CLIENTE_X", *l.DeliveryType)
}

func TestFaturamentoNonFiniteRatios(t *testing.T) {
	zero := invoiceRow("OUTRO", "11/03/2025", "CATEGORIA_A", "PROPRIO")
	zero["Quantidade"] = "0"
	zero["Peso Liquido"] = "0"
	zero["Vlr.Total Produtos"] = "0"
	missing := invoiceRow("OUTRO", "11/03/2025", "CATEGORIA_A", "PROPRIO")
	missing["Pedido"] = ""

	lines, err := newTestNormalizer().Faturamento(mkTable("faturamento", faturamentoColumns, zero, missing), internal.CompanyA)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, math.IsNaN(*lines[0].ValuePerKg))
	assert.True(t, math.IsNaN(*lines[0].WeightPerPiece))
	assert.Equal(t, internal.CompanyA, lines[0].ProducingCompany)
}

func TestF9(t *testing.T) {
	tbl := mkTable("f9", f9Columns,
		map[string]string{"Pedido": "1.234", "Situacao Aprovacao": "APROVADO", "Descricao": "OK", "Cidade para Entrega": "CAMPINAS", "UF": "SP"},
		map[string]string{"Pedido": "", "Situacao Aprovacao": "PENDENTE"},
	)
	recs, err := newTestNormalizer().F9(tbl, internal.CompanyA)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "1234", recs[0].Order)
	assert.Equal(t, "CAMPINAS, SP, BRASIL", *recs[0].Delivery)
	assert.Equal(t, "nan", recs[1].Order)
	assert.Nil(t, recs[1].Delivery)
}

func backlogRow(order, sku, approval, unit string) map[string]string {
	return map[string]string{
		"Emissao": "01/02/2025", "Pedido": order, "SKU": sku, "Descricao Material": "CHAPA 0.43",
		"Qtd. Pedida": "10", "Qtd. Em Aberto": "1.000", "Qtde.Pecas": "2", "Qtd.Disponivel": "500",
		"Qt. Reservada": "0", "U.M": "KG", "Peso Liquido": "10.000", "Valor Total": "25.000",
		"Sit. Pedido": "ABERTO", "Dt. Aprovacao": approval, "Razao Social Cliente": "CLIENTE_W SA",
		"Cidade": "OSASCO", "UF": "SP", "Razao Social Vendedor": "VENDEDOR", "US": unit, "Cor": "",
	}
}

func TestCarteira(t *testing.T) {
	idx := catalog.BuildIndex([]internal.ProductRef{
		{Code: "10", Group: sp("CATEGORIA_B"), Thickness: fp(0.43), Sector: sp("MATERIAL_X")},
	})
	tbl := mkTable("carteira", carteiraColumns,
		backlogRow("100", "10", "02/02/2025", "40"),
		backlogRow("101", "", "02/02/2025", "40"),
		backlogRow("102", "10", "/  /", "40"),
		backlogRow("103", "10", "", "1"),
		backlogRow("104", "55", "02/02/2025", "7"),
	)

	lines, err := newTestNormalizer().Carteira(tbl, idx, internal.CompanyA)
	require.NoError(t, err)
	require.Len(t, lines, 3)

	l := lines[0]
	assert.Equal(t, 100.0, l.Order)
	assert.Equal(t, internal.CompanyA, *l.Company)
	assert.Equal(t, 10.0, *l.OpenQty)
	assert.Equal(t, 0.5, *l.AvailableQty)
	assert.Equal(t, 10.0, *l.NetWeight)
	assert.Equal(t, 250.0, *l.TotalValue)
	assert.Equal(t, "OSASCO-SP-Brasil", *l.Delivery)
	assert.Equal(t, "CATEGORIA_B", *l.Group)
	assert.Equal(t, 0.43, *l.Thickness)
	require.NotNil(t, l.ApprovedAt)

	assert.Equal(t, internal.CompanyB, *lines[1].Company)
	assert.Nil(t, lines[1].ApprovedAt)

	assert.Nil(t, lines[2].Company)
	assert.Nil(t, lines[2].Group)
}

func TestCarteiraBadOrder(t *testing.T) {
	tbl := mkTable("carteira", carteiraColumns, backlogRow("10A", "10", "02/02/2025", "40"))
	_, err := newTestNormalizer().Carteira(tbl, nil, internal.CompanyA)

	var te *etlerr.TransformError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, etlerr.StageBacklog, te.Stage)
}
