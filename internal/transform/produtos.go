package transform

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"gerencial/internal"
	"gerencial/internal/catalog"
	"gerencial/internal/etlerr"
	"gerencial/internal/source"
	"gerencial/internal/util"
)

var produtosColumns = []string{
	"Codigo", "Descricao", "Und.Estoque", "Espessura", "Largura", "Comprimento",
	"Descricao.1", "Descricao.2", "Grupo de producao", "Quantidade atual",
}

// Produtos normalizes one company's catalog and returns it with its join projection.
func (n *Normalizer) Produtos(t *source.Table, company string) ([]internal.CatalogEntry, *catalog.Index, error) {
	entries, err := n.produtos(t, company)
	if err != nil {
		return nil, nil, stageErr(etlerr.StageCatalog, company, err)
	}

	refs := make([]internal.ProductRef, 0, len(entries))
	for _, e := range entries {
		refs = append(refs, e.Ref())
	}
	n.log.Info("catalog normalized", zap.String("company", company), zap.Int("rows", len(entries)))
	return entries, catalog.BuildIndex(refs), nil
}

func (n *Normalizer) produtos(t *source.Table, company string) ([]internal.CatalogEntry, error) {
	if err := t.Require(produtosColumns...); err != nil {
		return nil, err
	}

	out := make([]internal.CatalogEntry, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		thickness, err := parseThickness(t.Cell(i, "Espessura"))
		if err != nil {
			return nil, err
		}
		width, err := RescaleNumber("Largura", t.Cell(i, "Largura"), util.Int, 10)
		if err != nil {
			return nil, err
		}
		length, err := numberOrNil("Comprimento", t.Cell(i, "Comprimento"))
		if err != nil {
			return nil, err
		}
		if length != nil {
			*length *= 1000
		}
		stock, err := RescaleNumber("Quantidade atual", t.Cell(i, "Quantidade atual"), util.Float, 1000)
		if err != nil {
			return nil, err
		}

		out = append(out, internal.CatalogEntry{
			Code:            t.Cell(i, "Codigo").Raw,
			Description:     t.Cell(i, "Descricao"),
			StockUnit:       t.Cell(i, "Und.Estoque").Text(),
			Thickness:       thickness,
			Width:           width,
			Length:          length,
			Group:           remap(n.rules.GroupNames, t.Cell(i, "Descricao.1").Text()),
			Sector:          remap(n.rules.SectorNames, t.Cell(i, "Descricao.2").Text()),
			ProductionGroup: t.Cell(i, "Grupo de producao").Text(),
			CurrentStock:    stock,
			Company:         company,
		})
	}
	return out, nil
}

// parseThickness keeps numeric columns as read; text columns carry hundredths of a
// millimetre with '.' separators, so "1.250" and "1250" both become 12.5.
func parseThickness(v source.Value) (*float64, error) {
	if v.Null {
		return nil, nil
	}
	if v.Kind == source.KindNumeric {
		return numberOrNil("Espessura", v)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(v.Raw, ".", "")), 64)
	if err != nil {
		return nil, &etlerr.ConversionError{Column: "Espessura", Value: v.Raw, Cause: err}
	}
	f /= 100
	return &f, nil
}

// RelabelProductionGroups renames catalog production groups across the concatenated catalog.
func (n *Normalizer) RelabelProductionGroups(entries []internal.CatalogEntry) int {
	changed := 0
	for i := range entries {
		pg := entries[i].ProductionGroup
		if pg == nil {
			continue
		}
		if to, ok := n.rules.ProductionGroupNames[*pg]; ok {
			entries[i].ProductionGroup = util.StringPtr(to)
			changed++
		}
	}
	return changed
}
