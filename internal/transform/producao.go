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

var producaoColumns = []string{
	"Produto", "Data producao", "OP", "Descricao", "Lote", "Quantidade",
	"Unidade", "Maquina", "Grupo de producao", "Responsavel pesagem",
}

// Producao normalizes one company's production log and left-joins the catalog projection.
func (n *Normalizer) Producao(t *source.Table, idx *catalog.Index, company string) ([]internal.ProductionRecord, error) {
	out, dropped, err := n.producao(t, idx, company)
	if err != nil {
		return nil, stageErr(etlerr.StageProduction, company, err)
	}
	n.log.Info("production normalized",
		zap.String("company", company),
		zap.Int("rows", len(out)),
		zap.Int("dropped_missing_lot", dropped))
	return out, nil
}

func (n *Normalizer) producao(t *source.Table, idx *catalog.Index, company string) ([]internal.ProductionRecord, int, error) {
	if err := t.Require(producaoColumns...); err != nil {
		return nil, 0, err
	}

	dropped := 0
	out := make([]internal.ProductionRecord, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		lotCell := t.Cell(i, "Lote")
		if lotCell.Null {
			dropped++
			continue
		}
		lot, err := castInt("Lote", lotCell)
		if err != nil {
			return nil, 0, err
		}
		qty, err := RescaleNumber("Quantidade", t.Cell(i, "Quantidade"), util.Float, 1000)
		if err != nil {
			return nil, 0, err
		}
		product, err := castInt("Produto", t.Cell(i, "Produto"))
		if err != nil {
			return nil, 0, err
		}

		rec := internal.ProductionRecord{
			Product:          product,
			ProducedAt:       ParseDate(t.Cell(i, "Data producao")),
			ProductionOrder:  t.Cell(i, "OP"),
			Description:      t.Cell(i, "Descricao"),
			Lot:              lot,
			Quantity:         qty,
			Unit:             t.Cell(i, "Unidade"),
			Machine:          t.Cell(i, "Maquina").Text(),
			ProductionGroup:  t.Cell(i, "Grupo de producao"),
			WeighResponsible: t.Cell(i, "Responsavel pesagem").Text(),
			Company:          company,
		}
		if company == n.rules.ReassignFrom && n.producedElsewhere(rec) {
			rec.Company = n.rules.ReassignTo
		}

		refs := idx.Lookup(strconv.FormatInt(product, 10))
		if len(refs) == 0 {
			out = append(out, rec)
			continue
		}
		for _, ref := range refs {
			joined := rec
			r := ref
			joined.Ref = &r
			out = append(out, joined)
		}
	}
	return out, dropped, nil
}

// producedElsewhere is the disjunction of the machine and weighing-responsible predicates.
func (n *Normalizer) producedElsewhere(rec internal.ProductionRecord) bool {
	if rec.Machine != nil {
		for _, s := range n.rules.MachineContains {
			if strings.Contains(*rec.Machine, s) {
				return true
			}
		}
		for _, p := range n.rules.MachinePrefixes {
			if strings.HasPrefix(*rec.Machine, p) {
				return true
			}
		}
	}
	for _, p := range n.rules.ResponsiblePrefixes {
		if util.HasPrefix(rec.WeighResponsible, p) {
			return true
		}
	}
	return false
}
