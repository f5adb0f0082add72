package transform

import (
	"go.uber.org/zap"

	"gerencial/internal"
	"gerencial/internal/catalog"
	"gerencial/internal/etlerr"
	"gerencial/internal/source"
	"gerencial/internal/util"
)

// pendingApproval is how the ERP prints an approval date that was never set.
const pendingApproval = "/  /"

var carteiraColumns = []string{
	"Emissao", "Pedido", "SKU", "Descricao Material", "Qtd. Pedida",
	"Qtd. Em Aberto", "Qtde.Pecas", "Qtd.Disponivel", "Qt. Reservada",
	"U.M", "Peso Liquido", "Valor Total", "Sit. Pedido",
	"Dt. Aprovacao", "Razao Social Cliente", "Cidade", "UF",
	"Razao Social Vendedor", "US", "Cor",
}

type carteiraStats struct {
	missingSKU      int
	pendingApproval int
	unknownUnit     int
}

// Carteira normalizes one company's order backlog and left-joins the catalog projection.
// Business-unit codes outside the configured table leave the company nil.
func (n *Normalizer) Carteira(t *source.Table, idx *catalog.Index, company string) ([]internal.BacklogLine, error) {
	out, stats, err := n.carteira(t, idx)
	if err != nil {
		return nil, stageErr(etlerr.StageBacklog, company, err)
	}
	n.log.Info("backlog normalized",
		zap.String("company", company),
		zap.Int("rows", len(out)),
		zap.Int("dropped_missing_sku", stats.missingSKU),
		zap.Int("dropped_pending_approval", stats.pendingApproval))
	if stats.unknownUnit > 0 {
		n.log.Warn("backlog rows with unmapped business unit",
			zap.String("company", company),
			zap.Int("rows", stats.unknownUnit))
	}
	return out, nil
}

func (n *Normalizer) carteira(t *source.Table, idx *catalog.Index) ([]internal.BacklogLine, carteiraStats, error) {
	var stats carteiraStats
	if err := t.Require(carteiraColumns...); err != nil {
		return nil, stats, err
	}

	out := make([]internal.BacklogLine, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		sku := t.Cell(i, "SKU")
		if sku.Null {
			stats.missingSKU++
			continue
		}
		approval := t.Cell(i, "Dt. Aprovacao")
		if approval.Raw == pendingApproval {
			stats.pendingApproval++
			continue
		}

		order, err := RescaleNumber("Pedido", t.Cell(i, "Pedido"), util.Int, 1)
		if err != nil {
			return nil, stats, err
		}
		line := internal.BacklogLine{
			IssuedAt:            ParseDate(t.Cell(i, "Emissao")),
			Order:               *order,
			SKU:                 sku,
			MaterialDescription: t.Cell(i, "Descricao Material").Text(),
			OrderedQty:          t.Cell(i, "Qtd. Pedida"),
			PieceQty:            t.Cell(i, "Qtde.Pecas"),
			ReservedQty:         t.Cell(i, "Qt. Reservada"),
			Unit:                t.Cell(i, "U.M"),
			Status:              t.Cell(i, "Sit. Pedido"),
			ApprovedAt:          ParseDate(approval),
			Customer:            t.Cell(i, "Razao Social Cliente").Text(),
			Seller:              t.Cell(i, "Razao Social Vendedor"),
			Color:               t.Cell(i, "Cor"),
			Delivery:            joinDelivery(t.Cell(i, "Cidade"), t.Cell(i, "UF"), "-", "Brasil"),
		}

		scaled := []struct {
			column  string
			divisor float64
			dst     **float64
		}{
			{"Qtd. Em Aberto", 100, &line.OpenQty},
			{"Qtd.Disponivel", 1000, &line.AvailableQty},
			{"Peso Liquido", 1000, &line.NetWeight},
			{"Valor Total", 100, &line.TotalValue},
		}
		for _, s := range scaled {
			if *s.dst, err = RescaleNumber(s.column, t.Cell(i, s.column), util.Float, s.divisor); err != nil {
				return nil, stats, err
			}
		}

		line.Company = n.businessUnit(t.Cell(i, "US"))
		if line.Company == nil {
			stats.unknownUnit++
		}

		refs := idx.Lookup(sku.Raw)
		if len(refs) == 0 {
			out = append(out, line)
			continue
		}
		for _, ref := range refs {
			joined := line
			joined.CatalogCode = util.StringPtr(ref.Code)
			joined.Group = ref.Group
			joined.Thickness = ref.Thickness
			joined.Sector = ref.Sector
			out = append(out, joined)
		}
	}
	return out, stats, nil
}

func (n *Normalizer) businessUnit(v source.Value) *string {
	f, err := v.Number()
	if err != nil || f != float64(int64(f)) {
		return nil
	}
	name, ok := n.rules.BusinessUnits[int64(f)]
	if !ok {
		return nil
	}
	return &name
}
