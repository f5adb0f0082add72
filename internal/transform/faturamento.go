package transform

import (
	"go.uber.org/zap"

	"gerencial/internal"
	"gerencial/internal/etlerr"
	"gerencial/internal/source"
	"gerencial/internal/util"
)

var faturamentoColumns = []string{
	"Nota", "Pedido", "Razao Social", "Produto", "Descricao", "Vlr.Total Produtos",
	"Peso Liquido", "Quantidade", "Und", "Valor unitario", "Total Liquido",
	"Faturamento", "Cidade", "UF", "Nome", "Empresa", "Descricao.1",
	"Descricao.2", "Espessura", "Largura", "% Comissao", "Nome.1",
}

// attribution is one producing-company rule; rules run in order and later matches win.
type attribution struct {
	name     string
	match    func(*internal.InvoiceLine) bool
	producer string
}

func (n *Normalizer) invoiceAttribution() []attribution {
	r := n.rules
	return []attribution{
		{
			name:     "outside whitelist",
			match:    func(l *internal.InvoiceLine) bool { return !util.In(l.Group, r.CompanyAProducts) },
			producer: r.OutsideProducer,
		},
		{
			name:     "carrier pickup",
			match:    func(l *internal.InvoiceLine) bool { return util.In(l.DeliveryType, r.Carriers) },
			producer: r.CarrierProducer,
		},
		{
			name: "flagship customer",
			match: func(l *internal.InvoiceLine) bool {
				return util.HasPrefix(l.Customer, r.FlagshipCustomerPrefix) &&
					l.InvoicedAt != nil && l.InvoicedAt.After(r.FlagshipCutoff) &&
					util.Equals(l.Group, r.FlagshipGroup())
			},
			producer: r.FlagshipProducer,
		},
	}
}

// Faturamento normalizes one company's invoice register and attributes a producing company.
func (n *Normalizer) Faturamento(t *source.Table, company string) ([]internal.InvoiceLine, error) {
	out, dropped, err := n.faturamento(t, company)
	if err != nil {
		return nil, stageErr(etlerr.StageInvoice, company, err)
	}
	n.log.Info("invoices normalized",
		zap.String("company", company),
		zap.Int("rows", len(out)),
		zap.Int("dropped_missing_order", dropped))
	return out, nil
}

func (n *Normalizer) faturamento(t *source.Table, company string) ([]internal.InvoiceLine, int, error) {
	if err := t.Require(faturamentoColumns...); err != nil {
		return nil, 0, err
	}

	rules := n.invoiceAttribution()
	dropped := 0
	out := make([]internal.InvoiceLine, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		order := t.Cell(i, "Pedido")
		if order.Null {
			dropped++
			continue
		}

		line := internal.InvoiceLine{
			Invoice:      t.Cell(i, "Nota"),
			Order:        order,
			Customer:     t.Cell(i, "Razao Social").Text(),
			Product:      t.Cell(i, "Produto"),
			Description:  t.Cell(i, "Descricao"),
			Unit:         t.Cell(i, "Und"),
			InvoicedAt:   ParseDate(t.Cell(i, "Faturamento")),
			Name:         t.Cell(i, "Nome"),
			Company:      company,
			Sector:       remap(n.rules.GroupNames, t.Cell(i, "Descricao.1").Text()),
			Group:        remap(n.rules.SectorNames, t.Cell(i, "Descricao.2").Text()),
			Thickness:    t.Cell(i, "Espessura"),
			Commission:   t.Cell(i, "% Comissao"),
			DeliveryType: t.Cell(i, "Nome.1").Text(),
			Delivery:     joinDelivery(t.Cell(i, "Cidade"), t.Cell(i, "UF"), "-", "Brasil"),
		}

		var err error
		scaled := []struct {
			column  string
			divisor float64
			dst     **float64
		}{
			{"Vlr.Total Produtos", 100, &line.ProductsTotal},
			{"Peso Liquido", 1000, &line.NetWeight},
			{"Quantidade", 10000, &line.Quantity},
			{"Valor unitario", 10000, &line.UnitValue},
			{"Total Liquido", 100, &line.NetTotal},
			{"Largura", 10, &line.Width},
		}
		for _, s := range scaled {
			if *s.dst, err = RescaleNumber(s.column, t.Cell(i, s.column), util.Float, s.divisor); err != nil {
				return nil, 0, err
			}
		}
		line.Quantity = round(line.Quantity, 3)

		line.ValuePerKg = divide(line.ProductsTotal, line.NetWeight)
		line.WeightPerPiece = divide(line.NetWeight, line.Quantity)

		line.ProducingCompany = line.Company
		for _, rule := range rules {
			if rule.match(&line) {
				line.ProducingCompany = rule.producer
			}
		}
		out = append(out, line)
	}
	return out, dropped, nil
}
