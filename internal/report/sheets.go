// Package report lays the normalized tables out as named sheets and writes them
// to a single xlsx workbook.
package report

import (
	"time"

	"gerencial/internal"
)

const (
	SheetProdutos    = "Produtos"
	SheetProducao    = "Producao"
	SheetFaturamento = "Faturamento"
	SheetCarteira    = "Carteira"
	SheetF9          = "F9"
	SheetAtualizacao = "Atualizacao"
)

// SheetNames is the sheet order of every report. Consumers look sheets up by name.
var SheetNames = []string{SheetProdutos, SheetProducao, SheetFaturamento, SheetCarteira, SheetF9, SheetAtualizacao}

// TimestampLayout formats the single Atualizacao cell.
const TimestampLayout = "2006-01-02 15:04:05"

// Sheet is one named table. Rows hold plain Go values, pointers or source cells;
// see cellValue for how each one is rendered.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

func ProdutosSheet(entries []internal.CatalogEntry) Sheet {
	s := Sheet{
		Name: SheetProdutos,
		Header: []string{
			"Codigo", "Descricao", "Und.Estoque", "Espessura", "Largura", "Comprimento",
			"Grupo", "Setor", "Grupo de producao", "Quantidade atual", "Empresa",
		},
		Rows: make([][]any, 0, len(entries)),
	}
	for _, e := range entries {
		s.Rows = append(s.Rows, []any{
			e.Code, e.Description, e.StockUnit, e.Thickness, e.Width, e.Length,
			e.Group, e.Sector, e.ProductionGroup, e.CurrentStock, e.Company,
		})
	}
	return s
}

func ProducaoSheet(records []internal.ProductionRecord) Sheet {
	s := Sheet{
		Name: SheetProducao,
		Header: []string{
			"Produto", "Data producao", "OP", "Descricao", "Lote", "Quantidade", "Unidade",
			"Maquina", "Grupo de producao", "Responsavel pesagem", "Empresa",
			"Und.Estoque", "Espessura", "Largura", "Comprimento", "Setor", "Grupo",
		},
		Rows: make([][]any, 0, len(records)),
	}
	for _, r := range records {
		row := []any{
			r.Product, r.ProducedAt, r.ProductionOrder, r.Description, r.Lot, r.Quantity, r.Unit,
			r.Machine, r.ProductionGroup, r.WeighResponsible, r.Company,
		}
		if ref := r.Ref; ref != nil {
			row = append(row, ref.StockUnit, ref.Thickness, ref.Width, ref.Length, ref.Sector, ref.Group)
		} else {
			row = append(row, nil, nil, nil, nil, nil, nil)
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}

func FaturamentoSheet(lines []internal.InvoiceLine) Sheet {
	s := Sheet{
		Name: SheetFaturamento,
		Header: []string{
			"Nota", "Pedido", "Razao Social", "Produto", "Descricao", "Vlr.Total Produtos",
			"Peso Liquido", "Quantidade", "Und", "Valor unitario", "Total Liquido", "Faturamento",
			"Nome", "Empresa", "Setor", "Grupo", "Espessura", "Largura", "% Comissao",
			"Tipo entrega", "Entrega", "Valor por kg", "Peso por peças", "Empresa de produção",
		},
		Rows: make([][]any, 0, len(lines)),
	}
	for _, l := range lines {
		s.Rows = append(s.Rows, []any{
			l.Invoice, l.Order, l.Customer, l.Product, l.Description, l.ProductsTotal,
			l.NetWeight, l.Quantity, l.Unit, l.UnitValue, l.NetTotal, l.InvoicedAt,
			l.Name, l.Company, l.Sector, l.Group, l.Thickness, l.Width, l.Commission,
			l.DeliveryType, l.Delivery, l.ValuePerKg, l.WeightPerPiece, l.ProducingCompany,
		})
	}
	return s
}

func CarteiraSheet(lines []internal.BacklogLine) Sheet {
	s := Sheet{
		Name: SheetCarteira,
		Header: []string{
			"Emissao", "Pedido", "SKU", "Descricao Material", "Qtd. Pedida", "Qtd. Em Aberto",
			"Qtde.Pecas", "Qtd.Disponivel", "Qt. Reservada", "U.M", "Peso Liquido", "Valor Total",
			"Sit. Pedido", "Dt. Aprovacao", "Razao Social Cliente", "Razao Social Vendedor",
			"US", "Cor", "Entrega", "Codigo", "Grupo", "Espessura", "Setor", "Producao",
			"Espessura real", "Material", "Local do estoque", "Quantidade Estoque",
		},
		Rows: make([][]any, 0, len(lines)),
	}
	for _, l := range lines {
		s.Rows = append(s.Rows, []any{
			l.IssuedAt, l.Order, l.SKU, l.MaterialDescription, l.OrderedQty, l.OpenQty,
			l.PieceQty, l.AvailableQty, l.ReservedQty, l.Unit, l.NetWeight, l.TotalValue,
			l.Status, l.ApprovedAt, l.Customer, l.Seller,
			l.Company, l.Color, l.Delivery, l.CatalogCode, l.Group, l.Thickness, l.Sector, l.Production,
			l.ThicknessText, l.Material, l.StockLocation, l.StockQty,
		})
	}
	return s
}

func F9Sheet(records []internal.ApprovalRecord) Sheet {
	s := Sheet{
		Name:   SheetF9,
		Header: []string{"Pedido", "Situacao Aprovacao", "Descricao", "Entrega"},
		Rows:   make([][]any, 0, len(records)),
	}
	for _, r := range records {
		s.Rows = append(s.Rows, []any{r.Order, r.Status, r.Description, r.Delivery})
	}
	return s
}

// AtualizacaoSheet holds the run timestamp as text.
func AtualizacaoSheet(at time.Time) Sheet {
	return Sheet{
		Name:   SheetAtualizacao,
		Header: []string{"Atualizacao"},
		Rows:   [][]any{{at.Format(TimestampLayout)}},
	}
}
