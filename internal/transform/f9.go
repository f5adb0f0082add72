package transform

import (
	"strings"

	"go.uber.org/zap"

	"gerencial/internal"
	"gerencial/internal/etlerr"
	"gerencial/internal/source"
)

var f9Columns = []string{"Pedido", "Situacao Aprovacao", "Descricao", "Cidade para Entrega", "UF"}

// missingOrder is the text a null order id takes once the column is cast to text.
const missingOrder = "nan"

// F9 normalizes the delivery-approval register. Order ids stay text.
func (n *Normalizer) F9(t *source.Table, company string) ([]internal.ApprovalRecord, error) {
	if err := t.Require(f9Columns...); err != nil {
		return nil, stageErr(etlerr.StageApproval, company, err)
	}

	out := make([]internal.ApprovalRecord, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		order := t.Cell(i, "Pedido")
		id := missingOrder
		if !order.Null {
			id = strings.ReplaceAll(order.Raw, ".", "")
		}
		out = append(out, internal.ApprovalRecord{
			Order:       id,
			Status:      t.Cell(i, "Situacao Aprovacao"),
			Description: t.Cell(i, "Descricao"),
			Delivery:    joinDelivery(t.Cell(i, "Cidade para Entrega"), t.Cell(i, "UF"), ", ", "BRASIL"),
		})
	}
	n.log.Info("approvals normalized", zap.String("company", company), zap.Int("rows", len(out)))
	return out, nil
}
