package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"nof0-trading-agents/internal/model"
	"nof0-trading-agents/internal/money"
)

// SaveOrder persists an Orders row and returns its generated order_id
// (a uuid, matching the teacher's request-id convention rather than a
// database sequence, since orders must be addressable before commit).
func (s *Set) SaveOrder(ctx context.Context, o *model.Orders) (string, error) {
	if o.OrderID == "" {
		o.OrderID = uuid.NewString()
	}
	if err := s.Orders.Insert(ctx, o); err != nil {
		return "", err
	}
	return o.OrderID, nil
}

// RecordFill writes the Transactions row for a filled order. side is
// the order's side ("hold"/"wait" orders call RecordSynthetic instead).
func (s *Set) RecordFill(ctx context.Context, orderID, agentID, stockCode, side string, quantity int64, price money.Amount, fees money.Fees) error {
	return s.Transactions.Insert(ctx, &model.Transactions{
		TxID:        uuid.NewString(),
		OrderID:     orderID,
		AgentID:     agentID,
		StockCode:   sql.NullString{String: stockCode, Valid: true},
		Side:        side,
		Quantity:    sql.NullInt64{Int64: quantity, Valid: true},
		Price:       &price,
		Commission:  &fees.Commission,
		StampTax:    &fees.StampTax,
		TransferFee: &fees.TransferFee,
	})
}

// RecordSynthetic writes the null-fee Transactions row for a hold/wait
// decision, per spec §4.8's "one synthetic Transaction with null fees".
func (s *Set) RecordSynthetic(ctx context.Context, orderID, agentID, side string) error {
	return s.Transactions.Insert(ctx, &model.Transactions{
		TxID:    uuid.NewString(),
		OrderID: orderID,
		AgentID: agentID,
		Side:    side,
	})
}
