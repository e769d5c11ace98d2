package repo

import (
	"context"
	"time"

	"nof0-trading-agents/internal/model"
	"nof0-trading-agents/internal/money"
)

// ApplyBuyFill folds a filled buy order into the agent's position
// book, implementing invariant 6: the new average cost is the
// shares-weighted mean of the existing lot and the incoming fill,
// with the fill's fees folded into its notional,
//
//	avg_cost' = (shares*avg_cost + fillShares*fillPrice + fees) / (shares+fillShares)
//
// A first buy (no existing row) starts the position at shares' worth
// of (fillPrice*fillShares + fees), the s0=0 case of the same formula.
func (s *Set) ApplyBuyFill(ctx context.Context, agentID, stockCode string, fillShares int64, fillPrice, fees money.Amount, tradeDate time.Time) error {
	existing, err := s.Positions.Get(ctx, agentID, stockCode)
	if err != nil && err != model.ErrNotFound {
		return err
	}

	if existing == nil {
		firstCost := money.FromInt(fillShares).Mul(fillPrice).Add(fees).Div(money.FromInt(fillShares))
		return s.Positions.Upsert(ctx, &model.Positions{
			AgentID:   agentID,
			StockCode: stockCode,
			Shares:    fillShares,
			AvgCost:   firstCost,
			BuyDate:   tradeDate,
		})
	}

	existingNotional := money.FromInt(existing.Shares).Mul(existing.AvgCost)
	fillNotional := money.FromInt(fillShares).Mul(fillPrice).Add(fees)
	totalShares := existing.Shares + fillShares
	newAvgCost := existingNotional.Add(fillNotional).Div(money.FromInt(totalShares))

	return s.Positions.Upsert(ctx, &model.Positions{
		AgentID:   agentID,
		StockCode: stockCode,
		Shares:    totalShares,
		AvgCost:   newAvgCost,
		BuyDate:   existing.BuyDate,
	})
}

// ApplySellFill reduces an existing position by fillShares. avg_cost is
// unchanged by a sell (only shares move); the row is deleted outright
// once shares reach zero, per invariant 5.
func (s *Set) ApplySellFill(ctx context.Context, agentID, stockCode string, fillShares int64) error {
	existing, err := s.Positions.Get(ctx, agentID, stockCode)
	if err != nil {
		return err
	}

	remaining := existing.Shares - fillShares
	if remaining <= 0 {
		return s.Positions.Delete(ctx, agentID, stockCode)
	}

	return s.Positions.Upsert(ctx, &model.Positions{
		AgentID:   agentID,
		StockCode: stockCode,
		Shares:    remaining,
		AvgCost:   existing.AvgCost,
		BuyDate:   existing.BuyDate,
	})
}

// AdjustCash applies a signed cash delta (positive for a sell's net
// proceeds, negative for a buy's total cost) and writes the single
// authoritative current_cash value for the cycle.
func (s *Set) AdjustCash(ctx context.Context, agentID string, delta money.Amount) error {
	agent, err := s.Agents.FindOne(ctx, agentID)
	if err != nil {
		return err
	}
	newCash := agent.CurrentCash.Add(delta)
	return s.Agents.UpdateCash(ctx, agentID, newCash)
}
