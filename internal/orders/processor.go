package orders

import (
	"context"
	"database/sql"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"nof0-trading-agents/internal/calendar"
	"nof0-trading-agents/internal/model"
	"nof0-trading-agents/internal/money"
	"nof0-trading-agents/internal/repo"
	"nof0-trading-agents/internal/types"
)

// Processor owns the full decision -> order -> settlement pipeline.
type Processor struct {
	repo   *repo.Set
	logger logx.Logger
}

func NewProcessor(r *repo.Set) *Processor {
	return &Processor{repo: r, logger: logx.WithContext(context.Background())}
}

// Decision is the agent's requested action for one cycle, already
// parsed out of the LLM's structured response.
type Decision struct {
	AgentID            string
	Action             types.DecisionAction
	StockCode          string
	Quantity           int64
	Price              money.Amount
	EnforceMarketHours bool
	LLMRequestLogID    sql.NullInt64
}

// Outcome is what Process reports back to the agent manager / decision log.
// CashDelta is the signed cash-balance change a filled trade produced;
// it is not applied here, the caller accumulates it across a cycle's
// decisions and writes current_cash once (spec §4.7 step 5).
type Outcome struct {
	OrderID   string
	Filled    bool
	Reason    types.RejectReason
	Quantity  int64
	Fees      money.Fees
	CashDelta money.Amount
}

// Process runs one decision through the full state machine: hold/wait
// short-circuits to a synthetic filled order; buy/sell validate then
// settle atomically against the position/cash books.
func (p *Processor) Process(ctx context.Context, d Decision) (Outcome, error) {
	if d.Action == types.DecisionHold || d.Action == types.DecisionWait {
		return p.processSynthetic(ctx, d)
	}
	return p.processTrade(ctx, d)
}

func (p *Processor) processSynthetic(ctx context.Context, d Decision) (Outcome, error) {
	side := string(d.Action)
	orderID, err := p.repo.SaveOrder(ctx, &model.Orders{
		AgentID:         d.AgentID,
		Side:            side,
		Status:          string(types.OrderStatusFilled),
		Reason:          "",
		LLMRequestLogID: d.LLMRequestLogID,
	})
	if err != nil {
		return Outcome{}, err
	}
	if err := p.repo.RecordSynthetic(ctx, orderID, d.AgentID, side); err != nil {
		return Outcome{}, err
	}
	return Outcome{OrderID: orderID, Filled: true}, nil
}

func (p *Processor) processTrade(ctx context.Context, d Decision) (Outcome, error) {
	orderSide := types.OrderSide(d.Action)

	quote, err := p.repo.Quotes.GetLatest(ctx, d.StockCode)
	if err != nil && err != model.ErrNotFound {
		return Outcome{}, err
	}
	prevClose := money.Zero
	if quote != nil {
		prevClose = quote.PrevClose
	}

	pos, err := p.repo.Positions.Get(ctx, d.AgentID, d.StockCode)
	if err != nil && err != model.ErrNotFound {
		return Outcome{}, err
	}
	posView := PositionView{}
	if pos != nil {
		posView = PositionView{Exists: true, Shares: pos.Shares, BuyDate: pos.BuyDate}
	}

	agent, err := p.repo.Agents.FindOne(ctx, d.AgentID)
	if err != nil {
		return Outcome{}, err
	}

	now := time.Now().In(calendar.Location())
	marketOpen := calendar.IsTradingDay(now) && calendar.TradingSession(now)
	exchange := types.ExchangeFromCode(d.StockCode)

	result := Validate(Request{
		AgentID:            d.AgentID,
		StockCode:          d.StockCode,
		Side:               orderSide,
		Quantity:           d.Quantity,
		Price:              d.Price,
		PrevClose:          prevClose,
		EnforceMarketHours: d.EnforceMarketHours,
	}, posView, now, marketOpen, agent.CurrentCash, exchange)

	if !result.Approved {
		orderID, saveErr := p.repo.SaveOrder(ctx, &model.Orders{
			AgentID:      d.AgentID,
			StockCode:    sql.NullString{String: d.StockCode, Valid: true},
			Side:         string(orderSide),
			Quantity:     sql.NullInt64{Int64: d.Quantity, Valid: true},
			Price:        &d.Price,
			Status:       string(types.OrderStatusRejected),
			RejectReason: sql.NullString{String: string(result.Reason), Valid: true},
			LLMRequestLogID: d.LLMRequestLogID,
		})
		if saveErr != nil {
			return Outcome{}, saveErr
		}
		return Outcome{OrderID: orderID, Filled: false, Reason: result.Reason}, nil
	}

	orderID, err := p.repo.SaveOrder(ctx, &model.Orders{
		AgentID:         d.AgentID,
		StockCode:       sql.NullString{String: d.StockCode, Valid: true},
		Side:            string(orderSide),
		Quantity:        sql.NullInt64{Int64: result.Quantity, Valid: true},
		Price:           &d.Price,
		Status:          string(types.OrderStatusFilled),
		LLMRequestLogID: d.LLMRequestLogID,
	})
	if err != nil {
		return Outcome{}, err
	}

	if err := p.repo.RecordFill(ctx, orderID, d.AgentID, d.StockCode, string(orderSide), result.Quantity, d.Price, result.Fees); err != nil {
		return Outcome{}, err
	}

	notional := money.FromInt(result.Quantity).Mul(d.Price)
	fees := result.Fees.Total()
	var cashDelta money.Amount
	if orderSide == types.OrderSideBuy {
		if err := p.repo.ApplyBuyFill(ctx, d.AgentID, d.StockCode, result.Quantity, d.Price, fees, now); err != nil {
			return Outcome{}, err
		}
		cashDelta = notional.Add(fees).Neg()
	} else {
		if err := p.repo.ApplySellFill(ctx, d.AgentID, d.StockCode, result.Quantity); err != nil {
			return Outcome{}, err
		}
		cashDelta = notional.Sub(fees)
	}

	return Outcome{OrderID: orderID, Filled: true, Quantity: result.Quantity, Fees: result.Fees, CashDelta: cashDelta}, nil
}
