package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

type OrderType string

const (
	SideTypeBuy  Side = "BUY"
	SideTypeSell Side = "SELL"

	TypeMarket OrderType = "MARKET"
	TypeLimit  OrderType = "LIMIT"
)

// Order carries an unsigned quantity plus an explicit side; position signs
// are applied only inside the portfolio ledger. LimitPrice is zero for
// market orders.
type Order struct {
	Base
	ID         string
	OrderType  OrderType
	Quantity   decimal.Decimal
	Side       Side
	LimitPrice decimal.Decimal
}

func NewOrder(
	id string,
	symbol string,
	orderType OrderType,
	quantity decimal.Decimal,
	side Side,
	limitPrice decimal.Decimal,
	createdAt time.Time,
) Order {
	return Order{
		Base:       Base{Timestamp: createdAt, Ticker: symbol},
		ID:         id,
		OrderType:  orderType,
		Quantity:   quantity,
		Side:       side,
		LimitPrice: limitPrice,
	}
}
