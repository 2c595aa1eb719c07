package enums

type OutboxEventType string

const (
	OutboxEventProductStockChanged OutboxEventType = "product.stock_changed"
	OutboxEventOrderCreated        OutboxEventType = "order.created"
)

func (t OutboxEventType) IsValid() bool {
	switch t {
	case OutboxEventProductStockChanged, OutboxEventOrderCreated:
		return true
	default:
		return false
	}
}

func (t OutboxEventType) String() string {
	return string(t)
}

type AggregateType string

const (
	AggregateProduct AggregateType = "product"
	AggregateOrder   AggregateType = "order"
)

func (a AggregateType) String() string {
	return string(a)
}
