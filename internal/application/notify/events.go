// Package notify serializes domain events into JSON-safe payloads and hands
// them to the broadcast transport. Publishing is fire-and-forget: failures
// are logged and never reach the business operation that emitted the event.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tindahan/pos-api/internal/domain/entity"
	"github.com/tindahan/pos-api/pkg/logger"
)

// Broadcast channels, one per event category.
const (
	ChannelInventory = "inventory_updates"
	ChannelSales     = "sales_updates"
	ChannelShifts    = "shifts_updates"
	ChannelDashboard = "dashboard_updates"
)

// Event names.
const (
	EventSaleCreated    = "sale_created"
	EventStockChanged   = "stock_changed"
	EventLowStockAlert  = "low_stock_alert"
	EventShiftOpened    = "shift_opened"
	EventShiftClosed    = "shift_closed"
	EventPaymentApplied = "payment_applied"
	EventDashboard      = "dashboard_update"
)

// Publisher is the transport port. Implementations must not block the caller
// for long; the WebSocket hub drops messages when its buffer is full.
type Publisher interface {
	Publish(channel string, message []byte) error
}

// Envelope is the wire shape of every broadcast message.
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Sanitize converts a payload tree into a fully JSON-serializable one:
// decimals become JSON numbers, timestamps become ISO-8601 strings. Maps and
// slices are walked recursively; everything else passes through.
func Sanitize(v interface{}) interface{} {
	switch x := v.(type) {
	case decimal.Decimal:
		return json.Number(x.String())
	case *decimal.Decimal:
		if x == nil {
			return nil
		}
		return json.Number(x.String())
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case *time.Time:
		if x == nil {
			return nil
		}
		return x.UTC().Format(time.RFC3339)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, val := range x {
			out[k] = Sanitize(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, val := range x {
			out[i] = Sanitize(val)
		}
		return out
	default:
		return v
	}
}

// Payload builds the serialized envelope for an event.
func Payload(event string, data map[string]interface{}) ([]byte, error) {
	b, err := json.Marshal(Envelope{Type: event, Data: Sanitize(data)})
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", event, err)
	}
	return b, nil
}

// Notifier fans out domain events after commit. It never returns errors.
type Notifier struct {
	pub Publisher
	log *logger.Logger
}

// NewNotifier builds the fan-out.
func NewNotifier(pub Publisher, log *logger.Logger) *Notifier {
	return &Notifier{pub: pub, log: log}
}

func (n *Notifier) publish(channel, event string, data map[string]interface{}) {
	b, err := Payload(event, data)
	if err != nil {
		n.log.Warn().Err(err).Str("event", event).Msg("event serialization failed")
		return
	}
	if err := n.pub.Publish(channel, b); err != nil {
		n.log.Warn().Err(err).Str("channel", channel).Str("event", event).Msg("broadcast failed")
	}
}

// SaleCreated announces a committed sale on the sales channel.
func (n *Notifier) SaleCreated(sale *entity.Sale, items []*entity.SaleItem) {
	lines := make([]interface{}, 0, len(items))
	for _, it := range items {
		lines = append(lines, map[string]interface{}{
			"product_id": it.ProductID,
			"quantity":   it.Quantity,
			"unit_price": it.UnitPrice,
			"total":      it.TotalPrice(),
		})
	}
	n.publish(ChannelSales, EventSaleCreated, map[string]interface{}{
		"id":             sale.ID,
		"total_amount":   sale.TotalAmount,
		"amount_paid":    sale.AmountPaid,
		"payment_method": sale.PaymentMethod,
		"shift_id":       sale.ShiftID,
		"created_at":     sale.CreatedAt,
		"items":          lines,
	})
}

// StockChanged announces a product's new stock level; when the product fell
// to or under its restock threshold a low-stock alert follows on the same
// channel.
func (n *Notifier) StockChanged(p *entity.Product) {
	data := map[string]interface{}{
		"product_id":     p.ID,
		"name":           p.Name,
		"stock_quantity": p.StockQuantity,
		"needs_restock":  p.NeedsRestock(),
	}
	n.publish(ChannelInventory, EventStockChanged, data)
	if p.NeedsRestock() {
		n.publish(ChannelInventory, EventLowStockAlert, data)
	}
}

// ShiftOpened announces a new cashier session.
func (n *Notifier) ShiftOpened(s *entity.Shift) {
	n.publish(ChannelShifts, EventShiftOpened, map[string]interface{}{
		"shift_id":     s.ID,
		"user_id":      s.UserID,
		"terminal_id":  s.TerminalID,
		"opening_cash": s.OpeningCash,
		"start_time":   s.StartTime,
	})
}

// ShiftClosed announces a closed session with its reconciliation result.
func (n *Notifier) ShiftClosed(s *entity.Shift, sum *entity.ShiftSummary) {
	n.publish(ChannelShifts, EventShiftClosed, map[string]interface{}{
		"shift_id":        s.ID,
		"user_id":         s.UserID,
		"closing_cash":    s.ClosingCash,
		"end_time":        s.EndTime,
		"expected_cash":   sum.ExpectedCash,
		"cash_difference": sum.CashDifference,
		"total_sales":     sum.TotalSales,
	})
}

// PaymentApplied announces a credit payment on the sales channel.
func (n *Notifier) PaymentApplied(p *entity.Payment, newBalance decimal.Decimal) {
	n.publish(ChannelSales, EventPaymentApplied, map[string]interface{}{
		"payment_id":  p.ID,
		"customer_id": p.CustomerID,
		"amount":      p.Amount,
		"method":      p.Method,
		"new_balance": newBalance,
		"created_at":  p.CreatedAt,
	})
}

// Dashboard pushes a refreshed stats payload on the dashboard channel.
func (n *Notifier) Dashboard(stats interface{}) {
	b, err := json.Marshal(Envelope{Type: EventDashboard, Data: stats})
	if err != nil {
		n.log.Warn().Err(err).Msg("dashboard serialization failed")
		return
	}
	if err := n.pub.Publish(ChannelDashboard, b); err != nil {
		n.log.Warn().Err(err).Msg("dashboard broadcast failed")
	}
}
