package notify_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tindahan/pos-api/internal/application/notify"
	"github.com/tindahan/pos-api/internal/domain/entity"
	"github.com/tindahan/pos-api/pkg/logger"
)

func TestSanitize_DecimalsBecomeNumbers(t *testing.T) {
	price := decimal.RequireFromString("12.50")
	ts := time.Date(2024, 5, 3, 10, 30, 0, 0, time.UTC)

	out := notify.Sanitize(map[string]interface{}{
		"total":      price,
		"created_at": ts,
		"nested": map[string]interface{}{
			"qty": decimal.RequireFromString("0.250"),
		},
		"lines": []interface{}{decimal.RequireFromString("3")},
		"note":  "unchanged",
	})

	m, ok := out.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, json.Number("12.5"), m["total"])
	assert.Equal(t, "2024-05-03T10:30:00Z", m["created_at"])
	assert.Equal(t, json.Number("0.25"), m["nested"].(map[string]interface{})["qty"])
	assert.Equal(t, json.Number("3"), m["lines"].([]interface{})[0])
	assert.Equal(t, "unchanged", m["note"])
}

func TestSanitize_NilPointers(t *testing.T) {
	var d *decimal.Decimal
	var ts *time.Time
	assert.Nil(t, notify.Sanitize(d))
	assert.Nil(t, notify.Sanitize(ts))
}

func TestPayload_ProducesNumericJSON(t *testing.T) {
	b, err := notify.Payload("stock_changed", map[string]interface{}{
		"stock_quantity": decimal.RequireFromString("4.000"),
	})
	require.NoError(t, err)
	// decimals must serialize as bare JSON numbers, not quoted strings
	assert.JSONEq(t, `{"type":"stock_changed","data":{"stock_quantity":4}}`, string(b))
}

type capturePublisher struct {
	channel string
	message []byte
	err     error
}

func (p *capturePublisher) Publish(channel string, message []byte) error {
	p.channel = channel
	p.message = message
	return p.err
}

func TestNotifier_RoutesByCategory(t *testing.T) {
	pub := &capturePublisher{}
	n := notify.NewNotifier(pub, logger.Nop())

	n.StockChanged(&entity.Product{
		ID:            "p1",
		Name:          "Sugar",
		StockQuantity: decimal.RequireFromString("50"),
		MinStockLevel: decimal.RequireFromString("5"),
	})

	assert.Equal(t, notify.ChannelInventory, pub.channel)
	var env notify.Envelope
	require.NoError(t, json.Unmarshal(pub.message, &env))
	assert.Equal(t, notify.EventStockChanged, env.Type)
}

func TestNotifier_PublishFailureIsSwallowed(t *testing.T) {
	pub := &capturePublisher{err: errors.New("socket gone")}
	n := notify.NewNotifier(pub, logger.Nop())

	// must not panic or propagate
	n.SaleCreated(&entity.Sale{ID: "s1", TotalAmount: decimal.RequireFromString("10")}, nil)
}
