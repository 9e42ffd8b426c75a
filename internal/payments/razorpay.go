package payments

import (
	"context"
	"fmt"
	"time"

	"triptrek/internal/shared/config"
	"triptrek/pkg/metrics"

	razorpay "github.com/razorpay/razorpay-go"
)

// orderCreator is the slice of the Razorpay SDK the adapter uses
type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// RazorpayGateway creates orders through the Razorpay Orders API
type RazorpayGateway struct {
	orders  orderCreator
	timeout time.Duration
}

func NewRazorpayGateway(cfg config.PaymentConfig) *RazorpayGateway {
	client := razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
	return newRazorpayGateway(client.Order, cfg.Timeout)
}

func newRazorpayGateway(orders orderCreator, timeout time.Duration) *RazorpayGateway {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RazorpayGateway{orders: orders, timeout: timeout}
}

type createResult struct {
	body map[string]interface{}
	err  error
}

// CreateOrder calls the SDK on its own goroutine so the call is bounded by both
// ctx and the configured timeout. The SDK itself takes no context.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, req OrderRequest) (*GatewayOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	data := map[string]interface{}{
		"amount":          req.Amount,
		"currency":        req.Currency,
		"receipt":         req.Receipt,
		"payment_capture": 1,
	}
	if len(req.Notes) > 0 {
		data["notes"] = req.Notes
	}

	start := time.Now()
	done := make(chan createResult, 1)
	go func() {
		body, err := g.orders.Create(data, nil)
		done <- createResult{body: body, err: err}
	}()

	var res createResult
	select {
	case <-ctx.Done():
		metrics.GatewayLatency.WithLabelValues("create_order").Observe(time.Since(start).Seconds())
		return nil, &GatewayError{Op: "create order", Err: ctx.Err()}
	case res = <-done:
	}
	metrics.GatewayLatency.WithLabelValues("create_order").Observe(time.Since(start).Seconds())

	if res.err != nil {
		return nil, &GatewayError{Op: "create order", Err: res.err}
	}
	return parseOrder(res.body)
}

func parseOrder(body map[string]interface{}) (*GatewayOrder, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return nil, &GatewayError{Op: "create order", Err: fmt.Errorf("response has no order id")}
	}

	order := &GatewayOrder{ID: id}
	order.Currency, _ = body["currency"].(string)
	order.Receipt, _ = body["receipt"].(string)
	order.Status, _ = body["status"].(string)

	// JSON numbers decode to float64
	switch amount := body["amount"].(type) {
	case float64:
		order.Amount = int64(amount)
	case int64:
		order.Amount = amount
	case int:
		order.Amount = int64(amount)
	}
	return order, nil
}
