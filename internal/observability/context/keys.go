// Package context carries per-request identifiers used for log and audit
// correlation: the inbound request id, the payer (customer) id and the
// deposit order id.
package context

import "context"

type contextKey string

const (
	requestIDKey  contextKey = "observability_request_id"
	customerIDKey contextKey = "observability_customer_id"
	orderIDKey    contextKey = "observability_order_id"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

func WithCustomerID(ctx context.Context, customerID string) context.Context {
	if ctx == nil || customerID == "" {
		return ctx
	}
	return context.WithValue(ctx, customerIDKey, customerID)
}

func CustomerIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(customerIDKey).(string)
	return value
}

func WithOrderID(ctx context.Context, orderID string) context.Context {
	if ctx == nil || orderID == "" {
		return ctx
	}
	return context.WithValue(ctx, orderIDKey, orderID)
}

func OrderIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(orderIDKey).(string)
	return value
}
