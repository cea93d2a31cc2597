package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wms-platform/sla-service/internal/domain"
)

// NormalizationError reports an unrecoverable raw record. Almost every
// malformed field degrades gracefully instead; only records that carry
// no data at all fail.
type NormalizationError struct {
	Index  int
	Reason string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("record %d failed normalization: %s", e.Index, e.Reason)
}

// orderTimeLayouts are tried in order when parsing raw timestamps
var orderTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
}

// Normalizer converts raw untyped records into well typed orders. It
// is a pure transform; the pipeline aggregates per-record outcomes
// into the quality summary.
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer creates a normalizer with an injected clock so that
// substituted timestamps are deterministic under test.
func NewNormalizer(now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{now: now}
}

// Normalize converts one raw record. A record fails only when it is
// nil or carries no keys; every recoverable defect is repaired and the
// order flagged as needing cleaning instead.
func (n *Normalizer) Normalize(raw map[string]any, index int) (*domain.Order, error) {
	if len(raw) == 0 {
		return nil, &NormalizationError{Index: index, Reason: "record is empty"}
	}

	now := n.now().UTC()
	order := &domain.Order{
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	orderID, ok := stringField(raw, "orderId", "order_id", "id")
	if !ok || strings.TrimSpace(orderID) == "" {
		orderID = "ORD-" + uuid.NewString()[:8]
		order.NeedsCleaning = true
	}
	order.OrderID = strings.TrimSpace(orderID)

	customer, ok := stringField(raw, "customerName", "customer_name", "customer")
	if !ok || strings.TrimSpace(customer) == "" {
		customer = "Unknown"
		order.NeedsCleaning = true
	}
	order.CustomerName = strings.TrimSpace(customer)

	platform, ok := stringField(raw, "platform", "channel", "source")
	if !ok || strings.TrimSpace(platform) == "" {
		platform = string(domain.PlatformWebsite)
		order.NeedsCleaning = true
	}
	order.Platform = domain.Platform(strings.ToLower(strings.TrimSpace(platform)))

	value, clean := numericField(raw, "orderValue", "order_value", "value", "amount")
	if !clean {
		order.NeedsCleaning = true
	}
	order.OrderValue = value

	orderTime, clean := n.timeField(raw, now, "orderTime", "order_time", "createdAt", "created_at")
	if !clean {
		order.NeedsCleaning = true
	}
	order.OrderTime = orderTime

	return order, nil
}

// stringField returns the first present key as a string
func stringField(raw map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		v, present := raw[key]
		if !present {
			continue
		}
		switch s := v.(type) {
		case string:
			return s, true
		case fmt.Stringer:
			return s.String(), true
		}
	}
	return "", false
}

// numericField parses an order value. Currency strings have everything
// except digits and dots stripped before parsing. Unparseable or
// missing values degrade to 0 with clean=false.
func numericField(raw map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		v, present := raw[key]
		if !present {
			continue
		}
		switch n := v.(type) {
		case float64:
			if n < 0 {
				return 0, false
			}
			return n, true
		case float32:
			return numericOrDirty(float64(n))
		case int:
			return numericOrDirty(float64(n))
		case int64:
			return numericOrDirty(float64(n))
		case string:
			return parseCurrency(n)
		}
		return 0, false
	}
	return 0, false
}

func numericOrDirty(n float64) (float64, bool) {
	if n < 0 {
		return 0, false
	}
	return n, true
}

// parseCurrency strips currency symbols, group separators and unit
// suffixes ("2.500.000₫", "1,500,000 VND") before parsing.
func parseCurrency(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}

	// Vietnamese amounts often use dots as thousands separators; a
	// string with multiple dots is reassembled as a plain integer.
	if strings.Count(cleaned, ".") > 1 {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	var value float64
	if _, err := fmt.Sscanf(cleaned, "%f", &value); err != nil {
		return 0, false
	}
	if value < 0 {
		return 0, false
	}
	return value, cleaned == strings.TrimSpace(s)
}

// timeField parses the order timestamp. Invalid or absent timestamps
// substitute the current wall-clock time with clean=false.
func (n *Normalizer) timeField(raw map[string]any, now time.Time, keys ...string) (time.Time, bool) {
	for _, key := range keys {
		v, present := raw[key]
		if !present {
			continue
		}
		switch t := v.(type) {
		case time.Time:
			return t.UTC(), true
		case string:
			for _, layout := range orderTimeLayouts {
				if parsed, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
					return parsed.UTC(), true
				}
			}
			return now, false
		}
		return now, false
	}
	return now, false
}
