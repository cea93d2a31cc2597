package application

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/wms-platform/sla-service/internal/domain"
)

// Time-remaining buckets accepted by FilterSpec.TimeBucket
const (
	BucketExpired  = "expired"
	BucketUnder1h  = "under1h"
	BucketUnder4h  = "under4h"
	BucketOver4h   = "over4h"
	BucketUnknown  = "unknown"
	bucketAnyValue = ""
)

// FilterSpec is a set of AND-combined predicates. A zero value for any
// dimension means no constraint on that dimension.
type FilterSpec struct {
	Platform   string
	Carrier    string
	Status     string
	SLALevel   string
	TimeBucket string
	Search     string
	MinValue   *float64
	MaxValue   *float64
	From       *time.Time
	To         *time.Time
}

// SortSpec selects a single active sort key
type SortSpec struct {
	Field     string
	Direction string
}

// numeric sort fields compare as numbers, everything else compares
// lexicographically
var numericSortFields = map[string]func(*domain.Order) float64{
	"timeRemainingHours": func(o *domain.Order) float64 { return o.TimeRemainingHours },
	"orderValue":         func(o *domain.Order) float64 { return o.OrderValue },
	"priority":           func(o *domain.Order) float64 { return o.Priority },
}

// Apply filters and sorts a batch. The input slice is never mutated;
// callers can re-apply different specs against the same batch safely.
func Apply(orders []*domain.Order, filter FilterSpec, sortSpec SortSpec) []*domain.Order {
	result := make([]*domain.Order, 0, len(orders))
	for _, order := range orders {
		if matches(order, filter) {
			result = append(result, order)
		}
	}

	sortOrders(result, sortSpec)
	return result
}

func matches(order *domain.Order, f FilterSpec) bool {
	if f.Platform != "" && string(order.Platform) != f.Platform {
		return false
	}
	if f.Carrier != "" && order.SuggestedCarrier != f.Carrier {
		return false
	}
	if f.Status != "" && string(order.Status) != f.Status {
		return false
	}
	if f.SLALevel != "" && string(order.SLA.Level) != f.SLALevel {
		return false
	}
	if f.TimeBucket != bucketAnyValue && !inBucket(order, f.TimeBucket) {
		return false
	}
	if f.Search != "" && !matchesSearch(order, f.Search) {
		return false
	}
	if f.MinValue != nil && order.OrderValue < *f.MinValue {
		return false
	}
	if f.MaxValue != nil && order.OrderValue > *f.MaxValue {
		return false
	}
	if f.From != nil && order.OrderTime.Before(*f.From) {
		return false
	}
	if f.To != nil && order.OrderTime.After(*f.To) {
		return false
	}
	return true
}

func matchesSearch(order *domain.Order, search string) bool {
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(order.OrderID), needle) ||
		strings.Contains(strings.ToLower(order.CustomerName), needle)
}

func inBucket(order *domain.Order, bucket string) bool {
	remaining := order.TimeRemainingHours
	switch bucket {
	case BucketExpired:
		return order.SLA.Level == domain.SLALevelExpired
	case BucketUnknown:
		return order.SLA.Level == domain.SLALevelUnknown
	case BucketUnder1h:
		return order.SLA.Level != domain.SLALevelExpired && remaining < 1
	case BucketUnder4h:
		return order.SLA.Level != domain.SLALevelExpired && remaining < 4
	case BucketOver4h:
		return !math.IsInf(remaining, 1) && remaining >= 4
	default:
		return true
	}
}

func sortOrders(orders []*domain.Order, spec SortSpec) {
	if spec.Field == "" {
		return
	}
	desc := spec.Direction == "desc"

	if extract, ok := numericSortFields[spec.Field]; ok {
		sort.SliceStable(orders, func(i, j int) bool {
			a, b := finiteOrZero(extract(orders[i])), finiteOrZero(extract(orders[j]))
			if desc {
				return a > b
			}
			return a < b
		})
		return
	}

	sort.SliceStable(orders, func(i, j int) bool {
		a, b := stringFieldValue(orders[i], spec.Field), stringFieldValue(orders[j], spec.Field)
		if desc {
			return a > b
		}
		return a < b
	})
}

// finiteOrZero maps NaN to 0 so malformed values sort predictably.
// +Inf stays +Inf and therefore sorts after every finite deadline.
func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func stringFieldValue(order *domain.Order, field string) string {
	switch field {
	case "orderId":
		return order.OrderID
	case "customerName":
		return order.CustomerName
	case "platform":
		return string(order.Platform)
	case "suggestedCarrier":
		return order.SuggestedCarrier
	case "status":
		return string(order.Status)
	case "orderTime":
		return order.OrderTime.Format(time.RFC3339)
	case "slaLevel":
		return string(order.SLA.Level)
	default:
		return ""
	}
}

// Summary aggregates a batch for the dashboard header
type Summary struct {
	ExpiredCount     int     `json:"expiredCount"`
	CriticalCount    int     `json:"criticalCount"`
	WarningCount     int     `json:"warningCount"`
	SafeCount        int     `json:"safeCount"`
	UnknownCount     int     `json:"unknownCount"`
	TotalValue       float64 `json:"totalValue"`
	AvgTimeRemaining float64 `json:"avgTimeRemaining"`
	TopPlatform      string  `json:"topPlatform"`
	TopCarrier       string  `json:"topCarrier"`
}

// Summarize computes aggregate statistics over a batch. The average
// remaining time covers finite values only; unknown-policy orders are
// excluded from it but still counted in UnknownCount.
func Summarize(orders []*domain.Order) Summary {
	summary := Summary{TopPlatform: "N/A", TopCarrier: "N/A"}
	if len(orders) == 0 {
		return summary
	}

	platforms := make(map[string]int)
	carriers := make(map[string]int)
	finiteSum, finiteCount := 0.0, 0

	for _, order := range orders {
		switch order.SLA.Level {
		case domain.SLALevelExpired:
			summary.ExpiredCount++
		case domain.SLALevelWarning:
			summary.WarningCount++
		case domain.SLALevelSafe:
			summary.SafeCount++
		default:
			summary.UnknownCount++
		}
		if order.SLA.Urgency == domain.UrgencyCritical {
			summary.CriticalCount++
		}

		summary.TotalValue += order.OrderValue
		if !math.IsInf(order.TimeRemainingHours, 1) {
			finiteSum += order.TimeRemainingHours
			finiteCount++
		}

		platforms[string(order.Platform)]++
		carriers[order.SuggestedCarrier]++
	}

	if finiteCount > 0 {
		summary.AvgTimeRemaining = finiteSum / float64(finiteCount)
	}
	summary.TopPlatform = mode(platforms)
	summary.TopCarrier = mode(carriers)

	return summary
}

// mode returns the most frequent key, breaking ties lexicographically
// so repeated summaries over the same batch are deterministic
func mode(counts map[string]int) string {
	best, bestCount := "N/A", 0
	for key, count := range counts {
		if count > bestCount || (count == bestCount && key < best) {
			best, bestCount = key, count
		}
	}
	return best
}
