package application

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/wms-platform/sla-service/internal/domain"
)

// csvHeader is the export field contract, in column order
var csvHeader = []string{
	"orderId",
	"customerName",
	"platform",
	"suggestedCarrier",
	"orderValue",
	"timeRemainingHours",
	"priority",
}

// WriteCSV serializes a batch as comma-delimited CSV with a header
// row. Remaining time renders with one decimal, "N/A" when no policy
// applies; priority renders rounded.
func WriteCSV(w io.Writer, orders []*domain.Order) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, order := range orders {
		record := []string{
			order.OrderID,
			order.CustomerName,
			string(order.Platform),
			order.SuggestedCarrier,
			strconv.FormatFloat(order.OrderValue, 'f', -1, 64),
			formatRemaining(order.TimeRemainingHours),
			strconv.FormatFloat(math.Round(order.Priority), 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record %s: %w", order.OrderID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatRemaining(hours float64) string {
	if math.IsInf(hours, 1) {
		return "N/A"
	}
	return strconv.FormatFloat(hours, 'f', 1, 64)
}
