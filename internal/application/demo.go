package application

import (
	"fmt"
	"math/rand"
	"time"
)

// Demo data pools, Vietnamese e-commerce flavored
var (
	demoCustomers = []string{
		"Nguyen Van An",
		"Tran Thi Bich",
		"Le Hoang Cuong",
		"Pham Minh Duc",
		"Hoang Thu Ha",
		"Vu Quang Huy",
		"Dang Thuy Linh",
		"Bui Van Nam",
		"Do Thi Oanh",
		"Ngo Duc Thang",
	}
	demoPlatforms = []string{"tiktok", "shopee", "website"}
)

// dirtyShare is the fraction of generated records with deliberately
// malformed fields, exercising the cleaning path end to end
const dirtyShare = 0.2

// DemoGenerator produces raw order records shaped like real upload
// data, a share of them dirty.
type DemoGenerator struct {
	rng *rand.Rand
	now func() time.Time
}

// NewDemoGenerator creates a seeded generator. The same seed always
// yields the same batch.
func NewDemoGenerator(seed int64, now func() time.Time) *DemoGenerator {
	if now == nil {
		now = time.Now
	}
	return &DemoGenerator{rng: rand.New(rand.NewSource(seed)), now: now}
}

// Generate produces count raw records spanning the whole SLA range,
// from freshly placed to well past every deadline.
func (g *DemoGenerator) Generate(count int) []map[string]any {
	records := make([]map[string]any, 0, count)
	now := g.now().UTC()

	for i := 0; i < count; i++ {
		placedAgo := time.Duration(g.rng.Int63n(int64(80 * time.Hour)))
		record := map[string]any{
			"orderId":      fmt.Sprintf("ORD-%05d", i+1),
			"customerName": demoCustomers[g.rng.Intn(len(demoCustomers))],
			"platform":     demoPlatforms[g.rng.Intn(len(demoPlatforms))],
			"orderValue":   float64(g.rng.Intn(4_900)+100) * 1_000,
			"orderTime":    now.Add(-placedAgo).Format(time.RFC3339),
		}

		if g.rng.Float64() < dirtyShare {
			g.dirty(record)
		}
		records = append(records, record)
	}

	return records
}

// dirty mangles one field the way real upload data breaks
func (g *DemoGenerator) dirty(record map[string]any) {
	switch g.rng.Intn(4) {
	case 0:
		record["orderValue"] = fmt.Sprintf("%.0f ₫", record["orderValue"])
	case 1:
		record["orderTime"] = "yesterday afternoon"
	case 2:
		delete(record, "customerName")
	default:
		delete(record, "orderId")
	}
}
