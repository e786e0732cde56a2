package scenario

import "github.com/lmdi-explainer/lmdi-go/internal/domain"

// Revenue is the synthetic six-segment demo: Revenue = MAU x OPC x IPO x AIV.
// Factor ratios range from 0.7x to 1.6x so every factor moves visibly on a
// waterfall. Totals are roughly $310M -> $378M.
func Revenue() domain.Scenario {
	return domain.Scenario{
		Name:            "revenue",
		Title:           "Revenue decomposition by segment",
		Description:     "Synthetic demo data: monthly active users x orders per customer x items per order x average item value.",
		BaselineLabel:   "Scenario",
		ComparisonLabel: "Forecast",
		Factors: []domain.Factor{
			{Key: "mau", Label: "MAU", Color: "#2563eb"},
			{Key: "opc", Label: "OPC", Color: "#f59e0b"},
			{Key: "ipo", Label: "IPO", Color: "#22c55e"},
			{Key: "aiv", Label: "AIV", Color: "#a855f7"},
		},
		Segments: []domain.Segment{
			// MAU surge, basket value shrinks.
			{Name: "Newcomers", Before: []float64{50_000, 1.2, 2.0, 120}, After: []float64{80_000, 1.1, 2.3, 105}},
			{Name: "Spontaneous", Before: []float64{100_000, 1.8, 2.0, 95}, After: []float64{115_000, 1.65, 2.3, 100}},
			// Largest segment, steady growth.
			{Name: "Core", Before: []float64{200_000, 2.5, 2.8, 80}, After: []float64{210_000, 2.7, 3.0, 78}},
			// Fewer users spending more.
			{Name: "Super-core", Before: []float64{60_000, 4.0, 3.5, 100}, After: []float64{55_000, 4.5, 3.8, 115}},
			{Name: "Whales", Before: []float64{8_000, 6.0, 4.0, 220}, After: []float64{9_000, 5.5, 4.5, 250}},
			// Shrinking segment.
			{Name: "Anonymous", Before: []float64{300_000, 0.8, 1.5, 65}, After: []float64{250_000, 0.7, 1.4, 70}},
		},
	}
}

// UsersPrice is the single-entity Revenue = Users x Price example.
func UsersPrice() domain.Scenario {
	return domain.Scenario{
		Name:            "users-price",
		Title:           "Users x Price",
		BaselineLabel:   "Revenue0",
		ComparisonLabel: "Revenue1",
		Factors: []domain.Factor{
			{Key: "users", Label: "Users effect", Color: "#2563eb"},
			{Key: "price", Label: "Price effect", Color: "#f59e0b"},
		},
		Segments: []domain.Segment{
			{Name: "all", Before: []float64{1000, 50}, After: []float64{1200, 60}},
		},
	}
}
