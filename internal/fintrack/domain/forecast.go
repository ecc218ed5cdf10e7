package domain

// CategoryForecast is next week's predicted spend for one category, one
// amount per day.
type CategoryForecast struct {
	Category  string    `json:"category"`
	Daily     []float64 `json:"daily"`
	WeekTotal float64   `json:"weekTotal"`
}

// Forecast is the predicted spend of every category.
type Forecast []CategoryForecast

// Total sums the weekly totals of every category.
func (f Forecast) Total() float64 {
	var sum float64
	for _, c := range f {
		sum += c.WeekTotal
	}
	return sum
}
