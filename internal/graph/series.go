package graph

// Series holds the forward-filled value of every day of a date range
type Series struct {
	entering float64
	values   []float64
}

// Materialize fills the value of every day offset in dates from the sparse
// reports. Days before the first report carry the value entering the range
// and days without a report carry the previous day's value. The entering
// value is the latest report dated before the range, or start when there is
// none. Reports after the range are ignored.
func Materialize(start float64, reports []Report, dates DateRange) Series {
	days := dates.Days()

	entering := start
	before := 0
	sparse := make(map[int]float64, len(reports))
	for _, r := range reports {
		n := dates.Offset(r.Date)
		switch {
		case n < 0:
			if before == 0 || n > before {
				entering, before = r.Value, n
			}
		case n < days:
			sparse[n] = r.Value
		}
	}

	values := make([]float64, days)
	running := entering
	for d := range values {
		if v, ok := sparse[d]; ok {
			running = v
		}
		values[d] = running
	}

	return Series{entering: entering, values: values}
}

// EffectiveValue returns the value at day offset d. Offsets before the range
// return the entering value, offsets past it return the last value.
func (s Series) EffectiveValue(d int) float64 {
	if d < 0 || len(s.values) == 0 {
		return s.entering
	}
	if d >= len(s.values) {
		return s.values[len(s.values)-1]
	}
	return s.values[d]
}

// Boundary returns the value at the day boundary n, the left edge of day
// offset n. Boundary 0 is the entering value and boundary n > 0 is the value
// at the end of day n-1.
func (s Series) Boundary(n int) float64 {
	return s.EffectiveValue(n - 1)
}

// Last returns the value at the end of the final day
func (s Series) Last() float64 {
	return s.EffectiveValue(len(s.values) - 1)
}

// Len returns the number of materialized days
func (s Series) Len() int {
	return len(s.values)
}
