package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapperDayToX(t *testing.T) {
	m := NewMapper(Canvas{XMin: 10, YMin: 0, XMax: 310, YMax: 100}, 6, ValueRange{Min: 0, Max: 100})

	assert.Equal(t, 10, m.DayToX(0))
	assert.Equal(t, 60, m.DayToX(1))
	assert.Equal(t, 310, m.DayToX(6))
}

func TestMapperValueToY(t *testing.T) {
	m := NewMapper(Canvas{XMin: 0, YMin: 0, XMax: 300, YMax: 127}, 6, ValueRange{Min: 0, Max: 100})

	assert.Equal(t, 127, m.ValueToY(0))
	assert.Equal(t, 0, m.ValueToY(100))
	assert.Equal(t, 114, m.ValueToY(10))
	assert.Equal(t, 76, m.ValueToY(40))
}

func TestMapperValueToYDegenerateRange(t *testing.T) {
	m := NewMapper(Canvas{XMin: 0, YMin: 20, XMax: 300, YMax: 120}, 1, ValueRange{Min: 5, Max: 5})

	assert.Equal(t, 70, m.ValueToY(5))
	assert.Equal(t, 70, m.ValueToY(-1000))
}

func TestMapperXToDayRoundsUp(t *testing.T) {
	m := NewMapper(Canvas{XMin: 0, YMin: 0, XMax: 300, YMax: 100}, 6, ValueRange{Min: 0, Max: 1})

	assert.Equal(t, 0, m.XToDay(0))
	assert.Equal(t, 1, m.XToDay(1))
	assert.Equal(t, 1, m.XToDay(50))
	assert.Equal(t, 2, m.XToDay(51))
	assert.Equal(t, 0, m.XToDay(-20))
	assert.Equal(t, 8, m.XToDay(400))
}

func TestMapperXToDayZeroWidth(t *testing.T) {
	m := NewMapper(Canvas{XMin: 5, YMin: 0, XMax: 5, YMax: 100}, 10, ValueRange{Min: 0, Max: 1})

	assert.Equal(t, 0, m.XToDay(5))
	assert.Equal(t, 5, m.DayToX(7))
}

func TestMapperDayToXInverse(t *testing.T) {
	for days := 1; days <= 60; days++ {
		m := NewMapper(Canvas{XMin: 3, YMin: 0, XMax: 303, YMax: 100}, days, ValueRange{Min: 0, Max: 1})
		for n := 0; n <= days; n++ {
			got := m.XToDay(float64(m.DayToX(n)))
			assert.InDelta(t, n, got, 1, "days=%d n=%d", days, n)
		}
	}
}

func TestNewMapperClampsDays(t *testing.T) {
	m := NewMapper(Canvas{XMin: 0, YMin: 0, XMax: 100, YMax: 100}, 0, ValueRange{Min: 0, Max: 1})

	assert.Equal(t, 1, m.Days())
	assert.Equal(t, 100, m.DayToX(1))
}
