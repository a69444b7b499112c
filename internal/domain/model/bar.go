package model

import "time"

// Measurement is the time-series measurement every bar is written under.
const Measurement = "ohlcv"

// Field names of a stored bar.
const (
	FieldOpen   = "open"
	FieldHigh   = "high"
	FieldLow    = "low"
	FieldClose  = "close"
	FieldVolume = "volume"
)

// Fields lists the OHLCV field names in their canonical order.
var Fields = []string{FieldOpen, FieldHigh, FieldLow, FieldClose, FieldVolume}

// Bar is one OHLCV observation as returned by the gateway.
type Bar struct {
	Time   time.Time `json:"time" parquet:"time,timestamp(millisecond)"`
	Open   float64   `json:"open" parquet:"open"`
	High   float64   `json:"high" parquet:"high"`
	Low    float64   `json:"low" parquet:"low"`
	Close  float64   `json:"close" parquet:"close"`
	Volume float64   `json:"volume" parquet:"volume"`
}

// Point is a time-series write record derived from exactly one Bar.
type Point struct {
	Measurement string
	Tags        map[string]string
	Fields      map[string]float64
	Time        time.Time
}

// Symbol returns the symbol tag of the point.
func (p Point) Symbol() string {
	return p.Tags["symbol"]
}

// NewPoint converts a bar into its write record.
func NewPoint(symbol string, bar Bar) Point {
	return Point{
		Measurement: Measurement,
		Tags:        map[string]string{"symbol": symbol},
		Fields: map[string]float64{
			FieldOpen:   bar.Open,
			FieldHigh:   bar.High,
			FieldLow:    bar.Low,
			FieldClose:  bar.Close,
			FieldVolume: bar.Volume,
		},
		Time: bar.Time,
	}
}

// PointsFromBars maps a fetched series onto points, one per bar, order preserved.
func PointsFromBars(symbol string, bars []Bar) []Point {
	points := make([]Point, 0, len(bars))
	for _, b := range bars {
		points = append(points, NewPoint(symbol, b))
	}
	return points
}

// SeriesRow is a pivoted row of the read path.
type SeriesRow struct {
	Time   time.Time `json:"time" parquet:"time,timestamp(millisecond)"`
	Open   float64   `json:"open" parquet:"open"`
	High   float64   `json:"high" parquet:"high"`
	Low    float64   `json:"low" parquet:"low"`
	Close  float64   `json:"close" parquet:"close"`
	Volume float64   `json:"volume" parquet:"volume"`
}

// RowFromFields builds a row from a pivoted field map. Missing fields are reported
// as a MalformedRowError.
func RowFromFields(symbol string, t time.Time, fields map[string]float64) (SeriesRow, error) {
	var missing []string
	for _, f := range Fields {
		if _, ok := fields[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return SeriesRow{}, &MalformedRowError{Symbol: symbol, Time: t, Missing: missing}
	}

	return SeriesRow{
		Time:   t,
		Open:   fields[FieldOpen],
		High:   fields[FieldHigh],
		Low:    fields[FieldLow],
		Close:  fields[FieldClose],
		Volume: fields[FieldVolume],
	}, nil
}

// Contract is a symbol qualified to a tradable instrument on the gateway.
type Contract struct {
	ConID    int64
	Symbol   string
	Exchange string
	Currency string
}

// HistoryRequest describes a historical pull in the gateway's own vocabulary,
// e.g. Duration "1 D" and BarSize "1 min".
type HistoryRequest struct {
	Duration string
	BarSize  string
}

// Default history request, one day of one-minute bars.
const (
	DefaultDuration = "1 D"
	DefaultBarSize  = "1 min"
)
