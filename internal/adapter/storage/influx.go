package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"barflow/internal/domain/model"
	"barflow/internal/domain/port"
)

type InfluxOptions struct {
	URL          string
	Token        string
	Org          string
	Bucket       string
	WriteTimeout time.Duration
	QueryTimeout time.Duration
}

// InfluxAdapter stores bars as points of the ohlcv measurement, tagged by symbol.
type InfluxAdapter struct {
	client influxdb2.Client
	writer api.WriteAPIBlocking
	reader api.QueryAPI
	opts   InfluxOptions
}

var _ port.StoragePort = (*InfluxAdapter)(nil)

func NewInfluxAdapter(opts InfluxOptions) *InfluxAdapter {
	httpTimeout := opts.WriteTimeout
	if opts.QueryTimeout > httpTimeout {
		httpTimeout = opts.QueryTimeout
	}
	clientOpts := influxdb2.DefaultOptions()
	if httpTimeout > 0 {
		clientOpts.SetHTTPRequestTimeout(uint(httpTimeout / time.Second))
	}

	client := influxdb2.NewClientWithOptions(opts.URL, opts.Token, clientOpts)
	return &InfluxAdapter{
		client: client,
		writer: client.WriteAPIBlocking(opts.Org, opts.Bucket),
		reader: client.QueryAPI(opts.Org),
		opts:   opts,
	}
}

// WritePoints sends the batch in one blocking write request.
func (a *InfluxAdapter) WritePoints(ctx context.Context, points []model.Point) error {
	if len(points) == 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx, a.opts.WriteTimeout)
	defer cancel()

	batch := make([]*write.Point, 0, len(points))
	for _, p := range points {
		fields := make(map[string]interface{}, len(p.Fields))
		for k, v := range p.Fields {
			fields[k] = v
		}
		batch = append(batch, influxdb2.NewPoint(p.Measurement, p.Tags, fields, p.Time))
	}

	if err := a.writer.WritePoint(ctx, batch...); err != nil {
		return &model.WriteError{Symbol: points[0].Symbol(), Count: len(points), Err: err}
	}
	return nil
}

// QueryRange pivots the stored fields back into rows, oldest first.
func (a *InfluxAdapter) QueryRange(ctx context.Context, symbol string, start model.RangeStart) ([]model.SeriesRow, error) {
	ctx, cancel := withTimeout(ctx, a.opts.QueryTimeout)
	defer cancel()

	result, err := a.reader.Query(ctx, buildFluxQuery(a.opts.Bucket, symbol, start))
	if err != nil {
		return nil, &model.QueryError{Symbol: symbol, Err: err}
	}
	defer result.Close()

	out := []model.SeriesRow{}
	for result.Next() {
		rec := result.Record()

		fields := make(map[string]float64, len(model.Fields))
		for _, f := range model.Fields {
			if v, ok := toFloat(rec.ValueByKey(f)); ok {
				fields[f] = v
			}
		}

		row, err := model.RowFromFields(symbol, rec.Time().UTC(), fields)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := result.Err(); err != nil {
		return nil, &model.QueryError{Symbol: symbol, Err: err}
	}
	return out, nil
}

func (a *InfluxAdapter) Ping(ctx context.Context) error {
	ok, err := a.client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("influxdb ping: %w", err)
	}
	if !ok {
		return fmt.Errorf("influxdb ping: server not ready")
	}
	return nil
}

func (a *InfluxAdapter) Close() error {
	a.client.Close()
	return nil
}

// buildFluxQuery renders the read query. The symbol is a validated ticker and
// start a parsed range, both quoted or rendered as literals.
func buildFluxQuery(bucket, symbol string, start model.RangeStart) string {
	return fmt.Sprintf(`from(bucket: %s)
  |> range(start: %s)
  |> filter(fn: (r) => r._measurement == %s and r.symbol == %s)
  |> pivot(rowKey: ["_time"], columnKey: ["_field"], valueColumn: "_value")
  |> sort(columns: ["_time"])`,
		fluxString(bucket), start.Flux(), fluxString(model.Measurement), fluxString(symbol))
}

var fluxEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "${", `\${`)

func fluxString(s string) string {
	return `"` + fluxEscaper.Replace(s) + `"`
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
