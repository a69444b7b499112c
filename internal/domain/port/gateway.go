package port

import (
	"context"

	"barflow/internal/domain/model"
)

// GatewayPort is a session with a market-data gateway. Only one request is in
// flight per session; callers connect before fetching.
type GatewayPort interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	IsConnected() bool
	FetchHistoricalBars(ctx context.Context, symbol string, req model.HistoryRequest) ([]model.Bar, error)
	Name() string
}

// GatewayFactory opens a gateway for one worker. Workers get distinct slots so
// parallel sessions never share a client identifier.
type GatewayFactory func(mode model.DataMode, slot int) (GatewayPort, error)
