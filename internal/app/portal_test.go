package app

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"barflow/internal/infrastructure/config"
)

// fakePortal serves every symbol as a USD stock on SMART. Logging out ends the
// brokerage login for all clients, as the real gateway does.
type fakePortal struct {
	mu            sync.Mutex
	authenticated bool
	conids        map[string]int
	logouts       int
}

func (f *fakePortal) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	q := r.URL.Query()

	switch r.URL.Path {
	case "/v1/api/iserver/auth/status":
		fmt.Fprintf(w, `{"authenticated":%t,"connected":true}`, f.authenticated)
	case "/v1/api/tickle":
		fmt.Fprint(w, `{"session":"abc"}`)
	case "/v1/api/logout":
		f.authenticated = false
		f.logouts++
		fmt.Fprint(w, `{"status":true}`)
	case "/v1/api/iserver/secdef/search":
		symbol := q.Get("symbol")
		if _, ok := f.conids[symbol]; !ok {
			f.conids[symbol] = len(f.conids) + 1
		}
		fmt.Fprintf(w, `[{"conid":%d,"symbol":%q}]`, f.conids[symbol], symbol)
	case "/v1/api/iserver/secdef/info":
		fmt.Fprintf(w, `[{"conid":%s,"currency":"USD","validExchanges":"SMART,NYSE"}]`, q.Get("conid"))
	case "/v1/api/iserver/marketdata/history":
		if !f.authenticated {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"not authenticated"}`)
			return
		}
		t := time.Now().Add(-time.Hour).Truncate(time.Minute).UnixMilli()
		fmt.Fprintf(w, `{"data":[{"o":1,"h":2,"l":0.5,"c":1.5,"v":10,"t":%d}]}`, t)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakePortal) state() (authenticated bool, logouts int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authenticated, f.logouts
}

// pointAtPortal starts a TLS portal and points cfg's gateway at it.
func pointAtPortal(t *testing.T, cfg *config.Config) *fakePortal {
	t.Helper()
	portal := &fakePortal{authenticated: true, conids: map[string]int{}}
	srv := httptest.NewTLSServer(portal)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	cfg.Gateway.Host = u.Hostname()
	cfg.Gateway.Port = port
	cfg.Gateway.InsecureSkipVerify = true
	cfg.Gateway.CallTimeout = 5 * time.Second
	return portal
}
