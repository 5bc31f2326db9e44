package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/pkg/clock"
	"cinema-reservation/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope struct {
	Status  bool            `json:"status"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

type testServer struct {
	t          *testing.T
	srv        *httptest.Server
	clk        *clock.Manual
	showtimeID string
	seats      map[string]string
}

func newTestServer(t *testing.T, burst int) *testServer {
	t.Helper()
	config := &utils.Config{
		Hold:      utils.HoldConfig{TTL: 15 * time.Minute, SweepInterval: 30 * time.Second, SweepBatch: 100, LazyExpiry: true},
		RateLimit: utils.RateLimitConfig{RPS: 0.001, Burst: burst},
	}
	clk := clock.NewManual(time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC))
	app := Wiring(repository.NewMemoryRepository(zap.NewNop()), config, usecase.Dependencies{Clock: clk}, zap.NewNop())

	ts := &testServer{t: t, srv: httptest.NewServer(app.Router), clk: clk, showtimeID: uuid.NewString(), seats: map[string]string{}}
	t.Cleanup(ts.srv.Close)

	res, body := ts.do(http.MethodPost, "/api/admin/showtimes/"+ts.showtimeID+"/seats", map[string]any{
		"seats": []map[string]any{
			{"seatRow": "A", "seatColumn": 1, "seatType": "standard", "price": 50000},
			{"seatRow": "A", "seatColumn": 2, "seatType": "standard", "price": 50000},
			{"seatRow": "A", "seatColumn": 3, "seatType": "vip", "price": 75000},
			{"seatRow": "B", "seatColumn": 1, "seatType": "standard", "price": 50000},
		},
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var scheduled struct {
		Seats []struct {
			SeatID     string `json:"seatId"`
			SeatNumber string `json:"seatNumber"`
		} `json:"seats"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &scheduled))
	for _, s := range scheduled.Seats {
		ts.seats[s.SeatNumber] = s.SeatID
	}
	return ts
}

func (ts *testServer) do(method, path string, payload any) (*http.Response, envelope) {
	ts.t.Helper()
	var buf bytes.Buffer
	if payload != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(payload))
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, &buf)
	require.NoError(ts.t, err)
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	require.NoError(ts.t, err)
	defer res.Body.Close()

	var body envelope
	require.NoError(ts.t, json.NewDecoder(res.Body).Decode(&body))
	return res, body
}

func (ts *testServer) hold(labels ...string) (*http.Response, envelope) {
	ids := make([]string, len(labels))
	for i, l := range labels {
		ids[i] = ts.seats[l]
	}
	return ts.do(http.MethodPost, "/api/hold", map[string]any{"showtimeId": ts.showtimeID, "seatIds": ids})
}

func (ts *testServer) seatStatus() map[string]string {
	res, body := ts.do(http.MethodGet, "/api/seats?showtimeId="+ts.showtimeID, nil)
	require.Equal(ts.t, http.StatusOK, res.StatusCode)
	var seats []struct {
		SeatNumber string `json:"seatNumber"`
		Status     string `json:"status"`
	}
	require.NoError(ts.t, json.Unmarshal(body.Data, &seats))
	out := map[string]string{}
	for _, s := range seats {
		out[s.SeatNumber] = s.Status
	}
	return out
}

func holdID(t *testing.T, body envelope) string {
	var created struct {
		HoldID     string `json:"holdId"`
		TTLSeconds int64  `json:"ttlSeconds"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &created))
	assert.Equal(t, int64(900), created.TTLSeconds)
	return created.HoldID
}

func TestBookingFlow(t *testing.T) {
	ts := newTestServer(t, 10)

	res, body := ts.hold("A1", "A3")
	require.Equal(t, http.StatusCreated, res.StatusCode)
	id := holdID(t, body)
	assert.Equal(t, map[string]string{"A1": "Pending", "A2": "Available", "A3": "Pending", "B1": "Available"}, ts.seatStatus())

	res, body = ts.do(http.MethodGet, "/api/holds/"+id, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var hold struct {
		Status           string   `json:"status"`
		SeatIDs          []string `json:"seatIds"`
		TotalPrice       int64    `json:"totalPrice"`
		RemainingSeconds int64    `json:"remainingSeconds"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &hold))
	assert.Equal(t, "active", hold.Status)
	assert.Len(t, hold.SeatIDs, 2)
	assert.Equal(t, int64(125000), hold.TotalPrice)
	assert.Equal(t, int64(900), hold.RemainingSeconds)

	res, body = ts.do(http.MethodPost, "/api/confirm", map[string]any{
		"holdId":       id,
		"customerInfo": map[string]any{"name": "Sari", "email": "sari@example.com"},
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var confirmed struct {
		Ticket struct {
			TicketID   string `json:"ticketId"`
			TotalPrice int64  `json:"totalPrice"`
		} `json:"ticket"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &confirmed))
	assert.Equal(t, int64(125000), confirmed.Ticket.TotalPrice)
	assert.Equal(t, "Booked", ts.seatStatus()["A1"])

	res, _ = ts.do(http.MethodGet, "/api/tickets/"+confirmed.Ticket.TicketID, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, body = ts.do(http.MethodPost, "/api/cancel", map[string]any{"holdId": id})
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"success":false}`, string(body.Data))
}

func TestHold_ConflictReportsSeats(t *testing.T) {
	ts := newTestServer(t, 10)
	res, _ := ts.hold("A1", "A2")
	require.Equal(t, http.StatusCreated, res.StatusCode)

	res, body := ts.hold("A2", "B1")

	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.Equal(t, "SeatUnavailable", body.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"code":"SeatUnavailable","seatIds":[%q]}`, ts.seats["A2"]), string(body.Errors))
	assert.Equal(t, "Available", ts.seatStatus()["B1"])
}

func TestConfirm_ExpiredHoldIsGone(t *testing.T) {
	ts := newTestServer(t, 10)
	_, body := ts.hold("B1")
	id := holdID(t, body)

	ts.clk.Advance(16 * time.Minute)
	res, body := ts.do(http.MethodPost, "/api/admin/sweep", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"expired":1}`, string(body.Data))

	res, body = ts.do(http.MethodPost, "/api/confirm", map[string]any{
		"holdId":       id,
		"customerInfo": map[string]any{"name": "Sari", "email": "sari@example.com"},
	})
	assert.Equal(t, http.StatusGone, res.StatusCode)
	assert.Equal(t, "HoldExpired", body.Code)
	assert.Equal(t, "Available", ts.seatStatus()["B1"])
}

func TestRequestValidation(t *testing.T) {
	ts := newTestServer(t, 10)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"seats without showtime", http.MethodGet, "/api/seats", nil, http.StatusBadRequest},
		{"seats bad showtime", http.MethodGet, "/api/seats?showtimeId=nope", nil, http.StatusBadRequest},
		{"hold without seats", http.MethodPost, "/api/hold", map[string]any{"showtimeId": ts.showtimeID}, http.StatusBadRequest},
		{"hold malformed seat id", http.MethodPost, "/api/hold", map[string]any{"showtimeId": ts.showtimeID, "seatIds": []string{"x"}}, http.StatusBadRequest},
		{"confirm bad email", http.MethodPost, "/api/confirm", map[string]any{"holdId": uuid.NewString(), "customerInfo": map[string]any{"name": "a", "email": "b"}}, http.StatusBadRequest},
		{"confirm unknown hold", http.MethodPost, "/api/confirm", map[string]any{"holdId": uuid.NewString(), "customerInfo": map[string]any{"name": "a", "email": "a@b.co"}}, http.StatusNotFound},
		{"cancel unknown hold", http.MethodPost, "/api/cancel", map[string]any{"holdId": uuid.NewString()}, http.StatusNotFound},
		{"unknown ticket", http.MethodGet, "/api/tickets/" + uuid.NewString(), nil, http.StatusNotFound},
		{"bad hold id", http.MethodGet, "/api/holds/123", nil, http.StatusBadRequest},
		{"negative price", http.MethodPut, "/api/admin/seats/" + uuid.NewString() + "/price", map[string]any{"price": -5}, http.StatusBadRequest},
		{"summary unknown showtime", http.MethodGet, "/api/admin/showtimes/" + uuid.NewString(), nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, body := ts.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, res.StatusCode)
			assert.False(t, body.Status)
		})
	}
}

func TestRemoveShowtime_BlockedWhileHeld(t *testing.T) {
	ts := newTestServer(t, 10)
	_, body := ts.hold("A2")
	id := holdID(t, body)

	res, _ := ts.do(http.MethodDelete, "/api/admin/showtimes/"+ts.showtimeID, nil)
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	res, _ = ts.do(http.MethodPost, "/api/cancel", map[string]any{"holdId": id})
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, body = ts.do(http.MethodDelete, "/api/admin/showtimes/"+ts.showtimeID, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, fmt.Sprintf(`{"showtimeId":%q,"removedSeats":4}`, ts.showtimeID), string(body.Data))
}

func TestHold_RateLimited(t *testing.T) {
	ts := newTestServer(t, 1)

	res, _ := ts.hold("A1")
	require.Equal(t, http.StatusCreated, res.StatusCode)

	res, _ = ts.hold("A2")
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)

	// other routes are not limited
	res, _ = ts.do(http.MethodGet, "/api/seats?showtimeId="+ts.showtimeID, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, 1)

	res, err := http.Get(ts.srv.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
