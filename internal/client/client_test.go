package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"kafila-ticketing/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitForSettled(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := models.OrderPending
		if calls.Add(1) >= 3 {
			status = models.OrderPaid
		}
		json.NewEncoder(w).Encode(models.OrderSummary{ID: "ord-1", Status: status})
	}))
	defer srv.Close()

	s, err := New(srv.URL, "").WaitForSettled(context.Background(), "ord-1", time.Millisecond, 5)

	require.NoError(t, err)
	assert.Equal(t, models.OrderPaid, s.Status)
	assert.EqualValues(t, 3, calls.Load())
}

func TestWaitForSettled_GivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(models.OrderSummary{ID: "ord-1", Status: models.OrderPending})
	}))
	defer srv.Close()

	s, err := New(srv.URL, "").WaitForSettled(context.Background(), "ord-1", time.Millisecond, 4)

	assert.ErrorIs(t, err, ErrStillPending)
	require.NotNil(t, s)
	assert.Equal(t, models.OrderPending, s.Status)
	assert.EqualValues(t, 4, calls.Load())
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"ticket already used"}`))
	}))
	defer srv.Close()

	err := New(srv.URL+"/", "tok").MarkUsed(context.Background(), "ord-1")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "ticket already used", apiErr.Message)
}

func TestValidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/scanner/validate", r.URL.Path)
		var req models.ValidateTicketRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ORDER:ord-1", req.Payload)
		json.NewEncoder(w).Encode(models.TicketSummary{OrderID: "ord-1", Name: "Asha"})
	}))
	defer srv.Close()

	s, err := New(srv.URL, "tok").Validate(context.Background(), "ORDER:ord-1")

	require.NoError(t, err)
	assert.Equal(t, "Asha", s.Name)
}
