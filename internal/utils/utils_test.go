package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kafila-ticketing/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{models.ErrEmptyCart, 400, "cart is empty"},
		{fmt.Errorf("%w: unknown tier", models.ErrInvalidSelection), 400, "invalid ticket selection"},
		{models.ErrInvalidSignature, 400, "invalid signature"},
		{models.ErrMalformedCredential, 400, "invalid QR code"},
		{models.ErrPaymentIncomplete, 400, "payment not completed or refunded"},
		{fmt.Errorf("lookup: %w", models.ErrOrderNotFound), 404, "order not found"},
		{models.ErrAlreadyUsed, 409, "ticket already used"},
		{models.ErrOrderExpired, 410, "order expired"},
		{&RequestError{Message: "bad"}, 400, "bad"},
		{errors.New("pq: connection refused"), 500, ""},
	}
	for _, tc := range cases {
		status, msg := StatusFor(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.msg, msg, tc.err.Error())
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	status := WriteError(rec, errors.New("pq: password authentication failed"), "Unable to initiate payment")

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Unable to initiate payment", body.Error)
}

type sample struct {
	Email string `json:"email" validate:"required,email"`
	Qty   int    `json:"qty" validate:"gte=1"`
}

func TestDecodeJSON(t *testing.T) {
	var s sample
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","qty":2}`))
	require.NoError(t, DecodeJSON(httptest.NewRecorder(), req, 1024, &s))
	assert.Equal(t, 2, s.Qty)
}

func TestDecodeJSONErrors(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{"", "request body is empty"},
		{"{", "invalid JSON body"},
		{`{"email":"nope","qty":1}`, "email failed email"},
		{`{"email":"a@b.co","qty":0}`, "qty failed gte"},
		{`{"email":"` + strings.Repeat("a", 2048) + `"}`, "request body too large"},
	}
	for _, tc := range cases {
		var s sample
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(tc.body))
		err := DecodeJSON(httptest.NewRecorder(), req, 1024, &s)

		var reqErr *RequestError
		require.ErrorAs(t, err, &reqErr, tc.body)
		assert.Contains(t, strings.ToLower(reqErr.Message), strings.ToLower(tc.want))
	}
}

func TestGenerators(t *testing.T) {
	r := GenerateReceipt()
	assert.True(t, strings.HasPrefix(r, "rcpt_"))
	assert.LessOrEqual(t, len(r), 40)

	_, err := uuid.Parse(GenerateOrderID())
	assert.NoError(t, err)
	assert.NotEqual(t, GenerateOrderID(), GenerateOrderID())
}
