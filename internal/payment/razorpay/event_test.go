package razorpay_test

import (
	"testing"

	"kafila-ticketing/internal/payment/razorpay"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaymentCaptured(t *testing.T) {
	body := []byte(`{
		"entity": "event",
		"event": "payment.captured",
		"payload": {"payment": {"entity": {
			"id": "pay_29QQoUBi66xm2f",
			"order_id": "order_9A33XWu170gUtm",
			"amount": 828980,
			"currency": "INR",
			"status": "captured"
		}}}
	}`)

	ev, err := razorpay.ParseEvent(body)
	require.NoError(t, err)

	captured, ok := ev.(razorpay.PaymentCaptured)
	require.True(t, ok)
	assert.Equal(t, "order_9A33XWu170gUtm", captured.GatewayOrderID)
	assert.Equal(t, "pay_29QQoUBi66xm2f", captured.PaymentID)
	assert.Equal(t, int64(828980), captured.Amount)
	assert.Equal(t, razorpay.EventPaymentCaptured, ev.EventType())
}

func TestParseRefundProcessed(t *testing.T) {
	body := []byte(`{
		"event": "refund.processed",
		"payload": {
			"refund": {"entity": {"id": "rfnd_1", "payment_id": "pay_1", "amount": 828980}},
			"payment": {"entity": {"id": "pay_1", "order_id": "order_1"}}
		}
	}`)

	ev, err := razorpay.ParseEvent(body)
	require.NoError(t, err)

	refund, ok := ev.(razorpay.RefundProcessed)
	require.True(t, ok)
	assert.Equal(t, "order_1", refund.GatewayOrderID)
	assert.Equal(t, "rfnd_1", refund.RefundID)
	assert.Equal(t, "pay_1", refund.PaymentID)
}

func TestParseUnrecognized(t *testing.T) {
	ev, err := razorpay.ParseEvent([]byte(`{"event":"order.paid","payload":{}}`))
	require.NoError(t, err)
	assert.Equal(t, razorpay.Unrecognized{Type: "order.paid"}, ev)
}

func TestParseMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":          `{"event":`,
		"no type":           `{"payload":{}}`,
		"capture no order":  `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1"}}}}`,
		"refund no payment": `{"event":"refund.processed","payload":{"refund":{"entity":{"id":"rfnd_1"}}}}`,
	}
	for name, body := range cases {
		_, err := razorpay.ParseEvent([]byte(body))
		assert.ErrorIs(t, err, razorpay.ErrMalformedEvent, name)
	}
}
