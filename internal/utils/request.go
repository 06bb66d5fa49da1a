package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RequestError is a malformed or invalid request body.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string { return e.Message }

// DecodeJSON reads at most limit bytes of JSON into dst and runs its
// validate tags.
func DecodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst interface{}) error {
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &RequestError{Message: "request body is empty"}
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return &RequestError{Message: "request body too large"}
		}
		return &RequestError{Message: "invalid JSON body"}
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return &RequestError{Message: describe(verrs)}
		}
		return &RequestError{Message: "invalid request"}
	}
	return nil
}

func describe(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fieldPath(fe.Namespace()), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// fieldPath drops the root struct name: "CreateOrderRequest.Customer.Email" → "Customer.Email".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
