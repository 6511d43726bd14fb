package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorUnwrapsToKind(t *testing.T) {
	err := New(ErrInsufficientStock, "Only %d item(s) available", 3)

	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.False(t, errors.Is(err, ErrOutOfStock))
	assert.Equal(t, "Only 3 item(s) available", err.Error())

	wrapped := fmt.Errorf("failed to add item: %w", err)
	assert.True(t, errors.Is(wrapped, ErrInsufficientStock))
	assert.Equal(t, "Only 3 item(s) available", Message(wrapped))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[error]int{
		New(ErrNotFound, "order 1 not found"):        http.StatusNotFound,
		New(ErrUnauthorized, "not your order"):       http.StatusForbidden,
		New(ErrStockConflict, "Widget sold out"):     http.StatusConflict,
		New(ErrInvalidTransition, "PACKED->PLACED"):  http.StatusUnprocessableEntity,
		New(ErrEmptyCart, "cart is empty"):           http.StatusBadRequest,
		ErrReasonRequired:                            http.StatusBadRequest,
		errors.New("connection reset by peer"):       http.StatusInternalServerError,
		fmt.Errorf("x: %w", New(ErrConflict, "dup")): http.StatusConflict,
	}
	for err, want := range cases {
		assert.Equal(t, want, HTTPStatus(err), err.Error())
	}
}

func TestMessageHidesInternalErrors(t *testing.T) {
	assert.Equal(t, "internal server error", Message(errors.New("pq: relation does not exist")))
	assert.Equal(t, ErrReasonRequired.Error(), Message(ErrReasonRequired))
}

func TestCode(t *testing.T) {
	assert.Equal(t, "out_of_stock", Code(New(ErrOutOfStock, "Mug is out of stock")))
	assert.Equal(t, "stock_conflict", Code(fmt.Errorf("wrapped: %w", New(ErrStockConflict, "x"))))
	assert.Equal(t, "internal", Code(errors.New("boom")))
	assert.Len(t, codes, len(kinds))
}
