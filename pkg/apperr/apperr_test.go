package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vancyferns/near2door/pkg/apperr"
)

func TestStatusMapping(t *testing.T) {
	cases := map[error]int{
		apperr.InvalidInput("name is required"): http.StatusBadRequest,
		apperr.InvalidID("shop"):                http.StatusBadRequest,
		apperr.Conflict("email exists"):         http.StatusConflict,
		apperr.Unauthorized("bad credentials"):  http.StatusUnauthorized,
		apperr.Forbidden("pending"):             http.StatusForbidden,
		apperr.NotFound("order"):                http.StatusNotFound,
		errors.New("boom"):                      http.StatusInternalServerError,
	}

	for err, want := range cases {
		assert.Equal(t, want, apperr.Status(err), err.Error())
	}
}

func TestWrappedErrorsKeepTheirKind(t *testing.T) {
	err := fmt.Errorf("approve shop: %w", apperr.NotFound("shop"))

	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.False(t, errors.Is(err, apperr.ErrConflict))
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "invalid product id", apperr.InvalidID("product").Error())
	assert.Equal(t, "account not found", apperr.NotFound("account").Error())

	cause := errors.New("connection refused")
	err := apperr.Internal("load orders", cause)
	assert.Equal(t, "load orders: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
}
