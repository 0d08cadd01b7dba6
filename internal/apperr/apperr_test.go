package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errShopMissing = NotFound("shop not found")

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("resolve: %w", errShopMissing)

	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, IsNotFound(err))
	assert.True(t, errors.Is(err, errShopMissing))
	assert.False(t, errors.Is(err, NotFound("product not found")))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindNotFound:     http.StatusNotFound,
		KindConflict:     http.StatusConflict,
		KindValidation:   http.StatusBadRequest,
		KindForbidden:    http.StatusForbidden,
		KindUnauthorized: http.StatusUnauthorized,
		KindInternal:     http.StatusInternalServerError,
	}
	for kind, want := range cases {
		t.Run(kind.String(), func(t *testing.T) {
			assert.Equal(t, want, kind.HTTPStatus())
		})
	}
}

func TestWrapMessage(t *testing.T) {
	cause := errors.New("duplicate entry")
	err := Wrap(KindConflict, "email already registered", cause)

	require.Equal(t, "email already registered: duplicate entry", err.Error())
	require.ErrorIs(t, err, cause)
}
