package cart

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_Message(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindProductNotFound, MsgAddFailed},
		{KindNetworkFailure, MsgAddFailed},
		{KindInsufficientStock, MsgOutOfStock},
		{KindProductNotInCart, MsgRemoveFailed},
		{KindInvalidRequest, MsgUpdateFailed},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.Message())
		})
	}
}

func TestKindOf(t *testing.T) {
	cause := errors.New("timeout")
	err := fmt.Errorf("add: %w", newError(KindNetworkFailure, 3, cause))

	assert.Equal(t, KindNetworkFailure, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindUnknown, KindOf(cause))
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, "cart: network_failure (product 3): timeout", newError(KindNetworkFailure, 3, cause).Error())
	assert.Equal(t, "cart: insufficient_stock (product 1)", newError(KindInsufficientStock, 1, nil).Error())
}
