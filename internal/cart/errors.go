package cart

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindProductNotFound
	KindInsufficientStock
	KindProductNotInCart
	KindInvalidRequest
	KindNetworkFailure
)

const (
	MsgAddFailed    = "Erro na adição do produto"
	MsgOutOfStock   = "Quantidade solicitada fora de estoque"
	MsgRemoveFailed = "Erro na remoção do produto"
	MsgUpdateFailed = "Erro na alteração de quantidade do produto"
)

func (k Kind) String() string {
	switch k {
	case KindProductNotFound:
		return "product_not_found"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindProductNotInCart:
		return "product_not_in_cart"
	case KindInvalidRequest:
		return "invalid_request"
	case KindNetworkFailure:
		return "network_failure"
	default:
		return "unknown"
	}
}

// Message is the text shown to the user when an operation fails with k.
func (k Kind) Message() string {
	switch k {
	case KindInsufficientStock:
		return MsgOutOfStock
	case KindProductNotInCart:
		return MsgRemoveFailed
	case KindInvalidRequest:
		return MsgUpdateFailed
	default:
		return MsgAddFailed
	}
}

type Error struct {
	Kind      Kind
	ProductID int
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cart: %s (product %d): %v", e.Kind, e.ProductID, e.Err)
	}
	return fmt.Sprintf("cart: %s (product %d)", e.Kind, e.ProductID)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, productID int, err error) *Error {
	return &Error{Kind: kind, ProductID: productID, Err: err}
}

// KindOf returns the Kind carried by err, or KindUnknown when err is not a
// cart error.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}
