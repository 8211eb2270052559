package cart

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Skotchmaster/rocketshoes/internal/cart"
	"github.com/Skotchmaster/rocketshoes/internal/logging"
	"github.com/Skotchmaster/rocketshoes/internal/middleware/session"
	"github.com/Skotchmaster/rocketshoes/internal/models"
	"github.com/labstack/echo/v4"
)

type CartHandler struct {
	Carts *cart.Registry
}

type Response struct {
	Status  string `json:"status"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

type CartResponse struct {
	Items models.Cart `json:"items"`
	Total float64     `json:"total"`
}

func newCartResponse(c models.Cart) CartResponse {
	return CartResponse{Items: c, Total: c.Total()}
}

// store opens the session cart. A cart whose slot cannot be read is reported
// as 503 so the request never works on an empty stand-in.
func (h *CartHandler) store(c echo.Context) (*cart.Store, error) {
	ctx := c.Request().Context()
	s, err := h.Carts.Get(ctx, session.ID(c))
	if err != nil {
		logging.FromContext(ctx).Error("cart_open_error", "error", err)
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "cart is temporarily unavailable")
	}
	return s, nil
}

func (h *CartHandler) GetCart(c echo.Context) error {
	store, err := h.store(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCartResponse(store.Cart()))
}

func (h *CartHandler) AddProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "add.product")

	var req struct {
		ProductID int `json:"product_id"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("add_product_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, Response{Status: "error", Message: cart.MsgAddFailed})
	}
	if req.ProductID <= 0 {
		l.Warn("add_product_error", "status", 400)
		return c.JSON(http.StatusBadRequest, Response{Status: "error", Message: cart.MsgAddFailed})
	}

	store, err := h.store(c)
	if err != nil {
		return err
	}
	if err := store.AddProduct(ctx, req.ProductID); err != nil {
		return h.fail(c, l, err)
	}

	l.Info("product added to cart", "product_id", req.ProductID)
	return c.JSON(http.StatusOK, newCartResponse(store.Cart()))
}

func (h *CartHandler) UpdateProductAmount(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "update.product.amount")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, Response{Status: "error", Message: cart.MsgUpdateFailed})
	}

	var req struct {
		Amount int `json:"amount"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("update_product_amount_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, Response{Status: "error", Message: cart.MsgUpdateFailed})
	}

	store, err := h.store(c)
	if err != nil {
		return err
	}
	if err := store.UpdateProductAmount(ctx, id, req.Amount); err != nil {
		return h.fail(c, l, err)
	}

	l.Info("product amount updated", "product_id", id, "amount", req.Amount)
	return c.JSON(http.StatusOK, newCartResponse(store.Cart()))
}

func (h *CartHandler) RemoveProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "remove.product")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, Response{Status: "error", Message: cart.MsgRemoveFailed})
	}

	store, err := h.store(c)
	if err != nil {
		return err
	}
	if err := store.RemoveProduct(ctx, id); err != nil {
		return h.fail(c, l, err)
	}

	l.Info("product removed from cart", "product_id", id)
	return c.JSON(http.StatusOK, newCartResponse(store.Cart()))
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "clear.cart")

	store, err := h.store(c)
	if err != nil {
		return err
	}
	if err := store.Clear(ctx); err != nil {
		return h.fail(c, l, err)
	}

	l.Info("cart cleared")
	return c.JSON(http.StatusOK, newCartResponse(store.Cart()))
}

// ReloadCart replaces the session cart with its persisted snapshot.
func (h *CartHandler) ReloadCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reload.cart")

	store, err := h.store(c)
	if err != nil {
		return err
	}
	if err := store.Reload(ctx); err != nil {
		l.Error("cart_reload_error", "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "cart is temporarily unavailable")
	}

	l.Info("cart reloaded")
	return c.JSON(http.StatusOK, newCartResponse(store.Cart()))
}

func (h *CartHandler) fail(c echo.Context, l *slog.Logger, err error) error {
	kind := cart.KindOf(err)
	if kind == cart.KindUnknown {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}

	status := StatusFor(kind)
	l.Warn("cart_operation_error", "status", status, "kind", kind.String(), "error", err)
	return c.JSON(status, Response{Status: "error", Kind: kind.String(), Message: kind.Message()})
}

func StatusFor(kind cart.Kind) int {
	switch kind {
	case cart.KindProductNotFound, cart.KindProductNotInCart:
		return http.StatusNotFound
	case cart.KindInsufficientStock:
		return http.StatusConflict
	case cart.KindInvalidRequest:
		return http.StatusBadRequest
	case cart.KindNetworkFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
