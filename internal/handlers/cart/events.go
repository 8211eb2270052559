package cart

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Skotchmaster/rocketshoes/internal/logging"
	"github.com/Skotchmaster/rocketshoes/internal/models"
	"github.com/labstack/echo/v4"
)

// Events streams the session cart as server-sent events: the current cart
// first, then every published update until the client goes away. Updates a
// slow client has not read yet are replaced by the newest cart.
func (h *CartHandler) Events(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.events")
	store, err := h.store(c)
	if err != nil {
		return err
	}

	updates := make(chan models.Cart, 1)
	unsubscribe := store.Subscribe(func(ct models.Cart) {
		select {
		case updates <- ct:
		default:
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- ct:
			default:
			}
		}
	})
	defer unsubscribe()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)

	if err := writeEvent(res, store.Cart()); err != nil {
		l.Warn("cart_events_write_error", "error", err)
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ct := <-updates:
			if err := writeEvent(res, ct); err != nil {
				l.Warn("cart_events_write_error", "error", err)
				return nil
			}
		}
	}
}

func writeEvent(res *echo.Response, ct models.Cart) error {
	data, err := json.Marshal(newCartResponse(ct))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "event: cart\ndata: %s\n\n", data); err != nil {
		return err
	}
	res.Flush()
	return nil
}
