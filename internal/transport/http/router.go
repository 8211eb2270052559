package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/rocketshoes/internal/handlers/cart"
	"github.com/Skotchmaster/rocketshoes/internal/middleware/csrf"
	"github.com/Skotchmaster/rocketshoes/internal/middleware/session"
	"github.com/labstack/echo/v4"
)

type Deps struct {
	CartHandler *cart.CartHandler
	JWTSecret   []byte
	// CSRF, when set, guards the cart routes with a double-submit token.
	CSRF *csrf.Config
	// Ready reports whether backing services are reachable.
	Ready func() error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
			}
		}
		return c.NoContent(http.StatusOK)
	})

	v1 := e.Group("/api/v1")

	mw := []echo.MiddlewareFunc{session.Middleware(d.JWTSecret)}
	if d.CSRF != nil {
		mw = append(mw, csrf.Middleware(*d.CSRF))
	}
	cartGroup := v1.Group("/cart", mw...)

	cartGroup.GET("", d.CartHandler.GetCart)
	cartGroup.DELETE("", d.CartHandler.ClearCart)
	cartGroup.POST("/reload", d.CartHandler.ReloadCart)
	cartGroup.GET("/events", d.CartHandler.Events)
	cartGroup.POST("/items", d.CartHandler.AddProduct)
	cartGroup.PATCH("/items/:id", d.CartHandler.UpdateProductAmount)
	cartGroup.DELETE("/items/:id", d.CartHandler.RemoveProduct)
}
