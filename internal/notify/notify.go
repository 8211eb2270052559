// Package notify delivers cart failure messages to the user-facing side.
package notify

import (
	"context"

	"github.com/Skotchmaster/rocketshoes/internal/cart"
	"github.com/Skotchmaster/rocketshoes/internal/logging"
)

// Logger writes every notification to the request logger as a toast entry.
type Logger struct{}

func (Logger) Notify(ctx context.Context, n cart.Notification) {
	logging.FromContext(ctx).Warn("toast",
		"kind", n.Kind.String(),
		"product_id", n.ProductID,
		"message", n.Message,
	)
}

// Func adapts a plain function to cart.Notifier.
type Func func(ctx context.Context, n cart.Notification)

func (f Func) Notify(ctx context.Context, n cart.Notification) {
	f(ctx, n)
}
