// Package di provides the name-keyed dependency container clientkit
// registers client factories into.
//
// Registrations are written once during scanning and resolved lazily:
// the first Resolve of a lazy key runs its constructor under a per-key
// double-checked lock, so concurrent first access performs exactly one
// construction. Construction failures propagate to the caller, leave the
// registration uninitialized for a later attempt, and never affect other
// keys. Duplicate keys and aliases are rejected at registration time.
//
// # Registration
//
//	c := di.NewContainer()
//	err := c.RegisterLazy("ordersClient", func() (any, error) {
//	    return buildOrdersClient()
//	})
//
// # Resolution
//
//	client, err := di.Resolve[OrdersAPI](c, "ordersClient")
package di
