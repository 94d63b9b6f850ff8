// Package client turns declared HTTP service client interfaces into
// configured, callable proxies.
//
// An application declares each remote service as a Declaration (the
// interface type plus name, url, path and override attributes), hands the
// declarations to a Registrar, and resolves ready-to-use proxies from the
// di container. Between those two points sits the engine this package
// implements: identity resolution with precedence-ordered name attributes,
// a two-level component Registry (process defaults plus per-client scopes),
// a Composer that merges code-declared configuration with external profiles
// in either precedence order, and a target step that binds the composed
// Builder to a direct or load-balancing Transport before a Targeter
// materializes the proxy.
//
// # Declaring and resolving a client
//
//	scanner := client.NewStaticScanner(client.Declaration{
//	    Type: reflect.TypeOf((*OrdersAPI)(nil)).Elem(),
//	    Name: "orders",
//	    Path: "/api/v1",
//	    Build: func(c client.Caller) any { return &ordersClient{c} },
//	})
//
//	registry := client.NewRegistry()
//	client.RegisterStandardComponents(registry, log)
//	container := di.NewContainer()
//
//	registrar := client.NewRegistrar(scanner, registry, container)
//	err := registrar.Register(client.ScanOptions{BasePackages: []string{"myapp/orders"}})
//
//	orders := di.MustResolve[OrdersAPI](container, "ordersClient")
//
// Scanning only records metadata; the builder is composed and the proxy
// constructed on first resolution, exactly once per context id.
package client
