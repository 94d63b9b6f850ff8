// Package discovery resolves logical service names to concrete endpoints
// for the load-balancing transport.
//
// A Discovery backend answers "which instances serve this name"; a Selector
// picks one per request according to a load-balancing strategy. The static
// backend holds a fixed table and suits local development and tests; real
// deployments plug in their own backend behind the same interface.
package discovery
