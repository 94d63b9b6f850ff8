// Package logger provides structured logging for clientkit using zerolog.
//
// It supports JSON and console output, log level configuration, and
// component-scoped loggers with structured fields. A client's builder
// receives its logger as a registered component, so per-client log
// configuration flows through the same scopes as every other override.
//
// # Usage
//
//	log := logger.NewDefault("orders")
//	log.Info("client resolved", logger.Fields("context_id", "orders"))
package logger
