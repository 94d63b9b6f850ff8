// Package profiles loads externally supplied named configuration profiles
// for declared clients.
//
// A profile is a named bucket of overrides (timeouts, log level, retry
// policy, interceptors, codecs) keyed by context id, plus one reserved
// default profile applied to every client. Whether profiles override
// code-declared configuration or the other way around is selected by
// default_to_properties.
//
// # File format
//
//	clients:
//	  default_to_properties: true
//	  default_config: default
//	  config:
//	    default:
//	      log_level: basic
//	      connect_timeout: 5s
//	      read_timeout: 10s
//	    orders:
//	      retryer: exponential
//	      request_interceptors: [request-id]
package profiles
