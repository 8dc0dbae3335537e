// Package middleware holds the gin middleware of the debug surface:
// CORS, rate limiting and request logging.
package middleware
