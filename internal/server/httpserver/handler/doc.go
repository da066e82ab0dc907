// Package handler provides the JSON endpoints of the admin HTTP server.
package handler
