// Package connection provides the clients used by microcache-cli.
//
//   - Client speaks the cache protocol over TCP.
//   - AdminClient reads the JSON endpoints of the admin HTTP server.
package connection
