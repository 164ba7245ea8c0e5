/*
Package server assembles the traced demo HTTP server.

A single Gin engine routes every method and path to the serve_req handler.
Recovery, W3C trace context extraction and request metrics run as middleware.
The engine is wrapped in h2c so one plaintext port speaks both HTTP/1.1 and
prior-knowledge HTTP/2. Prometheus metrics, when enabled, are served on their
own listener and never on the demo port.

There are no request timeouts and no connection limits: net/http runs one
goroutine per connection.
*/
package server
