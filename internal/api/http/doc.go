// Package http holds the Gin handler behind the traced demo server. Every
// request, whatever its method, path or body, gets 200 with an empty body and
// produces exactly one span named serve_req.
package http
