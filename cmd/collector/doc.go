// Package main runs a local OTLP/gRPC trace receiver for the demo server.
//
// It listens on COLLECTOR_ADDR (127.0.0.1:4317 by default), logs one line per
// received batch and keeps nothing beyond memory. Pass -dev to also dump each
// request as JSON at debug level.
//
// Usage:
//
//	./collector &
//	./server
package main
