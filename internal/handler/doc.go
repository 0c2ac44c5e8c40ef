// Package handler implements the HTTP layer of the Libris API.
//
// Handlers are thin adapters: they decode request bodies, pull the
// caller's identity from the request context, call into the service
// layer, and translate service errors into RFC 9457 problem responses
// via MapServiceError. Business rules live in the service package,
// never here.
//
// Routes are registered with Go 1.22 method patterns in cmd/server, so
// handlers do not re-check the HTTP method. Path parameters come from
// r.PathValue.
//
// Successful responses wrap their payload in a DataResponse envelope
// with optional HATEOAS links.
package handler
