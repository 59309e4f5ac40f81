// Package server exposes a running session over local HTTP.
//
// [BasicRouter] registers routes as Go 1.22 "METHOD /path" patterns on an [http.ServeMux], so a request with the
// wrong method is answered with 405 by the mux itself. Middleware added with [BasicRouter.Use] runs in the order
// it was added.
//
// [RoomsHandler] serves the supervisor's published view as JSON:
//
//	GET /rooms        every room snapshot, sorted by id
//	GET /rooms/{id}   one room snapshot, 404 when the room is not open
//	GET /view         displayed room, wizard and invitation
//
// [NewStatusRouter] mounts it next to /metrics and /healthz, with [RequestLogger] and [CountRequests] on every
// route. [Serve] runs the router until its context is cancelled.
//
// A [Handler] owns several routes and reports them through Routes, so one type can be mounted with
// [BasicRouter.Handler].
package server
