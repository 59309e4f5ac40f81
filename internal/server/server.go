package server

import "net/http"

// Middleware decorates a handler.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that serves several "METHOD /path" patterns.
type Handler interface {
	http.Handler
	Routes() []string
}

// Router mounts handlers behind a shared middleware chain.
type Router interface {
	Use(middleware ...Middleware)
	Handle(method, path string, handler http.Handler)
	Handler(handler Handler)
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}
