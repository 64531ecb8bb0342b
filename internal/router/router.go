package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tourism-gateway/internal/handler"
	"github.com/iliyamo/tourism-gateway/internal/model"
)

// Methods served by the gateway.
var methods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}

// Route binds one method and path pattern to a handler.
type Route struct {
	Method  string
	Path    string
	Handler echo.HandlerFunc
}

// RegisterRoutes registers routes that do not touch the database. Currently
// it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterEntities registers the full (method, entity) table built by
// EntityRoutes.
func RegisterEntities(e *echo.Echo, h *handler.EntityHandler) {
	for _, r := range EntityRoutes(h) {
		e.Add(r.Method, r.Path, r.Handler)
	}
}

// EntityRoutes returns one route per method for every entity prefix plus
// the catch-all routes. Pairs without a capability get the method's
// fallback: GET lists the default entity, other methods answer 400.
func EntityRoutes(h *handler.EntityHandler) []Route {
	// what a method does on a path that has no handler for it
	fallback := map[string]echo.HandlerFunc{
		http.MethodGet:    h.List(model.DefaultListing),
		http.MethodPost:   h.Unsupported(http.MethodPost),
		http.MethodPut:    h.Unsupported(http.MethodPut),
		http.MethodDelete: h.Unsupported(http.MethodDelete),
	}

	// method -> entity name -> handler, filled from the capability sets
	served := map[string]map[string]echo.HandlerFunc{
		http.MethodGet:    {},
		http.MethodPost:   {},
		http.MethodPut:    {},
		http.MethodDelete: {},
	}
	for _, e := range model.Readable() {
		served[http.MethodGet][e.Name] = h.Get(e)
	}
	for _, m := range model.Creates() {
		served[http.MethodPost][m.Entity.Name] = h.Create(m)
	}
	for _, m := range model.Updates() {
		served[http.MethodPut][m.Entity.Name] = h.Update(m)
	}
	for _, e := range model.Deletable() {
		served[http.MethodDelete][e.Name] = h.Delete(e)
	}

	// all four methods on every entity prefix, unserved pairs get the fallback
	var routes []Route
	for _, e := range model.All() {
		for _, m := range methods {
			hf, ok := served[m][e.Name]
			if !ok {
				hf = fallback[m]
			}
			routes = append(routes, Route{Method: m, Path: "/" + e.Name + "/*", Handler: hf})
		}
	}
	// catch-all for the root and unknown prefixes
	for _, m := range methods {
		routes = append(routes,
			Route{Method: m, Path: "/", Handler: fallback[m]},
			Route{Method: m, Path: "/*", Handler: fallback[m]},
		)
	}
	return routes
}
