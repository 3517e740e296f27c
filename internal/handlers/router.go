// Package handlers turns transport-neutral requests into resource operations.
// The Router owns the route table and is the single place where errors become
// status codes; the HTTP and Lambda front ends only convert envelopes.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Lixing-Zhang/pizza-api/internal/apperr"
	"github.com/Lixing-Zhang/pizza-api/internal/service"
	"github.com/Lixing-Zhang/pizza-api/internal/validate"
)

const (
	anyOrigin    = "*"
	allowMethods = "DELETE,GET,HEAD,OPTIONS,PATCH,POST,PUT"
	allowHeaders = "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token"
)

// unmatchedRoute labels requests that did not resolve to a route.
const unmatchedRoute = "unmatched"

// Observer receives one call per dispatched request
type Observer interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveRequest(string, string, int, time.Duration) {}

// Option customizes a Router
type Option func(*Router)

// WithObserver reports every dispatched request to o
func WithObserver(o Observer) Option {
	return func(r *Router) {
		r.observer = o
	}
}

// WithAllowedOrigins limits Access-Control-Allow-Origin to the listed origins.
// A request whose Origin header is not listed gets no allow-origin header; "*"
// in the list allows every origin.
func WithAllowedOrigins(origins []string) Option {
	return func(r *Router) {
		r.origins = make(map[string]bool, len(origins))
		for _, o := range origins {
			r.origins[o] = true
		}
	}
}

// Router dispatches requests to the catalog and order operations
type Router struct {
	table    routeTable
	log      *slog.Logger
	observer Observer
	origins  map[string]bool
}

// NewRouter builds the route table over the given services
func NewRouter(catalog *service.CatalogService, orders *service.OrderService, log *slog.Logger, opts ...Option) *Router {
	r := &Router{
		log:      log,
		observer: nopObserver{},
		origins:  map[string]bool{anyOrigin: true},
	}
	for _, opt := range opts {
		opt(r)
	}

	ch := NewCatalogHandler(catalog, log)
	oh := NewOrderHandler(orders, log)

	r.table.add(http.MethodGet, "/", welcome)
	r.table.add(http.MethodGet, "/pizzas", ch.List)
	r.table.add(http.MethodGet, "/pizza/{id}", ch.Get)
	r.table.add(http.MethodGet, "/orders", oh.List)
	r.table.add(http.MethodGet, "/order/{id}", oh.Get)
	for _, c := range orderCriteria {
		r.table.add(http.MethodGet, c.pattern, oh.findBy(c))
	}

	r.table.add(http.MethodPost, "/pizza", ch.Create)
	r.table.add(http.MethodPost, "/order", oh.Create)

	r.table.add(http.MethodPut, "/pizza/{id}", ch.Update)
	r.table.add(http.MethodPut, "/order/{id}", oh.Update)

	r.table.add(http.MethodDelete, "/pizza/{id}", ch.Delete)
	r.table.add(http.MethodDelete, "/order/{id}", oh.Delete)

	return r
}

func welcome(context.Context, Request, map[string]string) (result, error) {
	return result{status: http.StatusOK, body: "Welcome to Pizza API"}, nil
}

// Dispatch routes req and always returns a well-formed response. Panics inside
// an operation are recovered and reported as 500.
func (r *Router) Dispatch(ctx context.Context, req Request) (resp Response) {
	start := time.Now()
	req.Method = strings.ToUpper(req.Method)
	pattern := unmatchedRoute

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("panic while handling request",
				"method", req.Method,
				"path", req.Path,
				"panic", fmt.Sprint(rec),
			)
			resp = r.errorResponse(apperr.New(apperr.Internal, "Internal server error"))
		}
		r.allowOrigin(req, resp.Headers)
		r.observer.ObserveRequest(req.Method, pattern, resp.StatusCode, time.Since(start))
	}()

	r.log.Debug("dispatching request", "method", req.Method, "path", req.Path)

	if req.Method == http.MethodOptions {
		pattern = "*"
		return preflight()
	}

	rt, params, methodKnown := r.table.lookup(req)
	if !methodKnown {
		return r.jsonResponse(http.StatusMethodNotAllowed, errorBody("Unknown method"))
	}
	if rt.op == nil {
		return r.jsonResponse(http.StatusNotFound, errorBody("Unknown resource for "+req.Method+" method"))
	}
	pattern = rt.pattern

	res, err := rt.op(ctx, req, params)
	if err != nil {
		if apperr.HTTPStatus(err) >= http.StatusInternalServerError {
			r.log.Error("request failed",
				"method", req.Method,
				"route", pattern,
				"error", err,
			)
		} else {
			r.log.Debug("request rejected", "method", req.Method, "route", pattern, "error", err)
		}
		return r.errorResponse(err)
	}

	return r.jsonResponse(res.status, res.body)
}

func (r *Router) errorResponse(err error) Response {
	return r.jsonResponse(apperr.HTTPStatus(err), errorBody(apperr.PublicMessage(err)))
}

func (r *Router) jsonResponse(status int, body any) Response {
	data, err := json.Marshal(body)
	if err != nil {
		r.log.Error("failed to encode JSON response", "error", err)
		status = http.StatusInternalServerError
		data, _ = json.Marshal(errorBody("Internal server error"))
	}
	return Response{
		StatusCode: status,
		Headers:    baseHeaders(),
		Body:       string(data),
	}
}

// allowOrigin sets Access-Control-Allow-Origin for the request's origin.
func (r *Router) allowOrigin(req Request, headers map[string]string) {
	if r.origins[anyOrigin] {
		headers["Access-Control-Allow-Origin"] = anyOrigin
		return
	}
	headers["Vary"] = "Origin"
	if origin := validate.Header(req.Headers, "Origin"); origin != "" && r.origins[origin] {
		headers["Access-Control-Allow-Origin"] = origin
	}
}

func preflight() Response {
	headers := baseHeaders()
	headers["Access-Control-Allow-Headers"] = allowHeaders
	return Response{
		StatusCode: http.StatusOK,
		Headers:    headers,
	}
}

func baseHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Methods": allowMethods,
	}
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}
