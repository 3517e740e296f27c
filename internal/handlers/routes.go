package handlers

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// result is what an operation hands back to the dispatcher on success.
type result struct {
	status int
	body   any
}

type operation func(ctx context.Context, req Request, params map[string]string) (result, error)

// route binds a method and a path pattern to an operation. A pattern holds at
// most one {param} placeholder, always as its last segment.
type route struct {
	method  string
	pattern string
	prefix  string
	param   string
	op      operation
}

func newRoute(method, pattern string, op operation) route {
	r := route{method: method, pattern: pattern, prefix: pattern, op: op}

	open := strings.IndexByte(pattern, '{')
	if open < 0 {
		return r
	}
	if !strings.HasSuffix(pattern, "}") || strings.Count(pattern, "{") > 1 {
		panic(fmt.Sprintf("handlers: bad route pattern %q", pattern))
	}
	r.prefix = pattern[:open]
	r.param = pattern[open+1 : len(pattern)-1]
	return r
}

// match reports whether req addresses this route and returns its path parameters.
func (r route) match(req Request) (map[string]string, bool) {
	if r.param == "" {
		return nil, req.Path == r.pattern
	}

	rest, ok := strings.CutPrefix(req.Path, r.prefix)
	if !ok || strings.Contains(rest, "/") {
		return nil, false
	}

	// Resource-template form: the value comes from the path parameters.
	if rest == "{"+r.param+"}" {
		params := make(map[string]string, 1)
		if v, ok := req.PathParameters[r.param]; ok {
			params[r.param] = unescape(v)
		}
		return params, true
	}

	return map[string]string{r.param: unescape(rest)}, true
}

// unescape decodes percent-escapes, keeping the raw value when it is malformed.
func unescape(s string) string {
	if v, err := url.PathUnescape(s); err == nil {
		return v
	}
	return s
}

// routeTable holds the compiled routes in registration order.
type routeTable struct {
	routes []route
}

func (t *routeTable) add(method, pattern string, op operation) {
	t.routes = append(t.routes, newRoute(method, pattern, op))
}

// lookup finds the route for req. A request whose method is not routed at all
// is reported through methodKnown.
func (t *routeTable) lookup(req Request) (rt route, params map[string]string, methodKnown bool) {
	for _, r := range t.routes {
		if r.method != req.Method {
			continue
		}
		methodKnown = true
		if params, ok := r.match(req); ok {
			return r, params, true
		}
	}
	return route{}, nil, methodKnown
}
