// Package router maps client-side navigation paths to views.
package router

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
)

// View identifies a screen of the application
type View string

const (
	ViewHome       View = "home"
	ViewBookDetail View = "book-detail"
	ViewReading    View = "reading"
)

// Route names
const (
	Home        = "Home"
	BookDetail  = "BookDetail"
	ReadingView = "ReadingView"
)

// ErrNoRoute is returned when no route matches a path
var ErrNoRoute = errors.New("no route matches path")

// Route maps a path pattern to a view
type Route struct {
	Name    string
	Pattern string
	View    View
}

// Match is a resolved navigation target. Params hold path segments as
// given, without any type coercion.
type Match struct {
	Route  Route
	Path   string
	Params map[string]string
}

// Param returns a path parameter, or "" if absent
func (m Match) Param(name string) string {
	return m.Params[name]
}

// DefaultRoutes is the application's route table
var DefaultRoutes = []Route{
	{Name: Home, Pattern: "/", View: ViewHome},
	{Name: BookDetail, Pattern: "/books/{id}", View: ViewBookDetail},
	{Name: ReadingView, Pattern: "/reading/{id}", View: ViewReading},
}

// Router resolves paths against a fixed route table
type Router struct {
	mux    *mux.Router
	routes map[string]Route
	order  []Route
}

// New creates a router with the default route table
func New() *Router {
	r, err := NewWithRoutes(DefaultRoutes)
	if err != nil {
		panic(err)
	}
	return r
}

// NewWithRoutes creates a router over a custom route table
func NewWithRoutes(routes []Route) (*Router, error) {
	r := &Router{
		mux:    mux.NewRouter(),
		routes: make(map[string]Route, len(routes)),
	}
	for _, rt := range routes {
		if _, dup := r.routes[rt.Name]; dup {
			return nil, fmt.Errorf("duplicate route name %q", rt.Name)
		}
		route := r.mux.NewRoute().Path(rt.Pattern).Name(rt.Name)
		if err := route.GetError(); err != nil {
			return nil, fmt.Errorf("route %s: %w", rt.Name, err)
		}
		r.routes[rt.Name] = rt
		r.order = append(r.order, rt)
	}
	return r, nil
}

// Routes returns the route table in registration order
func (r *Router) Routes() []Route {
	out := make([]Route, len(r.order))
	copy(out, r.order)
	return out
}

// Resolve finds the route for path. Query strings and fragments are ignored.
func (r *Router) Resolve(path string) (Match, error) {
	u, err := url.Parse(path)
	if err != nil {
		return Match{}, fmt.Errorf("%w: %s", ErrNoRoute, path)
	}
	if u.Path == "" {
		u.Path = "/"
	}

	req := &http.Request{Method: http.MethodGet, URL: &url.URL{Path: u.Path}}
	var m mux.RouteMatch
	if !r.mux.Match(req, &m) || m.MatchErr != nil || m.Route == nil {
		return Match{}, fmt.Errorf("%w: %s", ErrNoRoute, u.Path)
	}

	rt := r.routes[m.Route.GetName()]
	params := make(map[string]string, len(m.Vars))
	for k, v := range m.Vars {
		params[k] = v
	}
	return Match{Route: rt, Path: u.Path, Params: params}, nil
}

// Path builds the navigation path for a named route from key/value pairs,
// e.g. Path(BookDetail, "id", "7").
func (r *Router) Path(name string, pairs ...string) (string, error) {
	route := r.mux.Get(name)
	if route == nil {
		return "", fmt.Errorf("unknown route %q", name)
	}
	u, err := route.URLPath(pairs...)
	if err != nil {
		return "", fmt.Errorf("route %s: %w", name, err)
	}
	return u.Path, nil
}
