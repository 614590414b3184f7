package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar mounts a set of routes on an API group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Route is one registered method and full path
type Route struct {
	Method string
	Path   string
}

// Router collects registrars and mounts them under /api/<version>
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion sets the version segment of the API prefix
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a Router for engine, defaulting to /api/v1
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues a registrar for Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup mounts every queued registrar
func (r *Router) Setup() {
	api := r.engine.Group(r.basePath())
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// Routes lists the method and full path of every route a DomainGroup
// registrar declares, in declaration order
func (r *Router) Routes() []Route {
	var routes []Route
	for _, registrar := range r.registrars {
		if dg, ok := registrar.(*DomainGroup); ok {
			routes = dg.collect(r.basePath(), routes)
		}
	}
	return routes
}

func (r *Router) basePath() string {
	return "/api/" + r.apiVersion
}

// DomainGroup declares the routes of one resource under a prefix. Routes
// are only mounted when the group is registered.
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	subgroups  []*DomainGroup
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates an empty group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware applied to every route of the group and its subgroups
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

func (dg *DomainGroup) handle(method, relPath string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: method, path: relPath, handlers: handlers})
	return dg
}

// GET declares a GET route
func (dg *DomainGroup) GET(relPath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, relPath, handlers)
}

// POST declares a POST route
func (dg *DomainGroup) POST(relPath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPost, relPath, handlers)
}

// PUT declares a PUT route
func (dg *DomainGroup) PUT(relPath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPut, relPath, handlers)
}

// Group creates a subgroup nested under this group's prefix
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	subgroup := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, subgroup)
	return subgroup
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix, dg.middleware...)
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
	for _, subgroup := range dg.subgroups {
		subgroup.RegisterRoutes(group)
	}
}

func (dg *DomainGroup) collect(base string, routes []Route) []Route {
	prefix := path.Join(base, dg.prefix)
	for _, route := range dg.routes {
		routes = append(routes, Route{Method: route.method, Path: path.Join(prefix, route.path)})
	}
	for _, subgroup := range dg.subgroups {
		routes = subgroup.collect(prefix, routes)
	}
	return routes
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}
