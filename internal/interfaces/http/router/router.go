// Package router assembles the gin engine and the API route table.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Mounter attaches routes below a versioned API group
type Mounter interface {
	Mount(rg *gin.RouterGroup)
}

// API collects sections under /api/<version>
type API struct {
	version    string
	middleware []gin.HandlerFunc
	sections   []Mounter
}

// NewAPI returns an API rooted at /api/<version>; an empty version means "v1"
func NewAPI(version string) *API {
	if version == "" {
		version = "v1"
	}
	return &API{version: version}
}

// BasePath is the versioned prefix, e.g. "/api/v1"
func (a *API) BasePath() string { return "/api/" + a.version }

// Use adds middleware that runs for every API route but not for the root routes
func (a *API) Use(mw ...gin.HandlerFunc) *API {
	a.middleware = append(a.middleware, mw...)
	return a
}

// Add queues sections for Mount
func (a *API) Add(sections ...Mounter) *API {
	a.sections = append(a.sections, sections...)
	return a
}

// MountOn registers every queued section on engine
func (a *API) MountOn(engine *gin.Engine) {
	api := engine.Group(a.BasePath(), a.middleware...)
	for _, s := range a.sections {
		s.Mount(api)
	}
}

// Section is a prefix with its own middleware, routes and nested sections.
// Routes are recorded first and attached to gin in Mount, so middleware added
// after a route still guards it.
type Section struct {
	prefix     string
	middleware []gin.HandlerFunc
	routes     []route
	children   []*Section
}

type route struct {
	method, path string
	handlers     []gin.HandlerFunc
}

// NewSection starts a section at prefix ("" mounts at the API root)
func NewSection(prefix string) *Section {
	return &Section{prefix: prefix}
}

// Use adds middleware to the section and its children
func (s *Section) Use(mw ...gin.HandlerFunc) *Section {
	s.middleware = append(s.middleware, mw...)
	return s
}

// Handle records a route
func (s *Section) Handle(method, path string, handlers ...gin.HandlerFunc) *Section {
	s.routes = append(s.routes, route{method: method, path: path, handlers: handlers})
	return s
}

func (s *Section) GET(path string, h ...gin.HandlerFunc) *Section {
	return s.Handle(http.MethodGet, path, h...)
}

func (s *Section) POST(path string, h ...gin.HandlerFunc) *Section {
	return s.Handle(http.MethodPost, path, h...)
}

func (s *Section) PUT(path string, h ...gin.HandlerFunc) *Section {
	return s.Handle(http.MethodPut, path, h...)
}

func (s *Section) PATCH(path string, h ...gin.HandlerFunc) *Section {
	return s.Handle(http.MethodPatch, path, h...)
}

func (s *Section) DELETE(path string, h ...gin.HandlerFunc) *Section {
	return s.Handle(http.MethodDelete, path, h...)
}

// Sub returns a nested section under prefix
func (s *Section) Sub(prefix string) *Section {
	child := NewSection(prefix)
	s.children = append(s.children, child)
	return child
}

// Mount implements Mounter
func (s *Section) Mount(rg *gin.RouterGroup) {
	group := rg.Group(s.prefix, s.middleware...)
	for _, r := range s.routes {
		group.Handle(r.method, r.path, r.handlers...)
	}
	for _, child := range s.children {
		child.Mount(group)
	}
}
