package routing

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/km-arc/go-laravel-container/framework/container"
)

// Dispatcher invokes a route action with injected parameters.
// *app.Application implements it on top of container.Call.
type Dispatcher interface {
	Dispatch(action any, params container.Params) (any, error)
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(action any, params container.Params) (any, error)

// Dispatch implements Dispatcher.
func (f DispatcherFunc) Dispatch(action any, params container.Params) (any, error) {
	return f(action, params)
}

// Router wraps chi.Router with Laravel-style helpers.
//
// A route action is either a plain handler (http.Handler or
// func(http.ResponseWriter, *http.Request)) or any container callback:
// "users@Show", container.Method(ctrl, "Show") or a function. Callbacks get
// *http.Request, http.ResponseWriter and context.Context injected by type
// name and URL parameters by name.
type Router struct {
	mux        chi.Router
	dispatcher Dispatcher
	logger     *zap.Logger
}

// New creates a Router with sane defaults (Logger, Recoverer, RealIP).
func New(d Dispatcher, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	return &Router{mux: r, dispatcher: d, logger: logger}
}

// ── HTTP verbs ───────────────────────────────────────────────────────────────

func (r *Router) Get(pattern string, action any)    { r.Handle(http.MethodGet, pattern, action) }
func (r *Router) Post(pattern string, action any)   { r.Handle(http.MethodPost, pattern, action) }
func (r *Router) Put(pattern string, action any)    { r.Handle(http.MethodPut, pattern, action) }
func (r *Router) Patch(pattern string, action any)  { r.Handle(http.MethodPatch, pattern, action) }
func (r *Router) Delete(pattern string, action any) { r.Handle(http.MethodDelete, pattern, action) }

// Any registers an action for all common HTTP methods.
func (r *Router) Any(pattern string, action any) {
	h := r.handler(action)
	for _, m := range []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"} {
		r.mux.Method(m, pattern, h)
	}
}

// Handle registers an action for method and pattern.
func (r *Router) Handle(method, pattern string, action any) {
	r.mux.Method(method, pattern, r.handler(action))
}

// ── Groups & Prefixes ────────────────────────────────────────────────────────

// Group creates an inline group. Laravel: Route::group([], fn)
func (r *Router) Group(fn func(r *Router)) {
	r.mux.Group(func(mx chi.Router) {
		fn(r.with(mx))
	})
}

// Prefix creates a sub-router with a URL prefix. Laravel: Route::prefix('/api')
func (r *Router) Prefix(pattern string, fn func(r *Router)) {
	r.mux.Route(pattern, func(mx chi.Router) {
		fn(r.with(mx))
	})
}

func (r *Router) with(mx chi.Router) *Router {
	return &Router{mux: mx, dispatcher: r.dispatcher, logger: r.logger}
}

// ── Middleware ───────────────────────────────────────────────────────────────

// Middleware adds one or more middleware to the router.
func (r *Router) Middleware(mw ...func(http.Handler) http.Handler) {
	r.mux.Use(mw...)
}

// ── Resource routes ──────────────────────────────────────────────────────────

// Resource registers standard RESTful routes for a resource controller. The
// controller is an identifier resolved per request ("photos") or an instance;
// methods an instance lacks are skipped.
//
//	GET    /photos           → Index
//	POST   /photos           → Store
//	GET    /photos/{id}      → Show
//	PUT    /photos/{id}      → Update
//	DELETE /photos/{id}      → Destroy
func (r *Router) Resource(pattern string, controller any) {
	routes := []struct {
		method, path, action string
	}{
		{http.MethodGet, pattern, "Index"},
		{http.MethodPost, pattern, "Store"},
		{http.MethodGet, pattern + "/{id}", "Show"},
		{http.MethodPut, pattern + "/{id}", "Update"},
		{http.MethodPatch, pattern + "/{id}", "Update"},
		{http.MethodDelete, pattern + "/{id}", "Destroy"},
	}
	for _, rt := range routes {
		if id, ok := controller.(string); ok {
			r.Handle(rt.method, rt.path, id+"@"+rt.action)
			continue
		}
		if !reflect.ValueOf(controller).MethodByName(rt.action).IsValid() {
			continue
		}
		r.Handle(rt.method, rt.path, container.Method(controller, rt.action))
	}
}

// ── Static files ─────────────────────────────────────────────────────────────

// Static serves a filesystem at the given prefix.
// e.g. router.Static("/public", "./public")
func (r *Router) Static(prefix, dir string) {
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	r.mux.Get(strings.TrimSuffix(prefix, "/")+"/*", func(w http.ResponseWriter, req *http.Request) {
		fs.ServeHTTP(w, req)
	})
}

// ── Params ───────────────────────────────────────────────────────────────────

// Param extracts a URL param, equivalent to $request->route('id')
func Param(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// ── Serve ────────────────────────────────────────────────────────────────────

// ServeHTTP implements http.Handler so Router can be passed to http.ListenAndServe.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handler returns the underlying http.Handler (for testing etc.).
func (r *Router) Handler() http.Handler {
	return r.mux
}

// handler turns an action into an http.Handler.
func (r *Router) handler(action any) http.Handler {
	switch h := action.(type) {
	case http.Handler:
		return h
	case func(http.ResponseWriter, *http.Request):
		return http.HandlerFunc(h)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if r.dispatcher == nil {
			r.logger.Error("routing: no dispatcher for container action", zap.String("path", req.URL.Path))
			writeError(w, http.StatusInternalServerError, "Server Error.")
			return
		}
		result, err := r.dispatcher.Dispatch(action, RequestParams(w, req))
		if err != nil {
			r.logger.Error("routing: action failed",
				zap.String("method", req.Method), zap.String("path", req.URL.Path), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Server Error.")
			return
		}
		writeResult(w, result)
	})
}

// RequestParams returns the parameters injected into a route action.
func RequestParams(w http.ResponseWriter, req *http.Request) container.Params {
	params := container.Params{
		"*http.Request":       req,
		"http.ResponseWriter": w,
		"context.Context":     req.Context(),
	}
	if rctx := chi.RouteContext(req.Context()); rctx != nil {
		for i, key := range rctx.URLParams.Keys {
			if key == "*" {
				continue
			}
			params[key] = rctx.URLParams.Values[i]
		}
	}
	return params
}
