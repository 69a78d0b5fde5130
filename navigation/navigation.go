// Package navigation describes the application's pages, which of them need a
// signed-in user, and the router that moves between them.
package navigation

import (
	"net/url"
	"strings"
	"sync"

	"github.com/maxwellzeha/jonduplastics/session"
)

const (
	Home         = "/"
	Login        = "/login"
	Signup       = "/signup"
	Confirmation = "/confirmation"
	Products     = "/products"
	CustomOrder  = "/custom-order"
	FAQ          = "/faq"
	Terms        = "/terms"
	Privacy      = "/privacy"
	Inquiries    = "/inquiries"
	Dashboard    = "/dashboard"
)

// Route is one page of the application.
type Route struct {
	Path      string
	Title     string
	Protected bool
}

var routes = []Route{
	{Path: Home, Title: "Home"},
	{Path: Login, Title: "Login"},
	{Path: Signup, Title: "Register"},
	{Path: Confirmation, Title: "Check your email"},
	{Path: Products, Title: "Products"},
	{Path: CustomOrder, Title: "Custom Order"},
	{Path: FAQ, Title: "FAQ"},
	{Path: Terms, Title: "Terms of Service"},
	{Path: Privacy, Title: "Privacy Policy"},
	{Path: Inquiries, Title: "Inquiries"},
	{Path: Dashboard, Title: "Dashboard", Protected: true},
}

func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// Lookup finds the route for a path. Query strings are ignored.
func Lookup(path string) (Route, bool) {
	path = stripQuery(path)
	for _, r := range routes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// LoginRedirect is the login location that resumes at from after sign in.
func LoginRedirect(from string) string {
	if !isLocal(from) || from == Home {
		return Login
	}
	// "/" is legal in a query value and keeps the location readable.
	return Login + "?from=" + strings.ReplaceAll(url.QueryEscape(from), "%2F", "/")
}

// ResumeTarget extracts the post-login destination from a login location.
// Anything that is not a known local path resumes at Home.
func ResumeTarget(loginLocation string) string {
	_, rawQuery, _ := strings.Cut(loginLocation, "?")
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		return Home
	}
	from := q.Get("from")
	if !isLocal(from) {
		return Home
	}
	if _, ok := Lookup(from); !ok {
		return Home
	}
	return from
}

func isLocal(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, "\\")
}

func stripQuery(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		return p[:i]
	}
	return p
}

// Decision is the outcome of guarding a navigation.
type Decision struct {
	Allow bool
	// Wait is set while the session is still loading.
	Wait     bool
	Redirect string
}

// Guard decides whether the session described by snap may open path.
// Protected pages send anonymous users to login with a resume target.
func Guard(snap session.Snapshot, path string) Decision {
	r, ok := Lookup(path)
	if !ok || !r.Protected {
		return Decision{Allow: true}
	}
	if snap.Loading {
		return Decision{Wait: true}
	}
	if snap.Identity == nil {
		return Decision{Redirect: LoginRedirect(stripQuery(path))}
	}
	return Decision{Allow: true}
}

// Router tracks the current location and tells listeners when a path is
// entered, including re-entering the path already shown.
type Router struct {
	mu        sync.Mutex
	current   string
	history   []string
	listeners map[int]listener
	nextID    int
}

type listener struct {
	path string
	fn   func(location string)
}

func NewRouter(start string) *Router {
	if start == "" {
		start = Home
	}
	return &Router{current: start, history: []string{start}, listeners: make(map[int]listener)}
}

func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History returns every location visited, oldest first.
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.history))
	copy(out, r.history)
	return out
}

// Navigate moves to location and fires the refresh signal for its path.
func (r *Router) Navigate(location string) {
	r.mu.Lock()
	r.current = location
	r.history = append(r.history, location)
	path := stripQuery(location)
	var fns []func(string)
	for _, l := range r.listeners {
		if l.path == "" || l.path == path {
			fns = append(fns, l.fn)
		}
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(location)
	}
}

// OnEnter registers fn for every navigation to path. An empty path matches
// every navigation.
func (r *Router) OnEnter(path string, fn func(location string)) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = listener{path: path, fn: fn}
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}
