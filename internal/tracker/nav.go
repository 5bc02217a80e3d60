package tracker

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/jobtracker/internal/notify"
)

// Route names a destination of the presentation layer.
type Route string

const (
	RouteDashboard Route = "dashboard"
	RouteSaved     Route = "saved"
	RouteDigest    Route = "digest"
	RouteSettings  Route = "settings"
	RouteTest      Route = "test"
	RouteShip      Route = "ship"
)

var routes = []Route{RouteDashboard, RouteSaved, RouteDigest, RouteSettings, RouteTest, RouteShip}

// MessageShipLocked is raised when ship is requested while the gate is locked.
const MessageShipLocked = "Complete all tests before shipping"

// ErrUnknownRoute is returned for route names outside the fixed set.
var ErrUnknownRoute = errors.New("unknown route")

// Routes returns every route in menu order.
func Routes() []Route {
	return slices.Clone(routes)
}

// ParseRoute validates a route name.
func ParseRoute(s string) (Route, error) {
	r := Route(s)
	if !slices.Contains(routes, r) {
		return "", fmt.Errorf("%w: %q", ErrUnknownRoute, s)
	}
	return r, nil
}

// Navigation is the outcome of a navigation request.
type Navigation struct {
	Allowed bool  `json:"allowed"`
	Route   Route `json:"route"`
}

// Navigate moves to the named route. Ship is refused while the gate is
// locked: a warning is raised and the current route is kept. A refusal is
// not an error.
func (t *Tracker) Navigate(name string) (Navigation, error) {
	r, err := ParseRoute(name)
	if err != nil {
		return Navigation{}, err
	}

	t.mu.Lock()
	if r == RouteShip && !t.gate.Unlocked() {
		current := t.route
		t.mu.Unlock()

		t.metrics.IncNavigationRejected(string(r))
		t.logger.Info("navigation refused", "route", r, "gate", "LOCKED")
		t.notify(notify.LevelWarning, MessageShipLocked)
		return Navigation{Allowed: false, Route: current}, nil
	}
	t.route = r
	t.mu.Unlock()

	t.logger.Debug("navigated", "route", r)
	return Navigation{Allowed: true, Route: r}, nil
}

// Route returns the current route.
func (t *Tracker) Route() Route {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.route
}
