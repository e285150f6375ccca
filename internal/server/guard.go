package server

// View paths
const (
	PathLogin     = "/login"
	PathDashboard = "/dashboard"
	PathTicker    = "/ticker"
)

// RouteDecision is the outcome of resolving a requested view
type RouteDecision int

const (
	// DecisionRender serves the requested view
	DecisionRender RouteDecision = iota
	// DecisionRedirectLogin sends the visitor to the login view
	DecisionRedirectLogin
	// DecisionRedirectDashboard sends the visitor to the dashboard
	DecisionRedirectDashboard
)

// ResolveRoute decides whether a view is reachable for the current session
// state. Pure function: the login view is reachable only logged-out, every
// other named view only logged-in, and unknown paths always land on login.
func ResolveRoute(path string, loggedIn bool) RouteDecision {
	switch path {
	case PathLogin:
		if loggedIn {
			return DecisionRedirectDashboard
		}
		return DecisionRender
	case PathDashboard, PathTicker:
		if loggedIn {
			return DecisionRender
		}
		return DecisionRedirectLogin
	default:
		return DecisionRedirectLogin
	}
}
