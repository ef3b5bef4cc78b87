package authflow

import "strings"

// Default navigation targets. Admins always land on the dashboard; everyone
// else goes to a stashed return path when it is safe, or the landing page.
const (
	DashboardPath      = "/admin/dashboard"
	DefaultLandingPath = "/discover"
	LoginPath          = "/login"
)

// IsSafeReturnPath accepts only same-origin relative paths: it must start
// with "/" and must not start with "//" (protocol-relative URLs escape the
// origin and are rejected).
func IsSafeReturnPath(path string) bool {
	return strings.HasPrefix(path, "/") && !strings.HasPrefix(path, "//")
}

// NavigationTarget resolves where to go after a settled login.
// The admin rule wins over any stashed return path.
func NavigationTarget(isAdmin bool, returnTo string) string {
	if isAdmin {
		return DashboardPath
	}
	if IsSafeReturnPath(returnTo) {
		return returnTo
	}
	return DefaultLandingPath
}
