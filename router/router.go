// Package router decides which admin screen a path leads to.
package router

import (
	"estatedesk/session"
)

const (
	PathRoot      = "/"
	PathLogin     = "/login"
	PathDashboard = "/dashboard"
)

type View string

const (
	ViewNone      View = ""
	ViewLogin     View = "login"
	ViewDashboard View = "dashboard"
)

// Decision is either a view to render, a redirect or NotFound.
type Decision struct {
	View     View
	Redirect string
	// Replace drops the current entry from history so the user can't go back to it.
	Replace  bool
	NotFound bool
}

func (d Decision) IsRedirect() bool {
	return d.Redirect != ""
}

func redirect(to string) Decision {
	return Decision{Redirect: to, Replace: true}
}

// Resolve only checks that a token is present. Whether it is still valid is up to the API.
func Resolve(path string, sess session.Session) Decision {
	authed := sess.Authenticated()

	switch path {
	case PathRoot:
		if authed {
			return redirect(PathDashboard)
		}
		return redirect(PathLogin)
	case PathLogin:
		if authed {
			return redirect(PathDashboard)
		}
		return Decision{View: ViewLogin}
	case PathDashboard:
		if !authed {
			return redirect(PathLogin)
		}
		return Decision{View: ViewDashboard}
	}
	return Decision{NotFound: true}
}
