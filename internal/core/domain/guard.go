package domain

const (
	LoginPath   = "/login"
	LandingPath = "/dashboard"
)

// Decision is the outcome of a route guard. Redirect is set when Allowed is false.
type Decision struct {
	Allowed  bool
	Redirect string
}

// Guard gates navigation to a view based on the current session snapshot.
type Guard func(Session) Decision

func allow() Decision { return Decision{Allowed: true} }

func redirect(to string) Decision { return Decision{Redirect: to} }

// RequireAuthenticated sends anonymous sessions to the login view.
func RequireAuthenticated() Guard {
	return func(s Session) Decision {
		if !s.IsAuthenticated {
			return redirect(LoginPath)
		}
		return allow()
	}
}

// RequireAdmin admits ADMIN users only; other authenticated users land on the dashboard.
func RequireAdmin() Guard {
	return requireRole(func(u User) bool { return u.IsAdmin() })
}

// RequireManagerOrAdmin admits ADMIN and MANAGER users.
func RequireManagerOrAdmin() Guard {
	return requireRole(func(u User) bool { return u.IsManagerOrAdmin() })
}

func requireRole(ok func(User) bool) Guard {
	return func(s Session) Decision {
		if !s.IsAuthenticated || s.User == nil {
			return redirect(LoginPath)
		}
		if !ok(*s.User) {
			return redirect(LandingPath)
		}
		return allow()
	}
}
