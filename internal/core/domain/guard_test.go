package domain

import "testing"

func sessionFor(role string) Session {
	return Session{
		Status:          StatusAuthenticated,
		IsAuthenticated: true,
		User:            &User{Username: "u", Role: role},
		Tokens:          &TokenPair{Access: "a", Refresh: "r"},
	}
}

func TestGuards(t *testing.T) {
	cases := []struct {
		name    string
		guard   Guard
		session Session
		want    Decision
	}{
		{"auth/anonymous", RequireAuthenticated(), InitialSession(), Decision{Redirect: LoginPath}},
		{"auth/user", RequireAuthenticated(), sessionFor("USER"), Decision{Allowed: true}},
		{"admin/anonymous", RequireAdmin(), InitialSession(), Decision{Redirect: LoginPath}},
		{"admin/manager", RequireAdmin(), sessionFor("MANAGER"), Decision{Redirect: LandingPath}},
		{"admin/user", RequireAdmin(), sessionFor("USER"), Decision{Redirect: LandingPath}},
		{"admin/admin", RequireAdmin(), sessionFor("ADMIN"), Decision{Allowed: true}},
		{"manager/anonymous", RequireManagerOrAdmin(), InitialSession(), Decision{Redirect: LoginPath}},
		{"manager/user", RequireManagerOrAdmin(), sessionFor("USER"), Decision{Redirect: LandingPath}},
		{"manager/manager", RequireManagerOrAdmin(), sessionFor("MANAGER"), Decision{Allowed: true}},
		{"manager/admin", RequireManagerOrAdmin(), sessionFor("admin"), Decision{Allowed: true}},
		{"manager/no-role", RequireManagerOrAdmin(), sessionFor(""), Decision{Redirect: LandingPath}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.guard(tc.session); got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	if ParseRole(" manager ") != RoleManager {
		t.Fatalf("expected MANAGER")
	}
	if ParseRole("superuser") != RoleUser {
		t.Fatalf("unknown roles must map to USER")
	}
}
