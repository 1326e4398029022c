package auth

import (
	"testing"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Manager ")
	if err != nil || r != RoleManager {
		t.Fatalf("ParseRole: got %q, %v", r, err)
	}
	if _, err := ParseRole("owner"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestParseRoleSet_DropsUnknown(t *testing.T) {
	set, unknown := ParseRoleSet([]string{"cook", "owner", "server"})
	if !set.Has(RoleCook) || !set.Has(RoleServer) || len(set) != 2 {
		t.Fatalf("unexpected set: %v", set.Tags())
	}
	if len(unknown) != 1 || unknown[0] != "owner" {
		t.Fatalf("unexpected unknown tags: %v", unknown)
	}
}

func TestRoleSet_TagsOrdered(t *testing.T) {
	set := NewRoleSet(RoleCook, RoleAdministrator)
	got := set.Tags()
	if len(got) != 2 || got[0] != "administrator" || got[1] != "cook" {
		t.Fatalf("unexpected tags: %v", got)
	}
}

func TestSession_Validate(t *testing.T) {
	u := &User{ID: "1", FirstName: "Ana", Roles: NewRoleSet(RoleServer)}
	cases := []struct {
		name    string
		s       Session
		wantErr bool
	}{
		{"anonymous", Session{Status: StatusAnonymous}, false},
		{"authenticated", Session{Status: StatusAuthenticated, User: u}, false},
		{"authenticated without user", Session{Status: StatusAuthenticated}, true},
		{"error with user", Session{Status: StatusError, User: u}, true},
		{"authenticating", Session{Status: StatusAuthenticating, Loading: true}, false},
		{"unknown", Session{Status: "weird"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.s.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() err=%v wantErr=%v", err, tc.wantErr)
			}
		})
	}
}
