package apply

import (
	"context"
	"os/user"
	"strings"
	"testing"

	"github.com/metrolinq/hostcfgd/internal/snapshot"
)

func TestAuth_OneFailedLookupDoesNotBlockOthers(t *testing.T) {
	a, fs, _ := newTestApplier(t)
	a.lookupUser = func(name string) (*user.User, error) {
		if name == "ghost" {
			return nil, user.UnknownUserError(name)
		}
		return &user.User{Username: name, HomeDir: "/home/" + name}, nil
	}

	cfg := snapshot.AuthConfig{Users: []snapshot.User{
		{Name: "alice", SSHKeys: testKeys[:1]},
		{Name: "ghost", SSHKeys: testKeys},
		{Name: "bob", SSHKeys: testKeys[1:]},
	}}

	result := a.Auth(context.Background(), cfg)

	// The aggregate surfaces the skip but processing continued.
	if result.Status != StatusSkipped {
		t.Fatalf("expected skipped aggregate, got %v", result)
	}
	if !strings.Contains(result.Reason, "ghost") {
		t.Errorf("reason should name the skipped user, got %q", result.Reason)
	}

	if _, ok := fs.File("/home/alice/.ssh/authorized_keys"); !ok {
		t.Error("alice's keys missing")
	}
	if _, ok := fs.File("/home/bob/.ssh/authorized_keys"); !ok {
		t.Error("bob's keys missing despite ghost failing before him")
	}
	if _, ok := fs.File("/home/ghost/.ssh/authorized_keys"); ok {
		t.Error("ghost should not have a key file")
	}
}

func TestAuth_AllApplied(t *testing.T) {
	a, _, _ := newTestApplier(t)
	a.lookupUser = func(name string) (*user.User, error) {
		return &user.User{Username: name, HomeDir: "/home/" + name}, nil
	}

	cfg := snapshot.AuthConfig{Users: []snapshot.User{
		{Name: "alice", Password: "s3cret", SSHKeys: testKeys},
	}}

	if result := a.Auth(context.Background(), cfg); result.Status != StatusApplied {
		t.Fatalf("expected applied, got %v", result)
	}
}

func TestAuth_NoUsersIsApplied(t *testing.T) {
	a, _, _ := newTestApplier(t)

	if result := a.Auth(context.Background(), snapshot.AuthConfig{}); result.Status != StatusApplied {
		t.Fatalf("expected applied for empty snapshot, got %v", result)
	}
}
