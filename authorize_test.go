package goChmod

import (
	"context"
	"errors"
	"testing"

	"github.com/xvzf/goChmod/permission"
)

func TestAuthorizeExamples(t *testing.T) {
	m := buildTestManager(t, DefaultConfig(), nil)

	ctx := WithIdentity(context.Background(), Identity{Name: "helloworld"})
	d, err := m.Authorize(ctx, mustSpec(t, 110, "helloworld", ""))
	if err != nil || !d.Allowed || d.Reason != ReasonOwner {
		t.Fatalf("owner match: decision=%+v err=%v", d, err)
	}

	ctx = WithIdentity(context.Background(), Identity{Name: "someoneelse", Groups: []string{"test"}})
	d, err = m.Authorize(ctx, mustSpec(t, 110, "helloworld", "test"))
	if err != nil || !d.Allowed || d.Reason != ReasonGroup {
		t.Fatalf("group match: decision=%+v err=%v", d, err)
	}

	d, err = m.Authorize(ctx, mustSpec(t, 100, "helloworld", "test"))
	if !errors.Is(err, ErrPermissionDenied) || d.Allowed {
		t.Fatalf("owner-only non-owner: decision=%+v err=%v", d, err)
	}
}

func TestAuthorizeTruthTable(t *testing.T) {
	m := buildTestManager(t, DefaultConfig(), nil)

	identities := []Identity{
		{},
		{Name: "owner"},
		{Name: "member", Groups: []string{"staff"}},
		{Name: "owner", Groups: []string{"staff"}},
		{Name: "stranger", Groups: []string{"other"}},
	}

	for mode := permission.ModeNone; mode <= permission.ModeAll; mode++ {
		spec := Spec{Mode: mode, Owner: "owner", Group: "staff"}
		for _, id := range identities {
			ctx := WithIdentity(context.Background(), id)
			d, err := m.Authorize(ctx, spec)

			ownerOK := mode.Owner() && id.Name == "owner"
			groupOK := mode.Group() && id.InGroup("staff")
			otherOK := mode.Other()
			want := ownerOK || groupOK || otherOK

			if d.Allowed != want {
				t.Fatalf("mode=%s id=%+v: allowed=%v want %v", mode, id, d.Allowed, want)
			}
			if want && err != nil {
				t.Fatalf("mode=%s id=%+v: unexpected err %v", mode, id, err)
			}
			if !want && !errors.Is(err, ErrPermissionDenied) {
				t.Fatalf("mode=%s id=%+v: expected ErrPermissionDenied, got %v", mode, id, err)
			}

			var wantReason Reason
			switch {
			case ownerOK:
				wantReason = ReasonOwner
			case groupOK:
				wantReason = ReasonGroup
			case otherOK:
				wantReason = ReasonOther
			default:
				wantReason = ReasonDenied
			}
			if d.Reason != wantReason {
				t.Fatalf("mode=%s id=%+v: reason=%s want %s", mode, id, d.Reason, wantReason)
			}
		}
	}
}

func TestAuthorizeAnonymousNeverMatchesEmptyOwner(t *testing.T) {
	m := buildTestManager(t, DefaultConfig(), nil)

	d, err := m.Authorize(context.Background(), mustSpec(t, 100, "", ""))
	if !errors.Is(err, ErrPermissionDenied) || d.Allowed {
		t.Fatalf("anonymous must not match an unset owner: decision=%+v err=%v", d, err)
	}

	d, err = m.Authorize(context.Background(), mustSpec(t, 1, "", ""))
	if err != nil || d.Reason != ReasonOther {
		t.Fatalf("other bit must admit anonymous requests: decision=%+v err=%v", d, err)
	}
}

func TestAuthorizeUsesUserNameFallback(t *testing.T) {
	m := buildTestManager(t, DefaultConfig(), newCountingResolver())

	ctx := WithUser(context.Background(), "testuser1")
	d, err := m.Authorize(ctx, mustSpec(t, 10, "", "testgroup1"))
	if err != nil || d.Reason != ReasonGroup {
		t.Fatalf("resolver group match: decision=%+v err=%v", d, err)
	}
	if d.Identity.Name != "testuser1" {
		t.Fatalf("decision identity = %+v", d.Identity)
	}

	ctx = WithUser(context.Background(), "testuser2")
	if _, err := m.Authorize(ctx, mustSpec(t, 10, "", "testgroup1")); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected denial for non-member, got %v", err)
	}
}

func TestAuthorizeIdentityTakesPrecedenceOverUser(t *testing.T) {
	m := buildTestManager(t, DefaultConfig(), nil)

	ctx := WithUser(context.Background(), "alice")
	ctx = WithIdentity(ctx, Identity{Name: "bob"})

	d, _ := m.Authorize(ctx, mustSpec(t, 100, "alice", ""))
	if d.Allowed {
		t.Fatal("expected identity set by WithIdentity to win over WithUser")
	}
}

func TestAuthorizeSkipsGroupLookupWhenOwnerMatches(t *testing.T) {
	resolver := newCountingResolver()
	m := buildTestManager(t, DefaultConfig(), resolver)

	ctx := WithUser(context.Background(), "testuser1")
	if _, err := m.Authorize(ctx, mustSpec(t, 110, "testuser1", "testgroup1")); err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if resolver.calls.Load() != 0 {
		t.Fatalf("expected no resolver calls, got %d", resolver.calls.Load())
	}
}

func TestAuthorizeRejectsInvalidSpec(t *testing.T) {
	m := buildTestManager(t, DefaultConfig(), nil)
	if _, err := m.Authorize(context.Background(), Spec{Mode: permission.Mode(0x10)}); !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
}

func TestAuthorizeNilManager(t *testing.T) {
	var m *Manager
	if _, err := m.Authorize(context.Background(), Spec{Mode: permission.ModeOther}); !errors.Is(err, ErrManagerNotReady) {
		t.Fatalf("expected ErrManagerNotReady, got %v", err)
	}
}

func TestOwnershipSpec(t *testing.T) {
	if _, err := OwnershipSpec("", ""); !errors.Is(err, ErrOwnershipRequired) {
		t.Fatalf("expected ErrOwnershipRequired, got %v", err)
	}

	s, err := OwnershipSpec("alice", "staff")
	if err != nil {
		t.Fatalf("OwnershipSpec: %v", err)
	}
	if s.Mode != permission.ModeOwner|permission.ModeGroup {
		t.Fatalf("mode = %s", s.Mode)
	}

	s, _ = OwnershipSpec("", "staff")
	if s.Mode != permission.ModeGroup {
		t.Fatalf("group-only mode = %s", s.Mode)
	}
}

func TestSpecFromDigitsRejectsInvalidLiteral(t *testing.T) {
	if _, err := SpecFromDigits(644, "alice", ""); !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
}
