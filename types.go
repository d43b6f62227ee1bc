package goChmod

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/samber/lo"

	internalaudit "github.com/xvzf/goChmod/internal/audit"
	"github.com/xvzf/goChmod/permission"
)

// Identity is the authenticated requester as supplied by the host
// authentication layer. An empty Name means anonymous.
type Identity struct {
	Name   string
	Groups []string
}

// Anonymous reports whether the identity carries no user name.
func (id Identity) Anonymous() bool {
	return id.Name == ""
}

// InGroup reports whether group is among the identity's own groups. It does
// not consult any resolver.
func (id Identity) InGroup(group string) bool {
	return group != "" && lo.Contains(id.Groups, group)
}

// Spec is the permission requirement of one protected handler. Specs are
// created at decoration time and never change afterwards.
type Spec struct {
	Mode  permission.Mode
	Owner string
	Group string
}

// NewSpec validates mode and returns the Spec.
func NewSpec(mode permission.Mode, owner, group string) (Spec, error) {
	s := Spec{Mode: mode, Owner: owner, Group: group}
	if err := s.Validate(); err != nil {
		return Spec{}, err
	}
	return s, nil
}

// SpecFromDigits builds a Spec from a chmod-style literal such as 110.
func SpecFromDigits(mode int, owner, group string) (Spec, error) {
	m, err := permission.ParseMode(mode)
	if err != nil {
		return Spec{}, err
	}
	return NewSpec(m, owner, group)
}

// OwnershipSpec derives the mode from which of owner and group are set: the
// owner bit when owner is non-empty and the group bit when group is
// non-empty. The other bit is never set.
func OwnershipSpec(owner, group string) (Spec, error) {
	if owner == "" && group == "" {
		return Spec{}, ErrOwnershipRequired
	}

	var m permission.Mode
	if owner != "" {
		m |= permission.ModeOwner
	}
	if group != "" {
		m |= permission.ModeGroup
	}
	return Spec{Mode: m, Owner: owner, Group: group}, nil
}

func (s Spec) Validate() error {
	if !s.Mode.Valid() {
		return fmt.Errorf("%w: %#x", ErrInvalidMode, uint8(s.Mode))
	}
	return nil
}

func (s Spec) String() string {
	return fmt.Sprintf("%s owner=%q group=%q", s.Mode, s.Owner, s.Group)
}

// Reason names the bit that granted access, or ReasonDenied.
type Reason uint8

const (
	ReasonDenied Reason = iota
	ReasonOwner
	ReasonGroup
	ReasonOther
)

func (r Reason) String() string {
	switch r {
	case ReasonOwner:
		return "owner"
	case ReasonGroup:
		return "group"
	case ReasonOther:
		return "other"
	default:
		return "denied"
	}
}

// Decision is the outcome of [Manager.Authorize].
type Decision struct {
	Allowed  bool
	Reason   Reason
	Identity Identity
	Spec     Spec
}

// GroupResolver returns the groups a user belongs to. It is consulted only
// when the request identity does not already list the required group.
type GroupResolver interface {
	GroupsForUser(ctx context.Context, user string) ([]string, error)
}

// GroupResolverFunc adapts a function to [GroupResolver].
type GroupResolverFunc func(ctx context.Context, user string) ([]string, error)

func (f GroupResolverFunc) GroupsForUser(ctx context.Context, user string) ([]string, error) {
	return f(ctx, user)
}

// App is the host application a Manager binds to. *http.ServeMux satisfies
// it; ginchmod.App adapts gin routers.
type App interface {
	Handle(pattern string, handler http.Handler)
}

// AuditEvent is the record emitted for every access decision when auditing
// is enabled.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events from the dispatcher goroutine.
type AuditSink = internalaudit.Sink

// NoOpSink discards events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink buffers events in a channel.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes one JSON document per event.
type JSONWriterSink = internalaudit.JSONWriterSink

func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
