package goChmod

import (
	"context"
	"time"
)

const (
	auditEventAccessGranted = "access_granted"
	auditEventAccessDenied  = "access_denied"
)

// evaluate applies the owner, group and other bits in that order. member is
// only called when the group bit is set and the owner bit did not match.
func evaluate(spec Spec, id Identity, member func(group string) bool) Reason {
	if spec.Mode.Owner() && spec.Owner != "" && id.Name == spec.Owner {
		return ReasonOwner
	}

	if spec.Mode.Group() && spec.Group != "" && member(spec.Group) {
		return ReasonGroup
	}

	if spec.Mode.Other() {
		return ReasonOther
	}

	return ReasonDenied
}

// Authorize decides whether the identity carried by ctx satisfies spec.
// A denied request returns the Decision together with [ErrPermissionDenied].
// Group lookup failures count as "not a member".
func (m *Manager) Authorize(ctx context.Context, spec Spec) (Decision, error) {
	if m == nil {
		return Decision{Spec: spec}, ErrManagerNotReady
	}
	if err := spec.Validate(); err != nil {
		return Decision{Spec: spec}, err
	}

	var start time.Time
	if m.metrics.LatencyEnabled() {
		start = time.Now()
	}

	id, _ := IdentityFromContext(ctx)
	reason := evaluate(spec, id, func(group string) bool {
		return m.isMember(ctx, id, group)
	})

	decision := Decision{
		Allowed:  reason != ReasonDenied,
		Reason:   reason,
		Identity: id,
		Spec:     spec,
	}

	if m.metrics.LatencyEnabled() {
		m.metrics.Observe(MetricAuthorizeLatency, time.Since(start))
	}

	m.record(ctx, decision)

	if !decision.Allowed {
		return decision, ErrPermissionDenied
	}
	return decision, nil
}

func (m *Manager) isMember(ctx context.Context, id Identity, group string) bool {
	if id.InGroup(group) {
		return true
	}
	if id.Anonymous() {
		return false
	}

	member, err := m.UserInGroup(ctx, id.Name, group)
	if err != nil {
		m.log.Error(err, "group lookup failed, treating as non-member", "user", id.Name, "group", group)
		return false
	}
	return member
}

func (m *Manager) record(ctx context.Context, d Decision) {
	switch d.Reason {
	case ReasonOwner:
		m.metricInc(MetricGrantedOwner)
	case ReasonGroup:
		m.metricInc(MetricGrantedGroup)
	case ReasonOther:
		m.metricInc(MetricGrantedOther)
	default:
		m.metricInc(MetricDenied)
		if d.Identity.Anonymous() {
			m.metricInc(MetricDeniedUnauthenticated)
		}
	}

	path := requestPathFromContext(ctx)
	if !d.Allowed {
		m.log.V(1).Info("access denied",
			"user", d.Identity.Name,
			"mode", d.Spec.Mode.String(),
			"owner", d.Spec.Owner,
			"group", d.Spec.Group,
			"path", path,
		)
	}

	if d.Allowed && !m.config.Audit.AuditGranted {
		return
	}

	event := AuditEvent{
		EventType: auditEventAccessDenied,
		UserID:    d.Identity.Name,
		IP:        clientIPFromContext(ctx),
		Path:      path,
		Success:   d.Allowed,
		Metadata: map[string]string{
			"mode":   d.Spec.Mode.String(),
			"reason": d.Reason.String(),
		},
	}
	if d.Allowed {
		event.EventType = auditEventAccessGranted
	} else {
		event.Error = "permission_denied"
	}
	if d.Spec.Owner != "" {
		event.Metadata["owner"] = d.Spec.Owner
	}
	if d.Spec.Group != "" {
		event.Metadata["group"] = d.Spec.Group
	}

	m.emitAudit(ctx, event)
}
