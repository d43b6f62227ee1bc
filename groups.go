package goChmod

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
)

// UserInGroup reports whether user belongs to group according to the
// verdict caches and the [GroupResolver]. Without a resolver every user is
// a non-member. Resolver failures are returned wrapped in
// [ErrGroupLookupUnavailable] and are never cached.
func (m *Manager) UserInGroup(ctx context.Context, user, group string) (bool, error) {
	if m == nil {
		return false, ErrManagerNotReady
	}
	if user == "" || group == "" || m.resolver == nil {
		return false, nil
	}

	if member, ok := m.local.Get(user, group); ok {
		m.metricInc(MetricGroupCacheHit)
		return member, nil
	}

	if m.verdicts != nil {
		member, found, err := m.verdicts.Get(ctx, user, group)
		switch {
		case err != nil:
			m.metricInc(MetricCacheFailure)
			m.log.Error(err, "verdict cache read failed", "user", user, "group", group)
		case found:
			m.metricInc(MetricGroupCacheHit)
			m.local.Set(user, group, member)
			return member, nil
		}
	}
	if m.verdicts != nil || m.local != nil {
		m.metricInc(MetricGroupCacheMiss)
	}

	groups, err := m.groupsForUser(ctx, user)
	if err != nil {
		m.metricInc(MetricGroupLookupFailure)
		return false, err
	}

	member := lo.Contains(groups, group)
	m.storeVerdict(ctx, user, group, member)
	return member, nil
}

// InvalidateGroup drops cached verdicts for user and group from both tiers.
func (m *Manager) InvalidateGroup(ctx context.Context, user, group string) error {
	if m == nil {
		return ErrManagerNotReady
	}

	m.local.Delete(user, group)
	if m.verdicts == nil {
		return nil
	}
	return m.verdicts.Delete(ctx, user, group)
}

// groupLookupTimeout bounds a shared resolver call once it no longer follows
// the cancellation of the request that started it.
const groupLookupTimeout = 5 * time.Second

// groupsForUser coalesces concurrent lookups of the same user. The shared
// call runs detached from the first caller's cancellation so that one
// aborted request does not fail the others waiting on it; each caller still
// stops waiting when its own ctx ends.
func (m *Manager) groupsForUser(ctx context.Context, user string) ([]string, error) {
	ch := m.lookups.DoChan(user, func() (interface{}, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), groupLookupTimeout)
		defer cancel()

		groups, err := m.resolver.GroupsForUser(lookupCtx, user)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGroupLookupUnavailable, err)
		}
		return groups, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		groups, _ := res.Val.([]string)
		return groups, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrGroupLookupUnavailable, ctx.Err())
	}
}

func (m *Manager) storeVerdict(ctx context.Context, user, group string, member bool) {
	m.local.Set(user, group, member)

	if m.verdicts == nil {
		return
	}
	if err := m.verdicts.Set(ctx, user, group, member); err != nil {
		m.metricInc(MetricCacheFailure)
		m.log.Error(err, "verdict cache write failed", "user", user, "group", group)
	}
}
