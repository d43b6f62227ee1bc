package main

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v2"

	goChmod "github.com/xvzf/goChmod"
	"github.com/xvzf/goChmod/permission"
)

func loadtestCommand() *cli.Command {
	return &cli.Command{
		Name:  "loadtest",
		Usage: "Measure Authorize throughput with the Redis verdict cache",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "users", Value: 10000, Usage: "number of distinct users"},
			&cli.IntFlag{Name: "groups", Value: 50, Usage: "number of distinct groups"},
			&cli.IntFlag{Name: "concurrency", Value: 256, Usage: "number of concurrent workers"},
			&cli.IntFlag{Name: "ops", Value: 200000, Usage: "Authorize calls per phase"},
			&cli.DurationFlag{Name: "lookup-latency", Value: 2 * time.Millisecond, Usage: "simulated group resolver latency"},
			&cli.StringFlag{Name: "redis-addr", Usage: "redis address; miniredis is used when empty", EnvVars: []string{"REDIS_ADDR"}},
			&cli.BoolFlag{Name: "local-cache", Value: false, Usage: "enable the in-process verdict cache"},
		},
		Action: func(c *cli.Context) error {
			users, groups := c.Int("users"), c.Int("groups")
			concurrency, ops := c.Int("concurrency"), c.Int("ops")
			if users <= 0 || groups <= 0 || concurrency <= 0 || ops <= 0 {
				return cli.Exit("users, groups, concurrency, and ops must be > 0", 2)
			}

			log, flush, err := newLogger(c.Bool("debug"))
			if err != nil {
				return cli.Exit(err, 1)
			}
			defer flush()

			rdb, closeRedis, err := openRedis(c.String("redis-addr"), log)
			if err != nil {
				return cli.Exit(err, 1)
			}
			defer closeRedis()

			cfg := goChmod.DefaultConfig()
			cfg.Cache.Enabled = true
			cfg.Cache.TTL = 10 * time.Minute
			cfg.Cache.LocalEnabled = c.Bool("local-cache")
			cfg.Metrics.Enabled = true

			resolver := &syntheticGroups{groups: groups, latency: c.Duration("lookup-latency")}
			m, err := goChmod.New().
				WithConfig(cfg).
				WithRedis(rdb).
				WithGroupResolver(resolver).
				WithLogger(log.V(1)).
				Build()
			if err != nil {
				return cli.Exit(err, 1)
			}
			defer m.Close()

			ctx := c.Context
			fmt.Println("---- results ----")
			printStats("cold", runAuthorizePhase(ctx, m, users, groups, ops, concurrency))
			printStats("warm", runAuthorizePhase(ctx, m, users, groups, ops, concurrency))

			snap := m.MetricsSnapshot()
			fmt.Printf("resolver calls=%d cache hits=%d misses=%d failures=%d\n",
				resolver.calls.Load(),
				snap.Counters[goChmod.MetricGroupCacheHit],
				snap.Counters[goChmod.MetricGroupCacheMiss],
				snap.Counters[goChmod.MetricCacheFailure],
			)
			return nil
		},
	}
}

// syntheticGroups puts user i in group i%groups after a fixed delay.
type syntheticGroups struct {
	groups  int
	latency time.Duration
	calls   atomic.Int64
}

func (s *syntheticGroups) GroupsForUser(ctx context.Context, user string) ([]string, error) {
	s.calls.Add(1)
	var id int
	if _, err := fmt.Sscanf(user, "user-%d", &id); err != nil {
		return nil, nil
	}
	select {
	case <-time.After(s.latency):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return []string{groupName(id % s.groups)}, nil
}

func groupName(i int) string {
	return fmt.Sprintf("group-%d", i)
}

func runAuthorizePhase(ctx context.Context, m *goChmod.Manager, users, groups, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		denied    int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				user := r.Intn(users)
				spec := goChmod.Spec{Mode: permission.ModeGroup, Group: groupName(r.Intn(groups))}
				reqCtx := goChmod.WithUser(ctx, fmt.Sprintf("user-%d", user))

				t0 := time.Now()
				_, err := m.Authorize(reqCtx, spec)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&denied, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, denied)
}

type phaseStats struct {
	total   time.Duration
	ops     int
	denied  int64
	p50     time.Duration
	p95     time.Duration
	p99     time.Duration
	opsPerS float64
}

func computeStats(total time.Duration, samples []time.Duration, denied int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:   total,
		ops:     len(samples),
		denied:  denied,
		p50:     percentile(samples, 50),
		p95:     percentile(samples, 95),
		p99:     percentile(samples, 99),
		opsPerS: float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d denied=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.denied,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

