// Command sessauth-probe stresses the session store's access-check path
// against a stub backend and reports throughput and latency percentiles.
// It exists to catch lock-contention regressions in CanAccessPath before
// release.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	sessauth "github.com/univcore/sessauth"
	"github.com/univcore/sessauth/gateway/httpapi"
	"github.com/univcore/sessauth/storage"
)

func main() {
	var (
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "access checks to perform")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "concurrency and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	backend := httptest.NewServer(stubBackend())
	defer backend.Close()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var cleanup func()
	var client *redis.Client
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", mr.Addr())
	} else {
		client = redis.NewClient(&redis.Options{Addr: addr})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	store, err := sessauth.New().
		WithGateway(httpapi.NewClient(backend.URL)).
		WithStorage(storage.NewRedis(client, "probe", 0)).
		WithMetricsEnabled(true, true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "store build failed: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if _, err := store.Login(ctx, sessauth.Credentials{
		Kind:       sessauth.KindStaff,
		Identifier: "probe",
		Secret:     "probe",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
		os.Exit(1)
	}

	paths := []string{
		"/employees/list",
		"/employees/42/profile",
		"/schedule/week",
		"/reports/salary",
		"/admin/settings",
	}

	fmt.Printf("running %d access checks across %d workers...\n", *ops, *concurrency)

	var (
		wg        sync.WaitGroup
		remaining = int64(*ops)
		latencies = make([][]time.Duration, *concurrency)
		granted   atomic.Int64
	)

	start := time.Now()
	for w := 0; w < *concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(worker)))
			perWorker := *ops / *concurrency
			local := make([]time.Duration, 0, perWorker+1)
			for atomic.AddInt64(&remaining, -1) >= 0 {
				path := paths[rng.Intn(len(paths))]
				opStart := time.Now()
				if store.CanAccessPath(ctx, path) {
					granted.Add(1)
				}
				local = append(local, time.Since(opStart))
			}
			latencies[worker] = local
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	var all []time.Duration
	for _, l := range latencies {
		all = append(all, l...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })

	fmt.Printf("done in %s (%.0f checks/s)\n", elapsed, float64(len(all))/elapsed.Seconds())
	fmt.Printf("granted: %d, denied: %d\n", granted.Load(), int64(len(all))-granted.Load())
	fmt.Printf("p50=%s p95=%s p99=%s max=%s\n",
		percentile(all, 0.50), percentile(all, 0.95), percentile(all, 0.99), all[len(all)-1])
}

func percentile(sorted []time.Duration, q float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * q)
	return sorted[idx]
}

func stubBackend() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /staff/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"data": map[string]any{
				"user": map[string]any{
					"id":          1,
					"full_name":   "Probe User",
					"role":        "teacher",
					"type":        "staff",
					"permissions": []string{"employees", "schedule"},
				},
				"token": "probe-token",
			},
		})
	})

	mux.HandleFunc("GET /auth/permissions", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"data": map[string]any{
				"permissions": []string{"employees", "schedule"},
			},
		})
	})

	mux.HandleFunc("POST /staff/auth/logout", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
