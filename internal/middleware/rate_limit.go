package middleware

import (
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Campus wifi puts whole labs behind a single NAT address, and a class
// checking in to the same event fires a burst of requests from that one
// address. The bucket is sized for a classroom, not a lone browser.
const (
	requestsPerSecond = 5
	checkInBurst      = 30
	bucketIdleTTL     = 15 * time.Minute
	sweepThreshold    = 1024
)

type addressBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	buckets   = make(map[string]*addressBucket)
	bucketsMu sync.Mutex

	exemptAddrs = loadExemptAddrs()
)

// loadExemptAddrs reads RATE_LIMIT_EXEMPT, a comma-separated address
// list. Loopback is always exempt for health probes.
func loadExemptAddrs() map[string]bool {
	exempt := map[string]bool{"127.0.0.1": true, "::1": true}
	for _, addr := range strings.Split(os.Getenv("RATE_LIMIT_EXEMPT"), ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			exempt[addr] = true
		}
	}
	return exempt
}

func bucketFor(addr string) *rate.Limiter {
	bucketsMu.Lock()
	defer bucketsMu.Unlock()

	if b, ok := buckets[addr]; ok {
		b.lastSeen = time.Now()
		return b.limiter
	}

	if len(buckets) >= sweepThreshold {
		sweepIdleBuckets()
	}

	b := &addressBucket{
		limiter:  rate.NewLimiter(requestsPerSecond, checkInBurst),
		lastSeen: time.Now(),
	}
	buckets[addr] = b
	return b.limiter
}

// sweepIdleBuckets drops buckets idle past the TTL so the map does not
// grow with every address the service has ever seen. Caller holds
// bucketsMu.
func sweepIdleBuckets() {
	cutoff := time.Now().Add(-bucketIdleTTL)
	for addr, b := range buckets {
		if b.lastSeen.Before(cutoff) {
			delete(buckets, addr)
		}
	}
}

func RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr, _, _ := net.SplitHostPort(r.RemoteAddr)
		if exemptAddrs[addr] {
			next.ServeHTTP(w, r)
			return
		}

		if !bucketFor(addr).Allow() {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
