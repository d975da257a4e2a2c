package middleware

import (
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newLimitedRouter(limit, burst, size int, ttl time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRateLimitPerIP(limit, burst, size, ttl))
	r.GET("/", func(c *gin.Context) { c.Status(200) })
	return r
}

func limitedReq(r *gin.Engine, addr string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = addr
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitPerIP_Basic(t *testing.T) {
	r := newLimitedRouter(1, 1, 100, time.Hour)

	if code := limitedReq(r, "1.2.3.4:12345"); code != 200 {
		t.Fatalf("want 200, got %d", code)
	}
	if code := limitedReq(r, "1.2.3.4:12345"); code != 429 {
		t.Fatalf("want 429, got %d", code)
	}
}

func TestRateLimitPerIP_DifferentHosts(t *testing.T) {
	r := newLimitedRouter(1, 1, 100, time.Hour)

	if code := limitedReq(r, "10.0.0.1:1111"); code != 200 {
		t.Fatalf("host A first request must pass, got %d", code)
	}
	if code := limitedReq(r, "10.0.0.2:2222"); code != 200 {
		t.Fatalf("host B first request must pass independently, got %d", code)
	}
}

func TestRateLimitPerIP_ConcurrentSameHost(t *testing.T) {
	// Short ttl keeps the sweep goroutine reading visitor timestamps
	// while concurrent handlers write them.
	r := newLimitedRouter(1000, 1000, 100, 5*time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				limitedReq(r, "192.168.1.9:4242")
			}
		}()
	}
	wg.Wait()
}

func TestRateLimitPerIP_TTLEvicts(t *testing.T) {
	ttl := 10 * time.Millisecond
	r := newLimitedRouter(1, 1, 10, ttl)

	if code := limitedReq(r, "127.0.0.1:5555"); code != 200 {
		t.Fatalf("first req want 200 got %d", code)
	}
	if code := limitedReq(r, "127.0.0.1:5555"); code != 429 {
		t.Fatalf("second immediate req want 429 got %d", code)
	}
	// wait for at least one sweep cycle past the idle cutoff
	time.Sleep(4 * ttl)
	if code := limitedReq(r, "127.0.0.1:5555"); code != 200 {
		t.Fatalf("after TTL want 200 got %d", code)
	}
}
