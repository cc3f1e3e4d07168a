package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	mailCount    map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		mailCount:    make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordMailAttempt counts per-provider delivery attempts by outcome.
func (m *Metrics) RecordMailAttempt(provider string, delivered bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if delivered {
		outcome = "success"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mailCount[provider+"|"+outcome]++
}

// MailAttempts returns the counter for a provider/outcome pair.
func (m *Metrics) MailAttempts(provider string, delivered bool) int64 {
	if m == nil {
		return 0
	}
	outcome := "failure"
	if delivered {
		outcome = "success"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mailCount[provider+"|"+outcome]
}
