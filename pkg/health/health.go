// Package health runs reachability checks against the optional sinks before a
// run reports to them. Checks run concurrently and aggregate to the worst
// status.
package health

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Status represents the health state of a component or of a group of them.
type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

// Check is a function that probes a single dependency and returns its status.
type Check func(ctx context.Context) ComponentHealth

// ComponentHealth holds the result of a single component check.
type ComponentHealth struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Report is the aggregated result of all component checks.
type Report struct {
	Status     Status                     `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
}

// Checker holds named checks.
type Checker struct {
	checks map[string]Check
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewChecker() *Checker {
	return &Checker{
		checks: make(map[string]Check),
		logger: slog.Default().With("component", "health"),
	}
}

// Register adds a named check, replacing any check with the same name.
func (c *Checker) Register(name string, check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Run executes all registered checks concurrently. The overall status is up
// when every component is up, down when every component is down and degraded
// otherwise. An empty checker reports up.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	checks := make(map[string]Check, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()
	report := Report{
		Status:     StatusUp,
		Components: make(map[string]ComponentHealth, len(checks)),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for name, check := range checks {
		wg.Add(1)
		go func(n string, ch Check) {
			defer wg.Done()
			start := time.Now()
			result := ch(ctx)
			result.Latency = time.Since(start).Round(time.Millisecond).String()
			mu.Lock()
			report.Components[n] = result
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()

	down := 0
	for name, comp := range report.Components {
		if comp.Status != StatusUp {
			c.logger.Warn("component unhealthy", "name", name, "status", comp.Status, "message", comp.Message)
		}
		switch comp.Status {
		case StatusDown:
			down++
			report.Status = StatusDegraded
		case StatusDegraded:
			report.Status = StatusDegraded
		}
	}
	if down > 0 && down == len(report.Components) {
		report.Status = StatusDown
	}
	return report
}

// Dialer opens a connection to a Kafka broker. *kafka.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (*kafkago.Conn, error)
}

// KafkaBroker returns a check that dials one broker and closes the
// connection straight away.
func KafkaBroker(d Dialer, address string) Check {
	return func(ctx context.Context) ComponentHealth {
		conn, err := d.DialContext(ctx, "tcp", address)
		if err != nil {
			return ComponentHealth{Status: StatusDown, Message: fmt.Sprintf("dialing %s: %v", address, err)}
		}
		conn.Close()
		return ComponentHealth{Status: StatusUp}
	}
}
