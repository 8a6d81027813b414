package health

import (
	"context"
	"errors"
	"net"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func up(context.Context) ComponentHealth   { return ComponentHealth{Status: StatusUp} }
func down(context.Context) ComponentHealth { return ComponentHealth{Status: StatusDown, Message: "refused"} }

func TestCheckerAggregation(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]Check
		want   Status
	}{
		{"empty", nil, StatusUp},
		{"all up", map[string]Check{"a": up, "b": up}, StatusUp},
		{"some down", map[string]Check{"a": up, "b": down}, StatusDegraded},
		{"all down", map[string]Check{"a": down, "b": down}, StatusDown},
		{"degraded", map[string]Check{"a": func(context.Context) ComponentHealth {
			return ComponentHealth{Status: StatusDegraded}
		}}, StatusDegraded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker()
			for name, check := range tt.checks {
				c.Register(name, check)
			}
			report := c.Run(context.Background())
			assert.Equal(t, tt.want, report.Status)
			assert.Len(t, report.Components, len(tt.checks))
		})
	}
}

type fakeDialer struct {
	err error
}

func (d fakeDialer) DialContext(context.Context, string, string) (*kafkago.Conn, error) {
	if d.err != nil {
		return nil, d.err
	}
	client, server := net.Pipe()
	go server.Close()
	return kafkago.NewConn(client, "", 0), nil
}

func TestKafkaBroker(t *testing.T) {
	ok := KafkaBroker(fakeDialer{}, "broker-1:9092")(context.Background())
	assert.Equal(t, StatusUp, ok.Status)

	failed := KafkaBroker(fakeDialer{err: errors.New("connection refused")}, "broker-2:9092")(context.Background())
	assert.Equal(t, StatusDown, failed.Status)
	assert.Contains(t, failed.Message, "broker-2:9092")
	assert.Contains(t, failed.Message, "connection refused")
}
