// Package discovery is an optional service-registry port used by
// cmd/exampleservice to advertise itself; the RPC framework core never
// depends on it since request routing happens over AMQP queues, not
// direct service addresses.
package discovery

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Registry is the port a service registers itself against and queries to
// find peers.
type Registry interface {
	Register(ctx context.Context, instanceID, serviceName, hostPort string) error
	Deregister(ctx context.Context, instanceID, serviceName string) error
	Discover(ctx context.Context, serviceName string) ([]string, error)
	HealthCheck(instanceID, serviceName string) error
}

// GenerateInstanceID builds a probabilistically-unique registry id for one
// running instance of serviceName.
func GenerateInstanceID(serviceName string) string {
	return fmt.Sprintf("%s-%d", serviceName, rand.New(rand.NewSource(time.Now().UnixNano())).Int())
}
