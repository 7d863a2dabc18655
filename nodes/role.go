// Package nodes implements spec.md §1(C)'s node role fabric: four roles
// sharing one lifecycle contract, each wiring the core/ and p2p/ subsystems
// to the tasks that role actually runs.
package nodes

// role.go – the common Role interface every node type implements, grounded
// on the teacher's deleted core/Nodes/index.go NodeInterface (one minimal
// interface, role-specific interfaces layering privileged methods on top).
// This spec collapses the teacher's dozens of specialized node types down
// to the four spec.md names, but keeps the same "thin common interface,
// each role owns its own goroutines" shape.

import "context"

// HealthStatus is a role's self-reported liveness snapshot.
type HealthStatus struct {
	Healthy      bool
	PeerCount    int
	LastActivity string
	Detail       string
}

// Role is the lifecycle contract every node type satisfies (SPEC_FULL.md
// §C): Start launches the role's independent goroutine tasks (listener,
// maintenance ticker, sync worker, ...) and returns once they are running;
// Stop signals them to exit by cancelling the role's context and waits
// for them to drain.
type Role interface {
	Start(ctx context.Context) error
	Stop() error
	Health() HealthStatus
}
