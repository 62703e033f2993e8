// Package task manages background job queuing, processing, and lifecycle.
//
// Named tasks are declared in an explicit Registry that binds each name to a
// handler, a queue and execution time limits. A Client enqueues jobs by name
// and polls their state; a WorkerPool claims jobs from a Broker, runs them
// through an Executor and records every state transition in a ResultStore.
// Jobs move along PENDING -> PROGRESS* -> SUCCESS | FAILURE and never leave a
// terminal state.
package task
