// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Concurrency primitives for slot processing: a bounded MPMC lock-free queue,
// a worker executor with per-worker queues and work stealing, and CPU pinning
// of worker threads through sched_setaffinity.
package concurrency
