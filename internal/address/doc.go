// Package address identifies actors in a cluster.
//
// An [Address] is the pair (node id, local id). It is an immutable,
// comparable value, so it can be used directly as a map key, stored in
// queues, and compared with ==.
//
// The text form is "node:local" (for example "2:17") and is used both in
// logs and when an address crosses a process boundary inside a JSON
// payload.
package address
