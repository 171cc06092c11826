// Package cluster defines the capability a coordinator needs from the actor
// runtime it runs on.
//
// The coordinator never spawns processes or opens connections itself. It
// asks a [Runtime] for the cluster topology, attaches its own mailbox,
// spawns overseers by role on a chosen node, monitors them for abnormal
// exit, and sends messages to addresses. Any transport that can honor
// reliable, ordered point-to-point delivery between two addresses can
// implement the interface.
//
// The loopback subpackage provides an in-process implementation used by
// the tests and the command line.
package cluster
