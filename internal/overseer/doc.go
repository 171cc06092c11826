// Package overseer tracks the per-node supervisors a coordinator hands work
// to, and provides a reference supervisor behavior.
//
// A [Pool] holds every overseer the coordinator spawned and monitors, plus
// a FIFO of the ones currently idle. An overseer joins the ready queue each
// time it reports ReadyAgain and leaves it the moment it is handed a task.
//
// A [Supervisor] is the actor side of the protocol: it answers Start with
// ReadyAgain, runs each assigned task through a compute function, reports
// Result or ResultError, and asks for more work. Real deployments plug in
// their own supervisor; this one backs the in-process runtime and the
// command line.
package overseer
