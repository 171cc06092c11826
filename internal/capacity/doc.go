// Package capacity decides how many overseers to place on each cluster node.
//
// The planner looks at every node's processor count and current worker
// count, subtracts the processors reserved on that node, and damps the
// result by half of the existing workers so that nodes already hosting
// unrelated work are not oversubscribed:
//
//	overseers(node) = max(0, processors - reserved(node) - workers/2)
//
// The result is a flat [Placement]: one entry per overseer, naming the node
// it goes on.
//
// # Usage
//
//	planner := capacity.NewPlanner(
//	    capacity.WithLocalReserved(1),
//	    capacity.WithRemoteReserved(0),
//	)
//	placement := planner.Plan(capacity.Survey(runtime))
//	for _, node := range placement {
//	    runtime.Spawn(ctx, node, overseer.Role)
//	}
//
// Planning happens once, before the first task is dispatched.
package capacity
