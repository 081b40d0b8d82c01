package shutdown

// Please add the dependencies if you add your own priority here.
// Otherwise investigating deadlocks at shutdown is much more complicated.

const (
	PriorityStatsReporter = iota // depends on the tally
	PriorityTCPServer            // closes the client connections, their handlers depend on the tally
	PriorityRestAPI
	PriorityPrometheus
	PriorityProfiling
)
