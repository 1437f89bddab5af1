// Package pipeline moves parsed leg telemetry from a line source to a
// consumer. A single producer goroutine reads and parses lines into a
// bounded drop-oldest Queue; the consumer drains the queue on its own tick
// and merges every record into a Sink such as robotstate.State.
//
// Lifecycle:
//
//	NotStarted -> Running -> Stopping -> Stopped
//	               |                      ^
//	               +---- read failure ----+
//
// Stopped is terminal. A pipeline is never restarted; build a new one.
package pipeline
