// Package stage defines the conversion pipeline's state machine: the ordered
// stages a job moves through, the transitions allowed between them, and the
// Failure error that records which stage a job died in.
package stage
