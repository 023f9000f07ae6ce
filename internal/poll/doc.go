// Package poll implements the poll session state machine, vote aggregation,
// and the fan-out render protocol that keeps every sent copy of a poll in
// sync as votes arrive.
package poll
