// Package tracker streams experiment parameters and metrics to an
// external consumer: a log line, a socket.io endpoint, or nowhere.
// Trackers bracket a run between Start and End; metric emission in
// between is best-effort and must not fail the run.
package tracker
