// Package batch processes every supported archive in a directory through
// the pipeline with a bounded worker pool. Runs are isolated: one
// archive's failure never stops the others, and the batch report carries
// each run's outcome.
package batch
