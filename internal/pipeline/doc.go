// Package pipeline sequences one archive through the transformation
// stages: inspect, extract, package, compress, seal, redundancy. The
// orchestrator is all-or-nothing per archive: a failure at any stage
// removes every output produced so far and reports the stage, the failure
// classification, and environment diagnostics.
package pipeline
