package pipeline

import "time"

// Stage names the pipeline phases in execution order.
type Stage string

const (
	StagePreflight  Stage = "preflight"
	StageInspect    Stage = "inspect"
	StageExtract    Stage = "extract"
	StagePackage    Stage = "package"
	StageCompress   Stage = "compress"
	StageSeal       Stage = "seal"
	StageRedundancy Stage = "redundancy"
)

// StageTiming records how long one stage ran and whether it passed.
type StageTiming struct {
	Stage    Stage
	Duration time.Duration
	Passed   bool
}

// Failure describes why a run stopped, with enough environment context to
// tell resource exhaustion apart from data corruption.
type Failure struct {
	Stage                Stage
	Kind                 string
	Message              string
	FreeDiskBytes        uint64
	AvailableMemoryBytes uint64
}

// RunReport summarizes one archive's trip through the pipeline.
type RunReport struct {
	Archive       string
	RunID         string
	Topology      string
	SourceSize    int64
	Members       int
	ArtifactPath  string
	ArtifactSize  int64
	Sidecars      []string
	RecoveryFiles []string
	Stages        []StageTiming
	Elapsed       time.Duration
	Failure       *Failure
}

// Sealed reports whether the run completed every stage.
func (r *RunReport) Sealed() bool {
	return r.Failure == nil
}
