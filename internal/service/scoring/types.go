package scoring

import (
	"time"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/transaction"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/infrastructure/store"
)

// AlgorithmName identifies the model family in published metadata
const AlgorithmName = "gradient_boosted_trees"

// Stage identifies one step of the startup pipeline
type Stage string

const (
	StageGenerate Stage = "generate"
	StageEncode   Stage = "encode"
	StageTrain    Stage = "train"
	StageScore    Stage = "score"
	StagePublish  Stage = "publish"
)

// StageTiming records how long one pipeline stage took
type StageTiming struct {
	Stage    Stage         `json:"stage"`
	Duration time.Duration `json:"duration"`
}

// Result is the outcome of a completed pipeline run
type Result struct {
	Dataset *transaction.Dataset
	Model   store.ModelInfo
	Stages  []StageTiming
	Elapsed time.Duration
}

func (r *Result) addStage(stage Stage, d time.Duration) {
	r.Stages = append(r.Stages, StageTiming{Stage: stage, Duration: d})
}
