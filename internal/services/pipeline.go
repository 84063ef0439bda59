package services

// Stage tokens used across the pipeline variants.
const (
	StageSubmitted = "submitted"
	StageShipped   = "shipped"
	StageReceived  = "received"
	StageCompleted = "completed"
	StageReshipped = "reshipped"
	StageDeparture = "departure"
	StageInStore   = "in_store"
)

// Directions accepted by Advance.
const (
	DirectionNext = "next"
	DirectionPrev = "prev"
)

// Pipeline is the ordered list of stages an order moves through. It is
// injected configuration, not a constant: hub deployments run six stages,
// single-site stores run five.
type Pipeline []string

// HubPipeline is the default six-stage pipeline for stores that ship
// repairs to the central hub.
func HubPipeline() Pipeline {
	return Pipeline{StageSubmitted, StageShipped, StageReceived, StageCompleted, StageReshipped, StageInStore}
}

// SingleSitePipeline is the collapsed variant for stores that repair on site.
func SingleSitePipeline() Pipeline {
	return Pipeline{StageSubmitted, StageReceived, StageCompleted, StageDeparture, StageInStore}
}

// PipelineFromVariant maps the PIPELINE_VARIANT setting to a pipeline.
// Anything other than "single_site" selects the hub variant.
func PipelineFromVariant(variant string) Pipeline {
	if variant == "single_site" {
		return SingleSitePipeline()
	}
	return HubPipeline()
}

// Index returns the position of stage in the pipeline, or -1 if absent.
func (p Pipeline) Index(stage string) int {
	for i, s := range p {
		if s == stage {
			return i
		}
	}
	return -1
}

// Contains reports whether stage is part of this pipeline.
func (p Pipeline) Contains(stage string) bool {
	return p.Index(stage) >= 0
}

// First returns the intake stage.
func (p Pipeline) First() string {
	return p[0]
}

// Last returns the terminal stage; the only stage from which an order may
// be marked completed.
func (p Pipeline) Last() string {
	return p[len(p)-1]
}

// ReadyStage is the stage at which the goods are back at the store and the
// customer is notified to collect. Both variants end in in_store.
func (p Pipeline) ReadyStage() string {
	return p.Last()
}

// Neighbor returns the stage one step away from stage in the given
// direction. It returns ErrStageBoundary when the move would fall off
// either end, and ErrUnknownStage when stage is not in the pipeline.
func (p Pipeline) Neighbor(stage, direction string) (string, error) {
	idx := p.Index(stage)
	if idx < 0 {
		return "", ErrUnknownStage
	}

	switch direction {
	case DirectionNext:
		if idx == len(p)-1 {
			return "", ErrStageBoundary
		}
		return p[idx+1], nil
	case DirectionPrev:
		if idx == 0 {
			return "", ErrStageBoundary
		}
		return p[idx-1], nil
	default:
		return "", ErrUnknownStage
	}
}
