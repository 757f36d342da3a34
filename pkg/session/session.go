// Package session drives one user journey through the ordered stages
// of the try-on flow and owns the accumulated journey state.
package session

import (
	"errors"
	"image"

	"github.com/venuslab/glowup/pkg/types"
)

// Stage is one discrete step of the user journey.
type Stage string

const (
	StageConsultation   Stage = "consultation"
	StageInput          Stage = "input"
	StageAnalyzing      Stage = "analyzing"
	StageStyleSelection Stage = "style_selection"
	StageTransformation Stage = "transformation"
	StageBreakdown      Stage = "breakdown"
	StageProfile        Stage = "profile"
)

var (
	// ErrSuperseded is returned when an in-flight stage operation was
	// invalidated by a restart or navigation before it completed. Its
	// result has been discarded.
	ErrSuperseded = errors.New("session: operation superseded")

	// ErrWrongStage is returned when an operation is invoked from a
	// stage that does not permit it.
	ErrWrongStage = errors.New("session: operation not allowed in current stage")

	// ErrNoAnalysis is returned when a style is selected before a face
	// analysis exists.
	ErrNoAnalysis = errors.New("session: no face analysis available")
)

// Session is the mutable state of one journey. It is mutated only by
// the Machine's stage-transition handlers and cleared on restart.
type Session struct {
	RawPhoto       image.Image
	ProcessedPhoto image.Image
	SelectedStyle  *types.MakeupStyle
	Analysis       *types.FaceAnalysis
	Breakdown      []types.BreakdownStep
}

// complete reports whether the journey has everything the post-capture
// stages need. It is the navigation guard.
func (s *Session) complete() bool {
	return s.RawPhoto != nil && s.SelectedStyle != nil && s.ProcessedPhoto != nil
}
