// Package client declares the narrow contracts of the external AI
// collaborators. The session engine depends only on these interfaces;
// pkg/gemini and pkg/ollama provide implementations.
package client

import (
	"context"

	"github.com/venuslab/glowup/pkg/types"
)

// FaceAnalyzer performs the makeup analysis of a captured face photo.
// imageJPEG is the encoded photo; concerns and goals come from the
// consultation. Failure is recoverable: the caller returns the user
// to capture.
type FaceAnalyzer interface {
	AnalyzeFace(ctx context.Context, imageJPEG []byte, concerns, goals []string, lang types.Language) (*types.FaceAnalysis, error)
}

// PlanGenerator produces the step-by-step styling plan for a selected
// style. An empty plan is a valid degraded response, not an error.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, style types.MakeupStyle, analysis *types.FaceAnalysis, lang types.Language) ([]types.BreakdownStep, error)
}

// ImageTransformer applies the reference style to the source face.
// A response without an image is a hard failure.
type ImageTransformer interface {
	TransformImage(ctx context.Context, sourceJPEG, styleJPEG []byte) ([]byte, error)
}

// ConsultationModel runs one turn of the intake conversation and
// extracts structured fields from the user's free text.
type ConsultationModel interface {
	Consult(ctx context.Context, history []types.ChatMessage, input string, lang types.Language) (*types.Extraction, error)
}
