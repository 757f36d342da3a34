// Package glowup provides an AI-assisted virtual makeup try-on engine.
//
// The engine walks a user through one guided journey: a short
// consultation chat collects goals and an occasion, a quality gate
// admits a face photo, an analysis model and a facial-landmark
// detector examine it in parallel, a tag matcher recommends catalog
// styles, and an image model renders the chosen style onto the photo
// together with a step-by-step product plan.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		"github.com/venuslab/glowup"
//		"github.com/venuslab/glowup/pkg/gemini"
//		"github.com/venuslab/glowup/pkg/landmark"
//		"github.com/venuslab/glowup/pkg/types"
//	)
//
//	func main() {
//		ctx := context.Background()
//		ai, err := gemini.NewClient(ctx, "API_KEY")
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer ai.Close()
//
//		studio := glowup.New(glowup.Options{
//			Analyzer:    ai,
//			Planner:     ai,
//			Transformer: ai,
//			Consultant:  ai,
//			Landmarks: landmark.New(func() (landmark.PointDetector, error) {
//				return landmark.NewServiceClient("http://localhost:9400"), nil
//			}),
//			Language: types.LangEnglish,
//		})
//
//		journey := studio.NewJourney()
//		reply, _ := journey.Chat(ctx, "I want a natural look for the office")
//		log.Println(reply.Content)
//	}
//
// The package consists of these main components:
//
// 1. Session (pkg/session): the journey state machine
// 2. Quality (pkg/quality): exposure gating of captured photos
// 3. Landmark (pkg/landmark): facial-region bounding boxes
// 4. Matcher (pkg/matcher): tag-based style recommendation
// 5. Cropper (pkg/cropper): per-step close-up crops
// 6. Consultation (pkg/consultation): the intake chat
//
// The gemini and ollama packages implement the model contracts in
// pkg/client; api exposes the whole journey over HTTP.
package glowup

import (
	"github.com/venuslab/glowup/pkg/catalog"
	"github.com/venuslab/glowup/pkg/client"
	"github.com/venuslab/glowup/pkg/landmark"
	"github.com/venuslab/glowup/pkg/session"
	"github.com/venuslab/glowup/pkg/types"
)

// Version of the glowup library
const Version = "1.0.0"

// Options wires the external collaborators of a Studio.
type Options struct {
	Analyzer    client.FaceAnalyzer
	Planner     client.PlanGenerator
	Transformer client.ImageTransformer
	Consultant  client.ConsultationModel
	Landmarks   *landmark.Adapter
	Catalog     catalog.Store // optional; built-in styles serve as fallback
	Language    types.Language
}

// Studio creates try-on journeys against one set of collaborators.
type Studio struct {
	opts Options
}

// New creates a Studio.
func New(opts Options) *Studio {
	if opts.Language == "" {
		opts.Language = types.LangEnglish
	}
	return &Studio{opts: opts}
}

// NewJourney starts a fresh journey in the consultation stage.
func (s *Studio) NewJourney() *session.Machine {
	return session.NewMachine(session.Config{
		Analyzer:    s.opts.Analyzer,
		Planner:     s.opts.Planner,
		Transformer: s.opts.Transformer,
		Consultant:  s.opts.Consultant,
		Landmarks:   s.opts.Landmarks,
		Catalog:     s.opts.Catalog,
		Language:    s.opts.Language,
	})
}
