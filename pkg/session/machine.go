package session

import (
	"context"
	"fmt"
	"image"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/venuslab/glowup/pkg/catalog"
	"github.com/venuslab/glowup/pkg/client"
	"github.com/venuslab/glowup/pkg/consultation"
	"github.com/venuslab/glowup/pkg/cropper"
	"github.com/venuslab/glowup/pkg/landmark"
	"github.com/venuslab/glowup/pkg/matcher"
	"github.com/venuslab/glowup/pkg/processing"
	"github.com/venuslab/glowup/pkg/quality"
	"github.com/venuslab/glowup/pkg/types"
)

const modelJPEGQuality = 90

// Config wires the collaborators of a Machine.
type Config struct {
	Analyzer    client.FaceAnalyzer
	Planner     client.PlanGenerator
	Transformer client.ImageTransformer
	Consultant  client.ConsultationModel
	Landmarks   *landmark.Adapter
	Catalog     catalog.Store // may be nil; the built-in styles serve as fallback
	Language    types.Language
}

// Machine is the stage machine of one journey. All mutation of the
// underlying Session happens inside its transition handlers, under one
// mutex, and each joined async pair commits atomically. In-flight work
// is invalidated by restart or navigation: its context is canceled and
// a late result is discarded by an epoch check.
type Machine struct {
	cfg      Config
	gate     *quality.Gate
	cropper  *cropper.RegionCropper
	proc     *processing.Processor
	gatherer *consultation.Gatherer

	mu      sync.Mutex
	stage   Stage
	session Session
	epoch   uint64
	cancel  context.CancelFunc
	pager   *matcher.Pager
	tier    matcher.Tier
}

// NewMachine creates a Machine in the Consultation stage.
func NewMachine(cfg Config) *Machine {
	return &Machine{
		cfg:      cfg,
		gate:     quality.New(),
		cropper:  cropper.New(),
		proc:     processing.NewProcessor(),
		gatherer: consultation.NewGatherer(cfg.Consultant, cfg.Language),
		stage:    StageConsultation,
	}
}

// Stage returns the current stage.
func (m *Machine) Stage() Stage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stage
}

// Snapshot returns a copy of the current session state.
func (m *Machine) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.session
	s.Breakdown = append([]types.BreakdownStep(nil), m.session.Breakdown...)
	return s
}

// Transcript returns a copy of the consultation transcript.
func (m *Machine) Transcript() []types.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gatherer.History()
}

// Chat runs one consultation turn. When the gatherer reports the
// intake complete the machine advances to the Input stage; the
// returned flag tells the caller whether that happened. A turn that
// resolves after a restart commits to the orphaned gatherer and never
// advances the fresh journey.
func (m *Machine) Chat(ctx context.Context, input string) (types.ChatMessage, bool) {
	m.mu.Lock()
	g := m.gatherer
	myEpoch := m.epoch
	m.mu.Unlock()

	reply := g.Send(ctx, input)

	m.mu.Lock()
	defer m.mu.Unlock()
	advanced := false
	if m.epoch == myEpoch && m.stage == StageConsultation && g.Ready() {
		m.stage = StageInput
		advanced = true
	}
	return reply, advanced
}

// Capture admits a photo into the session and runs the capture cycle:
// the quality gate first, then the face analysis and the landmark
// detection concurrently. On success the merged FaceAnalysis is
// committed and the machine advances to StyleSelection. An analysis
// failure returns the machine to Input; the photo is kept for retry.
func (m *Machine) Capture(ctx context.Context, img image.Image) error {
	m.mu.Lock()
	if m.stage != StageInput {
		m.mu.Unlock()
		return ErrWrongStage
	}
	if res := m.gate.Check(img); !res.OK {
		m.mu.Unlock()
		return &quality.Error{Reason: res.Reason, Luminance: res.Luminance}
	}
	m.session.RawPhoto = img
	m.stage = StageAnalyzing
	myEpoch := m.beginWork()
	workCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	profile := m.gatherer.Profile()
	lang := m.cfg.Language
	m.mu.Unlock()
	defer cancel()

	imageJPEG, err := processing.EncodeJPEG(img, modelJPEGQuality)
	if err != nil {
		return m.failCapture(myEpoch, fmt.Errorf("failed to encode capture: %w", err))
	}

	var (
		analysis *types.FaceAnalysis
		features *types.FaceFeatures
	)
	g, gctx := errgroup.WithContext(workCtx)
	g.Go(func() error {
		a, err := m.cfg.Analyzer.AnalyzeFace(gctx, imageJPEG, profile.Concerns, profile.Goals, lang)
		if err != nil {
			return fmt.Errorf("face analysis failed: %w", err)
		}
		analysis = a
		return nil
	})
	g.Go(func() error {
		// Landmark absence is not an error; features stays nil.
		features = m.cfg.Landmarks.Features(gctx, img)
		return nil
	})
	if err := g.Wait(); err != nil {
		return m.failCapture(myEpoch, err)
	}

	// Fetched outside the lock; falls back to the built-in styles on
	// any store failure.
	styles := catalog.Fetch(workCtx, m.cfg.Catalog)
	matched := matcher.Match(analysis, styles)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != myEpoch {
		return ErrSuperseded
	}
	analysis.Features = features
	m.session.Analysis = analysis
	m.pager = matcher.NewPager(matched.Styles)
	m.tier = matched.Tier
	m.stage = StageStyleSelection
	return nil
}

// failCapture reverts an epoch-valid capture cycle to Input. The raw
// photo is deliberately kept so the user can retry.
func (m *Machine) failCapture(myEpoch uint64, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != myEpoch {
		return ErrSuperseded
	}
	m.stage = StageInput
	return err
}

// StylePage returns the current recommendation page and the match
// tier that produced it.
func (m *Machine) StylePage() ([]types.MakeupStyle, matcher.Tier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pager == nil {
		return nil, m.tier
	}
	return m.pager.Page(), m.tier
}

// NextStylePage advances the pager (wrapping around) and returns the
// new page.
func (m *Machine) NextStylePage() ([]types.MakeupStyle, matcher.Tier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pager == nil {
		return nil, m.tier
	}
	m.pager.Advance()
	return m.pager.Page(), m.tier
}

// SelectStyle commits the user's style choice. The styling plan and
// the transformed image are fetched concurrently; both halves must
// succeed before anything is written to the session. On failure the
// machine stays in StyleSelection and the session is untouched.
func (m *Machine) SelectStyle(ctx context.Context, style types.MakeupStyle) error {
	m.mu.Lock()
	if m.stage != StageStyleSelection {
		m.mu.Unlock()
		return ErrWrongStage
	}
	if m.session.Analysis == nil {
		m.mu.Unlock()
		return ErrNoAnalysis
	}
	analysis := m.session.Analysis
	raw := m.session.RawPhoto
	lang := m.cfg.Language
	myEpoch := m.beginWork()
	workCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.mu.Unlock()
	defer cancel()

	sourceJPEG, err := processing.EncodeJPEG(raw, modelJPEGQuality)
	if err != nil {
		return fmt.Errorf("failed to encode source photo: %w", err)
	}
	styleJPEG, err := m.fetchStyleJPEG(style)
	if err != nil {
		return fmt.Errorf("failed to fetch style reference: %w", err)
	}

	var (
		plan        []types.BreakdownStep
		transformed image.Image
	)
	g, gctx := errgroup.WithContext(workCtx)
	g.Go(func() error {
		p, err := m.cfg.Planner.GeneratePlan(gctx, style, analysis, lang)
		if err != nil {
			return fmt.Errorf("plan generation failed: %w", err)
		}
		plan = p
		return nil
	})
	g.Go(func() error {
		data, err := m.cfg.Transformer.TransformImage(gctx, sourceJPEG, styleJPEG)
		if err != nil {
			return fmt.Errorf("image transform failed: %w", err)
		}
		img, err := m.proc.DecodeImage(data)
		if err != nil {
			return fmt.Errorf("failed to decode transformed image: %w", err)
		}
		transformed = img
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != myEpoch {
		return ErrSuperseded
	}
	chosen := style
	m.session.SelectedStyle = &chosen
	m.session.ProcessedPhoto = transformed
	m.session.Breakdown = plan
	m.stage = StageTransformation
	return nil
}

// fetchStyleJPEG downloads the style reference image and re-encodes
// it as JPEG for the transform collaborator.
func (m *Machine) fetchStyleJPEG(style types.MakeupStyle) ([]byte, error) {
	data, err := m.proc.FetchImage(style.ImageURL)
	if err != nil {
		return nil, err
	}
	img, err := m.proc.DecodeImage(data)
	if err != nil {
		return nil, err
	}
	return processing.EncodeJPEG(img, modelJPEGQuality)
}

// CloseUp renders the per-step close-up of the transformed photo for
// a breakdown area. It returns cropper.ErrPending when the landmark
// features for the area are unavailable.
func (m *Machine) CloseUp(area types.Area) (image.Image, error) {
	m.mu.Lock()
	img := m.session.ProcessedPhoto
	var features *types.FaceFeatures
	if m.session.Analysis != nil {
		features = m.session.Analysis.Features
	}
	m.mu.Unlock()

	if img == nil {
		return nil, ErrWrongStage
	}
	return m.cropper.Crop(img, area, boxFor(features, area))
}

func boxFor(features *types.FaceFeatures, area types.Area) *types.BoundingBox {
	if features == nil {
		return nil
	}
	switch area {
	case types.AreaEyes:
		return &features.Eyes
	case types.AreaBrows:
		return &features.Brows
	case types.AreaLips:
		return &features.Lips
	default:
		return nil
	}
}

// NavigateTo moves the machine to a stage the user asked for.
// Consultation and Input are always reachable; Analyzing is a
// transient stage and never a navigation target; the post-capture
// stages require the full rawPhoto/selectedStyle/processedPhoto
// triple. A blocked navigation leaves all state unchanged.
func (m *Machine) NavigateTo(target Stage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch target {
	case StageConsultation, StageInput:
	case StageStyleSelection, StageTransformation, StageBreakdown, StageProfile:
		if !m.session.complete() {
			return ErrWrongStage
		}
	default:
		return ErrWrongStage
	}
	if target == m.stage {
		return nil
	}
	m.invalidateWork()
	m.stage = target
	return nil
}

// Restart unconditionally clears the session and returns to
// Consultation. The gatherer is replaced rather than reset: an
// in-flight chat turn finishes against the old one and is discarded
// wholesale.
func (m *Machine) Restart() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidateWork()
	m.session = Session{}
	m.pager = nil
	m.tier = ""
	m.gatherer = consultation.NewGatherer(m.cfg.Consultant, m.cfg.Language)
	m.stage = StageConsultation
}

// beginWork marks the start of a cancellable stage operation and
// returns the epoch its commit must present. Callers hold the mutex.
func (m *Machine) beginWork() uint64 {
	m.invalidateWork()
	return m.epoch
}

// invalidateWork cancels any in-flight stage operation and bumps the
// epoch so its late result is discarded. Callers hold the mutex.
func (m *Machine) invalidateWork() {
	m.epoch++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}
