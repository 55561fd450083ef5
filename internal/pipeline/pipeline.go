package pipeline

import (
	"bytes"
	"context"
	"image/png"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/draftworks/manualj-cli/internal/climate"
	"github.com/draftworks/manualj-cli/internal/config"
	"github.com/draftworks/manualj-cli/internal/envelope"
	"github.com/draftworks/manualj-cli/internal/faults"
	"github.com/draftworks/manualj-cli/internal/manualj"
	"github.com/draftworks/manualj-cli/internal/model"
	"github.com/draftworks/manualj-cli/internal/pdf"
	"github.com/draftworks/manualj-cli/internal/resilience"
	"github.com/draftworks/manualj-cli/internal/store"
	"github.com/draftworks/manualj-cli/pkg/vision"
)

// extractConcurrency bounds parallel page rendering. Rasterizing runs an
// external process per page; two keeps memory flat on letter-size sheets.
const extractConcurrency = 2

// Pipeline orchestrates the analysis phases: classify, scale, geometry,
// vision reconcile, validate, climate, envelope, loads.
type Pipeline struct {
	cfg      *config.Config
	store    store.Store
	text     pdf.TextExtractor
	rast     pdf.Rasterizer
	info     pdf.Inspector
	vision   vision.Client
	scale    *ScaleDetector
	classify *PageClassifier
	geometry *GeometryExtractor
	rooms    *RoomValidator
	building BuildingValidator
	envelope *envelope.Builder
	calc     *manualj.Calculator
}

// New creates a Pipeline with all dependencies. visionClient may be nil when
// the vision service is disabled.
func New(
	cfg *config.Config,
	st store.Store,
	text pdf.TextExtractor,
	rast pdf.Rasterizer,
	info pdf.Inspector,
	visionClient vision.Client,
) (*Pipeline, error) {
	tables, err := LoadTables(cfg.Pipeline.TablesPath)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load tables")
	}

	scale := NewScaleDetector(cfg.Pipeline)
	return &Pipeline{
		cfg:      cfg,
		store:    st,
		text:     text,
		rast:     rast,
		info:     info,
		vision:   visionClient,
		scale:    scale,
		classify: NewPageClassifier(scale, tables.ClassifierWeights),
		geometry: NewGeometryExtractor(cfg.Pipeline, rast, cfg.PDF.RenderDPI),
		rooms:    NewRoomValidator(tables.RoomBoundOverrides()),
		envelope: envelope.NewBuilder(cfg.Envelope, envelope.NewParallelPathCalculator()),
		calc:     manualj.NewCalculator(cfg.Loads, cfg.Envelope.WindowSHGC),
	}, nil
}

// pageSelection is one chosen floor-plan page with its classification.
type pageSelection struct {
	Page       int
	FloorLevel int
	IsBonus    bool
	Text       string
}

// Run executes the full analysis for a single blueprint.
func (p *Pipeline) Run(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisResult, error) {
	log := zap.L().With(zap.String("pdf", req.PDFPath), zap.String("project", req.ProjectID))
	log.Info("pipeline: starting analysis")

	result := &model.AnalysisResult{
		ProjectID: req.ProjectID,
		Metadata:  &model.ResultMetadata{},
	}

	run, err := p.store.CreateRun(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}
	result.RunID = run.ID
	log = log.With(zap.String("run_id", run.ID))

	setStatus := func(status model.RunStatus) {
		if statusErr := p.store.UpdateRunStatus(ctx, run.ID, status); statusErr != nil {
			log.Warn("pipeline: failed to update status", zap.Error(statusErr))
		}
	}

	// Phase tracking helper. Failures are categorized and returned so the
	// caller can decide between needs-input and processing-failed endings.
	trackPhase := func(name string, fn func() (*model.PhaseResult, error)) error {
		phase, phaseErr := p.store.CreatePhase(ctx, run.ID, name)
		if phaseErr != nil {
			log.Warn("pipeline: failed to create phase", zap.String("phase", name), zap.Error(phaseErr))
		}

		start := time.Now()
		phaseResult, fnErr := fn()
		duration := time.Since(start).Milliseconds()

		if phaseResult == nil {
			phaseResult = &model.PhaseResult{}
		}
		phaseResult.Name = name
		phaseResult.Duration = duration

		if fnErr != nil {
			phaseResult.Status = model.PhaseStatusFailed
			phaseResult.Error = fnErr.Error()
			log.Error("pipeline: phase failed",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
				zap.Error(fnErr),
			)
		} else if phaseResult.Status == "" {
			phaseResult.Status = model.PhaseStatusComplete
			log.Info("pipeline: phase complete",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
			)
		}

		if phase != nil {
			_ = p.store.CompletePhase(ctx, phase.ID, phaseResult)
		}
		result.Phases = append(result.Phases, *phaseResult)
		return faults.Categorize(fnErr)
	}

	warn := func(msg string) {
		result.Metadata.Warnings = append(result.Metadata.Warnings, msg)
		log.Warn("pipeline: " + msg)
	}

	pctx := NewPipelineContext(req.PDFPath, req.ProjectID, req.ZipCode)

	// ===== Phase 1: Classification =====
	setStatus(model.RunStatusClassifying)

	var selected []pageSelection
	var multiStory bool

	phaseErr := trackPhase("1_classify", func() (*model.PhaseResult, error) {
		sel, summary, classifyErr := p.classifyPages(ctx, req, pctx)
		if classifyErr != nil {
			return nil, classifyErr
		}
		selected = sel
		multiStory = summary.MultiStory
		return &model.PhaseResult{
			Metadata: map[string]any{
				"pages_scored": len(summary.Pages),
				"floor_plans":  len(summary.FloorPlans),
				"selected":     len(sel),
				"multi_story":  summary.MultiStory,
			},
		}, nil
	})
	if phaseErr != nil {
		return p.finish(ctx, run.ID, result, phaseErr, setStatus, log), nil
	}

	for _, sel := range selected {
		result.Metadata.PagesUsed = append(result.Metadata.PagesUsed, sel.Page)
	}

	// ===== Phase 2: Scale =====
	var scaleRes ScaleResult

	phaseErr = trackPhase("2_scale", func() (*model.PhaseResult, error) {
		sr, scaleErr := p.lockScale(req, pctx, selected)
		if scaleErr != nil {
			return nil, scaleErr
		}
		scaleRes = sr
		return &model.PhaseResult{
			Metadata: map[string]any{
				"px_per_ft":  sr.PxPerFt,
				"method":     sr.Method,
				"confidence": sr.Confidence,
				"notation":   sr.Notation,
			},
		}, nil
	})
	if phaseErr != nil {
		return p.finish(ctx, run.ID, result, phaseErr, setStatus, log), nil
	}

	result.Metadata.ScalePxPerFt = scaleRes.PxPerFt
	result.Metadata.ScaleMethod = scaleRes.Method
	result.Metadata.ScaleConfidence = scaleRes.Confidence
	result.Metadata.MultiStory = multiStory

	// ===== Phase 3: Geometry =====
	setStatus(model.RunStatusExtracting)

	extractions := make([]*Extraction, len(selected))

	phaseErr = trackPhase("3_geometry", func() (*model.PhaseResult, error) {
		scale, _ := pctx.Scale()
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(extractConcurrency)
		for i, sel := range selected {
			g.Go(func() error {
				ext, extractErr := p.geometry.Extract(gCtx, req.PDFPath, sel.Page, sel.FloorLevel, scale)
				if extractErr != nil {
					return extractErr
				}
				if sel.IsBonus {
					// Untyped rooms on a bonus sheet belong to the bonus zone.
					for j := range ext.Rooms {
						if ext.Rooms[j].Type == model.SpaceTypeOther {
							ext.Rooms[j].Type = model.SpaceTypeBonus
						}
					}
				}
				extractions[i] = ext
				return nil
			})
		}
		if waitErr := g.Wait(); waitErr != nil {
			return nil, waitErr
		}

		synthetic := 0
		roomCount := 0
		for _, ext := range extractions {
			roomCount += len(ext.Rooms)
			if ext.Synthetic {
				synthetic++
			}
		}
		if synthetic > 0 {
			warn("geometry produced synthetic rooms for one or more pages; treat results as estimates")
		}
		return &model.PhaseResult{
			Metadata: map[string]any{
				"rooms":           roomCount,
				"synthetic_pages": synthetic,
			},
		}, nil
	})
	if phaseErr != nil {
		return p.finish(ctx, run.ID, result, phaseErr, setStatus, log), nil
	}

	// ===== Phase 4: Vision reconcile =====
	var rooms []model.Room

	if p.vision == nil || p.cfg.Vision.Disabled {
		trackPhase("4_vision", func() (*model.PhaseResult, error) {
			for _, ext := range extractions {
				rooms = append(rooms, ext.Rooms...)
			}
			return &model.PhaseResult{
				Status:   model.PhaseStatusSkipped,
				Metadata: map[string]any{"reason": "vision disabled"},
			}, nil
		})
	} else {
		trackPhase("4_vision", func() (*model.PhaseResult, error) {
			merged, degraded := p.reconcilePages(ctx, req, pctx, selected, extractions)
			rooms = merged
			if degraded > 0 {
				warn("vision unavailable for one or more pages; falling back to contour geometry")
			}
			return &model.PhaseResult{
				Metadata: map[string]any{
					"rooms":          len(rooms),
					"degraded_pages": degraded,
				},
			}, nil
		})
	}

	// ===== Phase 5: Validation =====
	setStatus(model.RunStatusValidating)

	phaseErr = trackPhase("5_validate", func() (*model.PhaseResult, error) {
		issues := p.rooms.Validate(rooms)
		buildingIssues, buildErr := p.building.Validate(rooms, req.DeclaredAreaSqFt)
		if buildErr != nil {
			return nil, buildErr
		}
		issues = append(issues, buildingIssues...)

		criticals := 0
		for _, is := range issues {
			if is.Severity == SeverityCritical {
				criticals++
			} else {
				warn(is.Message)
			}
		}
		if ShouldStopPipeline(issues) {
			return nil, CriticalIssueError(issues)
		}
		return &model.PhaseResult{
			Metadata: map[string]any{
				"issues":   len(issues),
				"warnings": len(issues) - criticals,
			},
		}, nil
	})
	if phaseErr != nil {
		return p.finish(ctx, run.ID, result, phaseErr, setStatus, log), nil
	}

	result.Rooms = rooms

	// ===== Phase 6: Climate =====
	setStatus(model.RunStatusCalculating)

	var design model.DesignConditions

	phaseErr = trackPhase("6_climate", func() (*model.PhaseResult, error) {
		d, method := p.resolveClimate(ctx, req.ZipCode)
		design = d
		result.Climate = &model.ClimateSummary{
			ZipCode:            req.ZipCode,
			ClimateZone:        d.ClimateZone,
			LatitudeDeg:        d.LatitudeDeg,
			HeatingDesignTempF: d.HeatingDesignTempF,
			CoolingDesignTempF: d.CoolingDesignTempF,
		}
		return &model.PhaseResult{
			Metadata: map[string]any{
				"zone":   d.ClimateZone,
				"method": method,
			},
		}, nil
	})
	if phaseErr != nil {
		return p.finish(ctx, run.ID, result, phaseErr, setStatus, log), nil
	}

	// ===== Phase 7: Envelope =====
	var bm *model.BuildingThermalModel

	phaseErr = trackPhase("7_envelope", func() (*model.PhaseResult, error) {
		built, buildErr := p.envelope.Build(rooms, design, req.DeclaredAreaSqFt)
		if buildErr != nil {
			return nil, buildErr
		}
		if vErr := built.ValidateModel(); vErr != nil {
			return nil, faults.Critical(faults.KindValidation, vErr)
		}
		bm = built
		return &model.PhaseResult{
			Metadata: map[string]any{
				"zones":            len(bm.Zones),
				"conditioned_area": bm.ConditionedAreaSqFt(),
				"foundation":       string(bm.Foundation),
			},
		}, nil
	})
	if phaseErr != nil {
		return p.finish(ctx, run.ID, result, phaseErr, setStatus, log), nil
	}

	result.Envelope = bm

	// ===== Phase 8: Loads =====
	var loads *model.HVACLoads

	phaseErr = trackPhase("8_loads", func() (*model.PhaseResult, error) {
		calced, calcErr := p.calc.Calculate(bm)
		if calcErr != nil {
			return nil, calcErr
		}
		loads = calced
		return &model.PhaseResult{
			Metadata: map[string]any{
				"heating_btu_hr": loads.TotalHeatingBTUHr,
				"cooling_btu_hr": loads.TotalCoolingBTUHr,
				"cooling_tons":   loads.CoolingTons,
			},
		}, nil
	})
	if phaseErr != nil {
		return p.finish(ctx, run.ID, result, phaseErr, setStatus, log), nil
	}

	result.Loads = loads
	result.HVAC = &model.HVACSummary{
		TotalHeatingBTUHr: loads.TotalHeatingBTUHr,
		TotalCoolingBTUHr: loads.TotalCoolingBTUHr,
		HeatingTons:       loads.HeatingTons,
		CoolingTons:       loads.CoolingTons,
	}
	result.Metadata.Confidence = overallConfidence(scaleRes.Confidence, rooms)
	result.Success = true

	if saveErr := p.store.SaveRoomLoads(ctx, run.ID, loads.Rooms); saveErr != nil {
		log.Warn("pipeline: failed to save room loads", zap.Error(saveErr))
	}
	if saveErr := p.store.UpdateRunResult(ctx, run.ID, result); saveErr != nil {
		log.Warn("pipeline: failed to save run result", zap.Error(saveErr))
	}

	log.Info("pipeline: analysis complete",
		zap.Float64("heating_btu_hr", loads.TotalHeatingBTUHr),
		zap.Float64("cooling_btu_hr", loads.TotalCoolingBTUHr),
		zap.Float64("cooling_tons", loads.CoolingTons),
		zap.Int("rooms", len(rooms)),
	)

	return result, nil
}

// classifyPages scores pages, picks the floor-plan set, and locks it into the
// context. With SpecificPages the caller's selection is pinned; classification
// still runs on those pages for floor levels.
func (p *Pipeline) classifyPages(ctx context.Context, req model.AnalysisRequest, pctx *PipelineContext) ([]pageSelection, ClassificationSummary, error) {
	pageCount, err := p.info.PageCount(ctx, req.PDFPath)
	if err != nil {
		return nil, ClassificationSummary{}, faults.Critical(faults.KindResource, err)
	}

	candidates := req.SpecificPages
	if len(candidates) == 0 {
		candidates = make([]int, pageCount)
		for i := range candidates {
			candidates[i] = i
		}
	}

	texts := make([]string, 0, len(candidates))
	byIndex := make([]int, 0, len(candidates))
	for _, page := range candidates {
		if page < 0 || page >= pageCount {
			return nil, ClassificationSummary{}, faults.Critical(faults.KindValidation,
				eris.Errorf("page %d out of range (document has %d pages)", page, pageCount))
		}
		text, textErr := p.text.ExtractPageText(ctx, req.PDFPath, page)
		if textErr != nil {
			return nil, ClassificationSummary{}, faults.Critical(faults.KindResource, textErr)
		}
		texts = append(texts, text)
		byIndex = append(byIndex, page)
	}

	summary := p.classify.ClassifyPages(texts)
	// ClassifyPages numbers pages by slice index; map back to document pages.
	for i := range summary.Pages {
		summary.Pages[i].Page = byIndex[summary.Pages[i].Page]
	}
	for i := range summary.FloorPlans {
		summary.FloorPlans[i].Page = byIndex[summary.FloorPlans[i].Page]
	}

	textByPage := make(map[int]string, len(byIndex))
	for i, page := range byIndex {
		textByPage[page] = texts[i]
	}

	var selected []pageSelection
	if len(req.SpecificPages) > 0 {
		// Pinned pages are taken as floor plans regardless of score.
		classByPage := make(map[int]PageClassification, len(summary.Pages))
		for _, pc := range summary.Pages {
			classByPage[pc.Page] = pc
		}
		for _, page := range req.SpecificPages {
			pc := classByPage[page]
			level := pc.FloorLevel
			if level == 0 && pc.FloorLabel == "" {
				level = 1
			}
			selected = append(selected, pageSelection{
				Page:       page,
				FloorLevel: level,
				IsBonus:    pc.IsBonus,
				Text:       textByPage[page],
			})
		}
	} else {
		// Best-scoring page per floor level.
		bestByLevel := map[int]PageClassification{}
		for _, pc := range summary.FloorPlans {
			if cur, ok := bestByLevel[pc.FloorLevel]; !ok || pc.Score > cur.Score {
				bestByLevel[pc.FloorLevel] = pc
			}
		}
		for _, pc := range bestByLevel {
			selected = append(selected, pageSelection{
				Page:       pc.Page,
				FloorLevel: pc.FloorLevel,
				IsBonus:    pc.IsBonus,
				Text:       textByPage[pc.Page],
			})
		}
		sort.Slice(selected, func(i, j int) bool { return selected[i].Page < selected[j].Page })
	}

	if len(selected) == 0 {
		return nil, summary, faults.Critical(faults.KindValidation,
			eris.New("no floor plan pages found; pass specific_pages to pin them"))
	}

	pages := make([]int, len(selected))
	for i, sel := range selected {
		pages[i] = sel.Page
	}
	if err := pctx.SetPages(pages); err != nil {
		return nil, summary, err
	}
	return selected, summary, nil
}

// lockScale determines the drawing scale and locks it into the context. A
// caller override is force-locked and wins over detection. Detections from
// every selected page are locked in confidence order so a materially
// different second determination surfaces as a needs-input conflict.
func (p *Pipeline) lockScale(req model.AnalysisRequest, pctx *PipelineContext, selected []pageSelection) (ScaleResult, error) {
	if req.ScaleOverride > 0 {
		if err := pctx.SetScale(req.ScaleOverride); err != nil {
			return ScaleResult{}, err
		}
		return ScaleResult{
			PxPerFt:    req.ScaleOverride,
			Confidence: 1.0,
			Method:     "override",
		}, nil
	}

	results := make([]ScaleResult, 0, len(selected))
	for _, sel := range selected {
		results = append(results, p.scale.Detect(sel.Text))
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})

	best := results[0]
	if err := pctx.SetScale(best.PxPerFt); err != nil {
		return ScaleResult{}, err
	}
	for _, r := range results[1:] {
		// Default fallbacks carry no evidence; only lock detected values.
		if r.Notation == "" {
			continue
		}
		if err := pctx.SetScale(r.PxPerFt); err != nil {
			return ScaleResult{}, err
		}
	}
	return best, nil
}

// reconcilePages sends each selected page to the vision service and merges
// observations into the contour rooms. Vision failures degrade to contour
// geometry, never fail the run. Returns the merged rooms and the count of
// degraded pages.
func (p *Pipeline) reconcilePages(ctx context.Context, req model.AnalysisRequest, pctx *PipelineContext, selected []pageSelection, extractions []*Extraction) ([]model.Room, int) {
	scale, _ := pctx.Scale()
	dpi := p.cfg.PDF.RenderDPI
	if dpi <= 0 {
		dpi = int(baseRenderDPI)
	}
	rc := &Reconciler{
		ScalePxPerFt:   scale,
		RenderDPIRatio: float64(dpi) / baseRenderDPI,
	}

	merged := make([][]model.Room, len(selected))
	degraded := make([]bool, len(selected))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(extractConcurrency)
	for i, sel := range selected {
		g.Go(func() error {
			contourRooms := extractions[i].Rooms
			obs, obsErr := p.observeRooms(gCtx, req.PDFPath, sel, scale, dpi)
			if obsErr != nil {
				zap.L().Warn("pipeline: vision extraction failed",
					zap.Int("page", sel.Page),
					zap.Error(obsErr),
				)
				merged[i] = contourRooms
				degraded[i] = true
				return nil
			}
			merged[i] = rc.Merge(contourRooms, obs, sel.FloorLevel)
			return nil
		})
	}
	_ = g.Wait()

	var rooms []model.Room
	degradedPages := 0
	for i := range merged {
		rooms = append(rooms, merged[i]...)
		if degraded[i] {
			degradedPages++
		}
	}
	return rooms, degradedPages
}

// observeRooms renders one page and asks the vision service for room
// semantics.
func (p *Pipeline) observeRooms(ctx context.Context, pdfPath string, sel pageSelection, scale float64, dpi int) ([]vision.RoomObservation, error) {
	img, err := p.rast.RenderPage(ctx, pdfPath, sel.Page, dpi)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: render page %d", sel.Page)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, eris.Wrap(err, "pipeline: encode png")
	}

	req := vision.ExtractRoomsRequest{
		PNG:          buf.Bytes(),
		PageNumber:   sel.Page + 1,
		ScalePxPerFt: scale * float64(dpi) / baseRenderDPI,
		FloorLevel:   sel.FloorLevel,
	}
	resp, err := resilience.DoVal(ctx, resilience.VisionRetryConfig(), func(ctx context.Context) (*vision.ExtractRoomsResponse, error) {
		return p.vision.ExtractRooms(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return resp.Rooms, nil
}

// resolveClimate looks up design conditions for the ZIP, preferring surveyed
// per-ZIP rows from the store over the built-in zone tables.
func (p *Pipeline) resolveClimate(ctx context.Context, zip string) (model.DesignConditions, string) {
	design, method := climate.DesignFor(zip, p.cfg.Loads.IndoorHeatingSetpointF, p.cfg.Loads.IndoorCoolingSetpointF)

	z, err := p.store.GetZipDesign(ctx, zip)
	if err != nil {
		zap.L().Warn("pipeline: zip design lookup failed", zap.String("zip", zip), zap.Error(err))
		return design, method
	}
	if z == nil {
		return design, method
	}

	design.ClimateZone = z.ClimateZone
	design.LatitudeDeg = z.LatitudeDeg
	design.HeatingDesignTempF = z.HeatingDesignTempF
	design.CoolingDesignTempF = z.CoolingDesignTempF
	design.DailyRangeF = z.DailyRangeF
	return design, "zip_table"
}

// finish records a failed or needs-input ending and returns the result.
func (p *Pipeline) finish(ctx context.Context, runID string, result *model.AnalysisResult, err error, setStatus func(model.RunStatus), log *zap.Logger) *model.AnalysisResult {
	result.Success = false

	if ni, ok := faults.AsNeedsInput(err); ok {
		result.ErrorType = "needs_input"
		result.InputType = string(ni.InputType)
		result.Error = ni.Error()
		details := map[string]any{"hint": ni.Hint}
		if ni.Locked != nil {
			details["locked"] = ni.Locked
		}
		if ni.Attempted != nil {
			details["attempted"] = ni.Attempted
		}
		for k, v := range ni.Details {
			details[k] = v
		}
		result.Details = details
		setStatus(model.RunStatusNeedsInput)
	} else {
		result.ErrorType = "processing_failed"
		result.Error = err.Error()
		setStatus(model.RunStatusFailed)
	}

	if saveErr := p.store.UpdateRunResult(ctx, runID, result); saveErr != nil {
		log.Warn("pipeline: failed to save run result", zap.Error(saveErr))
	}
	return result
}

// overallConfidence folds the scale confidence and the mean room confidence
// into one number. The weaker signal dominates.
func overallConfidence(scaleConf float64, rooms []model.Room) float64 {
	if len(rooms) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range rooms {
		sum += r.Confidence
	}
	mean := sum / float64(len(rooms))
	if scaleConf < mean {
		return scaleConf
	}
	return mean
}
