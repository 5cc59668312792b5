package intertidal

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/beetlebugorg/intertidal/internal/logging"
	"github.com/beetlebugorg/intertidal/internal/zonation"
)

// Stage is the position of a session in the selection cascade.
type Stage int

const (
	// StageCollectionChosen means a collection is selected but its field's
	// candidate values are not yet known.
	StageCollectionChosen Stage = iota

	// StageFieldChosen means candidate values are current for the field.
	StageFieldChosen

	// StageValueChosen means an attribute selection has been applied.
	StageValueChosen
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	switch s {
	case StageCollectionChosen:
		return "CollectionChosen"
	case StageFieldChosen:
		return "FieldChosen"
	case StageValueChosen:
		return "ValueChosen"
	default:
		return "Unknown"
	}
}

// ExtentRegion names a zone usable as a spatial selection criterion.
type ExtentRegion string

// Extent regions.
const (
	SubmergedExtent      ExtentRegion = zonation.SubmergedName
	ExposedExtent        ExtentRegion = zonation.ExposedName
	IntertidalZoneExtent ExtentRegion = zonation.IntertidalName
)

// ParseExtentRegion maps a region name, or the short forms "submerged",
// "exposed" and "intertidal", to an ExtentRegion.
func ParseExtentRegion(s string) (ExtentRegion, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "submerged", string(SubmergedExtent):
		return SubmergedExtent, nil
	case "exposed", string(ExposedExtent):
		return ExposedExtent, nil
	case "intertidal", string(IntertidalZoneExtent), zonation.UnionName:
		return IntertidalZoneExtent, nil
	}
	return "", fmt.Errorf("%w: unknown extent region %q", ErrInvalidParameter, s)
}

// Session is one user's zonation and selection state.
type Session struct {
	id       uuid.UUID
	opts     Options
	features FeatureStore
	regions  RegionStore
	engine   *zonation.Engine
	display  Display
	logger   *zap.Logger
	help     sync.WaitGroup

	tideHeight   float64
	collection   string
	field        string
	fields       []string // nil until derived for collection
	values       []interface{}
	stage        Stage
	regionFilter ExtentRegion
	ready        map[ExtentRegion]bool
}

// NewSession starts a session over features and regions, reading the
// elevation surface from surface.
//
// The session starts at tide 0 with the first of opts.Collections and
// opts.DefaultField selected. When the default field exists its candidate
// values are loaded immediately.
func NewSession(features FeatureStore, regions RegionStore, surface SurfaceSource, opts Options) (*Session, error) {
	if len(opts.Collections) == 0 {
		return nil, fmt.Errorf("new session: %w: no selectable collections", ErrInvalidParameter)
	}
	if opts.TideMin >= opts.TideMax {
		return nil, fmt.Errorf("new session: %w: tide range [%g, %g] is empty", ErrInvalidParameter, opts.TideMin, opts.TideMax)
	}
	switch opts.IntertidalSource {
	case "":
		opts.IntertidalSource = IntertidalFromUnion
	case IntertidalFromUnion, IntertidalFromStored:
	default:
		return nil, fmt.Errorf("new session: %w: intertidal source %q", ErrInvalidParameter, opts.IntertidalSource)
	}
	if opts.TideMin > 0 || opts.TideMax < 0 {
		return nil, fmt.Errorf("new session: %w: tide range [%g, %g] excludes 0", ErrInvalidParameter, opts.TideMin, opts.TideMax)
	}

	s := &Session{
		id:       uuid.New(),
		opts:     opts,
		features: features,
		regions:  regions,
		display:  opts.Display,
		ready:    make(map[ExtentRegion]bool),
	}
	s.logger = logging.OrNop(opts.Logger).With(zap.String("session", s.id.String()))
	if s.display == nil {
		s.display = NewViewState(s.logger)
	}

	s.engine = zonation.NewEngine(surface, regions, zonation.Options{
		Min:      opts.TideMin,
		Max:      opts.TideMax,
		Union:    opts.IntertidalSource == IntertidalFromUnion,
		Progress: opts.Progress,
		Logger:   s.logger,
	})

	s.collection = opts.Collections[0]
	if !s.hasCollection(s.collection) {
		return nil, fmt.Errorf("new session: %w: collection %s not in store", ErrInvalidParameter, s.collection)
	}
	s.field = opts.DefaultField
	s.stage = StageCollectionChosen

	if s.field != "" {
		if err := s.ChooseField(s.field); err != nil {
			s.logger.Warn("default field unavailable",
				zap.String("collection", s.collection),
				zap.String("field", s.field),
				zap.Error(err))
		}
	}

	s.logger.Info("session started",
		zap.String("collection", s.collection),
		zap.String("field", s.field))
	return s, nil
}

// Close waits for background help tasks. The session must not be used
// afterwards.
func (s *Session) Close() error {
	s.help.Wait()
	s.logger.Info("session closed")
	return nil
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// TideHeight returns the current tide height.
func (s *Session) TideHeight() float64 { return s.tideHeight }

// SelectedCollection returns the active collection.
func (s *Session) SelectedCollection() string { return s.collection }

// SelectedField returns the active field. After a collection change it may
// not exist on the new collection until re-chosen.
func (s *Session) SelectedField() string { return s.field }

// Stage returns the cascade stage.
func (s *Session) Stage() Stage { return s.stage }

// RegionFilter returns the zone of the last applied region filter, or "".
func (s *Session) RegionFilter() ExtentRegion { return s.regionFilter }

// CandidateValues returns the distinct values of the selected field,
// sorted ascending. It is empty until a field is chosen for the current
// collection.
func (s *Session) CandidateValues() []interface{} {
	out := make([]interface{}, len(s.values))
	copy(out, s.values)
	return out
}

// TideRange returns the inclusive range accepted by SetTideHeight.
func (s *Session) TideRange() (lo, hi float64) {
	return s.opts.TideMin, s.opts.TideMax
}

// SetTideHeight sets the tide used by the next RecomputeZones.
// A value outside the tide range is rejected and the prior value kept.
func (s *Session) SetTideHeight(h float64) error {
	if math.IsNaN(h) || h < s.opts.TideMin || h > s.opts.TideMax {
		s.logger.Warn("tide height rejected",
			zap.Float64("tide", h),
			zap.Float64("kept", s.tideHeight))
		return fmt.Errorf("set tide height: %w: %g outside [%g, %g]",
			ErrInvalidParameter, h, s.opts.TideMin, s.opts.TideMax)
	}
	s.tideHeight = h
	s.logger.Debug("tide height set", zap.Float64("tide", h))
	return nil
}

// SetTideHeightText parses text as a tide height. Text that is not a
// number is rejected and the prior value kept.
func (s *Session) SetTideHeightText(text string) error {
	h, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		s.logger.Warn("tide height rejected",
			zap.String("text", text),
			zap.Float64("kept", s.tideHeight))
		return fmt.Errorf("set tide height: %w: %q is not a number", ErrInvalidParameter, text)
	}
	return s.SetTideHeight(h)
}

// Ready reports whether region has been produced and may be used as a
// filter in this session.
func (s *Session) Ready(region ExtentRegion) bool {
	if region == IntertidalZoneExtent && s.opts.IntertidalSource == IntertidalFromStored {
		_, ok := s.regions.Region(string(region))
		return ok
	}
	return s.ready[region]
}

// regionName is the stored region backing an extent. In union mode the
// intertidal zone is the computed union, not the authored region.
func (s *Session) regionName(region ExtentRegion) string {
	if region == IntertidalZoneExtent && s.opts.IntertidalSource == IntertidalFromUnion {
		return zonation.UnionName
	}
	return string(region)
}

// Snapshot is a read-only copy of session state.
type Snapshot struct {
	ID              string
	TideHeight      float64
	Collection      string
	Field           string
	CandidateValues []interface{}
	Stage           Stage
	RegionFilter    ExtentRegion
	Ready           []ExtentRegion
}

// Snapshot returns the current session state.
func (s *Session) Snapshot() Snapshot {
	var ready []ExtentRegion
	for _, r := range []ExtentRegion{SubmergedExtent, ExposedExtent, IntertidalZoneExtent} {
		if s.Ready(r) {
			ready = append(ready, r)
		}
	}

	return Snapshot{
		ID:              s.id.String(),
		TideHeight:      s.tideHeight,
		Collection:      s.collection,
		Field:           s.field,
		CandidateValues: s.CandidateValues(),
		Stage:           s.stage,
		RegionFilter:    s.regionFilter,
		Ready:           ready,
	}
}

func (s *Session) hasCollection(name string) bool {
	for _, c := range s.features.Collections() {
		if c == name {
			return true
		}
	}
	return false
}
