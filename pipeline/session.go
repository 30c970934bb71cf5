package pipeline

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/soypat/livecad"
	"github.com/soypat/livecad/render"
	"go.uber.org/zap"
)

// ErrSuperseded is returned by a regeneration whose result was discarded
// because a regeneration started later committed first.
var ErrSuperseded = errors.New("regeneration superseded")

// Session holds the parameter state and last good mesh of an interactive
// editing session. Regenerations run outside the session lock on their own
// snapshot of the state; a failed regeneration leaves the session untouched.
// Session methods are safe for concurrent use.
type Session struct {
	log *zap.Logger

	mu     sync.Mutex
	gen    livecad.Generator
	values livecad.Values
	post   Post
	mesh   *livecad.Mesh
	// issued is the last ticket handed to a regeneration and committed the
	// ticket of the regeneration that produced mesh.
	issued    uint64
	committed uint64
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger. Sessions log nothing by default.
func WithLogger(log *zap.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithPost sets the initial post-processing of the session.
func WithPost(p Post) Option {
	return func(s *Session) { s.post = p }
}

// NewSession returns a session for g with its parameters at their defaults
// overlaid by overrides. No mesh is generated until the first regeneration.
func NewSession(g livecad.Generator, overrides map[string]float64, opts ...Option) (*Session, error) {
	if g == nil {
		return nil, errors.New("nil generator")
	}
	v, err := livecad.Resolve(g.Parameters(), overrides)
	if err != nil {
		return nil, err
	}
	s := &Session{log: zap.NewNop(), gen: g, values: v}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Parameters returns the parameter declarations of the current recipe.
func (s *Session) Parameters() []livecad.Parameter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen.Parameters()
}

// Values returns a copy of the committed parameter values.
func (s *Session) Values() livecad.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.Clone()
}

// Post returns the committed post-processing configuration.
func (s *Session) Post() Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.post
}

// Mesh returns the last successfully generated mesh or nil if there is none.
// The returned mesh must not be modified.
func (s *Session) Mesh() *livecad.Mesh {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mesh
}

// Regenerate rebuilds the mesh from the committed state.
func (s *Session) Regenerate() error {
	snap := s.snapshot(nil, nil, nil)
	return s.regenerate(snap)
}

// Set changes a single parameter value and regenerates.
func (s *Session) Set(name string, value float64) error {
	return s.SetValues(map[string]float64{name: value})
}

// SetValues changes several parameter values at once and regenerates.
// Values are committed only if the regeneration succeeds.
func (s *Session) SetValues(overrides map[string]float64) error {
	return s.update(overrides, nil)
}

// Update changes parameter values and post-processing in a single
// regeneration. Nothing is committed unless it succeeds.
func (s *Session) Update(overrides map[string]float64, p Post) error {
	return s.update(overrides, &p)
}

func (s *Session) update(overrides map[string]float64, p *Post) error {
	s.mu.Lock()
	merged := map[string]float64(s.values.Clone())
	for name, v := range overrides {
		merged[name] = v
	}
	v, err := livecad.Resolve(s.gen.Parameters(), merged)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.regenerate(s.snapshot(nil, v, p))
}

// SetPost changes the post-processing and regenerates.
func (s *Session) SetPost(p Post) error {
	return s.regenerate(s.snapshot(nil, nil, &p))
}

// SetRecipe swaps the session's recipe and regenerates. Current values of
// parameters the new recipe also declares are kept when within its bounds,
// the rest take their defaults.
func (s *Session) SetRecipe(g livecad.Generator) error {
	if g == nil {
		return errors.New("nil generator")
	}
	params := g.Parameters()
	if err := livecad.ValidateParameters(params); err != nil {
		return err
	}
	s.mu.Lock()
	carried := make(map[string]float64)
	for _, p := range params {
		if val, ok := s.values[p.Name]; ok && val >= p.Min && val <= p.Max {
			carried[p.Name] = val
		}
	}
	s.mu.Unlock()
	v, err := livecad.Resolve(params, carried)
	if err != nil {
		return err
	}
	return s.regenerate(s.snapshot(g, v, nil))
}

// Export writes the current mesh to path. Exporting a session without a
// mesh does nothing.
func (s *Session) Export(path string, f render.Format) error {
	m := s.Mesh()
	if m == nil {
		s.log.Warn("export skipped: no mesh generated", zap.String("path", path))
		return nil
	}
	if err := render.CreateSTL(path, m, f); err != nil {
		s.log.Error("export failed", zap.String("path", path), zap.Error(err))
		return err
	}
	s.log.Info("exported", zap.String("path", path), zap.Stringer("format", f), zap.Int("faces", m.NumFaces()))
	return nil
}

type snapshot struct {
	ticket uint64
	gen    livecad.Generator
	values livecad.Values
	post   Post
}

// snapshot issues a regeneration ticket and copies the session state,
// replacing any non-nil argument.
func (s *Session) snapshot(g livecad.Generator, v livecad.Values, p *Post) snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	snap := snapshot{ticket: s.issued, gen: s.gen, values: s.values.Clone(), post: s.post}
	if g != nil {
		snap.gen = g
	}
	if v != nil {
		snap.values = v.Clone()
	}
	if p != nil {
		snap.post = *p
	}
	return snap
}

func (s *Session) regenerate(snap snapshot) error {
	log := s.log.With(zap.String("regen", uuid.NewString()), zap.Uint64("ticket", snap.ticket))
	start := time.Now()
	m, err := Build(snap.gen, snap.values, snap.post)
	if err != nil {
		log.Warn("regeneration failed, keeping previous mesh", zap.Error(err))
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.ticket < s.committed {
		log.Debug("discarding stale regeneration", zap.Uint64("committed", s.committed))
		return fmt.Errorf("ticket %d: %w", snap.ticket, ErrSuperseded)
	}
	s.committed = snap.ticket
	s.gen = snap.gen
	s.values = snap.values
	s.post = snap.post
	s.mesh = m
	log.Info("regenerated",
		zap.Int("vertices", m.NumVertices()),
		zap.Int("faces", m.NumFaces()),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}
