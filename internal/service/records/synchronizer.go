package records

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/barnmonitor/internal/apperrors"
	"github.com/mamadbah2/barnmonitor/internal/session"
)

var (
	// ErrUnknownSortField is returned by Sort for a field the entity does not expose.
	ErrUnknownSortField = errors.New("unknown sort field")
	// ErrUnknownDirection is returned by Sort for anything but asc or desc.
	ErrUnknownDirection = errors.New("unknown sort direction")
	// ErrNotLoaded is returned by Edit for an id absent from the owner view, and by Get
	// for a record of another farmer.
	ErrNotLoaded = errors.New("record not loaded")
	// ErrNotEditable is returned by Edit for entities the API cannot update.
	ErrNotEditable = errors.New("record cannot be edited")
)

// Option customizes a Synchronizer.
type Option func(*options)

type options struct {
	herd HerdSource
}

// WithHerd sets where child records without an embedded animal are linked from.
func WithHerd(src HerdSource) Option {
	return func(o *options) { o.herd = src }
}

// Synchronizer owns one collection: the full server list, the owner-scoped view,
// the edit form and its status messages.
type Synchronizer[T Record, F Form] struct {
	schema Schema[T, F]
	store  session.Store
	herd   HerdSource
	logger *zap.Logger

	mu      sync.Mutex
	loadSeq uint64
	all     []T
	owned   []T
	view    []T
	total   float64
	sortBy  string
	sortDir Direction
	query   string
	edit    EditState
	form    F
	status  Status
	animals Herd
}

// NewSynchronizer builds a synchronizer reading the owner id from store.
func NewSynchronizer[T Record, F Form](schema Schema[T, F], store session.Store, logger *zap.Logger, opts ...Option) *Synchronizer[T, F] {
	if logger == nil {
		logger = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Synchronizer[T, F]{
		schema:  schema,
		store:   store,
		herd:    o.herd,
		logger:  logger,
		sortDir: Ascending,
	}
}

// Label returns the entity label used in messages.
func (s *Synchronizer[T, F]) Label() string { return s.schema.Label }

// Load fetches the full collection and rebuilds the owner view.
//
// A response arriving after ctx is cancelled, or after a newer Load started, is discarded.
func (s *Synchronizer[T, F]) Load(ctx context.Context) error {
	ownerID, err := s.ownerID()
	if err != nil {
		s.fail("fetch", err)
		return err
	}

	s.mu.Lock()
	s.loadSeq++
	seq := s.loadSeq
	s.mu.Unlock()

	items, err := s.schema.Resource.List(ctx)
	if err == nil {
		items, err = s.link(ctx, items)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		s.logger.Debug("discarding cancelled load", zap.String("label", s.schema.Label))
		return ctxErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.loadSeq {
		return nil
	}
	if err != nil {
		s.status.Error = failure("fetch", s.schema.Label, err)
		s.logger.Warn("load failed", zap.String("label", s.schema.Label), zap.Error(err))
		return fmt.Errorf("load %s: %w", strings.ToLower(s.schema.Label), err)
	}

	s.all = items
	s.owned = s.scope(items, ownerID)
	s.status.Error = ""
	s.rebuild()
	return nil
}

// Submit validates form, then updates the record being edited or creates a new one.
//
// On success the server entity is spliced into the collection, the form is reset, the
// edit state returns to Idle and a full Load follows. A failed refresh does not fail the submit.
func (s *Synchronizer[T, F]) Submit(ctx context.Context, form F) (T, error) {
	var zero T

	if err := form.Validate(); err != nil {
		s.mu.Lock()
		s.form = form
		s.status = Status{Error: apperrors.Message(err)}
		s.mu.Unlock()
		return zero, err
	}

	if s.schema.Stamp != nil {
		ownerID, err := s.ownerID()
		if err != nil {
			s.fail("save", err)
			return zero, err
		}
		form = s.schema.Stamp(form, ownerID)
	}

	s.mu.Lock()
	edit := s.edit
	s.mu.Unlock()

	var saved T
	var err error
	verb, done := "add", "added"
	if id, editing := edit.ID(); editing {
		verb, done = "update", "updated"
		saved, err = s.schema.Resource.Update(ctx, id, form)
	} else {
		saved, err = s.schema.Resource.Create(ctx, form)
	}
	if err != nil {
		s.mu.Lock()
		s.form = form
		s.status = Status{Error: failure(verb, s.schema.Label, err)}
		s.mu.Unlock()
		s.logger.Warn("submit failed", zap.String("label", s.schema.Label), zap.String("op", verb), zap.Error(err))
		return zero, fmt.Errorf("%s %s: %w", verb, strings.ToLower(s.schema.Label), err)
	}

	s.mu.Lock()
	s.loadSeq++
	s.splice(s.attach(saved, s.animals))
	var empty F
	s.form = empty
	s.edit = Idle()
	s.status = Status{Success: fmt.Sprintf("%s %s successfully!", s.schema.Label, done)}
	s.mu.Unlock()

	if err := s.Load(ctx); err != nil {
		s.logger.Warn("refresh after submit failed", zap.String("label", s.schema.Label), zap.Error(err))
	}

	return saved, nil
}

// Remove deletes the record on the server, then drops it locally. On failure the record stays.
func (s *Synchronizer[T, F]) Remove(ctx context.Context, id int) error {
	if err := s.schema.Resource.Remove(ctx, id); err != nil {
		s.mu.Lock()
		s.status = Status{Error: failure("delete", s.schema.Label, err)}
		s.mu.Unlock()
		s.logger.Warn("delete failed", zap.String("label", s.schema.Label), zap.Int("id", id), zap.Error(err))
		return fmt.Errorf("delete %s %d: %w", strings.ToLower(s.schema.Label), id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadSeq++
	s.all = dropID(s.all, id)
	s.owned = dropID(s.owned, id)
	if editID, editing := s.edit.ID(); editing && editID == id {
		var empty F
		s.form = empty
		s.edit = Idle()
	}
	s.status = Status{Success: fmt.Sprintf("%s deleted successfully!", s.schema.Label)}
	s.rebuild()
	return nil
}

// Edit switches to Editing(id) and pre-fills the form from the loaded record.
func (s *Synchronizer[T, F]) Edit(id int) error {
	if s.schema.FormFrom == nil {
		return fmt.Errorf("edit %s %d: %w", strings.ToLower(s.schema.Label), id, ErrNotEditable)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.owned, func(item T) bool { return item.RecordID() == id })
	if idx < 0 {
		return fmt.Errorf("edit %s %d: %w", strings.ToLower(s.schema.Label), id, ErrNotLoaded)
	}

	s.form = s.schema.FormFrom(s.owned[idx])
	s.edit = Editing(id)
	s.status = Status{}
	return nil
}

// Get fetches a single record from the server. It leaves the loaded collection untouched.
func (s *Synchronizer[T, F]) Get(ctx context.Context, id int) (T, error) {
	var zero T

	ownerID, err := s.ownerID()
	if err != nil {
		return zero, err
	}

	item, err := s.schema.Resource.Get(ctx, id)
	if err != nil {
		s.logger.Warn("get failed", zap.String("label", s.schema.Label), zap.Int("id", id), zap.Error(err))
		return zero, fmt.Errorf("get %s %d: %w", strings.ToLower(s.schema.Label), id, err)
	}

	linked, err := s.link(ctx, []T{item})
	if err != nil {
		return zero, fmt.Errorf("get %s %d: %w", strings.ToLower(s.schema.Label), id, err)
	}
	if !s.owns(linked[0], ownerID) {
		return zero, fmt.Errorf("get %s %d: %w", strings.ToLower(s.schema.Label), id, ErrNotLoaded)
	}
	return linked[0], nil
}

// Cancel abandons the edit and clears the form.
func (s *Synchronizer[T, F]) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var empty F
	s.form = empty
	s.edit = Idle()
}

// EditState returns the current edit state.
func (s *Synchronizer[T, F]) EditState() EditState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.edit
}

// Sort orders the owner view in memory. An empty field restores server order.
func (s *Synchronizer[T, F]) Sort(field string, dir Direction) error {
	if dir == "" {
		dir = Ascending
	}
	if dir != Ascending && dir != Descending {
		return fmt.Errorf("%w: %q", ErrUnknownDirection, dir)
	}
	if _, ok := s.schema.SortKeys[field]; field != "" && !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSortField, field)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sortBy = field
	s.sortDir = dir
	s.rebuild()
	return nil
}

// Search narrows the owner view to records whose searchable text contains term,
// ignoring case and keeping the current order. An empty term shows everything.
func (s *Synchronizer[T, F]) Search(term string) []T {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.query = strings.TrimSpace(term)
	s.rebuild()
	return slices.Clone(s.view)
}

// All returns the full, unscoped collection from the last load.
func (s *Synchronizer[T, F]) All() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.all)
}

// Owned returns the owner-scoped records in server order.
func (s *Synchronizer[T, F]) Owned() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.owned)
}

// Total returns the aggregate of Measure over the owner view.
func (s *Synchronizer[T, F]) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Status returns the current message pair.
func (s *Synchronizer[T, F]) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// View returns a copy of the displayed state.
func (s *Synchronizer[T, F]) View() View[T, F] {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View[T, F]{
		Items:   slices.Clone(s.view),
		Count:   len(s.owned),
		Total:   s.total,
		Form:    s.form,
		Status:  s.status,
		Query:   s.query,
		SortBy:  s.sortBy,
		SortDir: string(s.sortDir),
	}
	if v.Items == nil {
		v.Items = []T{}
	}
	if id, editing := s.edit.ID(); editing {
		v.Editing = &id
	}
	return v
}

func (s *Synchronizer[T, F]) ownerID() (int, error) {
	if s.schema.Owner == nil && s.schema.Stamp == nil {
		return 0, nil
	}
	current, err := s.store.Get()
	if err != nil {
		return 0, fmt.Errorf("read session: %w", err)
	}
	if current == nil {
		return 0, apperrors.ErrNoSession
	}
	return current.UserID(), nil
}

func (s *Synchronizer[T, F]) fail(verb string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = Status{Error: failure(verb, s.schema.Label, err)}
}

func (s *Synchronizer[T, F]) scope(items []T, ownerID int) []T {
	if s.schema.Owner == nil {
		return slices.Clone(items)
	}
	owned := make([]T, 0, len(items))
	for _, item := range items {
		if s.owns(item, ownerID) {
			owned = append(owned, item)
		}
	}
	return owned
}

func (s *Synchronizer[T, F]) owns(item T, ownerID int) bool {
	if s.schema.Owner == nil {
		return true
	}
	id, ok := s.schema.Owner(item)
	return ok && id == ownerID
}

// link embeds the animal in records listed without one. The herd is fetched only when
// at least one record needs it.
func (s *Synchronizer[T, F]) link(ctx context.Context, items []T) ([]T, error) {
	if s.schema.AnimalOf == nil || s.schema.Attach == nil || s.herd == nil {
		return items, nil
	}
	missing := slices.ContainsFunc(items, func(item T) bool {
		_, embedded := s.schema.AnimalOf(item)
		return !embedded
	})
	if !missing {
		return items, nil
	}

	herd, err := s.herd(ctx)
	if err != nil {
		return nil, fmt.Errorf("load animals: %w", err)
	}

	s.mu.Lock()
	s.animals = herd
	s.mu.Unlock()

	linked := make([]T, len(items))
	for i, item := range items {
		linked[i] = s.attach(item, herd)
	}
	return linked, nil
}

func (s *Synchronizer[T, F]) attach(item T, herd Herd) T {
	if s.schema.AnimalOf == nil || s.schema.Attach == nil {
		return item
	}
	animalID, embedded := s.schema.AnimalOf(item)
	if embedded {
		return item
	}
	if ref, ok := herd[animalID]; ok {
		return s.schema.Attach(item, ref)
	}
	return item
}

// splice puts a server entity into the collection, replacing the copy with the same id.
// Must be called with mu held.
func (s *Synchronizer[T, F]) splice(saved T) {
	id := saved.RecordID()
	if id == 0 {
		// The endpoint did not echo the entity; the following Load picks it up.
		return
	}

	replaced := false
	for i := range s.all {
		if s.all[i].RecordID() == id {
			s.all[i] = saved
			replaced = true
		}
	}
	if !replaced {
		s.all = append(s.all, saved)
	}

	replaced = false
	for i := range s.owned {
		if s.owned[i].RecordID() == id {
			s.owned[i] = saved
			replaced = true
		}
	}
	if !replaced && s.belongs(saved) {
		s.owned = append(s.owned, saved)
	}
	s.rebuild()
}

func (s *Synchronizer[T, F]) belongs(item T) bool {
	if s.schema.Owner == nil {
		return true
	}
	current, err := s.store.Get()
	if err != nil || current == nil {
		return false
	}
	return s.owns(item, current.UserID())
}

// rebuild recomputes the total and the displayed view. Must be called with mu held.
func (s *Synchronizer[T, F]) rebuild() {
	s.total = 0
	if s.schema.Measure != nil {
		for _, item := range s.owned {
			s.total += s.schema.Measure(item)
		}
	}

	view := slices.Clone(s.owned)
	if compare, ok := s.schema.SortKeys[s.sortBy]; ok && s.sortBy != "" {
		slices.SortStableFunc(view, func(a, b T) int {
			if s.sortDir == Descending {
				return compare(b, a)
			}
			return compare(a, b)
		})
	}

	if s.query != "" && s.schema.Text != nil {
		needle := strings.ToLower(s.query)
		view = slices.DeleteFunc(view, func(item T) bool {
			for _, text := range s.schema.Text(item) {
				if strings.Contains(strings.ToLower(text), needle) {
					return false
				}
			}
			return true
		})
	}
	s.view = view
}

func dropID[T Record](items []T, id int) []T {
	return slices.DeleteFunc(items, func(item T) bool { return item.RecordID() == id })
}

func failure(verb, label string, err error) string {
	return fmt.Sprintf("Failed to %s %s: %s", verb, strings.ToLower(label), apperrors.Message(err))
}

// SubmitWith decodes a form with bind, then submits it.
func (s *Synchronizer[T, F]) SubmitWith(ctx context.Context, bind func(obj any) error) error {
	var form F
	if err := bind(&form); err != nil {
		return err
	}
	_, err := s.Submit(ctx, form)
	return err
}

// Filter applies a search term without returning the matches.
func (s *Synchronizer[T, F]) Filter(term string) { s.Search(term) }

// Render returns View as an untyped value for transports.
func (s *Synchronizer[T, F]) Render() any { return s.View() }

// Detail returns Get as an untyped value for transports.
func (s *Synchronizer[T, F]) Detail(ctx context.Context, id int) (any, error) {
	return s.Get(ctx, id)
}

// Editing reports whether a record is selected for editing.
func (s *Synchronizer[T, F]) Editing() bool {
	_, editing := s.EditState().ID()
	return editing
}
