package records

import (
	"cmp"
	"context"
	"strings"

	"github.com/mamadbah2/barnmonitor/internal/domain/models"
)

// Record is implemented by every entity the API assigns an id to.
type Record interface {
	RecordID() int
}

// Form is a create/update payload that can check its own required fields.
type Form interface {
	Validate() error
}

// Remote is the collection API a synchronizer talks to. barnapi.Resource implements it.
type Remote[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int) (T, error)
	Create(ctx context.Context, payload any) (T, error)
	Update(ctx context.Context, id int, payload any) (T, error)
	Remove(ctx context.Context, id int) error
}

// Compare orders two entities, negative when a sorts before b.
type Compare[T any] func(a, b T) int

// Schema configures a Synchronizer for one entity type.
type Schema[T Record, F Form] struct {
	// Label names the entity in status messages, e.g. "Sales record".
	Label    string
	Resource Remote[T]
	// Owner extracts the owning farmer id. Nil leaves the collection unscoped.
	Owner func(T) (int, bool)
	// Measure feeds the aggregate total. Nil keeps the total at zero.
	Measure  func(T) float64
	Text     func(T) []string
	SortKeys map[string]Compare[T]
	// FormFrom pre-fills the edit form. Nil means the API offers no update for the entity.
	FormFrom func(T) F
	// Stamp lets the form carry the owner id before it is sent.
	Stamp func(form F, ownerID int) F
	// AnimalOf reports the animal a child record belongs to and whether the API embedded it.
	// Records listed without the embedded animal get one from the herd through Attach.
	AnimalOf func(T) (animalID int, embedded bool)
	Attach   func(T, models.AnimalRef) T
}

// Herd indexes every known animal by id.
type Herd map[int]models.AnimalRef

// HerdSource loads the herd used to link child records to their animal and farmer.
type HerdSource func(ctx context.Context) (Herd, error)

// By builds a Compare from an ordered key.
func By[T any, K cmp.Ordered](key func(T) K) Compare[T] {
	return func(a, b T) int { return cmp.Compare(key(a), key(b)) }
}

// ByFold builds a case-insensitive Compare over a string key.
func ByFold[T any](key func(T) string) Compare[T] {
	return func(a, b T) int { return cmp.Compare(strings.ToLower(key(a)), strings.ToLower(key(b))) }
}

// Direction is the sort order requested by the caller.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// EditState is either Idle or Editing a single record id.
type EditState struct {
	id      int
	editing bool
}

// Idle is the state with no record selected for editing.
func Idle() EditState { return EditState{} }

// Editing selects the record id for editing.
func Editing(id int) EditState { return EditState{id: id, editing: true} }

// ID returns the record being edited, ok is false when Idle.
func (e EditState) ID() (int, bool) { return e.id, e.editing }

func (e EditState) String() string {
	if !e.editing {
		return "idle"
	}
	return "editing"
}

// Status is the success/error message pair shown next to a collection.
type Status struct {
	Success string `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

// View is a consistent copy of a synchronizer's state.
type View[T any, F any] struct {
	Items   []T     `json:"items"`
	Count   int     `json:"count"`
	Total   float64 `json:"total"`
	Editing *int    `json:"editing,omitempty"`
	Form    F       `json:"form"`
	Status  Status  `json:"status"`
	Query   string  `json:"query,omitempty"`
	SortBy  string  `json:"sort_by,omitempty"`
	SortDir string  `json:"sort_dir,omitempty"`
}
