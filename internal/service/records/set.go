package records

import (
	"context"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/barnmonitor/internal/domain/models"
	"github.com/mamadbah2/barnmonitor/internal/session"
	"github.com/mamadbah2/barnmonitor/pkg/clients/barnapi"
)

// Controller is the type-erased surface of a Synchronizer used by the HTTP layer.
type Controller interface {
	Label() string
	Load(ctx context.Context) error
	SubmitWith(ctx context.Context, bind func(obj any) error) error
	Remove(ctx context.Context, id int) error
	Detail(ctx context.Context, id int) (any, error)
	Edit(id int) error
	Editing() bool
	Cancel()
	Sort(field string, dir Direction) error
	Filter(term string)
	Render() any
}

var (
	_ Controller = (*Synchronizer[models.Animal, models.AnimalForm])(nil)
	_ Controller = (*Synchronizer[models.SaleRecord, models.SaleForm])(nil)
)

// Set holds one synchronizer per record collection.
type Set struct {
	Animals       *Synchronizer[models.Animal, models.AnimalForm]
	AnimalTypes   *Synchronizer[models.AnimalType, models.AnimalTypeForm]
	HealthRecords *Synchronizer[models.HealthRecord, models.HealthRecordForm]
	Feeds         *Synchronizer[models.FeedRecord, models.FeedForm]
	Productions   *Synchronizer[models.ProductionRecord, models.ProductionForm]
	Sales         *Synchronizer[models.SaleRecord, models.SaleForm]
}

// NewSet configures the synchronizers of every collection exposed by the API.
func NewSet(api barnapi.Collections, store session.Store, logger *zap.Logger) *Set {
	if logger == nil {
		logger = zap.NewNop()
	}

	herd := WithHerd(HerdFrom(api.Animals))
	return &Set{
		Animals:       NewSynchronizer(AnimalSchema(api.Animals), store, logger.Named("animals")),
		AnimalTypes:   NewSynchronizer(AnimalTypeSchema(api.AnimalTypes), store, logger.Named("animal_types")),
		HealthRecords: NewSynchronizer(HealthRecordSchema(api.HealthRecords), store, logger.Named("health_records"), herd),
		Feeds:         NewSynchronizer(FeedSchema(api.Feeds), store, logger.Named("feeds"), herd),
		Productions:   NewSynchronizer(ProductionSchema(api.Productions), store, logger.Named("productions"), herd),
		Sales:         NewSynchronizer(SaleSchema(api.Sales), store, logger.Named("sales"), herd),
	}
}

// HerdFrom indexes the full animal list. Feeds and health records are listed with a bare
// animal_id, so their owner is only known through the animal.
func HerdFrom(animals Remote[models.Animal]) HerdSource {
	return func(ctx context.Context) (Herd, error) {
		items, err := animals.List(ctx)
		if err != nil {
			return nil, err
		}
		herd := make(Herd, len(items))
		for _, a := range items {
			herd[a.ID] = a.Ref()
		}
		return herd, nil
	}
}

// Controllers returns every synchronizer keyed by its API collection name.
func (s *Set) Controllers() map[string]Controller {
	return map[string]Controller{
		"animals":        s.Animals,
		"animal_types":   s.AnimalTypes,
		"health_records": s.HealthRecords,
		"feeds":          s.Feeds,
		"productions":    s.Productions,
		"sales":          s.Sales,
	}
}

// LoadAll loads every collection concurrently and returns the first error.
func (s *Set) LoadAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, c := range s.Controllers() {
		g.Go(func() error { return c.Load(ctx) })
	}
	return g.Wait()
}

// AnimalSchema scopes animals by their farmer_id column.
func AnimalSchema(r Remote[models.Animal]) Schema[models.Animal, models.AnimalForm] {
	return Schema[models.Animal, models.AnimalForm]{
		Label:    "Animal",
		Resource: r,
		Owner:    func(a models.Animal) (int, bool) { return a.FarmerID, true },
		Text: func(a models.Animal) []string {
			text := []string{a.Name, a.Breed, a.HealthStatus}
			if a.AnimalType != nil {
				text = append(text, a.AnimalType.TypeName)
			}
			return text
		},
		SortKeys: map[string]Compare[models.Animal]{
			"name":          ByFold(func(a models.Animal) string { return a.Name }),
			"breed":         ByFold(func(a models.Animal) string { return a.Breed }),
			"age":           By(func(a models.Animal) int { return a.Age }),
			"health_status": ByFold(func(a models.Animal) string { return a.HealthStatus }),
			"birth_date":    By(func(a models.Animal) string { return a.BirthDate }),
		},
		FormFrom: models.AnimalFormFrom,
		Stamp: func(f models.AnimalForm, ownerID int) models.AnimalForm {
			if f.FarmerID == 0 {
				f.FarmerID = ownerID
			}
			return f
		},
	}
}

// AnimalTypeSchema leaves animal types unscoped; they are shared by every farmer.
func AnimalTypeSchema(r Remote[models.AnimalType]) Schema[models.AnimalType, models.AnimalTypeForm] {
	return Schema[models.AnimalType, models.AnimalTypeForm]{
		Label:    "Animal type",
		Resource: r,
		Text:     func(t models.AnimalType) []string { return []string{t.TypeName, t.Description} },
		SortKeys: map[string]Compare[models.AnimalType]{
			"type_name": ByFold(func(t models.AnimalType) string { return t.TypeName }),
		},
		FormFrom: models.AnimalTypeFormFrom,
	}
}

func HealthRecordSchema(r Remote[models.HealthRecord]) Schema[models.HealthRecord, models.HealthRecordForm] {
	return Schema[models.HealthRecord, models.HealthRecordForm]{
		Label:    "Health record",
		Resource: r,
		Owner:    func(h models.HealthRecord) (int, bool) { return models.OwnerOf(h.Animal) },
		Text: func(h models.HealthRecord) []string {
			return []string{animalName(h.Animal), h.Treatment, h.VetName, h.Notes}
		},
		SortKeys: map[string]Compare[models.HealthRecord]{
			"checkup_date": By(func(h models.HealthRecord) string { return h.CheckupDate }),
			"treatment":    ByFold(func(h models.HealthRecord) string { return h.Treatment }),
			"vet_name":     ByFold(func(h models.HealthRecord) string { return h.VetName }),
		},
		FormFrom: models.HealthRecordFormFrom,
		AnimalOf: func(h models.HealthRecord) (int, bool) { return h.AnimalID, h.Animal != nil },
		Attach: func(h models.HealthRecord, ref models.AnimalRef) models.HealthRecord {
			h.Animal = &ref
			return h
		},
	}
}

// FeedSchema has no FormFrom: feeds can be added and deleted but not updated.
func FeedSchema(r Remote[models.FeedRecord]) Schema[models.FeedRecord, models.FeedForm] {
	return Schema[models.FeedRecord, models.FeedForm]{
		Label:    "Feed record",
		Resource: r,
		Owner:    func(f models.FeedRecord) (int, bool) { return models.OwnerOf(f.Animal) },
		Measure:  func(f models.FeedRecord) float64 { return float64(f.Quantity) },
		Text: func(f models.FeedRecord) []string {
			return []string{animalName(f.Animal), f.FeedType}
		},
		SortKeys: map[string]Compare[models.FeedRecord]{
			"date":      By(func(f models.FeedRecord) string { return f.Date }),
			"feed_type": ByFold(func(f models.FeedRecord) string { return f.FeedType }),
			"quantity":  By(func(f models.FeedRecord) int { return f.Quantity }),
		},
		AnimalOf: func(f models.FeedRecord) (int, bool) { return f.AnimalID, f.Animal != nil },
		Attach: func(f models.FeedRecord, ref models.AnimalRef) models.FeedRecord {
			f.Animal = &ref
			return f
		},
	}
}

// ProductionSchema aggregates produced quantities.
func ProductionSchema(r Remote[models.ProductionRecord]) Schema[models.ProductionRecord, models.ProductionForm] {
	return Schema[models.ProductionRecord, models.ProductionForm]{
		Label:    "Production record",
		Resource: r,
		Owner:    func(p models.ProductionRecord) (int, bool) { return models.OwnerOf(p.Animal) },
		Measure:  func(p models.ProductionRecord) float64 { return p.Quantity },
		Text: func(p models.ProductionRecord) []string {
			return []string{animalName(p.Animal), p.ProductType}
		},
		SortKeys: map[string]Compare[models.ProductionRecord]{
			"production_date": By(func(p models.ProductionRecord) string { return p.ProductionDate }),
			"product_type":    ByFold(func(p models.ProductionRecord) string { return p.ProductType }),
			"quantity":        By(func(p models.ProductionRecord) float64 { return p.Quantity }),
		},
		FormFrom: models.ProductionFormFrom,
		AnimalOf: func(p models.ProductionRecord) (int, bool) { return p.AnimalID, p.Animal != nil },
		Attach: func(p models.ProductionRecord, ref models.AnimalRef) models.ProductionRecord {
			p.Animal = &ref
			return p
		},
	}
}

// SaleSchema aggregates sale amounts.
func SaleSchema(r Remote[models.SaleRecord]) Schema[models.SaleRecord, models.SaleForm] {
	return Schema[models.SaleRecord, models.SaleForm]{
		Label:    "Sales record",
		Resource: r,
		Owner:    func(s models.SaleRecord) (int, bool) { return models.OwnerOf(s.Animal) },
		Measure:  func(s models.SaleRecord) float64 { return s.Amount },
		Text: func(s models.SaleRecord) []string {
			return []string{animalName(s.Animal), s.ProductType, strconv.Itoa(s.ID)}
		},
		SortKeys: map[string]Compare[models.SaleRecord]{
			"sale_date":     By(func(s models.SaleRecord) string { return s.SaleDate }),
			"product_type":  ByFold(func(s models.SaleRecord) string { return s.ProductType }),
			"quantity_sold": By(func(s models.SaleRecord) int { return s.QuantitySold }),
			"amount":        By(func(s models.SaleRecord) float64 { return s.Amount }),
		},
		FormFrom: models.SaleFormFrom,
		AnimalOf: func(s models.SaleRecord) (int, bool) { return s.AnimalID, s.Animal != nil },
		Attach: func(s models.SaleRecord, ref models.AnimalRef) models.SaleRecord {
			s.Animal = &ref
			return s
		},
	}
}

func animalName(ref *models.AnimalRef) string {
	if ref == nil {
		return ""
	}
	return ref.Name
}
