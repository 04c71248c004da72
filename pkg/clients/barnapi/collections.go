package barnapi

import "github.com/mamadbah2/barnmonitor/internal/domain/models"

// Collections groups the record resources exposed by the API.
type Collections struct {
	Animals       *Resource[models.Animal]
	AnimalTypes   *Resource[models.AnimalType]
	HealthRecords *Resource[models.HealthRecord]
	Feeds         *Resource[models.FeedRecord]
	Productions   *Resource[models.ProductionRecord]
	Sales         *Resource[models.SaleRecord]
}

// NewCollections binds every record collection to the client.
func NewCollections(c *Client) Collections {
	return Collections{
		Animals:     NewResource[models.Animal](c, "/animals"),
		AnimalTypes: NewResource[models.AnimalType](c, "/animal_types"),
		// POST /health_records answers {"message": ..., "record": {...}}.
		HealthRecords: NewResource[models.HealthRecord](c, "/health_records", WithEnvelope("record")),
		Feeds:         NewResource[models.FeedRecord](c, "/feeds"),
		Productions:   NewResource[models.ProductionRecord](c, "/productions"),
		Sales:         NewResource[models.SaleRecord](c, "/sales"),
	}
}
