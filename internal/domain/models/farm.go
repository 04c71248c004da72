package models

// AnimalRef is the trimmed animal the API embeds in child record list responses.
type AnimalRef struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	FarmerID int    `json:"farmer_id"`
}

// Animal is a head of livestock owned by one farmer and classified by one animal type.
type Animal struct {
	ID           int         `json:"id"`
	Name         string      `json:"name"`
	Image        string      `json:"image"`
	Breed        string      `json:"breed"`
	Age          int         `json:"age"`
	HealthStatus string      `json:"health_status"`
	BirthDate    string      `json:"birth_date"`
	FarmerID     int         `json:"farmer_id"`
	AnimalTypeID int         `json:"animal_type_id"`
	AnimalType   *AnimalType `json:"animal_type,omitempty"`
}

// RecordID implements Record.
func (a Animal) RecordID() int { return a.ID }

// Ref trims the animal to the form embedded in child records.
func (a Animal) Ref() AnimalRef { return AnimalRef{ID: a.ID, Name: a.Name, FarmerID: a.FarmerID} }

// AnimalType classifies animals (cow, goat, hen...).
type AnimalType struct {
	ID          int    `json:"id"`
	TypeName    string `json:"type_name"`
	Description string `json:"description"`
}

func (t AnimalType) RecordID() int { return t.ID }

// HealthRecord captures a veterinary checkup.
type HealthRecord struct {
	ID          int        `json:"id"`
	AnimalID    int        `json:"animal_id"`
	CheckupDate string     `json:"checkup_date"`
	Treatment   string     `json:"treatment"`
	VetName     string     `json:"vet_name"`
	Notes       string     `json:"notes"`
	Animal      *AnimalRef `json:"animal,omitempty"`
}

func (h HealthRecord) RecordID() int { return h.ID }

// FeedRecord captures feed given to an animal on a day.
type FeedRecord struct {
	ID       int        `json:"id"`
	AnimalID int        `json:"animal_id"`
	FeedType string     `json:"feed_type"`
	Quantity int        `json:"quantity"`
	Date     string     `json:"date"`
	Animal   *AnimalRef `json:"animal,omitempty"`
}

func (f FeedRecord) RecordID() int { return f.ID }

// ProductionRecord captures produce (milk, eggs, wool) collected from an animal.
type ProductionRecord struct {
	ID             int        `json:"id"`
	AnimalID       int        `json:"animal_id"`
	ProductType    string     `json:"product_type"`
	Quantity       float64    `json:"quantity"`
	ProductionDate string     `json:"production_date"`
	Animal         *AnimalRef `json:"animal,omitempty"`
}

func (p ProductionRecord) RecordID() int { return p.ID }

// SaleRecord captures a sale of produce linked to an animal.
type SaleRecord struct {
	ID           int        `json:"id"`
	AnimalID     int        `json:"animal_id"`
	ProductType  string     `json:"product_type"`
	QuantitySold int        `json:"quantity_sold"`
	Amount       float64    `json:"amount"`
	SaleDate     string     `json:"sale_date"`
	Animal       *AnimalRef `json:"animal,omitempty"`
}

func (s SaleRecord) RecordID() int { return s.ID }

// OwnerOf returns the farmer owning a child record through its embedded animal.
func OwnerOf(animal *AnimalRef) (int, bool) {
	if animal == nil {
		return 0, false
	}
	return animal.FarmerID, true
}
