package models

import (
	"strings"

	"github.com/mamadbah2/barnmonitor/internal/apperrors"
)

// DateLayout is the calendar date format exchanged with the API.
const DateLayout = "2006-01-02"

// AnimalForm is the POST/PATCH payload for /animals.
type AnimalForm struct {
	Name         string `json:"name"`
	Image        string `json:"image"`
	Breed        string `json:"breed"`
	Age          int    `json:"age"`
	HealthStatus string `json:"health_status"`
	BirthDate    string `json:"birth_date"`
	FarmerID     int    `json:"farmer_id"`
	AnimalTypeID int    `json:"animal_type_id"`
}

// Validate ensures the fields the API requires are present.
func (f AnimalForm) Validate() error {
	switch {
	case blank(f.Name):
		return apperrors.Required("name")
	case blank(f.BirthDate):
		return apperrors.Required("birth_date")
	case f.AnimalTypeID == 0:
		return apperrors.Required("animal_type_id")
	}
	return nil
}

// AnimalFormFrom pre-fills an edit form from an existing animal.
func AnimalFormFrom(a Animal) AnimalForm {
	return AnimalForm{
		Name:         a.Name,
		Image:        a.Image,
		Breed:        a.Breed,
		Age:          a.Age,
		HealthStatus: a.HealthStatus,
		BirthDate:    a.BirthDate,
		FarmerID:     a.FarmerID,
		AnimalTypeID: a.AnimalTypeID,
	}
}

// AnimalTypeForm is the payload for /animal_types.
type AnimalTypeForm struct {
	TypeName    string `json:"type_name"`
	Description string `json:"description"`
}

func (f AnimalTypeForm) Validate() error {
	if blank(f.TypeName) {
		return apperrors.Required("type_name")
	}
	return nil
}

func AnimalTypeFormFrom(t AnimalType) AnimalTypeForm {
	return AnimalTypeForm{TypeName: t.TypeName, Description: t.Description}
}

// HealthRecordForm is the payload for /health_records. The API resolves the animal by name.
type HealthRecordForm struct {
	AnimalName  string `json:"name"`
	CheckupDate string `json:"checkup_date"`
	Treatment   string `json:"treatment"`
	VetName     string `json:"vet_name"`
	Notes       string `json:"notes"`
}

func (f HealthRecordForm) Validate() error {
	switch {
	case blank(f.AnimalName):
		return apperrors.Required("name")
	case blank(f.CheckupDate):
		return apperrors.Required("checkup_date")
	case blank(f.Treatment):
		return apperrors.Required("treatment")
	case blank(f.VetName):
		return apperrors.Required("vet_name")
	}
	return nil
}

func HealthRecordFormFrom(h HealthRecord) HealthRecordForm {
	form := HealthRecordForm{
		CheckupDate: dateOnly(h.CheckupDate),
		Treatment:   h.Treatment,
		VetName:     h.VetName,
		Notes:       h.Notes,
	}
	if h.Animal != nil {
		form.AnimalName = h.Animal.Name
	}
	return form
}

// FeedForm is the payload for /feeds.
type FeedForm struct {
	AnimalID int    `json:"animal_id"`
	FeedType string `json:"feed_type"`
	Quantity int    `json:"quantity"`
	Date     string `json:"date"`
}

func (f FeedForm) Validate() error {
	switch {
	case f.AnimalID == 0:
		return apperrors.Required("animal_id")
	case blank(f.FeedType):
		return apperrors.Required("feed_type")
	case f.Quantity == 0:
		return apperrors.Required("quantity")
	case blank(f.Date):
		return apperrors.Required("date")
	}
	return nil
}

// ProductionForm is the payload for /productions.
type ProductionForm struct {
	AnimalID       int     `json:"animal_id"`
	ProductType    string  `json:"product_type"`
	Quantity       float64 `json:"quantity"`
	ProductionDate string  `json:"production_date"`
}

func (f ProductionForm) Validate() error {
	switch {
	case f.AnimalID == 0:
		return apperrors.Required("animal_id")
	case blank(f.ProductType):
		return apperrors.Required("product_type")
	case f.Quantity == 0:
		return apperrors.Required("quantity")
	case blank(f.ProductionDate):
		return apperrors.Required("production_date")
	}
	return nil
}

func ProductionFormFrom(p ProductionRecord) ProductionForm {
	return ProductionForm{
		AnimalID:       p.AnimalID,
		ProductType:    p.ProductType,
		Quantity:       p.Quantity,
		ProductionDate: dateOnly(p.ProductionDate),
	}
}

// SaleForm is the payload for /sales.
type SaleForm struct {
	AnimalID     int     `json:"animal_id"`
	ProductType  string  `json:"product_type"`
	QuantitySold int     `json:"quantity_sold"`
	Amount       float64 `json:"amount"`
	SaleDate     string  `json:"sale_date"`
}

func (f SaleForm) Validate() error {
	switch {
	case f.AnimalID == 0:
		return apperrors.Required("animal_id")
	case blank(f.ProductType):
		return apperrors.Required("product_type")
	case f.QuantitySold == 0:
		return apperrors.Required("quantity_sold")
	case f.Amount == 0:
		return apperrors.Required("amount")
	case blank(f.SaleDate):
		return apperrors.Required("sale_date")
	}
	return nil
}

func SaleFormFrom(s SaleRecord) SaleForm {
	return SaleForm{
		AnimalID:     s.AnimalID,
		ProductType:  s.ProductType,
		QuantitySold: s.QuantitySold,
		Amount:       s.Amount,
		SaleDate:     dateOnly(s.SaleDate),
	}
}

// Validate checks the signup payload; every field is mandatory on the API side.
func (f SignupForm) Validate() error {
	switch {
	case blank(f.Name):
		return apperrors.Required("name")
	case blank(f.Email):
		return apperrors.Required("email")
	case blank(f.Phone):
		return apperrors.Required("phone")
	case blank(f.Address):
		return apperrors.Required("address")
	case f.Password == "":
		return apperrors.Required("password")
	}
	return nil
}

func blank(v string) bool { return strings.TrimSpace(v) == "" }

// dateOnly trims API datetimes ("2024-01-01 00:00:00", RFC3339) down to the date part.
func dateOnly(v string) string {
	if len(v) > len(DateLayout) {
		return v[:len(DateLayout)]
	}
	return v
}
