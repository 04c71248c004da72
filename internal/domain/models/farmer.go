package models

// Farmer is the account owner; one farmer per session.
type Farmer struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// FarmerProfile is the GET /farmers/:id payload with the farmer's herd expanded.
type FarmerProfile struct {
	Farmer
	Animals []ProfileAnimal `json:"animals"`
}

// ProfileAnimal is an animal with its nested child records as returned by the profile endpoint.
type ProfileAnimal struct {
	Animal
	HealthRecords []HealthRecord     `json:"health_records"`
	FeedRecords   []FeedRecord       `json:"feed_records"`
	Production    []ProductionRecord `json:"production"`
}
