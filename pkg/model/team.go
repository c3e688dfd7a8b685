package model

// Team is a read model for the external reference-data service. Only
// the fields the booking core needs are mapped.
type Team struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CountryCode string `json:"country_code"`
}
