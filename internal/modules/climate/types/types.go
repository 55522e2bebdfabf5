package types

// Station is one row of the station reference table.
type Station struct {
	ID        string  `json:"station"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"`
}

// PrecipitationByDate maps a date to the precipitation recorded on it.
// A nil value is a measurement with no precipitation reading.
type PrecipitationByDate map[string]*float64

// StationActivity is a station and how many measurements it reported.
type StationActivity struct {
	StationID string `json:"station"`
	Count     int    `json:"count"`
}

// TemperatureStats holds aggregate temperatures. All fields are nil when
// no measurement matched.
type TemperatureStats struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
	Avg *float64 `json:"avg"`
}
