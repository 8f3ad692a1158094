package models

// DashboardView aggregates what the presentation layer renders for one room.
type DashboardView struct {
	Room              Room               `json:"room"`
	Product           *Product           `json:"product,omitempty"`
	Environment       *EnvironmentSample `json:"environment,omitempty"`
	Alerts            []string           `json:"alerts"`
	RecommendedTemp   *float64           `json:"recommended_temp,omitempty"`
	DeltaFromExternal *float64           `json:"delta_from_external,omitempty"`
	Status            string             `json:"status"`
	History           []SensorSample     `json:"history"`
}

// RoomSummary captures trend statistics over a room's recent samples.
type RoomSummary struct {
	RoomID      string  `json:"room_id"`
	RoomName    string  `json:"room_name"`
	Samples     int     `json:"samples"`
	AvgTemp     float64 `json:"avg_temp"`
	MinTemp     float64 `json:"min_temp"`
	MaxTemp     float64 `json:"max_temp"`
	AvgHumidity float64 `json:"avg_humidity"`
	MinHumidity float64 `json:"min_humidity"`
	MaxHumidity float64 `json:"max_humidity"`
}
