package models

import "time"

// SensorSample is an immutable climate observation for a room.
type SensorSample struct {
	ID          string    `bson:"_id" json:"id"`
	RoomID      string    `bson:"room_id" json:"room_id"`
	Temperature float64   `bson:"temperature" json:"temperature"`
	Humidity    float64   `bson:"humidity" json:"humidity"`
	Timestamp   time.Time `bson:"timestamp" json:"timestamp"`
}

// EnvironmentSample is the latest external weather observation. It is replaced
// wholesale on each refresh and never historized.
type EnvironmentSample struct {
	Location    string    `json:"location"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Conditions  string    `json:"conditions"`
	Timestamp   time.Time `json:"timestamp"`
}
