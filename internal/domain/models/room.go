package models

import "time"

// Room is a storage unit whose live and target climate is tracked.
type Room struct {
	ID              string    `bson:"_id" json:"id"`
	Name            string    `bson:"name" json:"name"`
	CurrentTemp     float64   `bson:"current_temp" json:"current_temp"`
	TargetTemp      float64   `bson:"target_temp" json:"target_temp"`
	CurrentHumidity float64   `bson:"current_humidity" json:"current_humidity"`
	ProductID       *string   `bson:"product_id,omitempty" json:"product_id,omitempty"`
	LastUpdated     time.Time `bson:"last_updated" json:"last_updated"`
}

// NewRoomRequest carries the fields accepted when registering a room.
type NewRoomRequest struct {
	Name            string  `json:"name" validate:"required,max=64"`
	InitialTemp     float64 `json:"initial_temp" validate:"gte=-50,lte=50"`
	InitialHumidity float64 `json:"initial_humidity" validate:"gte=0,lte=100"`
}

const (
	// TargetTempMin and TargetTempMax bound manually applied setpoints.
	TargetTempMin = -30.0
	TargetTempMax = 30.0
)
