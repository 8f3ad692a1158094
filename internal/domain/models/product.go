package models

import "time"

// Product is a catalog entry describing the safe storage envelope of an item.
type Product struct {
	ID            string    `bson:"_id" json:"id"`
	Name          string    `bson:"name" json:"name"`
	MinTemp       float64   `bson:"min_temp" json:"min_temp"`
	MaxTemp       float64   `bson:"max_temp" json:"max_temp"`
	IdealHumidity float64   `bson:"ideal_humidity" json:"ideal_humidity"`
	ShelfLifeDays int       `bson:"shelf_life_days" json:"shelf_life_days"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}

// NewProductRequest carries the fields accepted when adding a product to the catalog.
type NewProductRequest struct {
	Name          string  `json:"name" validate:"required,max=64"`
	MinTemp       float64 `json:"min_temp" validate:"gte=-100,lte=100"`
	MaxTemp       float64 `json:"max_temp" validate:"gte=-100,lte=100"`
	IdealHumidity float64 `json:"ideal_humidity" validate:"gte=0,lte=100"`
	ShelfLifeDays int     `json:"shelf_life_days" validate:"gt=0"`
}
