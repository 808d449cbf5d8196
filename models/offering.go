package models

import "time"

// Offering is a bookable service published by a Publisher. It is booked at
// most once; Booked is true exactly when ReservedBy is set.
type Offering struct {
	ID              string    `bson:"id" json:"id"`
	Name            string    `bson:"name" json:"name"`
	Category        string    `bson:"category" json:"category"`
	Description     string    `bson:"description" json:"description"`
	DurationMinutes int       `bson:"duration_minutes" json:"durationMinutes"`
	PriceCents      int64     `bson:"price_cents" json:"priceCents"`
	Booked          bool      `bson:"booked" json:"booked"`
	ReservedBy      string    `bson:"reserved_by,omitempty" json:"reservedBy,omitempty"`
	PublisherID     string    `bson:"publisher_id" json:"publisherId"`
	CreatedAt       time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updatedAt"`
	BookedAt        time.Time `bson:"booked_at,omitempty" json:"bookedAt,omitempty"`
}

// OfferingInput is the payload accepted when publishing a new offering.
type OfferingInput struct {
	Name            string  `json:"name" binding:"required"`
	Category        string  `json:"category" binding:"required"`
	Description     string  `json:"description" binding:"required"`
	DurationMinutes int     `json:"durationMinutes" binding:"required"`
	Price           float64 `json:"price"`
	PublisherID     string  `json:"publisherId" binding:"required"`
}
