package models

import "time"

// Publisher ("empresa") owns offerings. CNPJ is stored digits-only and is unique.
type Publisher struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	LegalName string    `bson:"legal_name" json:"legalName"`
	CNPJ      string    `bson:"cnpj" json:"cnpj"`
	Email     string    `bson:"email,omitempty" json:"email,omitempty"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
