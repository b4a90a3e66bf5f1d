package models

import "time"

// MeasurementFields lists the measurements, in cm, kept per garment
// category.
var MeasurementFields = map[string][]string{
	"Kurti":  {"Chest", "Waist", "Hip", "Length"},
	"Blouse": {"Bust", "Shoulder", "Armhole", "Sleeve Length"},
	"Pant":   {"Waist", "Hip", "Inseam", "Thigh"},
}

// MeasurementBook holds one customer's measurements by category.
type MeasurementBook struct {
	CustomerID   string                        `bson:"customerId" json:"customerId"`
	CustomerName string                        `bson:"customerName,omitempty" json:"customerName,omitempty"`
	Phone        string                        `bson:"phone,omitempty" json:"phone,omitempty"`
	Categories   map[string]map[string]float64 `bson:"categories" json:"categories"`
	CreatedAt    time.Time                     `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time                     `bson:"updatedAt" json:"updatedAt"`
}

// MeasurementInput replaces the values of one category. Empty Values
// clears the category.
type MeasurementInput struct {
	CustomerName string             `json:"customerName"`
	Phone        string             `json:"phone"`
	Category     string             `json:"category" binding:"required"`
	Values       map[string]float64 `json:"values"`
}
