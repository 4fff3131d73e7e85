package models

// Service is a catalogue entry; Price is what a booking of this type costs by default.
type Service struct {
	ID          string  `bson:"id" json:"id"`
	Name        string  `bson:"name" json:"name"` // e.g. "Cleaning", "Plumbing"
	Key         string  `bson:"key" json:"-"`     // Normalized name
	Price       float64 `bson:"price" json:"price"`
	Description string  `bson:"description,omitempty" json:"description,omitempty"`
	Icon        string  `bson:"icon,omitempty" json:"icon,omitempty"`
}
