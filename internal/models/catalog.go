package models

type Salon struct {
	ID           int64  `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Address      string `json:"address" yaml:"address"`
	Phone        string `json:"phone" yaml:"phone"`
	WorkingHours string `json:"working_hours" yaml:"working_hours"` // "10:00-22:00"
}

type Master struct {
	ID             int64   `json:"id" yaml:"id"`
	SalonID        int64   `json:"salon_id" yaml:"salon_id"`
	Name           string  `json:"name" yaml:"name"`
	Specialization string  `json:"specialization" yaml:"specialization"`
	Rating         float64 `json:"rating" yaml:"rating"`
	PhotoURL       string  `json:"photo_url,omitempty" yaml:"photo_url"`
}

type Service struct {
	ID          int64   `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description"`
	Price       float64 `json:"price" yaml:"price"`
	DurationMin int     `json:"duration" yaml:"duration"` // minutes
}
