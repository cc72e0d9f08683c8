package models

import (
	"gorm.io/gorm"
)

type MenuItem struct {
	gorm.Model
	Name         string `json:"name" gorm:"not null"`
	PriceInCents int64  `json:"price_in_cents" gorm:"not null"`
	Available    bool   `json:"available" gorm:"not null;default:true"`
	ImageURL     string `json:"image_url"`
}
