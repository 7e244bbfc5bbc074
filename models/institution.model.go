package models

import (
	"gorm.io/gorm"
)

// Institution is the issuing authority a certificate request is addressed to
type Institution struct {
	gorm.Model
	Name      string `json:"name" gorm:"unique;not null"`
	Country   string `json:"country"`
	Website   string `json:"website"`
	IsDeleted bool   `gorm:"default:false"`
}
