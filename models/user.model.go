package models

import (
	"time"

	"gorm.io/gorm"
)

// Roles understood by the authorization predicate
const (
	RoleStudent     = "STUDENT"
	RoleInstitution = "INSTITUTION"
	RoleAdmin       = "ADMIN"
)

type User struct {
	gorm.Model
	Name          string     `gorm:"default:''"`
	Email         string     `gorm:"unique;not null"`
	Password      string     `gorm:"not null" json:"-"`
	Role          string     `gorm:"default:'STUDENT'"` // STUDENT, INSTITUTION, ADMIN
	InstitutionID *uint      `gorm:"index"`             // set for INSTITUTION approvers
	LastLogin     *time.Time `json:"last_login"`
	IsDeleted     bool       `gorm:"default:false"`
}
