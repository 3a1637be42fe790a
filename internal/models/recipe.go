package models

import "time"

// Recipe is the minimal row backing the default recipe directory. The full
// recipe document (ingredients, nutrition, steps) lives elsewhere; this
// service only needs existence checks.
type Recipe struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"size:200"`
	CreatedAt time.Time `json:"created_at"`
}
