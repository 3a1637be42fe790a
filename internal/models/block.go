package models

import "time"

// Block represents an admin-imposed posting restriction. A user counts as
// globally blocked when any row names them as BlockedUserID, regardless of
// which admin created it.
type Block struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	BlockerID     uint      `json:"blocker_id" gorm:"not null;uniqueIndex:idx_block_pair"`
	BlockedUserID uint      `json:"blocked_user_id" gorm:"not null;uniqueIndex:idx_block_pair;index"`
	Reason        string    `json:"reason,omitempty" gorm:"size:500"`
	CreatedAt     time.Time `json:"created_at"`
}

// CreateBlockRequest defines the request body for blocking a user
type CreateBlockRequest struct {
	BlockedUserID uint   `json:"blocked_user_id" validate:"required"`
	Reason        string `json:"reason,omitempty" validate:"omitempty,max=500"`
}
