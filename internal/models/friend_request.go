package models

import "time"

// FriendRequest is a pending, one-directional proposal to form a friendship.
// It is not a friendship: the confirmed edge lives in profile_friends and is
// only written when the receiver accepts.
//
// The (FromProfileID, ToProfileID) pair is unique so that re-sending the same
// request can be an idempotent get-or-create instead of a duplicate row.
type FriendRequest struct {
	ID            uint `gorm:"primarykey"`
	FromProfileID uint `gorm:"not null;uniqueIndex:idx_friend_request_pair"`
	ToProfileID   uint `gorm:"not null;uniqueIndex:idx_friend_request_pair;index"`
	CreatedAt     time.Time

	FromProfile Profile `gorm:"foreignKey:FromProfileID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ToProfile   Profile `gorm:"foreignKey:ToProfileID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
