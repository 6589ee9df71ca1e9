// Package social owns the friendship workflow: pending requests, the
// accept/reject state machine, and the symmetric friend relation between
// profiles.
package social

import (
	"errors"

	"umeals/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrRequestNotFound means the referenced friend request does not exist
	// (or was already accepted/rejected by a concurrent call).
	ErrRequestNotFound = errors.New("friend request not found")

	// ErrNotReceiver means the acting profile is not the receiver of the
	// request and therefore may not accept or reject it.
	ErrNotReceiver = errors.New("acting profile is not the receiver of the request")

	// ErrSelfRequest means a profile tried to send a friend request to itself.
	ErrSelfRequest = errors.New("cannot send a friend request to yourself")
)

// User-facing outcome messages, displayed verbatim by the presentation layer.
const (
	MsgRequestSent        = "Friend request sent."
	MsgRequestAlreadySent = "Friend request was already sent."
	MsgRequestAccepted    = "Friend request accepted."
	MsgRequestRejected    = "Friend request rejected."
	MsgCannotAccept       = "Friend request can't be accepted."
	MsgCannotReject       = "Friend request can't be rejected."
)

// Manager enforces the friend-request state machine over the database.
// Every operation takes the acting profile explicitly; nothing is read from
// ambient request state.
type Manager struct {
	db *gorm.DB
}

// NewManager creates a Manager on top of the given database handle.
func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// SendFriendRequest records a pending request from one profile to another.
// Creation is idempotent: re-sending an identical request returns the
// existing row with created=false instead of failing or duplicating. The
// uniqueness constraint on (from, to) is the correctness mechanism under
// concurrent sends, not application-level locking.
func (m *Manager) SendFriendRequest(from, to *models.Profile) (*models.FriendRequest, bool, error) {
	if from.ID == to.ID {
		return nil, false, ErrSelfRequest
	}

	req := models.FriendRequest{FromProfileID: from.ID, ToProfileID: to.ID}
	result := m.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "from_profile_id"}, {Name: "to_profile_id"}},
		DoNothing: true,
	}).Create(&req)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 0 {
		// An identical pending request already exists; hand that one back.
		if err := m.db.Where("from_profile_id = ? AND to_profile_id = ?", from.ID, to.ID).
			First(&req).Error; err != nil {
			return nil, false, err
		}
		return &req, false, nil
	}

	return &req, true, nil
}

// AcceptFriendRequest confirms a pending request. Only the receiver may
// accept; anyone else gets ErrNotReceiver and the row is left untouched.
//
// On success, a single transaction deletes the request, deletes a reverse
// pending request if one exists, and adds both directions of the friend
// edge. The delete of the accepted request is the linearization point for
// concurrent accepts: whichever transaction removes the row wins, the other
// sees zero rows affected and reports ErrRequestNotFound.
func (m *Manager) AcceptFriendRequest(requestID uint, acting *models.Profile) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		var req models.FriendRequest
		if err := tx.First(&req, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if req.ToProfileID != acting.ID {
			return ErrNotReceiver
		}

		result := tx.Delete(&models.FriendRequest{}, req.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRequestNotFound
		}

		// A reverse pending request (receiver -> sender) is redundant once
		// the friendship exists, so it goes too.
		if err := tx.Where("from_profile_id = ? AND to_profile_id = ?", req.ToProfileID, req.FromProfileID).
			Delete(&models.FriendRequest{}).Error; err != nil {
			return err
		}

		var from, to models.Profile
		if err := tx.First(&from, req.FromProfileID).Error; err != nil {
			return err
		}
		if err := tx.First(&to, req.ToProfileID).Error; err != nil {
			return err
		}

		// Both halves of the symmetric edge, or neither.
		if err := tx.Model(&to).Association("Friends").Append(&from); err != nil {
			return err
		}
		return tx.Model(&from).Association("Friends").Append(&to)
	})
}

// RejectFriendRequest discards a pending request without touching the friend
// relation. The same receiver-only rule as AcceptFriendRequest applies.
func (m *Manager) RejectFriendRequest(requestID uint, acting *models.Profile) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		var req models.FriendRequest
		if err := tx.First(&req, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if req.ToProfileID != acting.ID {
			return ErrNotReceiver
		}

		result := tx.Delete(&models.FriendRequest{}, req.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRequestNotFound
		}
		return nil
	})
}

// DeleteFriend removes an existing friendship in both directions. Removing a
// friendship that does not exist is a no-op, not an error.
func (m *Manager) DeleteFriend(acting, target *models.Profile) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(acting).Association("Friends").Delete(target); err != nil {
			return err
		}
		return tx.Model(target).Association("Friends").Delete(acting)
	})
}

// IncomingRequests returns the pending requests addressed to a profile in
// creation order, with the sender preloaded for display.
func (m *Manager) IncomingRequests(profile *models.Profile) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := m.db.Where("to_profile_id = ?", profile.ID).
		Order("created_at, id").
		Preload("FromProfile").
		Preload("FromProfile.User").
		Find(&requests).Error
	return requests, err
}

// Friends returns the confirmed friends of a profile with their users
// preloaded.
func (m *Manager) Friends(profile *models.Profile) ([]models.Profile, error) {
	var friends []models.Profile
	err := m.db.Preload("User").
		Joins("JOIN profile_friends pf ON pf.friend_id = profiles.id").
		Where("pf.profile_id = ?", profile.ID).
		Find(&friends).Error
	return friends, err
}

// FriendCount returns the number of confirmed friends of a profile.
func (m *Manager) FriendCount(profile *models.Profile) int64 {
	return m.db.Model(profile).Association("Friends").Count()
}
