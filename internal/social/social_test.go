package social

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"umeals/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.FriendRequest{},
		&models.Event{},
		&models.Tag{},
	))
	return db
}

func createProfile(t *testing.T, db *gorm.DB, username string) *models.Profile {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "irrelevant",
	}
	require.NoError(t, db.Create(&user).Error)

	profile := models.Profile{UserID: user.ID}
	require.NoError(t, db.Create(&profile).Error)
	profile.User = user
	return &profile
}

func requestCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.FriendRequest{}).Count(&count).Error)
	return count
}

func friendUsernames(t *testing.T, m *Manager, profile *models.Profile) []string {
	t.Helper()
	friends, err := m.Friends(profile)
	require.NoError(t, err)
	names := make([]string, 0, len(friends))
	for _, f := range friends {
		names = append(names, f.User.Username)
	}
	return names
}

func TestSendFriendRequestIdempotent(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	alice := createProfile(t, db, "alice")
	bob := createProfile(t, db, "bob")

	first, created, err := m.SendFriendRequest(alice, bob)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := m.SendFriendRequest(alice, bob)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	assert.EqualValues(t, 1, requestCount(t, db))
}

func TestSendFriendRequestToSelf(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	alice := createProfile(t, db, "alice")

	_, _, err := m.SendFriendRequest(alice, alice)
	assert.ErrorIs(t, err, ErrSelfRequest)
	assert.EqualValues(t, 0, requestCount(t, db))
}

func TestSendFriendRequestReverseDirectionsCoexist(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	alice := createProfile(t, db, "alice")
	bob := createProfile(t, db, "bob")

	_, created, err := m.SendFriendRequest(alice, bob)
	require.NoError(t, err)
	assert.True(t, created)

	_, created, err = m.SendFriendRequest(bob, alice)
	require.NoError(t, err)
	assert.True(t, created)

	assert.EqualValues(t, 2, requestCount(t, db))
}

func TestAcceptFriendRequest(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	alice := createProfile(t, db, "alice")
	bob := createProfile(t, db, "bob")

	req, _, err := m.SendFriendRequest(alice, bob)
	require.NoError(t, err)

	require.NoError(t, m.AcceptFriendRequest(req.ID, bob))

	assert.Equal(t, []string{"bob"}, friendUsernames(t, m, alice))
	assert.Equal(t, []string{"alice"}, friendUsernames(t, m, bob))
	assert.EqualValues(t, 0, requestCount(t, db))
}

func TestAcceptFriendRequestNotReceiver(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	alice := createProfile(t, db, "alice")
	bob := createProfile(t, db, "bob")
	carol := createProfile(t, db, "carol")

	req, _, err := m.SendFriendRequest(alice, bob)
	require.NoError(t, err)

	// The sender can't accept their own request either.
	assert.ErrorIs(t, m.AcceptFriendRequest(req.ID, alice), ErrNotReceiver)
	assert.ErrorIs(t, m.AcceptFriendRequest(req.ID, carol), ErrNotReceiver)

	// The request survives and no friendship was formed.
	assert.EqualValues(t, 1, requestCount(t, db))
	assert.Empty(t, friendUsernames(t, m, alice))
	assert.Empty(t, friendUsernames(t, m, bob))
}

func TestAcceptFriendRequestMissing(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	bob := createProfile(t, db, "bob")

	assert.ErrorIs(t, m.AcceptFriendRequest(12345, bob), ErrRequestNotFound)
}

func TestAcceptFriendRequestRemovesReverseRequest(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	alice := createProfile(t, db, "alice")
	bob := createProfile(t, db, "bob")

	req, _, err := m.SendFriendRequest(alice, bob)
	require.NoError(t, err)
	_, _, err = m.SendFriendRequest(bob, alice)
	require.NoError(t, err)

	require.NoError(t, m.AcceptFriendRequest(req.ID, bob))

	// Accepting one direction settles both pending requests.
	assert.EqualValues(t, 0, requestCount(t, db))
	assert.Equal(t, []string{"bob"}, friendUsernames(t, m, alice))
	assert.Equal(t, []string{"alice"}, friendUsernames(t, m, bob))
}

func TestRejectFriendRequest(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	alice := createProfile(t, db, "alice")
	bob := createProfile(t, db, "bob")

	req, _, err := m.SendFriendRequest(alice, bob)
	require.NoError(t, err)

	require.NoError(t, m.RejectFriendRequest(req.ID, bob))

	assert.EqualValues(t, 0, requestCount(t, db))
	assert.Empty(t, friendUsernames(t, m, alice))
	assert.Empty(t, friendUsernames(t, m, bob))
}

func TestRejectFriendRequestNotReceiver(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	alice := createProfile(t, db, "alice")
	bob := createProfile(t, db, "bob")
	carol := createProfile(t, db, "carol")

	req, _, err := m.SendFriendRequest(alice, bob)
	require.NoError(t, err)

	assert.ErrorIs(t, m.RejectFriendRequest(req.ID, carol), ErrNotReceiver)
	assert.EqualValues(t, 1, requestCount(t, db))
}

func TestDeleteFriendSymmetric(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	alice := createProfile(t, db, "alice")
	bob := createProfile(t, db, "bob")

	req, _, err := m.SendFriendRequest(alice, bob)
	require.NoError(t, err)
	require.NoError(t, m.AcceptFriendRequest(req.ID, bob))

	// The sender removes the friendship, even though the receiver confirmed it.
	require.NoError(t, m.DeleteFriend(alice, bob))

	assert.Empty(t, friendUsernames(t, m, alice))
	assert.Empty(t, friendUsernames(t, m, bob))
}

func TestDeleteFriendNoOpWhenNotFriends(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	alice := createProfile(t, db, "alice")
	bob := createProfile(t, db, "bob")

	assert.NoError(t, m.DeleteFriend(alice, bob))
	assert.NoError(t, m.DeleteFriend(alice, bob))
}

func TestIncomingRequestsOrder(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	alice := createProfile(t, db, "alice")
	bob := createProfile(t, db, "bob")
	carol := createProfile(t, db, "carol")

	_, _, err := m.SendFriendRequest(alice, bob)
	require.NoError(t, err)
	_, _, err = m.SendFriendRequest(carol, bob)
	require.NoError(t, err)

	requests, err := m.IncomingRequests(bob)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, "alice", requests[0].FromProfile.User.Username)
	assert.Equal(t, "carol", requests[1].FromProfile.User.Username)

	// Outgoing requests do not show up in alice's inbox.
	requests, err = m.IncomingRequests(alice)
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func TestConcurrentAcceptExactlyOneWinner(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db)
	alice := createProfile(t, db, "alice")
	bob := createProfile(t, db, "bob")

	req, _, err := m.SendFriendRequest(alice, bob)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.AcceptFriendRequest(req.ID, bob)
		}(i)
	}
	wg.Wait()

	var successes, notFound int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, ErrRequestNotFound):
			notFound++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, notFound)

	// The friendship was formed exactly once, in both directions.
	assert.Equal(t, []string{"bob"}, friendUsernames(t, m, alice))
	assert.Equal(t, []string{"alice"}, friendUsernames(t, m, bob))

	var joinRows int64
	require.NoError(t, db.Table("profile_friends").Count(&joinRows).Error)
	assert.EqualValues(t, 2, joinRows)
}
