package events

import (
	"fmt"
	"strings"
	"testing"
	"time"

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

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "irrelevant",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createEvent(t *testing.T, db *gorm.DB, host *models.User, title string, date time.Time, status models.EventStatus, tags ...*models.Tag) *models.Event {
	t.Helper()

	ev := models.Event{
		Title:     title,
		Slug:      strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		HostID:    host.ID,
		Body:      "body of " + title,
		EventDate: date,
		Status:    status,
		Tags:      tags,
	}
	require.NoError(t, db.Create(&ev).Error)
	return &ev
}

func TestListPublishedFiltersDrafts(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, models.EventPublished)
	host := createUser(t, db, "host")

	createEvent(t, db, host, "Public dinner", time.Now(), models.EventPublished)
	createEvent(t, db, host, "Secret draft", time.Now(), models.EventDraft)

	page, err := svc.ListPublished("", "1")
	require.NoError(t, err)
	require.Len(t, page.Events, 1)
	assert.Equal(t, "Public dinner", page.Events[0].Title)
	assert.EqualValues(t, 1, page.TotalItems)
}

func TestGetPublishedDraftNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, models.EventPublished)
	host := createUser(t, db, "host")

	draft := createEvent(t, db, host, "Secret draft", time.Now(), models.EventDraft)
	published := createEvent(t, db, host, "Public dinner", time.Now(), models.EventPublished)

	_, err := svc.GetPublished(draft.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)

	_, err = svc.GetPublished(99999)
	assert.ErrorIs(t, err, ErrEventNotFound)

	got, err := svc.GetPublished(published.ID)
	require.NoError(t, err)
	assert.Equal(t, "Public dinner", got.Title)
	assert.Equal(t, "host", got.Host.Username)
}

func TestListPublishedOrderedByEventDateDesc(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, models.EventPublished)
	host := createUser(t, db, "host")

	base := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	createEvent(t, db, host, "Middle", base.AddDate(0, 0, 1), models.EventPublished)
	createEvent(t, db, host, "Latest", base.AddDate(0, 0, 2), models.EventPublished)
	createEvent(t, db, host, "Earliest", base, models.EventPublished)

	page, err := svc.ListPublished("", "1")
	require.NoError(t, err)
	require.Len(t, page.Events, 3)
	assert.Equal(t, "Latest", page.Events[0].Title)
	assert.Equal(t, "Middle", page.Events[1].Title)
	assert.Equal(t, "Earliest", page.Events[2].Title)
}

func TestListPublishedPageClamping(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, models.EventPublished)
	host := createUser(t, db, "host")

	base := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		createEvent(t, db, host, fmt.Sprintf("Event %02d", i), base.AddDate(0, 0, i), models.EventPublished)
	}

	// Past the last page clamps to the last page.
	page, err := svc.ListPublished("", "9999")
	require.NoError(t, err)
	assert.Equal(t, 3, page.CurrentPage)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Events, 5)

	// A non-integer page falls back to page 1.
	page, err = svc.ListPublished("", "abc")
	require.NoError(t, err)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Len(t, page.Events, PageSize)

	// Zero and negative pages clamp to the last page.
	page, err = svc.ListPublished("", "0")
	require.NoError(t, err)
	assert.Equal(t, 3, page.CurrentPage)

	page, err = svc.ListPublished("", "-5")
	require.NoError(t, err)
	assert.Equal(t, 3, page.CurrentPage)

	page, err = svc.ListPublished("", "2")
	require.NoError(t, err)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Len(t, page.Events, PageSize)
	assert.EqualValues(t, 25, page.TotalItems)
}

func TestListPublishedEmptyResult(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, models.EventPublished)

	page, err := svc.ListPublished("", "7")
	require.NoError(t, err)
	assert.Empty(t, page.Events)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 1, page.TotalPages)
	assert.EqualValues(t, 0, page.TotalItems)
}

func TestListPublishedByTag(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, models.EventPublished)
	host := createUser(t, db, "host")

	dinner := &models.Tag{Name: "Dinner", Slug: "dinner"}
	require.NoError(t, db.Create(dinner).Error)

	createEvent(t, db, host, "Tagged dinner", time.Now(), models.EventPublished, dinner)
	createEvent(t, db, host, "Untagged brunch", time.Now(), models.EventPublished)

	page, err := svc.ListPublished("dinner", "1")
	require.NoError(t, err)
	require.Len(t, page.Events, 1)
	assert.Equal(t, "Tagged dinner", page.Events[0].Title)

	_, err = svc.ListPublished("no-such-tag", "1")
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestCreateDerivesSlugAndDisambiguates(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, models.EventPublished)
	host := createUser(t, db, "host")

	in := CreateInput{Title: "Friday Dinner!", Body: "food", EventDate: time.Now()}

	first, err := svc.Create(host, in)
	require.NoError(t, err)
	assert.Equal(t, "friday-dinner", first.Slug)

	second, err := svc.Create(host, in)
	require.NoError(t, err)
	assert.Equal(t, "friday-dinner-2", second.Slug)

	third, err := svc.Create(host, in)
	require.NoError(t, err)
	assert.Equal(t, "friday-dinner-3", third.Slug)
}

func TestCreateUsesDefaultStatus(t *testing.T) {
	db := newTestDB(t)
	host := createUser(t, db, "host")

	draftSvc := NewService(db, models.EventDraft)
	ev, err := draftSvc.Create(host, CreateInput{Title: "Draft party", Body: "wip", EventDate: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, models.EventDraft, ev.Status)

	// A drafted event is invisible until published.
	_, err = draftSvc.GetPublished(ev.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)

	publishedSvc := NewService(db, models.EventPublished)
	ev, err = publishedSvc.Create(host, CreateInput{Title: "Real party", Body: "done", EventDate: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, models.EventPublished, ev.Status)
}

func TestCreateAttachesTagsByName(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, models.EventPublished)
	host := createUser(t, db, "host")

	first, err := svc.Create(host, CreateInput{
		Title:     "Board games",
		Body:      "bring your own",
		EventDate: time.Now(),
		Tags:      []string{"Board Games", "Indoors"},
	})
	require.NoError(t, err)
	require.Len(t, first.Tags, 2)
	assert.Equal(t, "board-games", first.Tags[0].Slug)

	// A second event with an overlapping tag reuses the existing row.
	_, err = svc.Create(host, CreateInput{
		Title:     "More board games",
		Body:      "again",
		EventDate: time.Now(),
		Tags:      []string{"Board Games"},
	})
	require.NoError(t, err)

	var tagCount int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&tagCount).Error)
	assert.EqualValues(t, 2, tagCount)

	page, err := svc.ListPublished("board-games", "1")
	require.NoError(t, err)
	assert.Len(t, page.Events, 2)
}

func TestAttendAndUnattend(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, models.EventPublished)
	host := createUser(t, db, "host")
	guest := createUser(t, db, "guest")

	ev := createEvent(t, db, host, "Open house", time.Now(), models.EventPublished)
	draft := createEvent(t, db, host, "Hidden", time.Now(), models.EventDraft)

	require.NoError(t, svc.Attend(guest, ev.ID))
	// Attending twice is a no-op.
	require.NoError(t, svc.Attend(guest, ev.ID))

	got, err := svc.GetPublished(ev.ID)
	require.NoError(t, err)
	require.Len(t, got.Attendees, 1)
	assert.Equal(t, "guest", got.Attendees[0].Username)

	require.NoError(t, svc.Unattend(guest, ev.ID))
	// Leaving an event not attended is a no-op.
	require.NoError(t, svc.Unattend(guest, ev.ID))

	got, err = svc.GetPublished(ev.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Attendees)

	// Drafts can't be attended because they can't be found.
	assert.ErrorIs(t, svc.Attend(guest, draft.ID), ErrEventNotFound)
}
