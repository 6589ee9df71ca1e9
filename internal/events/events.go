// Package events owns event creation, publication status, and the paginated
// public listing.
package events

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"umeals/backend/internal/models"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// PageSize is the number of events per listing page.
const PageSize = 10

var (
	// ErrEventNotFound means no published event matches. A draft with a
	// matching id is reported the same way: status filtering happens in the
	// query, drafts are simply invisible.
	ErrEventNotFound = errors.New("event not found")

	// ErrTagNotFound means the tag slug used to filter a listing does not exist.
	ErrTagNotFound = errors.New("tag not found")
)

// Page is one page of a published-events listing.
type Page struct {
	Events      []models.Event
	TotalItems  int64
	TotalPages  int
	CurrentPage int
}

// Service handles event reads and writes.
type Service struct {
	db            *gorm.DB
	defaultStatus models.EventStatus
}

// NewService creates a Service. New events get defaultStatus unless the
// caller overrides it.
func NewService(db *gorm.DB, defaultStatus models.EventStatus) *Service {
	return &Service{db: db, defaultStatus: defaultStatus}
}

// ListPublished returns one page of published events, newest event date
// first, optionally restricted to a tag.
//
// The page parameter is forgiving on purpose: a non-integer value falls back
// to page 1 and an out-of-range value clamps to the nearest valid page.
// Neither is an error.
func (s *Service) ListPublished(tagSlug, rawPage string) (*Page, error) {
	query := s.db.Model(&models.Event{}).Where("status = ?", models.EventPublished)

	if tagSlug != "" {
		var tag models.Tag
		if err := s.db.Where("slug = ?", tagSlug).First(&tag).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTagNotFound
			}
			return nil, err
		}
		query = query.Joins("JOIN event_tags et ON et.event_id = events.id").
			Where("et.tag_id = ?", tag.ID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}
	totalPages := int((total + PageSize - 1) / PageSize)
	if totalPages < 1 {
		totalPages = 1
	}

	page := 1
	if n, err := strconv.Atoi(rawPage); err == nil {
		switch {
		case n < 1:
			page = totalPages
		case n > totalPages:
			page = totalPages
		default:
			page = n
		}
	}

	var evs []models.Event
	if err := query.Order("event_date DESC").
		Offset((page - 1) * PageSize).
		Limit(PageSize).
		Preload("Host").
		Preload("Tags").
		Find(&evs).Error; err != nil {
		return nil, err
	}

	return &Page{
		Events:      evs,
		TotalItems:  total,
		TotalPages:  totalPages,
		CurrentPage: page,
	}, nil
}

// GetPublished returns a published event by id. Drafts are not found.
func (s *Service) GetPublished(id uint) (*models.Event, error) {
	var ev models.Event
	err := s.db.Where("status = ?", models.EventPublished).
		Preload("Host").
		Preload("Tags").
		Preload("Attendees").
		First(&ev, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &ev, nil
}

// CreateInput carries the host-supplied fields of a new event.
type CreateInput struct {
	Title     string
	Body      string
	EventDate time.Time
	Private   bool
	Tags      []string
}

// Create stores a new event hosted by the given user. The slug is derived
// from the title; on collision a numeric suffix is appended until the slug
// is free. Tags are attached by name, created on first use.
func (s *Service) Create(host *models.User, in CreateInput) (*models.Event, error) {
	ev := models.Event{
		Title:     in.Title,
		Body:      in.Body,
		EventDate: in.EventDate,
		Private:   in.Private,
		HostID:    host.ID,
		Status:    s.defaultStatus,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		base := slug.Make(in.Title)
		candidate := base
		for n := 2; ; n++ {
			var count int64
			if err := tx.Model(&models.Event{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				break
			}
			candidate = fmt.Sprintf("%s-%d", base, n)
		}
		ev.Slug = candidate

		for _, name := range in.Tags {
			var tag models.Tag
			if err := tx.Where(models.Tag{Slug: slug.Make(name)}).
				Attrs(models.Tag{Name: name}).
				FirstOrCreate(&tag).Error; err != nil {
				return err
			}
			ev.Tags = append(ev.Tags, &tag)
		}

		return tx.Create(&ev).Error
	})
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// Attend adds a user to a published event's attendee set. Attending twice is
// a no-op.
func (s *Service) Attend(user *models.User, eventID uint) error {
	ev, err := s.GetPublished(eventID)
	if err != nil {
		return err
	}
	return s.db.Model(ev).Association("Attendees").Append(user)
}

// Unattend removes a user from an event's attendee set. Removing a
// non-attendee is a no-op.
func (s *Service) Unattend(user *models.User, eventID uint) error {
	ev, err := s.GetPublished(eventID)
	if err != nil {
		return err
	}
	return s.db.Model(ev).Association("Attendees").Delete(user)
}
