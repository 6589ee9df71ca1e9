package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"umeals/backend/internal/config"
	"umeals/backend/internal/database"
	"umeals/backend/internal/events"
	"umeals/backend/internal/metrics"
	"umeals/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// EventInput defines the structure for creating an event.
type EventInput struct {
	Title     string    `json:"title" binding:"required" example:"Friday dinner"`
	Body      string    `json:"body" binding:"required" example:"Potluck at my place."`
	EventDate time.Time `json:"event_date" binding:"required" example:"2026-09-12T18:00:00Z"`
	Private   bool      `json:"private"`
	Tags      []string  `json:"tags" example:"dinner,potluck"`
}

// UserSummary identifies a user inside an event payload.
type UserSummary struct {
	ID        uint   `json:"id" example:"1"`
	Username  string `json:"username" example:"testuser"`
	FirstName string `json:"first_name" example:"Test"`
}

// EventResponse defines the structure of an event.
type EventResponse struct {
	ID        uint          `json:"id" example:"1"`
	Title     string        `json:"title" example:"Friday dinner"`
	Slug      string        `json:"slug" example:"friday-dinner"`
	Body      string        `json:"body"`
	EventDate time.Time     `json:"event_date"`
	Private   bool          `json:"private"`
	Status    string        `json:"status" example:"published"`
	Host      UserSummary   `json:"host"`
	Attendees []UserSummary `json:"attendees,omitempty"`
	Tags      []TagResponse `json:"tags,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// PaginatedEventResponse defines the structure for a paginated list of events.
type PaginatedEventResponse struct {
	Data []EventResponse `json:"data"`
	Meta PaginationMeta  `json:"meta"`
}

func newUserSummary(user models.User) UserSummary {
	return UserSummary{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
	}
}

func newEventResponse(ev models.Event) EventResponse {
	var attendees []UserSummary
	for _, u := range ev.Attendees {
		if u != nil {
			attendees = append(attendees, newUserSummary(*u))
		}
	}

	var tags []TagResponse
	for _, tag := range ev.Tags {
		if tag != nil {
			tags = append(tags, newTagResponse(*tag))
		}
	}

	return EventResponse{
		ID:        ev.ID,
		Title:     ev.Title,
		Slug:      ev.Slug,
		Body:      ev.Body,
		EventDate: ev.EventDate,
		Private:   ev.Private,
		Status:    string(ev.Status),
		Host:      newUserSummary(ev.Host),
		Attendees: attendees,
		Tags:      tags,
		CreatedAt: ev.CreatedAt,
		UpdatedAt: ev.UpdatedAt,
	}
}

// endregion

// eventService builds the event service with the configured default status.
func eventService() *events.Service {
	status := models.EventPublished
	if config.AppConfig != nil && config.AppConfig.DefaultEventStatus == string(models.EventDraft) {
		status = models.EventDraft
	}
	return events.NewService(database.DB, status)
}

// GetEvents godoc
// @Summary      List published events
// @Description  Returns a page of published events, newest event date first, optionally filtered by tag slug. Invalid page numbers fall back to the nearest valid page.
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        tag   query     string  false  "Tag slug"
// @Param        page  query     int     false  "Page number" default(1)
// @Success      200   {object}  PaginatedEventResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse "Tag not found"
// @Failure      500   {object}  ErrorResponse
// @Router       /events [get]
func GetEvents(c *gin.Context) {
	page, err := eventService().ListPublished(c.Query("tag"), c.DefaultQuery("page", "1"))
	if err != nil {
		if errors.Is(err, events.ErrTagNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	responses := make([]EventResponse, 0, len(page.Events))
	for _, ev := range page.Events {
		responses = append(responses, newEventResponse(ev))
	}

	c.JSON(http.StatusOK, PaginatedEventResponse{
		Data: responses,
		Meta: PaginationMeta{
			TotalItems:  page.TotalItems,
			TotalPages:  page.TotalPages,
			CurrentPage: page.CurrentPage,
			PageSize:    events.PageSize,
		},
	})
}

// GetEventByID godoc
// @Summary      Get a published event
// @Description  Retrieves a published event by ID. Drafts are reported as not found.
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Event ID"
// @Success      200  {object}  EventResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /events/{id} [get]
func GetEventByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	ev, err := eventService().GetPublished(uint(id))
	if err != nil {
		if errors.Is(err, events.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch event"})
		return
	}

	c.JSON(http.StatusOK, newEventResponse(*ev))
}

// CreateEvent godoc
// @Summary      Create an event
// @Description  Creates an event hosted by the authenticated user. The slug is derived from the title.
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body EventInput true "Event Info"
// @Success      201  {object}  EventResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /events [post]
func CreateEvent(c *gin.Context) {
	userID, _ := c.Get("userID")

	var host models.User
	if err := database.DB.First(&host, userID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var input EventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ev, err := eventService().Create(&host, events.CreateInput{
		Title:     input.Title,
		Body:      input.Body,
		EventDate: input.EventDate,
		Private:   input.Private,
		Tags:      input.Tags,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}

	metrics.EventsCreated.WithLabelValues(c.FullPath()).Inc()

	ev.Host = host
	c.JSON(http.StatusCreated, newEventResponse(*ev))
}

// AttendEvent godoc
// @Summary      Attend an event
// @Description  Adds the authenticated user to a published event's attendees. Attending twice is a no-op.
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Event ID"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /events/{id}/attend [post]
func AttendEvent(c *gin.Context) {
	userID, _ := c.Get("userID")

	var user models.User
	if err := database.DB.First(&user, userID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	if err := eventService().Attend(&user, uint(id)); err != nil {
		if errors.Is(err, events.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to attend event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Attending event."})
}

// UnattendEvent godoc
// @Summary      Leave an event
// @Description  Removes the authenticated user from an event's attendees. Leaving an event not attended is a no-op.
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Event ID"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /events/{id}/attend [delete]
func UnattendEvent(c *gin.Context) {
	userID, _ := c.Get("userID")

	var user models.User
	if err := database.DB.First(&user, userID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	if err := eventService().Unattend(&user, uint(id)); err != nil {
		if errors.Is(err, events.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "No longer attending event."})
}
