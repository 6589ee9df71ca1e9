package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"umeals/backend/internal/database"
	"umeals/backend/internal/metrics"
	"umeals/backend/internal/social"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// FriendRequestResponse defines the structure of a pending friend request.
type FriendRequestResponse struct {
	ID        uint                  `json:"id" example:"1"`
	From      PublicProfileResponse `json:"from"`
	CreatedAt time.Time             `json:"created_at"`
}

// endregion

// SendFriendRequest godoc
// @Summary      Send friend request
// @Description  Sends a friend request to another user. Re-sending an identical request is idempotent.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        username  path  string  true  "Target username"
// @Success      200  {object}  MessageResponse "Friend request was already sent."
// @Success      201  {object}  MessageResponse "Friend request sent."
// @Failure      400  {object}  ErrorResponse "Cannot send a request to yourself"
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Target user not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{username}/request [post]
func SendFriendRequest(c *gin.Context) {
	acting, ok := currentProfile(c)
	if !ok {
		return
	}
	target, ok := profileByUsername(c, c.Param("username"))
	if !ok {
		return
	}

	manager := social.NewManager(database.DB)
	_, created, err := manager.SendFriendRequest(acting, target)
	if err != nil {
		if errors.Is(err, social.ErrSelfRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot send a friend request to yourself"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send friend request"})
		return
	}

	if !created {
		c.JSON(http.StatusOK, gin.H{"message": social.MsgRequestAlreadySent})
		return
	}

	metrics.FriendRequestsSent.WithLabelValues(c.FullPath()).Inc()
	c.JSON(http.StatusCreated, gin.H{"message": social.MsgRequestSent})
}

// AcceptFriendRequest godoc
// @Summary      Accept friend request
// @Description  Accepts a pending friend request addressed to the authenticated user.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Friend request ID"
// @Success      200  {object}  MessageResponse "Friend request accepted."
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Friend request can't be accepted."
// @Failure      404  {object}  ErrorResponse "Request not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /requests/{id}/accept [post]
func AcceptFriendRequest(c *gin.Context) {
	acting, ok := currentProfile(c)
	if !ok {
		return
	}

	requestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	manager := social.NewManager(database.DB)
	switch err := manager.AcceptFriendRequest(uint(requestID), acting); {
	case errors.Is(err, social.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Friend request not found"})
	case errors.Is(err, social.ErrNotReceiver):
		c.JSON(http.StatusForbidden, gin.H{"error": social.MsgCannotAccept})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept friend request"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": social.MsgRequestAccepted})
	}
}

// RejectFriendRequest godoc
// @Summary      Reject friend request
// @Description  Rejects a pending friend request addressed to the authenticated user.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Friend request ID"
// @Success      200  {object}  MessageResponse "Friend request rejected."
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Friend request can't be rejected."
// @Failure      404  {object}  ErrorResponse "Request not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /requests/{id}/reject [post]
func RejectFriendRequest(c *gin.Context) {
	acting, ok := currentProfile(c)
	if !ok {
		return
	}

	requestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	manager := social.NewManager(database.DB)
	switch err := manager.RejectFriendRequest(uint(requestID), acting); {
	case errors.Is(err, social.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Friend request not found"})
	case errors.Is(err, social.ErrNotReceiver):
		c.JSON(http.StatusForbidden, gin.H{"error": social.MsgCannotReject})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject friend request"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": social.MsgRequestRejected})
	}
}

// Unfriend godoc
// @Summary      Remove a friend
// @Description  Removes an existing friendship in both directions. Removing a non-friend is a no-op.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        username  path  string  true  "Friend's username"
// @Success      200  {object}  MessageResponse "Friend removed."
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Target user not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{username}/unfriend [post]
func Unfriend(c *gin.Context) {
	acting, ok := currentProfile(c)
	if !ok {
		return
	}
	target, ok := profileByUsername(c, c.Param("username"))
	if !ok {
		return
	}

	manager := social.NewManager(database.DB)
	if err := manager.DeleteFriend(acting, target); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove friend"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend removed."})
}

// GetIncomingRequests godoc
// @Summary      List incoming friend requests
// @Description  Lists the pending friend requests addressed to the authenticated user, oldest first.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   FriendRequestResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users/me/requests [get]
func GetIncomingRequests(c *gin.Context) {
	acting, ok := currentProfile(c)
	if !ok {
		return
	}

	manager := social.NewManager(database.DB)
	requests, err := manager.IncomingRequests(acting)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friend requests"})
		return
	}

	responses := make([]FriendRequestResponse, 0, len(requests))
	for _, req := range requests {
		responses = append(responses, FriendRequestResponse{
			ID:        req.ID,
			From:      buildPublicProfileResponse(&req.FromProfile),
			CreatedAt: req.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, responses)
}

// GetFriends godoc
// @Summary      List friends
// @Description  Lists the confirmed friends of the authenticated user.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   PublicProfileResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users/me/friends [get]
func GetFriends(c *gin.Context) {
	acting, ok := currentProfile(c)
	if !ok {
		return
	}

	manager := social.NewManager(database.DB)
	friends, err := manager.Friends(acting)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friends"})
		return
	}

	responses := make([]PublicProfileResponse, 0, len(friends))
	for i := range friends {
		responses = append(responses, buildPublicProfileResponse(&friends[i]))
	}

	c.JSON(http.StatusOK, responses)
}
