package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/internal/app/service"
	apperrors "github.com/storerate/storerate-backend/internal/errors"
	"github.com/storerate/storerate-backend/internal/middleware"
)

type RatingController struct {
	ratingService service.RatingService
}

func NewRatingController(ratingService service.RatingService) *RatingController {
	return &RatingController{ratingService: ratingService}
}

// SubmitRating creates or replaces the caller's rating for a store
// POST /api/ratings
func (ctrl *RatingController) SubmitRating(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req service.SubmitRatingInput
	if !bindJSON(c, log, &req) {
		return
	}

	outcome, err := ctrl.ratingService.SubmitRating(userID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStoreNotFound):
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
			return
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, apperrors.UserNotFound, "User not found")
			return
		}
		respondUnexpected(c, log, "Failed to submit rating", err, map[string]interface{}{
			"user_id":  userID,
			"store_id": req.StoreID,
		})
		return
	}

	if outcome == model.RatingUpdated {
		c.JSON(http.StatusOK, gin.H{"message": "Rating updated successfully"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Rating submitted successfully"})
}

// GetUserRatingForStore returns the caller's rating or null
// GET /api/ratings/store/:storeId
func (ctrl *RatingController) GetUserRatingForStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	storeID, ok := parseIDParam(c, "storeId")
	if !ok {
		return
	}

	rating, err := ctrl.ratingService.GetUserRatingForStore(userID, storeID)
	if err != nil {
		respondUnexpected(c, log, "Failed to get user rating", err, map[string]interface{}{
			"user_id":  userID,
			"store_id": storeID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rating": rating})
}

// GetMyStoreRatings is the store owner dashboard
// GET /api/ratings/my-store
func (ctrl *RatingController) GetMyStoreRatings(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	result, err := ctrl.ratingService.GetOwnerRatings(ownerID)
	if err != nil {
		respondUnexpected(c, log, "Failed to get store ratings", err, map[string]interface{}{
			"owner_id": ownerID,
		})
		return
	}

	c.JSON(http.StatusOK, result)
}
