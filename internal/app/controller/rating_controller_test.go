package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingController_SubmitRating(t *testing.T) {
	s := setupControllerTest(t)
	rater, raterToken := s.seedUser(t, "Frequent Rating Member", "rater@example.com", model.RoleUser)
	_, ownerToken := s.seedUser(t, "Some Store Owner Person", "owner@example.com", model.RoleStoreOwner)
	store := s.seedStore(t, "Rated Neighborhood Deli Shop", "deli@example.com", nil)

	w := s.do(t, http.MethodPost, "/ratings", map[string]interface{}{"store_id": store.ID, "rating": 3}, ownerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/ratings", map[string]interface{}{"store_id": store.ID, "rating": 3}, raterToken)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Rating submitted successfully")

	w = s.do(t, http.MethodPost, "/ratings", map[string]interface{}{"store_id": store.ID, "rating": 5}, raterToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Rating updated successfully")

	var count int64
	require.NoError(t, s.db.Model(&model.Rating{}).Where("user_id = ? AND store_id = ?", rater.ID, store.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/ratings/store/%d", store.ID), nil, raterToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"rating":5}`, w.Body.String())
}

func TestRatingController_SubmitRating_Invalid(t *testing.T) {
	s := setupControllerTest(t)
	_, raterToken := s.seedUser(t, "Frequent Rating Member", "rater@example.com", model.RoleUser)
	store := s.seedStore(t, "Rated Neighborhood Deli Shop", "deli@example.com", nil)

	tests := []struct {
		name     string
		body     map[string]interface{}
		wantCode int
		wantText string
	}{
		{"rating too high", map[string]interface{}{"store_id": store.ID, "rating": 6}, http.StatusBadRequest, "Rating must be between 1 and 5"},
		{"rating zero", map[string]interface{}{"store_id": store.ID, "rating": 0}, http.StatusBadRequest, "Rating must be between 1 and 5"},
		{"missing store", map[string]interface{}{"rating": 4}, http.StatusBadRequest, "Valid store ID is required"},
		{"unknown store", map[string]interface{}{"store_id": 9999, "rating": 4}, http.StatusNotFound, "Store not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/ratings", tt.body, raterToken)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantText)
		})
	}
}

func TestRatingController_GetUserRatingForStore_Unrated(t *testing.T) {
	s := setupControllerTest(t)
	_, raterToken := s.seedUser(t, "Frequent Rating Member", "rater@example.com", model.RoleUser)
	store := s.seedStore(t, "Rated Neighborhood Deli Shop", "deli@example.com", nil)

	w := s.do(t, http.MethodGet, fmt.Sprintf("/ratings/store/%d", store.ID), nil, raterToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"rating":null}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/ratings/store/zero", nil, raterToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRatingController_GetMyStoreRatings(t *testing.T) {
	s := setupControllerTest(t)
	owner, ownerToken := s.seedUser(t, "Dashboard Store Owner Person", "owner@example.com", model.RoleStoreOwner)
	_, otherOwnerToken := s.seedUser(t, "Storeless Owner Account Person", "storeless@example.com", model.RoleStoreOwner)
	first, _ := s.seedUser(t, "First Rating Member Person", "first@example.com", model.RoleUser)
	second, secondToken := s.seedUser(t, "Second Rating Member Person", "second@example.com", model.RoleUser)

	store := s.seedStore(t, "Owned Neighborhood Cafe Shop", "cafe@example.com", &owner.ID)
	require.NoError(t, s.db.Create(&model.Rating{UserID: first.ID, StoreID: store.ID, Rating: 4}).Error)
	require.NoError(t, s.db.Create(&model.Rating{UserID: second.ID, StoreID: store.ID, Rating: 1}).Error)

	w := s.do(t, http.MethodGet, "/ratings/my-store", nil, secondToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/ratings/my-store", nil, ownerToken)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Store *struct {
			ID   uint   `json:"id"`
			Name string `json:"name"`
		} `json:"store"`
		Ratings       []map[string]interface{} `json:"ratings"`
		AverageRating *float64                 `json:"averageRating"`
	}
	decode(t, w, &resp)
	require.NotNil(t, resp.Store)
	assert.Equal(t, store.ID, resp.Store.ID)
	assert.Len(t, resp.Ratings, 2)
	require.NotNil(t, resp.AverageRating)
	assert.InDelta(t, 2.5, *resp.AverageRating, 0.001)

	w = s.do(t, http.MethodGet, "/ratings/my-store", nil, otherOwnerToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"store":null,"ratings":[],"averageRating":null}`, w.Body.String())
}

func TestRatingController_SubmitRating_DeletedAccount(t *testing.T) {
	s := setupControllerTest(t)
	rater, raterToken := s.seedUser(t, "Soon Deleted Rating Member", "gone@example.com", model.RoleUser)
	store := s.seedStore(t, "Rated Neighborhood Deli Shop", "deli@example.com", nil)
	require.NoError(t, s.db.Delete(&model.User{}, rater.ID).Error)

	w := s.do(t, http.MethodPost, "/ratings", map[string]interface{}{"store_id": store.ID, "rating": 4}, raterToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "USER_NOT_FOUND")
	assert.NotContains(t, w.Body.String(), "Store not found")
}
