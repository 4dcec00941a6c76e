package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storerate/storerate-backend/internal/app/service"
	apperrors "github.com/storerate/storerate-backend/internal/errors"
	"github.com/storerate/storerate-backend/internal/middleware"
	"github.com/storerate/storerate-backend/internal/query"
)

type StoreController struct {
	storeService service.StoreService
}

func NewStoreController(storeService service.StoreService) *StoreController {
	return &StoreController{storeService: storeService}
}

func viewerID(c *gin.Context) *uint {
	if id, ok := middleware.GetUserID(c); ok {
		return &id
	}
	return nil
}

// ListStores returns stores with rating aggregates. Authenticated callers
// also get their own rating per store.
// GET /api/stores?name=&address=&sortBy=&sortOrder=
func (ctrl *StoreController) ListStores(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	stores, err := ctrl.storeService.ListStores(query.ParamsFromQuery(c.Request.URL.Query()), viewerID(c))
	if err != nil {
		respondUnexpected(c, log, "Failed to list stores", err, nil)
		return
	}

	c.JSON(http.StatusOK, stores)
}

// GetStore returns one store
// GET /api/stores/:id
func (ctrl *StoreController) GetStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	store, err := ctrl.storeService.GetStore(id, viewerID(c))
	if err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
			return
		}
		respondUnexpected(c, log, "Failed to get store", err, map[string]interface{}{
			"store_id": id,
		})
		return
	}

	c.JSON(http.StatusOK, store)
}

// CreateStore creates a store, optionally assigned to a store owner
// POST /api/stores
func (ctrl *StoreController) CreateStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req service.CreateStoreInput
	if !bindJSON(c, log, &req) {
		return
	}

	store, err := ctrl.storeService.CreateStore(req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStoreEmailExists):
			apperrors.Conflict(c, apperrors.StoreEmailExists, "Store with this email already exists")
		case errors.Is(err, service.ErrInvalidOwner):
			apperrors.BadRequest(c, apperrors.StoreInvalidOwner, "Invalid owner. User must be a store owner.")
		default:
			respondUnexpected(c, log, "Failed to create store", err, nil)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Store created successfully",
		"storeId": store.ID,
	})
}

// DeleteStore removes a store and its ratings
// DELETE /api/stores/:id
func (ctrl *StoreController) DeleteStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.storeService.DeleteStore(id); err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			apperrors.NotFound(c, apperrors.StoreNotFound, "Store not found")
			return
		}
		respondUnexpected(c, log, "Failed to delete store", err, map[string]interface{}{
			"store_id": id,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Store deleted successfully",
	})
}

// ListStoresForAdmin is the admin store table
// GET /api/stores/admin/list?name=&email=&address=&sortBy=&sortOrder=
func (ctrl *StoreController) ListStoresForAdmin(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	stores, err := ctrl.storeService.ListStoresForAdmin(query.ParamsFromQuery(c.Request.URL.Query()))
	if err != nil {
		respondUnexpected(c, log, "Failed to list stores for admin", err, nil)
		return
	}

	c.JSON(http.StatusOK, stores)
}
