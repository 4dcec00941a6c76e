package errors

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo pairs an error code with a client-safe message and status.
type ErrorInfo struct {
	Status  int
	Code    string
	Message string
}

// ParseError maps a database error to a client-safe description. Driver text
// is inspected only to pick a code; it is never returned to the client.
// context names the entity involved ("user", "store", "rating").
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return internalInfo()
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundInfo(context)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return parseDuplicateKeyError(err.Error(), context)
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return parseForeignKeyError(strings.ToLower(err.Error()), context)
	}

	errLower := strings.ToLower(err.Error())

	// postgres 23505 / sqlite UNIQUE
	if strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint") {
		return parseDuplicateKeyError(errLower, context)
	}

	// postgres 23503 / sqlite FOREIGN KEY
	if strings.Contains(errLower, "foreign key constraint") {
		return parseForeignKeyError(errLower, context)
	}

	// postgres 23514 / sqlite CHECK
	if strings.Contains(errLower, "check constraint") {
		if strings.Contains(errLower, "rating") {
			return ErrorInfo{Status: http.StatusBadRequest, Code: RatingInvalidValue, Message: "Rating must be between 1 and 5"}
		}
		return ErrorInfo{Status: http.StatusBadRequest, Code: ValidationInvalidInput, Message: "Invalid input"}
	}

	return internalInfo()
}

func parseDuplicateKeyError(errStr string, context string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	switch {
	case strings.Contains(errLower, "stores.email") || strings.Contains(errLower, "idx_stores_email"):
		return ErrorInfo{Status: http.StatusBadRequest, Code: StoreEmailExists, Message: "Store with this email already exists"}
	case strings.Contains(errLower, "users.email") || strings.Contains(errLower, "idx_users_email"):
		return ErrorInfo{Status: http.StatusBadRequest, Code: AuthEmailAlreadyExists, Message: "User with this email already exists"}
	case strings.Contains(errLower, "idx_ratings_user_store") || strings.Contains(errLower, "ratings.user_id"):
		return ErrorInfo{Status: http.StatusBadRequest, Code: ResourceConflict, Message: "Rating already exists for this store"}
	}

	switch strings.ToLower(context) {
	case "store":
		return ErrorInfo{Status: http.StatusBadRequest, Code: StoreEmailExists, Message: "Store with this email already exists"}
	case "user":
		return ErrorInfo{Status: http.StatusBadRequest, Code: AuthEmailAlreadyExists, Message: "User with this email already exists"}
	}

	return ErrorInfo{Status: http.StatusBadRequest, Code: ResourceAlreadyExists, Message: "Resource already exists"}
}

func parseForeignKeyError(errLower string, context string) ErrorInfo {
	if strings.Contains(errLower, "store_id") || strings.Contains(errLower, "fk_stores") {
		return ErrorInfo{Status: http.StatusNotFound, Code: StoreNotFound, Message: "Store not found"}
	}
	if strings.Contains(errLower, "owner_id") {
		return ErrorInfo{Status: http.StatusBadRequest, Code: StoreInvalidOwner, Message: "Invalid owner. User must be a store owner."}
	}
	if strings.Contains(errLower, "user_id") || strings.Contains(errLower, "fk_users") {
		return ErrorInfo{Status: http.StatusNotFound, Code: UserNotFound, Message: "User not found"}
	}
	return notFoundInfo(context)
}

func notFoundInfo(context string) ErrorInfo {
	switch strings.ToLower(context) {
	case "store":
		return ErrorInfo{Status: http.StatusNotFound, Code: StoreNotFound, Message: "Store not found"}
	case "user":
		return ErrorInfo{Status: http.StatusNotFound, Code: UserNotFound, Message: "User not found"}
	}
	return ErrorInfo{Status: http.StatusNotFound, Code: ResourceNotFound, Message: "Resource not found"}
}

func internalInfo() ErrorInfo {
	return ErrorInfo{Status: http.StatusInternalServerError, Code: InternalServerError, Message: GenericServerMessage}
}
