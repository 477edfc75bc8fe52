package api

import (
	"errors"
	"net/http"
	"strconv"

	"fittrack/backend/internal/populate"
	"fittrack/backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// respondError maps a service error onto a status code and aborts the request.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var validation *service.ValidationError
	var dangling *service.DanglingReferenceError
	switch {
	case errors.As(err, &validation):
		abortWithError(c, http.StatusBadRequest, validation.Error())
	case errors.Is(err, service.ErrNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.As(err, &dangling):
		abortWithError(c, http.StatusConflict, dangling.Error())
	case errors.Is(err, service.ErrStorageUnavailable):
		abortWithError(c, http.StatusServiceUnavailable, service.ErrStorageUnavailable.Error())
	case errors.Is(err, service.ErrVideoStorageDisabled):
		abortWithError(c, http.StatusNotImplemented, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Internal server error.")
	}
}

// objectIDParam parses the :id path parameter. It aborts with 400 when malformed.
func objectIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid id format.")
		return primitive.NilObjectID, false
	}
	return id, true
}

func parseObjectIDs(field string, hexes []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, len(hexes))
	for i, h := range hexes {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, &service.ValidationError{Field: field, Reason: "element " + strconv.Itoa(i) + " is not a valid id"}
		}
		ids[i] = id
	}
	return ids, nil
}

func parseObjectID(field, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, &service.ValidationError{Field: field, Reason: "is not a valid id"}
	}
	return id, nil
}

// populateQuery reads ?populate=<field>&strict=<bool>. An empty field means no resolution.
func populateQuery(c *gin.Context) (string, populate.Policy, error) {
	field := c.Query("populate")
	policy := populate.PolicyDefault
	if raw := c.Query("strict"); raw != "" {
		strict, err := strconv.ParseBool(raw)
		if err != nil {
			return "", policy, &service.ValidationError{Field: "strict", Reason: "must be a boolean"}
		}
		if strict {
			policy = populate.PolicyFail
		} else {
			policy = populate.PolicyPlaceholder
		}
	}
	return field, policy, nil
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}
