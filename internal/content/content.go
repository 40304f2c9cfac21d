// Package content holds what the admin-managed resource handlers share.
package content

import (
	"database/sql"
	"strconv"

	"github.com/gin-gonic/gin"

	"finportal/internal/common/errors"
	httpx "finportal/internal/common/http"
	"finportal/internal/common/logger"
)

// Validatable entities report field-level problems.
type Validatable interface {
	Validate() map[string]string
}

// IntID parses the :id path parameter of integer keyed resources. An id
// that cannot name a row is reported as a missing resource, the same way
// the UUID keyed repositories treat malformed ids.
func IntID(c *gin.Context, resource string) (int, error) {
	raw := c.Param("id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, errors.NewResourceNotFoundError(resource, raw)
	}
	return id, nil
}

// Bind decodes the JSON body into dst and validates it. It writes the error
// response and returns false when either step fails.
func Bind(c *gin.Context, log logger.Logger, dst Validatable) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		log.Debug("Invalid request body", map[string]interface{}{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		})
		httpx.RespondError(c, log, errors.NewInvalidInputError(err.Error()))
		return false
	}
	if fieldErrors := dst.Validate(); len(fieldErrors) > 0 {
		httpx.RespondFieldErrors(c, fieldErrors)
		return false
	}
	return true
}

// QueryBool parses an optional boolean query parameter.
func QueryBool(c *gin.Context, name string) (*bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errors.NewInvalidInputError(name + " must be true or false")
	}
	return &v, nil
}

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...interface{}) error
}

// AffectedOne maps a zero-row mutation to a not found error.
func AffectedOne(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewQueryExecutionFailedError("rows affected", err)
	}
	if n == 0 {
		return errors.NewResourceNotFoundError(resource, id)
	}
	return nil
}
