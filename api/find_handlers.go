package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	internalErrors "github.com/gcbaptista/go-word-finder/internal/errors"
	"github.com/gcbaptista/go-word-finder/services"
)

// FindHandler runs a find and waits for its result.
// Request Body: services.FindQuery
func (api *API) FindHandler(c *gin.Context) {
	var query services.FindQuery
	if result := ValidateJSONBinding(c, &query); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	if result := ValidateFindRequest(&query); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	if !api.checkRoot(c, query.Root) {
		return
	}

	found, err := api.engine.Find(c.Request.Context(), query)
	if err != nil {
		api.sendFindError(c, query.Root, err)
		return
	}

	c.JSON(http.StatusOK, found)
}

// FindAsyncHandler starts a find in the background.
// Request Body: services.FindQuery
func (api *API) FindAsyncHandler(c *gin.Context) {
	var query services.FindQuery
	if result := ValidateJSONBinding(c, &query); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	if result := ValidateFindRequest(&query); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	if !api.checkRoot(c, query.Root) {
		return
	}

	jobID, err := api.engine.FindAsync(query)
	if err != nil {
		if errors.Is(err, internalErrors.ErrInvalidPath) {
			SendInvalidPathError(c, err)
			return
		}
		SendJobExecutionError(c, "find", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Find started in '" + query.Root + "'",
		"job_id":  jobID,
	})
}

// TreeHandler lists the directory tree below a root.
// Request Body: services.TreeQuery
func (api *API) TreeHandler(c *gin.Context) {
	var query services.TreeQuery
	if result := ValidateJSONBinding(c, &query); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	if result := ValidateTreeRequest(&query); result.HasErrors() {
		SendValidationError(c, result)
		return
	}
	if !api.checkRoot(c, query.Root) {
		return
	}

	tree, err := api.engine.Tree(query)
	if err != nil {
		api.sendFindError(c, query.Root, err)
		return
	}

	if c.NegotiateFormat(gin.MIMEJSON, gin.MIMEPlain) == gin.MIMEPlain {
		c.String(http.StatusOK, tree)
		return
	}
	c.JSON(http.StatusOK, gin.H{"root": query.Root, "tree": tree})
}

// checkRoot rejects roots outside the allowed directories with INVALID_PATH.
func (api *API) checkRoot(c *gin.Context, root string) bool {
	if err := api.roots.Check(root); err != nil {
		api.logger.Warn("rejected root outside allowed directories",
			zap.String("root", root), zap.String("request_id", c.GetString(requestIDKey)))
		SendInvalidPathError(c, err)
		return false
	}
	return true
}

func (api *API) sendFindError(c *gin.Context, root string, err error) {
	switch {
	case errors.Is(err, internalErrors.ErrInvalidPath):
		SendInvalidPathError(c, err)
	case errors.Is(err, context.Canceled):
		SendError(c, http.StatusRequestTimeout, ErrorCodeFindCancelled, "Find in '"+root+"' was cancelled")
	default:
		api.logger.Error("find failed", zap.String("root", root), zap.Error(err))
		SendFindError(c, root, err)
	}
}
