package handler

import (
	"io"
	"net/http"

	"github.com/devsapp/tiled-upscale-console/pkg/config"
	"github.com/devsapp/tiled-upscale-console/pkg/datastore"
	"github.com/devsapp/tiled-upscale-console/pkg/fields"
	"github.com/devsapp/tiled-upscale-console/pkg/models"
	"github.com/devsapp/tiled-upscale-console/pkg/module"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// max accepted upload size
const maxUploadBytes = 64 << 20

type ConsoleHandler struct {
	session *module.Session
	roster  *module.WorkerRoster
	history datastore.HistoryInterface
}

func NewConsoleHandler(session *module.Session, roster *module.WorkerRoster,
	history datastore.HistoryInterface) *ConsoleHandler {
	return &ConsoleHandler{
		session: session,
		roster:  roster,
		history: history,
	}
}

// GetState whole session state
// (GET /api/console/state)
func (h *ConsoleHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// SetField edit one field
// (PUT /api/console/fields/{key})
func (h *ConsoleHandler) SetField(c *gin.Context, key string) {
	request := new(models.SetFieldJSONRequestBody)
	if err := getBindResult(c, request); err != nil {
		handleError(c, http.StatusBadRequest, config.BADREQUEST)
		return
	}
	if err := h.session.SetField(fields.Key(key), request.Value); err != nil {
		handleModuleError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// GetImage bytes of the image on display
// (GET /api/console/image)
func (h *ConsoleHandler) GetImage(c *gin.Context) {
	resp, err := h.session.DisplayImage(c.Request.Context())
	if err != nil {
		handleModuleError(c, err)
		return
	}
	defer resp.Body.Close()
	c.DataFromReader(resp.StatusCode, resp.ContentLength, resp.Header.Get("Content-Type"), resp.Body, nil)
}

// UploadImage new input image, multipart field "image"
// (POST /api/console/image)
func (h *ConsoleHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		handleError(c, http.StatusBadRequest, config.BADREQUEST)
		return
	}
	if file.Size > maxUploadBytes {
		handleError(c, http.StatusRequestEntityTooLarge, "image too large")
		return
	}
	f, err := file.Open()
	if err != nil {
		handleError(c, http.StatusBadRequest, config.BADREQUEST)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		handleError(c, http.StatusBadRequest, config.BADREQUEST)
		return
	}
	if err := h.session.Upload(c.Request.Context(), file.Filename, file.Header.Get("Content-Type"),
		data); err != nil {
		handleModuleError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// ClearImage drop the input image after the settle delay
// (DELETE /api/console/image)
func (h *ConsoleHandler) ClearImage(c *gin.Context) {
	h.session.Clear()
	c.JSON(http.StatusAccepted, gin.H{"message": "success"})
}

// StartJob submit a job built from the current fields
// (POST /api/console/start)
func (h *ConsoleHandler) StartJob(c *gin.Context) {
	if h.session.Controls().AbortEnabled {
		handleModuleError(c, module.ErrJobRunning)
		return
	}
	jobId, err := h.session.Start(c.Request.Context())
	if jobId != "" {
		c.Writer.Header().Set("jobId", jobId)
	}
	if err != nil {
		handleModuleError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.StartResponse{JobId: jobId})
}

// AbortJob
// (POST /api/console/abort)
func (h *ConsoleHandler) AbortJob(c *gin.Context) {
	if !h.session.Controls().AbortEnabled {
		handleModuleError(c, module.ErrNoActiveJob)
		return
	}
	if err := h.session.Abort(c.Request.Context()); err != nil {
		handleModuleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "success"})
}

// ListWorkers
// (GET /api/console/workers)
func (h *ConsoleHandler) ListWorkers(c *gin.Context) {
	c.JSON(http.StatusOK, h.roster.Cards())
}

// ListWorkflows reload the workflow catalog
// (GET /api/console/workflows)
func (h *ConsoleHandler) ListWorkflows(c *gin.Context) {
	names, err := h.session.RefreshWorkflows(c.Request.Context())
	if err != nil && names == nil {
		handleModuleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"workflows": names,
		"workflow":  h.session.Snapshot().Workflow,
	})
}

// SelectWorkflow
// (PUT /api/console/workflow)
func (h *ConsoleHandler) SelectWorkflow(c *gin.Context) {
	request := new(models.SelectWorkflowJSONRequestBody)
	if err := getBindResult(c, request); err != nil {
		handleError(c, http.StatusBadRequest, config.BADREQUEST)
		return
	}
	if err := h.session.SelectWorkflow(c.Request.Context(), request.Name); err != nil {
		handleModuleError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// ApplyPrompts fill the prompt fields
// (POST /api/console/prompts)
func (h *ConsoleHandler) ApplyPrompts(c *gin.Context) {
	request := new(models.ApplyPromptsJSONRequestBody)
	if err := getBindResult(c, request); err != nil {
		handleError(c, http.StatusBadRequest, config.BADREQUEST)
		return
	}
	if err := h.session.ApplyPrompts(request.Source, request.IfEmpty); err != nil {
		handleModuleError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// DismissBanner
// (DELETE /api/console/banner)
func (h *ConsoleHandler) DismissBanner(c *gin.Context) {
	h.session.Banner().Dismiss()
	c.JSON(http.StatusOK, gin.H{"message": "success"})
}

// ListHistory submitted jobs
// (GET /api/console/history)
func (h *ConsoleHandler) ListHistory(c *gin.Context, params models.ListHistoryParams) {
	if h.history == nil {
		c.JSON(http.StatusOK, []*datastore.JobRecord{})
		return
	}
	limit := 0
	if params.Limit != nil {
		limit = *params.Limit
	}
	jobs, err := h.history.List(limit)
	if err != nil {
		logrus.Errorf("list history err=%s", err.Error())
		handleError(c, http.StatusInternalServerError, config.INTERNALERROR)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *ConsoleHandler) NoRouterHandler(c *gin.Context) {
	handleError(c, http.StatusNotFound, config.NOTFOUND)
}
