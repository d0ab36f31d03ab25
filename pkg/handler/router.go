package handler

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"

	ginmiddleware "github.com/deepmap/oapi-codegen/pkg/gin-middleware"
	"github.com/deepmap/oapi-codegen/pkg/runtime"
	"github.com/devsapp/tiled-upscale-console/pkg/models"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
)

//go:embed openapi.yaml
var openapiSpec []byte

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /api/console/state)
	GetState(c *gin.Context)
	// (PUT /api/console/fields/{key})
	SetField(c *gin.Context, key string)
	// (GET /api/console/image)
	GetImage(c *gin.Context)
	// (POST /api/console/image)
	UploadImage(c *gin.Context)
	// (DELETE /api/console/image)
	ClearImage(c *gin.Context)
	// (POST /api/console/start)
	StartJob(c *gin.Context)
	// (POST /api/console/abort)
	AbortJob(c *gin.Context)
	// (GET /api/console/workers)
	ListWorkers(c *gin.Context)
	// (GET /api/console/workflows)
	ListWorkflows(c *gin.Context)
	// (PUT /api/console/workflow)
	SelectWorkflow(c *gin.Context)
	// (POST /api/console/prompts)
	ApplyPrompts(c *gin.Context)
	// (DELETE /api/console/banner)
	DismissBanner(c *gin.Context)
	// (GET /api/console/history)
	ListHistory(c *gin.Context, params models.ListHistoryParams)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler      ServerInterface
	ErrorHandler func(*gin.Context, error, int)
}

// SetField operation middleware
func (siw *ServerInterfaceWrapper) SetField(c *gin.Context) {
	var key string
	err := runtime.BindStyledParameterWithLocation("simple", false, "key",
		runtime.ParamLocationPath, c.Param("key"), &key)
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("Invalid format for parameter key: %w", err), http.StatusBadRequest)
		return
	}
	siw.Handler.SetField(c, key)
}

// ListHistory operation middleware
func (siw *ServerInterfaceWrapper) ListHistory(c *gin.Context) {
	var params models.ListHistoryParams
	err := runtime.BindQueryParameter("form", true, false, "limit", c.Request.URL.Query(), &params.Limit)
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("Invalid format for parameter limit: %w", err), http.StatusBadRequest)
		return
	}
	siw.Handler.ListHistory(c, params)
}

// GinServerOptions provides options for the Gin server.
type GinServerOptions struct {
	BaseURL      string
	ErrorHandler func(*gin.Context, error, int)
}

// RegisterHandlers creates http.Handler with routing matching OpenAPI spec.
func RegisterHandlers(router gin.IRouter, si ServerInterface) {
	RegisterHandlersWithOptions(router, si, GinServerOptions{})
}

// RegisterHandlersWithOptions creates http.Handler with additional options
func RegisterHandlersWithOptions(router gin.IRouter, si ServerInterface, options GinServerOptions) {
	errorHandler := options.ErrorHandler
	if errorHandler == nil {
		errorHandler = func(c *gin.Context, err error, statusCode int) {
			handleError(c, statusCode, err.Error())
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:      si,
		ErrorHandler: errorHandler,
	}
	base := options.BaseURL
	router.GET(base+"/api/console/state", si.GetState)
	router.PUT(base+"/api/console/fields/:key", wrapper.SetField)
	router.GET(base+"/api/console/image", si.GetImage)
	router.POST(base+"/api/console/image", si.UploadImage)
	router.DELETE(base+"/api/console/image", si.ClearImage)
	router.POST(base+"/api/console/start", si.StartJob)
	router.POST(base+"/api/console/abort", si.AbortJob)
	router.GET(base+"/api/console/workers", si.ListWorkers)
	router.GET(base+"/api/console/workflows", si.ListWorkflows)
	router.PUT(base+"/api/console/workflow", si.SelectWorkflow)
	router.POST(base+"/api/console/prompts", si.ApplyPrompts)
	router.DELETE(base+"/api/console/banner", si.DismissBanner)
	router.GET(base+"/api/console/history", wrapper.ListHistory)
}

// GetSwagger returns the console api document, servers cleared so any host validates.
func GetSwagger() (*openapi3.T, error) {
	swagger, err := openapi3.NewLoader().LoadFromData(openapiSpec)
	if err != nil {
		return nil, fmt.Errorf("error loading openapi document: %w", err)
	}
	if err := swagger.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	swagger.Servers = nil
	return swagger, nil
}

// RequestValidator reject requests that do not match the console api document
func RequestValidator() (gin.HandlerFunc, error) {
	swagger, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	return ginmiddleware.OapiRequestValidator(swagger), nil
}
