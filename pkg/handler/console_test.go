package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/devsapp/tiled-upscale-console/pkg/client"
	"github.com/devsapp/tiled-upscale-console/pkg/config"
	"github.com/devsapp/tiled-upscale-console/pkg/datastore"
	"github.com/devsapp/tiled-upscale-console/pkg/models"
	"github.com/devsapp/tiled-upscale-console/pkg/module"
	"github.com/devsapp/tiled-upscale-console/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executor minimal job executor
type executor struct {
	lock     sync.Mutex
	status   string
	started  []models.JobConfig
	startErr bool
	aborts   int
}

func (e *executor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.lock.Lock()
	defer e.lock.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == config.EXEC_STATUS:
		status := e.status
		if status == "" {
			status = config.STATUS_IDLE
		}
		fmt.Fprintf(w, `{"status":%q}`, status)
	case r.URL.Path == config.EXEC_ABORT:
		e.aborts++
		io.WriteString(w, `{}`)
	case r.URL.Path == config.EXEC_START:
		if e.startErr {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"error":"busy"}`)
			return
		}
		var conf models.JobConfig
		json.NewDecoder(r.Body).Decode(&conf)
		e.started = append(e.started, conf)
		io.WriteString(w, `{}`)
	case r.URL.Path == config.UPLOAD:
		if _, _, err := r.FormFile("image"); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		io.WriteString(w, `{"name":"cat.png","mode":"input","meta":{"positive_prompt":"a cat"}}`)
	case r.URL.Path == config.WORKFLOW_LIST:
		io.WriteString(w, `["sdxl"]`)
	case r.URL.Path == config.WORKFLOW:
		io.WriteString(w, `{"workflow":{"3":{"class_type":"KSampler"}},"positive_prompt":"masterpiece"}`)
	case r.URL.Path == config.WORKERS_INFO:
		io.WriteString(w, `[{"id":"w1","name":"gpu","state":"idle","priority":1,"order":0}]`)
	case strings.HasPrefix(r.URL.Path, config.MEDIA):
		w.Header().Set("Content-Type", config.MIME_PNG)
		io.WriteString(w, "png-bytes")
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type testConsole struct {
	router   *gin.Engine
	executor *executor
	history  *datastore.HistorySqlite
}

func newTestConsole(t *testing.T, middlewares ...gin.HandlerFunc) *testConsole {
	gin.SetMode(gin.TestMode)
	exec := &executor{}
	backend := httptest.NewServer(exec)
	t.Cleanup(backend.Close)

	history, err := datastore.NewHistorySqlite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { history.Close() })

	cli := client.NewClient(backend.URL, 5*time.Second)
	session := module.NewSession(cli, config.DefaultConfig(), history, nil)
	roster := module.NewWorkerRoster(cli)
	h := NewConsoleHandler(session, roster, history)

	validator, err := RequestValidator()
	require.NoError(t, err)
	router := gin.New()
	router.Use(middlewares...)
	RegisterHandlers(router.Group("", validator), h)
	router.NoRoute(h.NoRouterHandler)
	return &testConsole{router: router, executor: exec, history: history}
}

func (tc *testConsole) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	tc.router.ServeHTTP(w, req)
	return w
}

func (tc *testConsole) doJSON(method, path, body string) *httptest.ResponseRecorder {
	return tc.do(method, path, strings.NewReader(body), "application/json")
}

func (tc *testConsole) upload(t *testing.T, contentType string) *httptest.ResponseRecorder {
	img := new(bytes.Buffer)
	require.NoError(t, png.Encode(img, image.NewRGBA(image.Rect(0, 0, 640, 480))))
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="cat.png"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	part.Write(img.Bytes())
	require.NoError(t, mw.Close())
	return tc.do(http.MethodPost, "/api/console/image", body, mw.FormDataContentType())
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	state := make(map[string]interface{})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	return state
}

func fieldValue(state map[string]interface{}, key string) interface{} {
	for _, f := range state["fields"].([]interface{}) {
		field := f.(map[string]interface{})
		if field["key"] == key {
			return field["value"]
		}
	}
	return nil
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["message"]
}

func TestConsoleFields(t *testing.T) {
	tc := newTestConsole(t)

	w := tc.do(http.MethodGet, "/api/console/state", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	state := decodeState(t, w)
	assert.Equal(t, "none", state["display"])
	assert.Equal(t, 768.0, fieldValue(state, "tile_size"))

	w = tc.doJSON(http.MethodPut, "/api/console/fields/slicer_name", `{"value":"NyanTile"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = tc.doJSON(http.MethodPut, "/api/console/fields/tile_size", `{"value":512}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	state = decodeState(t, w)
	assert.Equal(t, 512.0, fieldValue(state, "tile_size"))
	assert.Equal(t, 256.0, fieldValue(state, "tile_overlap"))

	w = tc.doJSON(http.MethodPut, "/api/console/fields/tile_overlap", `{"value":10}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = tc.doJSON(http.MethodPut, "/api/console/fields/tile_color", `{"value":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// rejected by the api document before reaching the handler
	w = tc.doJSON(http.MethodPut, "/api/console/fields/tile_size", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = tc.doJSON(http.MethodPost, "/api/console/prompts", `{"source":"clipboard"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = tc.do(http.MethodGet, "/api/console/nothing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConsoleJob(t *testing.T) {
	tc := newTestConsole(t)

	w := tc.do(http.MethodPost, "/api/console/start", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No input image!", message(t, w))

	w = tc.upload(t, "image/gif")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = tc.upload(t, config.MIME_PNG)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	state := decodeState(t, w)
	assert.Equal(t, "input", state["display"])
	assert.Equal(t, "/media/input/cat.png", state["source"])
	assert.Equal(t, 640.0, fieldValue(state, "image_width"))

	w = tc.do(http.MethodGet, "/api/console/image", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())
	assert.Equal(t, config.MIME_PNG, w.Header().Get("Content-Type"))

	w = tc.do(http.MethodGet, "/api/console/workflows", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"workflows":["sdxl"],"workflow":"sdxl"}`, w.Body.String())
	w = tc.doJSON(http.MethodPost, "/api/console/prompts", `{"source":"input"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a cat", fieldValue(decodeState(t, w), "positive_prompt"))

	w = tc.do(http.MethodPost, "/api/console/start", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var started models.StartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))
	assert.NotEmpty(t, started.JobId)
	require.Len(t, tc.executor.started, 1)
	conf := tc.executor.started[0]
	assert.Equal(t, "TiledUpscale", conf.Job.Type)
	assert.Equal(t, conf.Slicer.Size, conf.Mask.Size)
	assert.Equal(t, "a cat", conf.Workflow.PositivePrompt)
	assert.JSONEq(t, `{"3":{"class_type":"KSampler"}}`, string(conf.Workflow.Workflow))

	w = tc.do(http.MethodGet, "/api/console/history?limit=5", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var jobs []datastore.JobRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &jobs))
	require.Len(t, jobs, 1)
	assert.Equal(t, started.JobId, jobs[0].JobId)
	assert.Equal(t, config.JOB_STARTED, jobs[0].Status)

	w = tc.do(http.MethodGet, "/api/console/history?limit=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = tc.upload(t, config.MIME_PNG)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = tc.do(http.MethodDelete, "/api/console/banner", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decodeState(t, tc.do(http.MethodGet, "/api/console/state", nil, ""))["banner"])
}

func TestConsoleBackendFailure(t *testing.T) {
	tc := newTestConsole(t)
	require.Equal(t, http.StatusOK, tc.upload(t, config.MIME_PNG).Code)
	tc.executor.lock.Lock()
	tc.executor.startErr = true
	tc.executor.lock.Unlock()

	w := tc.do(http.MethodPost, "/api/console/start", nil, "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotEmpty(t, w.Header().Get("jobId"))
	state := decodeState(t, tc.do(http.MethodGet, "/api/console/state", nil, ""))
	banner := state["banner"].(map[string]interface{})
	assert.True(t, strings.HasPrefix(banner["text"].(string), "Failed to start workflow - "))

	jobs, err := tc.history.List(0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, config.JOB_FAILED, jobs[0].Status)
}

func TestConsoleControlsGate(t *testing.T) {
	tc := newTestConsole(t)
	require.Equal(t, http.StatusOK, tc.upload(t, config.MIME_PNG).Code)

	w := tc.do(http.MethodPost, "/api/console/abort", nil, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "No active job!", message(t, w))

	tc.executor.lock.Lock()
	tc.executor.status = config.STATUS_PROC
	tc.executor.lock.Unlock()
	w = tc.do(http.MethodPost, "/api/console/start", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = tc.do(http.MethodPost, "/api/console/start", nil, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "A job is already running", message(t, w))

	w = tc.do(http.MethodPost, "/api/console/abort", nil, "")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	tc.executor.lock.Lock()
	defer tc.executor.lock.Unlock()
	assert.Len(t, tc.executor.started, 1)
	assert.Equal(t, 1, tc.executor.aborts)
}

func TestConsoleWorkers(t *testing.T) {
	tc := newTestConsole(t)
	w := tc.do(http.MethodGet, "/api/console/workers", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestApiAuth(t *testing.T) {
	hash, err := utils.EncryptPassword("secret")
	require.NoError(t, err)
	tc := newTestConsole(t, ApiAuth("operator", hash))

	w := tc.do(http.MethodGet, "/api/console/state", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))

	req := httptest.NewRequest(http.MethodGet, "/api/console/state", nil)
	req.SetBasicAuth("operator", "wrong")
	w = httptest.NewRecorder()
	tc.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/console/state", nil)
	req.SetBasicAuth("operator", "secret")
	w = httptest.NewRecorder()
	tc.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
