package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/devsapp/tiled-upscale-console/pkg/config"
	"github.com/devsapp/tiled-upscale-console/pkg/models"
)

const maxErrorBody = 512

// StatusError backend answered with a non 2xx code
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend status %d", e.Code)
	}
	return fmt.Sprintf("backend status %d: %s", e.Code, e.Body)
}

// Client job executor api client
type Client struct {
	endpoint   string
	httpClient *http.Client
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// Start POST /api/exec/start
func (c *Client) Start(ctx context.Context, conf *models.JobConfig) error {
	body, err := json.Marshal(conf)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodPost, config.EXEC_START, bytes.NewReader(body),
		"application/json; charset=UTF-8")
	if err != nil {
		return err
	}
	return drain(resp)
}

// Abort POST /api/exec/abort
func (c *Client) Abort(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, config.EXEC_ABORT, nil, "")
	if err != nil {
		return err
	}
	return drain(resp)
}

// Status GET /api/exec/status
func (c *Client) Status(ctx context.Context) (*models.StatusSnapshot, error) {
	snapshot := new(models.StatusSnapshot)
	if err := c.getJSON(ctx, config.EXEC_STATUS, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Upload POST /api/upload, multipart field "image"
func (c *Client) Upload(ctx context.Context, fileName, contentType string,
	data []byte) (*models.UploadResult, error) {
	buf := new(bytes.Buffer)
	writer := multipart.NewWriter(buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="image"; filename="%s"`, escapeQuotes(fileName)))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodPost, config.UPLOAD, buf, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	result := new(models.UploadResult)
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return nil, fmt.Errorf("decode upload result err=%w", err)
	}
	return result, nil
}

// WorkflowList GET /api/meta/workflow_list
func (c *Client) WorkflowList(ctx context.Context) ([]string, error) {
	names := make([]string, 0)
	if err := c.getJSON(ctx, config.WORKFLOW_LIST, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// Workflow GET /api/meta/workflow?name=
func (c *Client) Workflow(ctx context.Context, name string) (*models.WorkflowInfo, error) {
	info := new(models.WorkflowInfo)
	path := fmt.Sprintf("%s?name=%s", config.WORKFLOW, url.QueryEscape(name))
	if err := c.getJSON(ctx, path, info); err != nil {
		return nil, err
	}
	return info, nil
}

// Workers GET /api/workers/info
func (c *Client) Workers(ctx context.Context) ([]models.WorkerInfo, error) {
	workers := make([]models.WorkerInfo, 0)
	if err := c.getJSON(ctx, config.WORKERS_INFO, &workers); err != nil {
		return nil, err
	}
	return workers, nil
}

// Fetch GET an image source (media or preview path), the caller closes the body
func (c *Client) Fetch(ctx context.Context, path string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, "")
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s err=%w", path, err)
	}
	return nil
}

// do send request, non 2xx answers are turned into *StatusError
func (c *Client) do(ctx context.Context, method, path string, body io.Reader,
	contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		data, _ := ioutil.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return resp, nil
}

func drain(resp *http.Response) error {
	defer resp.Body.Close()
	_, err := io.Copy(ioutil.Discard, resp.Body)
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
