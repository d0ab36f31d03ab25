package models

import "encoding/json"

// UploadResult POST /api/upload
type UploadResult struct {
	Name string         `json:"name"`
	Mode string         `json:"mode"`
	Meta map[string]any `json:"meta"`
}

// WorkflowInfo GET /api/meta/workflow
type WorkflowInfo struct {
	Workflow       json.RawMessage `json:"workflow"`
	WorkflowRaw    json.RawMessage `json:"workflow_raw,omitempty"`
	OutputImageId  json.RawMessage `json:"output_image_id,omitempty"`
	PositivePrompt *string         `json:"positive_prompt,omitempty"`
	NegativePrompt *string         `json:"negative_prompt,omitempty"`
}

// WorkerInfo one entry of GET /api/workers/info
type WorkerInfo struct {
	Id       string  `json:"id"`
	Url      string  `json:"url,omitempty"`
	Name     string  `json:"name"`
	Host     string  `json:"host,omitempty"`
	Port     int     `json:"port,omitempty"`
	State    string  `json:"state"`
	Priority float64 `json:"priority"`
	Order    *int    `json:"order,omitempty"`
}
