package models

// SetFieldJSONRequestBody defines body for SetField for application/json ContentType.
type SetFieldJSONRequestBody struct {
	Value interface{} `json:"value"`
}

// SelectWorkflowJSONRequestBody defines body for SelectWorkflow for application/json ContentType.
type SelectWorkflowJSONRequestBody struct {
	Name string `json:"name"`
}

// ApplyPromptsJSONRequestBody defines body for ApplyPrompts for application/json ContentType.
type ApplyPromptsJSONRequestBody struct {
	// Source workflow or input
	Source  string `json:"source"`
	IfEmpty bool   `json:"ifEmpty"`
}

// ListHistoryParams defines parameters for ListHistory.
type ListHistoryParams struct {
	// Limit max number of jobs, newest first
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}

// StartResponse POST /api/console/start
type StartResponse struct {
	JobId string `json:"jobId"`
}
