package datastore

// JobRecord one submitted job as stored in the history table
type JobRecord struct {
	JobId      string `json:"jobId"`
	Image      string `json:"image"`
	Slicer     string `json:"slicer"`
	DryRun     bool   `json:"dryRun"`
	Config     string `json:"config"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	CreateTime int64  `json:"createTime"`
	ModifyTime int64  `json:"modifyTime"`
}

type HistoryInterface interface {
	// Record insert a new job
	Record(job *JobRecord) error
	// UpdateStatus change status and message of an existing job
	UpdateStatus(jobId, status, message string) error
	Get(jobId string) (*JobRecord, error)
	// List jobs newest first, at most limit entries when limit > 0
	List(limit int) ([]*JobRecord, error)
	Close() error
}
