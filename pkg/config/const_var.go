package config

// env
const (
	BACKEND_URL = "CONSOLE_BACKEND_URL"
)

// slicer kind
const (
	SLICER_SIMPLE   = "Simple"
	SLICER_NYANTILE = "NyanTile"
	SLICER_USDUS    = "USDUS"
)

// tile image source
const (
	SOURCE_RAW = "raw"
	SOURCE_OUT = "out"
)

// tile noise source
const (
	NOISE_LOCAL  = "local"
	NOISE_GLOBAL = "global"
)

// backend exec status
const (
	STATUS_IDLE = "idle"
	STATUS_PROC = "proc"
)

// worker state
const (
	WORKER_IDLE = "idle"
	WORKER_PROC = "proc"
	WORKER_FAIL = "fail"
	WORKER_LOCK = "lock"
)

// media mode
const (
	MODE_INPUT   = "input"
	MODE_OUTPUT  = "output"
	MODE_PREVIEW = "preview"
)

// job
const (
	JOB_TYPE = "TiledUpscale"

	// job history status
	JOB_STARTED = "started"
	JOB_FAILED  = "failed"
	JOB_ABORTED = "aborted"
)

// backend api path
const (
	EXEC_START    = "/api/exec/start"
	EXEC_ABORT    = "/api/exec/abort"
	EXEC_STATUS   = "/api/exec/status"
	EXEC_PREVIEW  = "/api/exec/preview"
	UPLOAD        = "/api/upload"
	WORKFLOW_LIST = "/api/meta/workflow_list"
	WORKFLOW      = "/api/meta/workflow"
	WORKERS_INFO  = "/api/workers/info"
	MEDIA         = "/media"
)

// upload mime
const (
	MIME_PNG  = "image/png"
	MIME_JPEG = "image/jpeg"
	MIME_WEBP = "image/webp"
)

// ERROR message
const (
	INTERNALERROR = "an internal error"
	BADREQUEST    = "bad request body"
	NOTFOUND      = "not found"
	UNAUTHORIZED  = "unauthorized"
)
