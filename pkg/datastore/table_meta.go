package datastore

// job history table
const (
	KJobTableName    = "jobs"
	KJobIdColumnName = "JOB_ID"
	KJobImage        = "JOB_IMAGE"
	KJobSlicer       = "JOB_SLICER"
	KJobDryRun       = "JOB_DRY_RUN"
	KJobConfig       = "JOB_CONFIG"
	KJobStatus       = "JOB_STATUS"
	KJobMessage      = "JOB_MESSAGE"
	KJobCreateTime   = "JOB_CREATE_TIME"
	KJobModifyTime   = "JOB_MODIFY_TIME"
)
