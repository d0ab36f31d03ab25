package datastore

import (
	"fmt"
	"sort"

	"github.com/devsapp/tiled-upscale-console/pkg/utils"
)

var historyColumns = []string{KJobImage, KJobSlicer, KJobDryRun, KJobConfig, KJobStatus,
	KJobMessage, KJobCreateTime, KJobModifyTime}

type HistorySqlite struct {
	ds Datastore
}

func NewHistorySqlite(dbName string) (*HistorySqlite, error) {
	factory := &DatastoreFactory{}
	ds, err := factory.NewTable(SQLite, dbName, KJobTableName)
	if err != nil {
		return nil, err
	}
	return &HistorySqlite{ds: ds}, nil
}

func (h *HistorySqlite) Record(job *JobRecord) error {
	now := utils.TimestampS()
	if job.CreateTime == 0 {
		job.CreateTime = now
	}
	job.ModifyTime = now
	dryRun := 0
	if job.DryRun {
		dryRun = 1
	}
	return h.ds.Put(job.JobId, map[string]interface{}{
		KJobImage:      job.Image,
		KJobSlicer:     job.Slicer,
		KJobDryRun:     dryRun,
		KJobConfig:     job.Config,
		KJobStatus:     job.Status,
		KJobMessage:    job.Message,
		KJobCreateTime: job.CreateTime,
		KJobModifyTime: job.ModifyTime,
	})
}

func (h *HistorySqlite) UpdateStatus(jobId, status, message string) error {
	return h.ds.Update(jobId, map[string]interface{}{
		KJobStatus:     status,
		KJobMessage:    message,
		KJobModifyTime: utils.TimestampS(),
	})
}

func (h *HistorySqlite) Get(jobId string) (*JobRecord, error) {
	data, err := h.ds.Get(jobId, historyColumns)
	if err != nil || data == nil {
		return nil, err
	}
	data[KJobIdColumnName] = jobId
	return toJobRecord(data), nil
}

func (h *HistorySqlite) List(limit int) ([]*JobRecord, error) {
	all, err := h.ds.ListAll(historyColumns)
	if err != nil {
		return nil, fmt.Errorf("list job history err=%w", err)
	}
	jobs := make([]*JobRecord, 0, len(all))
	for _, data := range all {
		jobs = append(jobs, toJobRecord(data))
	}
	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].CreateTime != jobs[j].CreateTime {
			return jobs[i].CreateTime > jobs[j].CreateTime
		}
		return jobs[i].JobId > jobs[j].JobId
	})
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

func (h *HistorySqlite) Close() error {
	return h.ds.Close()
}

func toJobRecord(data map[string]interface{}) *JobRecord {
	return &JobRecord{
		JobId:      asString(data[KJobIdColumnName]),
		Image:      asString(data[KJobImage]),
		Slicer:     asString(data[KJobSlicer]),
		DryRun:     asInt(data[KJobDryRun]) != 0,
		Config:     asString(data[KJobConfig]),
		Status:     asString(data[KJobStatus]),
		Message:    asString(data[KJobMessage]),
		CreateTime: asInt(data[KJobCreateTime]),
		ModifyTime: asInt(data[KJobModifyTime]),
	}
}

func asString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(s)
	}
}

func asInt(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
