package module

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/devsapp/tiled-upscale-console/pkg/config"
	"github.com/devsapp/tiled-upscale-console/pkg/datastore"
	"github.com/devsapp/tiled-upscale-console/pkg/fields"
	"github.com/devsapp/tiled-upscale-console/pkg/log"
	"github.com/devsapp/tiled-upscale-console/pkg/models"
	"github.com/devsapp/tiled-upscale-console/pkg/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	startLabel = "Start"
	testLabel  = "Test"

	statusFailedFmt = "Failed to update status (x%d)"
	statusFatal     = "Failed to update status. Refresh page to reload UI."
)

// Backend job executor api
type Backend interface {
	Start(ctx context.Context, conf *models.JobConfig) error
	Abort(ctx context.Context) error
	Status(ctx context.Context) (*models.StatusSnapshot, error)
	Upload(ctx context.Context, fileName, contentType string, data []byte) (*models.UploadResult, error)
	WorkflowList(ctx context.Context) ([]string, error)
	Workflow(ctx context.Context, name string) (*models.WorkflowInfo, error)
	Workers(ctx context.Context) ([]models.WorkerInfo, error)
	Fetch(ctx context.Context, path string) (*http.Response, error)
}

// Controls enabled/visible state of the job controls
type Controls struct {
	StartEnabled bool   `json:"startEnabled"`
	AbortEnabled bool   `json:"abortEnabled"`
	ClearVisible bool   `json:"clearVisible"`
	StartLabel   string `json:"startLabel"`
}

// ProgressBar progress indicator fed by status snapshots
type ProgressBar struct {
	Value int    `json:"value"`
	Max   int    `json:"max"`
	Label string `json:"label"`
}

// State copy of the whole session for the operator front end
type State struct {
	SessionId string          `json:"sessionId"`
	Fields    []fields.Field  `json:"fields"`
	Display   DisplayState    `json:"display"`
	Source    string          `json:"source"`
	Input     InputImage      `json:"input"`
	Controls  Controls        `json:"controls"`
	Progress  ProgressBar     `json:"progress"`
	Health    PollHealth      `json:"health"`
	Banner    *log.Message    `json:"banner"`
	Workflows []string        `json:"workflows"`
	Workflow  string          `json:"workflow"`
	Prompts   map[string]bool `json:"workflowPrompts"`
	LastJobId string          `json:"lastJobId,omitempty"`
}

// Session all state of one operator session.
// Every mutation happens under lock, backend calls are made without holding it.
type Session struct {
	Id string

	lock         sync.Mutex
	backend      Backend
	conf         *config.Config
	graph        *fields.Graph
	display      *Display
	input        InputImage
	workflows    []string
	workflowName string
	workflow     *models.WorkflowInfo
	controls     Controls
	progress     ProgressBar
	health       PollHealth
	lastJobId    string

	banner  *log.Banner
	history datastore.HistoryInterface
	after   log.AfterFunc
	logger  *logrus.Entry
}

// NewSession history may be nil, after defaults to real timers
func NewSession(backend Backend, conf *config.Config, history datastore.HistoryInterface,
	after log.AfterFunc) *Session {
	if after == nil {
		after = log.TimerAfter
	}
	id := uuid.NewString()
	logFields := logrus.Fields{"sessionId": id}
	s := &Session{
		Id:       id,
		backend:  backend,
		conf:     conf,
		graph:    fields.NewGraph(conf.Tiling),
		display:  NewDisplay(),
		workflow: &models.WorkflowInfo{Workflow: emptyWorkflow},
		progress: ProgressBar{Max: 100},
		banner:   log.NewBanner(conf.MessageTimeout(), after, logFields),
		history:  history,
		after:    after,
		logger:   logrus.WithFields(logFields),
	}
	s.controls = Controls{StartLabel: startLabel}
	return s
}

func (s *Session) Banner() *log.Banner {
	return s.banner
}

// SetField edit one field, dependents are recomputed before returning
func (s *Session) SetField(key fields.Key, value any) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if err := s.graph.Set(key, value); err != nil {
		return err
	}
	if key == fields.DryRun {
		s.controls.StartLabel = startLabel
		if s.graph.Flag(fields.DryRun) {
			s.controls.StartLabel = testLabel
		}
	}
	return nil
}

// Upload send a new input image to the backend and show it
func (s *Session) Upload(ctx context.Context, fileName, contentType string, data []byte) error {
	s.lock.Lock()
	if s.display.State() != DisplayNone {
		s.lock.Unlock()
		return ErrImageSelected
	}
	s.lock.Unlock()
	if !acceptedType(contentType, s.conf.AcceptedImageTypes()) {
		s.banner.Post(fmt.Sprintf("Invalid file type '%s'!", contentType))
		return fmt.Errorf("%w: %s", ErrInvalidFileType, contentType)
	}

	s.logger.Debugf("uploading %s type=%s size=%d", fileName, contentType, len(data))
	result, err := s.backend.Upload(ctx, fileName, contentType, data)
	if err != nil {
		s.lock.Lock()
		s.controls.StartEnabled = false
		s.controls.AbortEnabled = false
		s.lock.Unlock()
		s.banner.Post("Failed to upload image.")
		return err
	}
	if result.Name == "" {
		s.banner.Post(fmt.Sprintf("Failed to upload image. (%v)", result.Meta))
		return ErrUploadRejected
	}

	width, height := probeSize(data)
	s.lock.Lock()
	s.input = InputImage{Name: result.Name, Mode: result.Mode, Meta: result.Meta}
	s.display.ShowInput(s.input)
	s.graph.SetNatural(width, height)
	s.lock.Unlock()
	s.logger.Infof("input image %s/%s %dx%d", result.Mode, result.Name, width, height)

	s.refreshQuietly(ctx)
	return nil
}

// Clear drop the input image after the settle delay
func (s *Session) Clear() {
	s.after(s.conf.ClearSettle(), func() {
		s.lock.Lock()
		s.display.Clear()
		s.input = InputImage{}
		s.graph.SetNatural(0, 0)
		s.lock.Unlock()
		s.refreshQuietly(context.Background())
	})
}

// Start validate the fields and submit a job. Rejected jobs change nothing and
// never reach the backend.
func (s *Session) Start(ctx context.Context) (string, error) {
	s.lock.Lock()
	conf, err := BuildJobConfig(s.graph, s.input, s.workflow.Workflow)
	if err != nil {
		s.lock.Unlock()
		s.banner.Post(err.Error())
		return "", err
	}
	s.controls.StartEnabled = false
	s.controls.AbortEnabled = true
	// reset if a preview or output is showing
	s.display.ShowInput(s.input)
	jobId := utils.NewJobId()
	s.lastJobId = jobId
	s.lock.Unlock()

	logger := s.logger.WithFields(logrus.Fields{"jobId": jobId})
	logger.Infof("starting %s job slicer=%s image=%s", conf.Job.Type, conf.Slicer.Name, conf.Job.ImageName)
	record := &datastore.JobRecord{
		JobId:  jobId,
		Image:  conf.Job.ImageName,
		Slicer: conf.Slicer.Name,
		DryRun: conf.Job.DryRun,
		Status: config.JOB_STARTED,
	}
	if body, err := json.Marshal(conf); err == nil {
		record.Config = string(body)
	}

	if err := s.backend.Start(ctx, conf); err != nil {
		logger.Errorf("start fail err=%s", err.Error())
		s.banner.Post(fmt.Sprintf("Failed to start workflow - %v", err))
		record.Status = config.JOB_FAILED
		record.Message = err.Error()
		s.recordJob(record)
		return jobId, err
	}
	s.recordJob(record)
	s.refreshQuietly(ctx)
	return jobId, nil
}

// Abort cancel the running job, the input is shown again after the settle delay
func (s *Session) Abort(ctx context.Context) error {
	s.lock.Lock()
	s.controls.StartEnabled = true
	s.controls.AbortEnabled = false
	jobId := s.lastJobId
	s.lock.Unlock()

	err := s.backend.Abort(ctx)
	if err != nil {
		s.logger.Errorf("abort fail err=%s", err.Error())
		s.banner.Post(fmt.Sprintf("Failed to abort job - %v", err))
	} else if s.history != nil && jobId != "" {
		if err := s.history.UpdateStatus(jobId, config.JOB_ABORTED, ""); err != nil {
			s.logger.Warnf("update job %s history fail err=%s", jobId, err.Error())
		}
	}
	// the input is shown again even when the backend refused the abort
	s.refreshQuietly(ctx)
	s.after(s.conf.AbortSettle(), func() {
		s.lock.Lock()
		defer s.lock.Unlock()
		if s.input.Selected() {
			s.display.ShowInput(s.input)
		}
	})
	return err
}

// ApplyStatus feed one status snapshot to the progress bar, the controls and the display
func (s *Session) ApplyStatus(snapshot *models.StatusSnapshot) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.applyStatus(snapshot)
}

func (s *Session) applyStatus(snapshot *models.StatusSnapshot) {
	switch snapshot.Status {
	case config.STATUS_IDLE:
		s.progress = ProgressBar{Value: 0, Max: 100, Label: "[idle]"}
		shown := s.display.State() != DisplayNone
		s.controls.AbortEnabled = false
		s.controls.StartEnabled = shown
		s.controls.ClearVisible = shown
	case config.STATUS_PROC:
		s.progress = ProgressBar{}
		if p := snapshot.Progress; p != nil {
			s.progress = ProgressBar{Value: p.Current, Max: p.Total, Label: p.Label}
		}
		s.controls.StartEnabled = false
		s.controls.AbortEnabled = true
		s.controls.ClearVisible = false
	default:
		s.progress = ProgressBar{Value: 0, Max: 100, Label: fmt.Sprintf("[%s]", snapshot.Status)}
	}
	s.display.ApplyStatus(snapshot)
}

// RefreshStatus one-off status fetch outside the poll loop, poll health is not touched
func (s *Session) RefreshStatus(ctx context.Context) error {
	snapshot, err := s.backend.Status(ctx)
	if err != nil {
		return err
	}
	s.ApplyStatus(snapshot)
	return nil
}

func (s *Session) refreshQuietly(ctx context.Context) {
	if err := s.RefreshStatus(ctx); err != nil {
		s.logger.Debugf("status refresh fail err=%s", err.Error())
	}
}

// statusFailed count a failed poll, returns the consecutive failure count
func (s *Session) statusFailed(limit int) int {
	s.lock.Lock()
	s.health.ConsecutiveFailures++
	failures := s.health.ConsecutiveFailures
	s.controls.StartEnabled = false
	s.controls.AbortEnabled = false
	s.lock.Unlock()

	if failures < limit {
		s.banner.Post(fmt.Sprintf(statusFailedFmt, failures))
	} else {
		s.banner.PostSticky(statusFatal)
	}
	return failures
}

func (s *Session) statusSucceeded(snapshot *models.StatusSnapshot) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.health.ConsecutiveFailures = 0
	s.applyStatus(snapshot)
}

// DisplayImage bytes of the image currently shown, the caller closes the body
func (s *Session) DisplayImage(ctx context.Context) (*http.Response, error) {
	s.lock.Lock()
	src := s.display.Source()
	s.lock.Unlock()
	if src == "" {
		return nil, ErrNoImage
	}
	return s.backend.Fetch(ctx, src)
}

// Controls current button state
func (s *Session) Controls() Controls {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.controls
}

func (s *Session) Health() PollHealth {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.health
}

func (s *Session) Snapshot() *State {
	s.lock.Lock()
	defer s.lock.Unlock()
	workflows := make([]string, len(s.workflows))
	copy(workflows, s.workflows)
	return &State{
		SessionId: s.Id,
		Fields:    s.graph.Fields(),
		Display:   s.display.State(),
		Source:    s.display.Source(),
		Input:     s.input,
		Controls:  s.controls,
		Progress:  s.progress,
		Health:    s.health,
		Banner:    s.banner.Current(),
		Workflows: workflows,
		Workflow:  s.workflowName,
		Prompts: map[string]bool{
			"positive": s.workflow.PositivePrompt != nil,
			"negative": s.workflow.NegativePrompt != nil,
		},
		LastJobId: s.lastJobId,
	}
}

func (s *Session) recordJob(record *datastore.JobRecord) {
	if s.history == nil {
		return
	}
	if err := s.history.Record(record); err != nil {
		s.logger.Warnf("record job %s fail err=%s", record.JobId, err.Error())
	}
}
