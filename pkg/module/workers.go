package module

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/devsapp/tiled-upscale-console/pkg/config"
	"github.com/devsapp/tiled-upscale-console/pkg/models"
	"github.com/sirupsen/logrus"
)

type WorkerSource interface {
	Workers(ctx context.Context) ([]models.WorkerInfo, error)
}

// WorkerCard worker entry as shown to the operator
type WorkerCard struct {
	Id       string `json:"id"`
	Name     string `json:"name"`
	State    string `json:"state"`
	Order    string `json:"order"`
	Priority string `json:"priority"`
	Class    string `json:"class"`
	Summary  string `json:"summary"`
}

// WorkerRoster read only view of the backend workers, re-rendered only on change
type WorkerRoster struct {
	lock    sync.Mutex
	source  WorkerSource
	last    []models.WorkerInfo
	cards   []WorkerCard
	renders int
}

func NewWorkerRoster(source WorkerSource) *WorkerRoster {
	return &WorkerRoster{
		source: source,
		cards:  make([]WorkerCard, 0),
	}
}

func (r *WorkerRoster) Refresh(ctx context.Context) error {
	workers, err := r.source.Workers(ctx)
	if err != nil {
		logrus.Debugf("worker list refresh fail err=%s", err.Error())
		return err
	}
	if workers == nil {
		workers = make([]models.WorkerInfo, 0)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.last != nil && reflect.DeepEqual(r.last, workers) {
		return nil
	}
	cards := make([]WorkerCard, 0, len(workers))
	for _, w := range workers {
		cards = append(cards, NewWorkerCard(w))
	}
	r.cards = cards
	r.last = workers
	r.renders++
	return nil
}

func (r *WorkerRoster) Cards() []WorkerCard {
	r.lock.Lock()
	defer r.lock.Unlock()
	out := make([]WorkerCard, len(r.cards))
	copy(out, r.cards)
	return out
}

// Renders number of times the card list was rebuilt
func (r *WorkerRoster) Renders() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.renders
}

func NewWorkerCard(w models.WorkerInfo) WorkerCard {
	state := w.State
	order := "--"
	if w.Order != nil {
		order = fmt.Sprintf("#%d", *w.Order)
	}
	switch w.State {
	case config.WORKER_PROC:
		state = "processing"
	case config.WORKER_FAIL:
		state = "failed"
		order = "--"
	case config.WORKER_LOCK:
		state = "disabled"
		order = "--"
	}
	priority := fmt.Sprintf("%.2f", w.Priority)
	return WorkerCard{
		Id:       w.Id,
		Name:     w.Name,
		State:    state,
		Order:    order,
		Priority: priority,
		Class:    "status_" + w.State,
		Summary:  fmt.Sprintf("%s | %s | %s", order, priority, state),
	}
}
