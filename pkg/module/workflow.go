package module

import (
	"context"
	"fmt"

	"github.com/devsapp/tiled-upscale-console/pkg/fields"
)

const (
	PromptFromWorkflow = "workflow"
	PromptFromInput    = "input"
)

// RefreshWorkflows reload the workflow list, the selection is kept when still listed
func (s *Session) RefreshWorkflows(ctx context.Context) ([]string, error) {
	names, err := s.backend.WorkflowList(ctx)
	if err != nil {
		s.banner.Post(fmt.Sprintf("Failed to load workflow list - %v", err))
		return nil, err
	}
	s.lock.Lock()
	selected := ""
	for _, name := range names {
		if name == s.workflowName {
			selected = name
			break
		}
	}
	if selected == "" && len(names) > 0 {
		selected = names[0]
	}
	s.workflows = names
	s.lock.Unlock()

	if selected == "" {
		return names, nil
	}
	return names, s.loadWorkflow(ctx, selected)
}

// SelectWorkflow switch to a listed workflow and fetch its info
func (s *Session) SelectWorkflow(ctx context.Context, name string) error {
	s.lock.Lock()
	listed := false
	for _, n := range s.workflows {
		if n == name {
			listed = true
			break
		}
	}
	s.lock.Unlock()
	if !listed {
		return fmt.Errorf("%w: %s", ErrUnknownWorkflow, name)
	}
	return s.loadWorkflow(ctx, name)
}

func (s *Session) loadWorkflow(ctx context.Context, name string) error {
	s.logger.Debugf("fetching info for workflow %s", name)
	info, err := s.backend.Workflow(ctx, name)
	if err != nil {
		s.banner.Post(fmt.Sprintf("Failed to load workflow '%s' - %v", name, err))
		return err
	}
	if len(info.Workflow) == 0 {
		info.Workflow = emptyWorkflow
	}
	s.lock.Lock()
	s.workflowName = name
	s.workflow = info
	s.lock.Unlock()
	return nil
}

// ApplyPrompts fill both prompt fields from the workflow defaults or from the
// metadata of the uploaded image. With ifEmpty only empty fields are written.
func (s *Session) ApplyPrompts(source string, ifEmpty bool) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	var positive, negative string
	switch source {
	case PromptFromWorkflow:
		if s.workflow.PositivePrompt != nil {
			positive = *s.workflow.PositivePrompt
		}
		if s.workflow.NegativePrompt != nil {
			negative = *s.workflow.NegativePrompt
		}
	case PromptFromInput:
		positive = metaText(s.input.Meta, "positive_prompt")
		negative = metaText(s.input.Meta, "negative_prompt")
	default:
		return fmt.Errorf("%w: %s", ErrPromptSource, source)
	}
	if err := s.setPrompt(fields.PositivePrompt, positive, ifEmpty); err != nil {
		return err
	}
	return s.setPrompt(fields.NegativePrompt, negative, ifEmpty)
}

func (s *Session) setPrompt(key fields.Key, text string, ifEmpty bool) error {
	if ifEmpty && s.graph.String(key) != "" {
		return nil
	}
	return s.graph.Set(key, text)
}

func metaText(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	text, _ := meta[key].(string)
	return text
}
