package scenario_test

import (
	"context"
	"time"

	"github.com/entrhq/dirtycheck/pkg/dirty"
	"github.com/entrhq/dirtycheck/pkg/dirty/dirtytest"
)

var fastTiming = dirty.Timing{
	Interval:    time.Millisecond,
	PanelProbe:  10 * time.Millisecond,
	EntityProbe: 20 * time.Millisecond,
	Settle:      100 * time.Millisecond,
}

// fakeSite drives a dirtytest.CMS the way the real admin and editor drive
// the site. A fresh install ships demo template parts as auto-drafts, so the
// first visit shows them dirty.
type fakeSite struct {
	cms *dirtytest.CMS

	visits      int
	template    string
	part        string
	enabled     map[string]bool
	trashed     []string
	enableErr   error
	trashErr    error
	propagating bool

	// revertPart makes the template part come back dirty on every reload
	revertPart bool
}

func newFakeSite() *fakeSite {
	return &fakeSite{cms: dirtytest.New(), enabled: make(map[string]bool)}
}

func (s *fakeSite) observer() *dirty.Observer {
	return dirty.NewObserver(s.cms, dirty.WithTiming(fastTiming))
}

func (s *fakeSite) EnableExperiments(ctx context.Context, features []string) error {
	if s.enableErr != nil {
		return s.enableErr
	}
	for _, f := range features {
		s.enabled[f] = true
	}
	return nil
}

func (s *fakeSite) DisableExperiments(ctx context.Context, features []string) error {
	for _, f := range features {
		delete(s.enabled, f)
	}
	return nil
}

func (s *fakeSite) TrashPosts(ctx context.Context, postType string) error {
	if s.trashErr != nil {
		return s.trashErr
	}
	s.trashed = append(s.trashed, postType)
	return nil
}

func (s *fakeSite) Visit(ctx context.Context) error {
	if s.visits == 0 {
		s.cms.InsertDraft("Header", dirty.KindChild)
		s.cms.InsertDraft("Footer", dirty.KindChild)
	}
	s.visits++
	s.cms.Reload()
	if s.revertPart && s.part != "" {
		return s.cms.Edit(s.part)
	}
	return nil
}

func (s *fakeSite) CreateTemplate(ctx context.Context, name string) error {
	s.template = name
	s.cms.Insert(name, dirty.KindParent)
	return nil
}

func (s *fakeSite) CreateTemplatePart(ctx context.Context, name, theme string) error {
	s.part = name
	s.cms.Insert(name, dirty.KindChild)
	return nil
}

func (s *fakeSite) EditTemplatePart(ctx context.Context, lines []string) error {
	return s.cms.Edit(s.part)
}

func (s *fakeSite) AppendParagraph(ctx context.Context, text string) error {
	return s.cms.Edit(s.template)
}

func (s *fakeSite) EditTemplatePartParagraph(ctx context.Context, text string) error {
	if err := s.cms.Edit(s.part); err != nil {
		return err
	}
	if s.propagating {
		return s.cms.Edit(s.template)
	}
	return nil
}
