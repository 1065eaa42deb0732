package scenario

import (
	"context"
	"fmt"

	"github.com/entrhq/dirtycheck/pkg/dirty"
)

// Admin prepares and restores the site around the suite.
type Admin interface {
	EnableExperiments(ctx context.Context, features []string) error
	DisableExperiments(ctx context.Context, features []string) error
	TrashPosts(ctx context.Context, postType string) error
}

// Editor performs edits in the site editor.
type Editor interface {
	Visit(ctx context.Context) error
	CreateTemplate(ctx context.Context, name string) error
	CreateTemplatePart(ctx context.Context, name, theme string) error
	EditTemplatePart(ctx context.Context, lines []string) error
	AppendParagraph(ctx context.Context, text string) error
	EditTemplatePartParagraph(ctx context.Context, text string) error
}

// Observer reports dirty state through the save panel.
type Observer interface {
	CheckPanelOpen(ctx context.Context) (bool, error)
	IsEntityDirty(ctx context.Context, name string) (bool, error)
	SaveAll(ctx context.Context) error
	Classify(ctx context.Context, entities ...dirty.Entity) ([]dirty.State, error)
}

// Env is everything the multi-entity suite talks to.
type Env struct {
	Admin    Admin
	Editor   Editor
	Observer Observer
	Options  Options
}

// MultiEntity builds the suite checking that edits dirty only the entity they
// belong to.
func MultiEntity(env Env) *Group {
	opts := env.Options.WithDefaults()
	obs := env.Observer

	root := &Group{
		Name: "Multi-entity editor states",
		BeforeAll: func(ctx context.Context) error {
			if err := env.Admin.EnableExperiments(ctx, opts.Experiments); err != nil {
				return err
			}
			for _, postType := range opts.PostTypes {
				if err := env.Admin.TrashPosts(ctx, postType); err != nil {
					return err
				}
			}
			return nil
		},
		AfterAll: func(ctx context.Context) error {
			return env.Admin.DisableExperiments(ctx, opts.Experiments)
		},
	}

	root.Add("should not display any dirty entities when loading the site editor", func(ctx context.Context) error {
		if err := env.Editor.Visit(ctx); err != nil {
			return err
		}
		open, err := obs.CheckPanelOpen(ctx)
		if err != nil {
			return err
		}
		if err := Expect("save panel open on first load", open, true); err != nil {
			return err
		}

		if err := obs.SaveAll(ctx); err != nil {
			return err
		}
		if err := env.Editor.Visit(ctx); err != nil {
			return err
		}

		// Unable to open the save panel implies that no entities are dirty.
		open, err = obs.CheckPanelOpen(ctx)
		if err != nil {
			return err
		}
		return Expect("save panel open after save and reload", open, false)
	})

	edit := root.Nest("Multi-entity edit")
	edit.BeforeAll = func(ctx context.Context) error {
		steps := []func() error{
			func() error { return env.Editor.Visit(ctx) },
			func() error { return env.Editor.CreateTemplate(ctx, opts.TemplateName) },
			func() error { return env.Editor.CreateTemplatePart(ctx, opts.TemplatePartName, opts.Theme) },
			func() error { return env.Editor.EditTemplatePart(ctx, opts.TemplatePartLines) },
			func() error { return obs.SaveAll(ctx) },
			func() error { return env.Editor.Visit(ctx) },
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}

		// Both entities were persisted, so a reload must leave nothing to save.
		open, err := obs.CheckPanelOpen(ctx)
		if err != nil {
			return err
		}
		return Expect("save panel open after creating, saving and reloading", open, false)
	}
	edit.AfterEach = obs.SaveAll

	edit.Add("should only dirty the parent entity when editing the parent", func(ctx context.Context) error {
		if err := env.Editor.AppendParagraph(ctx, opts.ParentEdit); err != nil {
			return err
		}
		return expectDirty(ctx, obs, opts, true, false)
	})

	edit.Add("should only dirty the child when editing the child", func(ctx context.Context) error {
		if err := env.Editor.EditTemplatePartParagraph(ctx, opts.ChildEdit); err != nil {
			return err
		}
		return expectDirty(ctx, obs, opts, false, true)
	})

	return root
}

func expectDirty(ctx context.Context, obs Observer, opts Options, parent, child bool) error {
	states, err := obs.Classify(ctx,
		dirty.Parent(opts.TemplateName),
		dirty.Child(opts.TemplatePartName),
	)
	if err != nil {
		return err
	}

	want := []bool{parent, child}
	for i, state := range states {
		if err := Expect(fmt.Sprintf("%s dirty", state.Entity), state.Dirty, want[i]); err != nil {
			return err
		}
	}
	return nil
}
