package wpadmin

import (
	"context"
	"fmt"
)

// DefaultExperiments are the toggles the site editor needs.
var DefaultExperiments = []string{
	"#gutenberg-full-site-editing",
	"#gutenberg-full-site-editing-demo",
}

// EnableExperiments turns on the experiment checkboxes with the given selectors.
func (a *Admin) EnableExperiments(ctx context.Context, features []string) error {
	return a.setExperiments(ctx, features, true)
}

// DisableExperiments turns the given experiments back off.
func (a *Admin) DisableExperiments(ctx context.Context, features []string) error {
	return a.setExperiments(ctx, features, false)
}

func (a *Admin) setExperiments(ctx context.Context, features []string, enabled bool) error {
	if err := a.Visit(ctx, "admin.php", Query("page", "gutenberg-experiments")); err != nil {
		return fmt.Errorf("opening experiments: %w", err)
	}

	for _, feature := range features {
		if err := a.page.WaitFor(ctx, feature, 0); err != nil {
			return fmt.Errorf("experiment %s: %w", feature, err)
		}
		checked, err := a.page.Checked(ctx, feature)
		if err != nil {
			return fmt.Errorf("experiment %s: %w", feature, err)
		}
		if checked == enabled {
			continue
		}
		if err := a.page.Click(ctx, feature); err != nil {
			return fmt.Errorf("experiment %s: %w", feature, err)
		}
	}

	if err := a.page.Click(ctx, "#submit"); err != nil {
		return fmt.Errorf("saving experiments: %w", err)
	}
	if err := a.page.WaitForLoad(ctx); err != nil {
		return fmt.Errorf("saving experiments: %w", err)
	}

	debugLog.Infof("experiments %v enabled=%t", features, enabled)
	return nil
}
