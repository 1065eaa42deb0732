package wpadmin

import (
	"context"
	"fmt"
)

// Post types holding site editor entities.
const (
	PostTypeTemplate     = "wp_template"
	PostTypeTemplatePart = "wp_template_part"
)

const (
	bulkActionSelector = "#bulk-action-selector-top"
	selectAllSelector  = "[id^=cb-select-all-]"
	doActionSelector   = "#doaction"
	trashedNotice      = `xpath=//*[contains(@class, "updated notice")]/p[contains(text(), "moved to the Trash.")]`
)

// TrashPosts moves every post of postType to the trash. An empty list has no
// bulk action menu and is left alone.
func (a *Admin) TrashPosts(ctx context.Context, postType string) error {
	if err := a.Visit(ctx, "edit.php", Query("post_type", postType)); err != nil {
		return fmt.Errorf("listing %s: %w", postType, err)
	}

	present, err := a.page.Exists(ctx, bulkActionSelector)
	if err != nil {
		return fmt.Errorf("listing %s: %w", postType, err)
	}
	if !present {
		debugLog.Debugf("no %s posts to trash", postType)
		return nil
	}

	if err := a.page.Click(ctx, selectAllSelector); err != nil {
		return fmt.Errorf("trashing %s: %w", postType, err)
	}
	if err := a.page.Select(ctx, bulkActionSelector, "trash"); err != nil {
		return fmt.Errorf("trashing %s: %w", postType, err)
	}
	if err := a.page.Click(ctx, doActionSelector); err != nil {
		return fmt.Errorf("trashing %s: %w", postType, err)
	}
	if err := a.page.WaitFor(ctx, trashedNotice, 0); err != nil {
		return fmt.Errorf("trashing %s: %w", postType, err)
	}

	debugLog.Infof("trashed all %s posts", postType)
	return nil
}
