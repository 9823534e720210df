package template

import (
	"fmt"

	gotemplate "github.com/goliatone/go-template"
)

// HookRun carries one render through the go-template hook chain. Pre hooks
// may replace the data and, for inline renders, the template source; post
// hooks rewrite the output. Metadata is shared by every hook of the run.
type HookRun struct {
	hooks    *gotemplate.HookManager
	name     string
	Template string
	Data     any
	metadata map[string]any
}

// NewHookRun starts a hook run. A nil manager runs no hooks.
func NewHookRun(hooks *gotemplate.HookManager, name, source string, data any) *HookRun {
	return &HookRun{
		hooks:    hooks,
		name:     name,
		Template: source,
		Data:     data,
		metadata: make(map[string]any),
	}
}

// Pre runs the pre hooks in priority order.
func (r *HookRun) Pre() error {
	if r.hooks == nil {
		return nil
	}
	for _, hook := range r.hooks.PreHooks() {
		ctx := &gotemplate.HookContext{
			TemplateName: r.name,
			Template:     r.Template,
			Data:         r.Data,
			Metadata:     r.metadata,
			IsPreHook:    true,
		}
		if err := hook(ctx); err != nil {
			return fmt.Errorf("pre-hook failed: %w", err)
		}
		r.Data = ctx.Data
		r.Template = ctx.Template
	}
	return nil
}

// Post runs the post hooks in priority order and returns the final output.
func (r *HookRun) Post(rendered string) (string, error) {
	if r.hooks == nil {
		return rendered, nil
	}
	for _, hook := range r.hooks.PostHooks() {
		ctx := &gotemplate.HookContext{
			TemplateName: r.name,
			Template:     r.Template,
			Data:         r.Data,
			Metadata:     r.metadata,
			Output:       rendered,
		}
		out, err := hook(ctx)
		if err != nil {
			return "", fmt.Errorf("post-hook failed: %w", err)
		}
		r.Data = ctx.Data
		rendered = out
	}
	return rendered, nil
}
