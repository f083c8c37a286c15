// Package tui is a terminal collaborator for the form engine. It walks a
// session through survey prompts: a group picker, one prompt per visible
// field, and a navigation menu built from the actions the session offers.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/navigation"
	"github.com/goliatone/go-formflow/pkg/session"
)

// Form is the slice of the session API the renderer drives.
type Form interface {
	CurrentState() navigation.State
	Actions() []navigation.Action
	GroupList() []session.GroupInfo
	ActiveGroupFields() []session.FieldView
	Field(id string) (*model.Field, bool)
	FieldValue(id string) (any, bool)
	Dependents(id string) []string
	SelectGroup(i int) (session.Result, error)
	SetField(id string, value any) (session.Result, error)
	Next() (session.Result, error)
	Previous() (session.Result, error)
	Back() (session.Result, error)
	Validate() (session.Result, bool, error)
	Answers() map[string]any
}

var _ Form = (*session.Session)(nil)

type menuItem string

const (
	menuNext     menuItem = "Next section"
	menuPrevious menuItem = "Previous section"
	menuBack     menuItem = "Back to sections"
	menuEdit     menuItem = "Edit answers"
	menuFinish   menuItem = "Finish"
)

// Renderer drives a Form from the terminal and serializes the answers.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	logger            *slog.Logger
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		driver:       newSurveyDriver(),
		outputFormat: OutputFormatJSON,
		theme:        DefaultTheme,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if _, err := ParseOutputFormat(string(r.outputFormat)); err != nil {
		return nil, err
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Run.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Run prompts until the user finishes and returns the serialized answers.
// Finishing from the last group requires it to validate; finishing from the
// group picker exports the answers as they stand.
func (r *Renderer) Run(ctx context.Context, form Form) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if form == nil {
		return nil, errors.New("tui: form is nil")
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		state := form.CurrentState()
		switch state.Phase {
		case navigation.Unloaded:
			return nil, ErrNotLoaded
		case navigation.GroupSelect:
			done, err := r.pickGroup(ctx, form)
			if err != nil {
				return nil, err
			}
			if done {
				return r.submit(form.Answers())
			}
		case navigation.GroupActive:
			done, err := r.runGroup(ctx, form)
			if err != nil {
				return nil, err
			}
			if done {
				return r.submit(form.Answers())
			}
		default:
			return nil, fmt.Errorf("tui: unexpected state %s", state)
		}
	}
}

func (r *Renderer) pickGroup(ctx context.Context, form Form) (bool, error) {
	groups := form.GroupList()
	if len(groups) == 0 {
		return true, r.info(ctx, "This form has no sections.")
	}
	options := make([]string, 0, len(groups)+1)
	for _, g := range groups {
		options = append(options, g.Name)
	}
	options = append(options, string(menuFinish))

	idx, err := r.driver.Select(ctx, SelectConfig{Message: "Choose a section", Options: options})
	if err != nil {
		return false, err
	}
	if idx == len(groups) {
		return true, nil
	}
	if _, err := form.SelectGroup(idx); err != nil {
		return false, err
	}
	r.logger.Debug("group selected", "group", groups[idx].ID)
	return false, nil
}

// runGroup prompts the active group once and then loops on the navigation
// menu until the state changes or the user finishes.
func (r *Renderer) runGroup(ctx context.Context, form Form) (bool, error) {
	if err := r.promptFields(ctx, form); err != nil {
		return false, err
	}
	for {
		before := form.CurrentState()
		items := r.menu(form)
		labels := make([]string, len(items))
		for i, item := range items {
			labels[i] = string(item)
		}
		idx, err := r.driver.Select(ctx, SelectConfig{Message: "What next?", Options: labels})
		if err != nil {
			return false, err
		}
		if idx < 0 || idx >= len(items) {
			continue
		}

		var res session.Result
		switch items[idx] {
		case menuEdit:
			if err := r.promptFields(ctx, form); err != nil {
				return false, err
			}
			continue
		case menuFinish:
			res, ok, err := form.Validate()
			if err != nil {
				return false, err
			}
			if ok {
				return r.confirmSubmit(ctx)
			}
			if err := r.showErrors(ctx, form, res); err != nil {
				return false, err
			}
			continue
		case menuNext:
			res, err = form.Next()
		case menuPrevious:
			res, err = form.Previous()
		case menuBack:
			res, err = form.Back()
		}
		if err != nil {
			return false, err
		}
		if res.State != before {
			r.logger.Debug("navigated", "from", before.String(), "to", res.State.String())
			return false, nil
		}
		if err := r.showErrors(ctx, form, res); err != nil {
			return false, err
		}
	}
}

func (r *Renderer) menu(form Form) []menuItem {
	var items []menuItem
	offered := make(map[navigation.Action]bool)
	for _, a := range form.Actions() {
		offered[a] = true
	}

	if offered[navigation.ActionNext] {
		items = append(items, menuNext)
	} else {
		items = append(items, menuFinish)
	}
	if offered[navigation.ActionPrevious] {
		items = append(items, menuPrevious)
	}
	items = append(items, menuEdit)
	if offered[navigation.ActionBack] {
		items = append(items, menuBack)
	}
	return items
}

func (r *Renderer) confirmSubmit(ctx context.Context) (bool, error) {
	ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Submit answers?", Default: true})
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (r *Renderer) showErrors(ctx context.Context, form Form, res session.Result) error {
	if len(res.Errors) == 0 {
		return nil
	}
	for _, fv := range form.ActiveGroupFields() {
		msg, ok := res.Errors[fv.Field.ID]
		if !ok {
			continue
		}
		if err := r.driver.Info(ctx, fmt.Sprintf("%s%s: %s", r.theme.ErrorPrefix, fv.Field.Label, msg)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) promptFields(ctx context.Context, form Form) error {
	for _, fv := range form.ActiveGroupFields() {
		if fv.Field.Calculated() {
			continue
		}
		if fv.Error != "" {
			if err := r.driver.Info(ctx, r.theme.ErrorPrefix+fv.Error); err != nil {
				return err
			}
		}
		value, err := r.promptField(ctx, fv)
		if err != nil {
			return err
		}
		if _, err := form.SetField(fv.Field.ID, value); err != nil {
			return err
		}
		r.logger.Debug("answer recorded", "field", fv.Field.ID)
		if err := r.showDependents(ctx, form, fv.Field.ID); err != nil {
			return err
		}
	}
	return nil
}

// showDependents echoes calculated fields touched by an answer.
func (r *Renderer) showDependents(ctx context.Context, form Form, id string) error {
	for _, dep := range form.Dependents(id) {
		value, ok := form.FieldValue(dep)
		if !ok {
			continue
		}
		label := dep
		if f, found := form.Field(dep); found {
			label = f.Label
		}
		if err := r.info(ctx, fmt.Sprintf("%s = %s", label, model.FormatValue(value))); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) promptField(ctx context.Context, fv session.FieldView) (any, error) {
	field := fv.Field
	label := displayLabel(field)
	current := ""
	if !model.IsBlank(fv.Value) {
		current = model.FormatValue(fv.Value)
	}

	switch field.Kind {
	case model.KindTextBox:
		return r.driver.Input(ctx, InputConfig{Message: label, Default: current, Help: displayHelp(field)})
	case model.KindNumber:
		raw, err := r.driver.Input(ctx, InputConfig{
			Message:   label,
			Default:   current,
			Help:      displayHelp(field),
			Validator: numberInput,
		})
		if err != nil {
			return nil, err
		}
		if n, ok := model.Number(raw); ok {
			return n, nil
		}
		return raw, nil
	case model.KindDate:
		return r.driver.Input(ctx, InputConfig{Message: label, Default: current, Help: "Format: YYYY-MM-DD"})
	case model.KindTextArea:
		return r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: current, Help: displayHelp(field)})
	case model.KindDropdown, model.KindRadioButton:
		return r.promptChoice(ctx, field, label, current)
	case model.KindCheckBox:
		return r.promptMulti(ctx, field, label, fv.Value)
	default:
		return nil, fmt.Errorf("tui: no prompt for kind %s", field.Kind)
	}
}

func (r *Renderer) promptChoice(ctx context.Context, field *model.Field, label, current string) (any, error) {
	choices := field.Choices()
	options := optionLabels(choices)
	if !field.Required {
		options = append([]string{"(none)"}, options...)
	}
	offset := len(options) - len(choices)

	def := 0
	for i, opt := range choices {
		if opt.Value == current {
			def = i + offset
		}
	}
	idx, err := r.driver.Select(ctx, SelectConfig{Message: label, Options: options, DefaultIndex: def})
	if err != nil {
		return nil, err
	}
	if idx < offset || idx >= len(options) {
		return "", nil
	}
	return choices[idx-offset].Value, nil
}

func (r *Renderer) promptMulti(ctx context.Context, field *model.Field, label string, current any) (any, error) {
	choices := field.Choices()
	selected := make(map[string]bool)
	if many, ok := current.([]string); ok {
		for _, v := range many {
			selected[v] = true
		}
	}
	var defaults []int
	for i, opt := range choices {
		if selected[opt.Value] {
			defaults = append(defaults, i)
		}
	}
	indices, err := r.driver.MultiSelect(ctx, SelectConfig{
		Message:  label,
		Options:  optionLabels(choices),
		Defaults: defaults,
	})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(choices) {
			out = append(out, choices[idx].Value)
		}
	}
	return out, nil
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) submit(values map[string]any) ([]byte, error) {
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(values)
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

func displayLabel(field *model.Field) string {
	if field.Required {
		return field.Label + " *"
	}
	return field.Label
}

func displayHelp(field *model.Field) string {
	var parts []string
	if field.Min != nil {
		parts = append(parts, "min "+model.FormatValue(*field.Min))
	}
	if field.Max != nil {
		parts = append(parts, "max "+model.FormatValue(*field.Max))
	}
	if field.PatternSource != "" {
		parts = append(parts, "pattern "+field.PatternSource)
	}
	return strings.Join(parts, ", ")
}

func numberInput(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if _, ok := model.Number(raw); !ok {
		return errors.New("enter a number")
	}
	return nil
}

func optionLabels(opts []model.Option) []string {
	out := make([]string, 0, len(opts))
	for _, opt := range opts {
		out = append(out, opt.Label)
	}
	return out
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	for key, value := range values {
		switch v := value.(type) {
		case []string:
			for _, item := range v {
				flattened.Add(key, item)
			}
		default:
			flattened.Set(key, model.FormatValue(v))
		}
	}
	return flattened.Encode()
}

func prettyPrint(values map[string]any) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, "%s=%s\n", key, model.FormatValue(values[key]))
	}
	return b.String()
}
