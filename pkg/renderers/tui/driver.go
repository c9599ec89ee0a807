package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// InputConfig configures a basic text input prompt.
type InputConfig struct {
	Message string
	Default string
	Help    string
}

// ConfirmConfig configures a yes/no style prompt.
type ConfirmConfig struct {
	Message string
	Default bool
	Help    string
}

// SelectConfig configures a single-select prompt.
type SelectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
	Help         string
	PageSize     int
}

// TextAreaConfig configures a multi-line text prompt.
type TextAreaConfig struct {
	Message string
	Default string
	Help    string
}

// PromptDriver abstracts the terminal so prompt flows can be tested without
// one and callers can swap implementations.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Password(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	TextArea(ctx context.Context, cfg TextAreaConfig) (string, error)
	Info(ctx context.Context, msg string) error
}

// Stdio wires the survey driver to explicit streams.
type Stdio struct {
	In  terminal.FileReader
	Out terminal.FileWriter
	Err io.Writer
}

// surveyDriver prompts on a terminal through survey. Ctrl-C surfaces as
// ErrAborted.
type surveyDriver struct {
	out  io.Writer
	opts []survey.AskOpt
}

func newSurveyDriver(stdio *Stdio) PromptDriver {
	if stdio == nil {
		return &surveyDriver{out: os.Stdout}
	}
	d := &surveyDriver{out: os.Stdout, opts: []survey.AskOpt{survey.WithStdio(stdio.In, stdio.Out, stdio.Err)}}
	if stdio.Out != nil {
		d.out = stdio.Out
	}
	return d
}

// askOne runs prompt and decodes the answer into a T.
func askOne[T any](ctx context.Context, d *surveyDriver, prompt survey.Prompt) (T, error) {
	var answer T
	if err := ctx.Err(); err != nil {
		return answer, err
	}
	err := survey.AskOne(prompt, &answer, d.opts...)
	if errors.Is(err, terminal.InterruptErr) {
		return answer, ErrAborted
	}
	return answer, err
}

func (d *surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	return askOne[string](ctx, d, &survey.Input{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help})
}

func (d *surveyDriver) Password(ctx context.Context, cfg InputConfig) (string, error) {
	return askOne[string](ctx, d, &survey.Password{Message: cfg.Message, Help: cfg.Help})
}

func (d *surveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	return askOne[bool](ctx, d, &survey.Confirm{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help})
}

// Select answers with the index of the chosen option.
func (d *surveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	prompt := &survey.Select{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help, PageSize: cfg.PageSize}
	if cfg.DefaultIndex > 0 && cfg.DefaultIndex < len(cfg.Options) {
		prompt.Default = cfg.Options[cfg.DefaultIndex]
	}
	return askOne[int](ctx, d, prompt)
}

func (d *surveyDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	return askOne[string](ctx, d, &survey.Multiline{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help})
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}
