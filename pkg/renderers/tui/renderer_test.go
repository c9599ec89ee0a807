package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-entityform/pkg/account"
	"github.com/goliatone/go-entityform/pkg/entity"
	"github.com/goliatone/go-entityform/pkg/formsync"
	"github.com/goliatone/go-entityform/pkg/model"
	"github.com/goliatone/go-entityform/pkg/store"
	"github.com/goliatone/go-entityform/pkg/testsupport"
)

type stubDriver struct {
	inputs    []string
	selectIdx []int
	confirm   []bool
	textAreas []string
	passwords []string
	// useDefaults answers every prompt with its default once the scripted
	// answers of that kind run out.
	useDefaults bool
	confirmHook func(ConfirmConfig)

	infoMessages []string
	inputCfgs    []InputConfig
	selectCfgs   []SelectConfig
	inputPos     int
	selectPos    int
	confirmPos   int
	textPos      int
	passPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.inputCfgs = append(s.inputCfgs, cfg)
	if s.inputPos >= len(s.inputs) {
		if s.useDefaults {
			return cfg.Default, nil
		}
		return "", errors.New("no input scripted for " + cfg.Message)
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, cfg InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted for " + cfg.Message)
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	if s.confirmHook != nil {
		s.confirmHook(cfg)
	}
	if s.confirmPos >= len(s.confirm) {
		if s.useDefaults {
			return cfg.Default, nil
		}
		return false, errors.New("no confirm scripted for " + cfg.Message)
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selectCfgs = append(s.selectCfgs, cfg)
	if s.selectPos >= len(s.selectIdx) {
		if s.useDefaults {
			return cfg.DefaultIndex, nil
		}
		return -1, errors.New("no select scripted for " + cfg.Message)
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted for " + cfg.Message)
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func (s *stubDriver) infoContaining(fragment string) bool {
	for _, msg := range s.infoMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

type fixture struct {
	api       *testsupport.RecordingAPI
	notifier  *testsupport.RecordingNotifier
	navigator *testsupport.RecordingNavigator
}

func mountAcao(t *testing.T, form model.FormSpec, mode formsync.Mode) (*formsync.Synchronizer, *fixture) {
	t.Helper()
	fx := &fixture{
		api:       testsupport.NewRecordingAPI(testsupport.NewAcaoAPI()),
		notifier:  &testsupport.RecordingNotifier{},
		navigator: &testsupport.RecordingNavigator{},
	}
	s, err := formsync.New(form, mode, store.New(fx.api, store.WithNotifier(fx.notifier)),
		formsync.WithNavigator(fx.navigator),
		formsync.WithClock(testsupport.FixedClock()),
		formsync.WithLocation(time.UTC),
	)
	if err != nil {
		t.Fatalf("new synchronizer: %v", err)
	}
	t.Cleanup(s.Unmount)

	ctx := testsupport.Context(t)
	if err := s.Mount(ctx); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
	return s, fx
}

func newRenderer(t *testing.T, driver PromptDriver, opts ...Option) *Renderer {
	t.Helper()
	r, err := New(append([]Option{WithPromptDriver(driver)}, opts...)...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func TestEditCreatesEntityFromAnswers(t *testing.T) {
	s, fx := mountAcao(t, testsupport.AcaoForm(t), formsync.Create())
	driver := &stubDriver{
		// dataCriacao, usuarioCriacaoAcao, dataExecucaoAcao, observacoes
		inputs:  []string{"2024-03-05T09:15", "maria", "", "nota"},
		confirm: []bool{true, false},
		// cadastroDoacao -> 7, solicitacao -> none, cadastroUser -> 5
		selectIdx: []int{2, 0, 1},
	}

	if err := newRenderer(t, driver).Edit(context.Background(), s); err != nil {
		t.Fatalf("edit: %v", err)
	}

	calls := fx.api.Calls("CreateEntity")
	if len(calls) != 1 {
		t.Fatalf("expected one create, got %d", len(calls))
	}
	payload := calls[0].Payload
	if payload["usuarioCriacaoAcao"] != "maria" || payload["observacoes"] != "nota" {
		t.Fatalf("unexpected text values %+v", payload)
	}
	if payload["pendente"] != true || payload["ativa"] != false {
		t.Fatalf("unexpected booleans %+v", payload)
	}
	if payload["dataCriacao"] != "2024-03-05T09:15:00Z" || payload["dataExecucaoAcao"] != nil {
		t.Fatalf("unexpected dates %+v", payload)
	}
	if payload.ReferenceID("cadastroDoacao") != "7" || payload.ReferenceID("cadastroUser") != "5" {
		t.Fatalf("unexpected references %+v", payload)
	}
	if _, ok := payload["solicitacao"]; ok {
		t.Fatalf("empty reference should be omitted: %+v", payload)
	}
	if routes := fx.navigator.Routes(); len(routes) != 1 || routes[0] != "/acao" {
		t.Fatalf("unexpected navigation %v", routes)
	}

	opts := driver.selectCfgs[0].Options
	if opts[0] != NoneOption || len(opts) != 3 {
		t.Fatalf("unexpected reference options %v", opts)
	}
	if !strings.Contains(driver.inputCfgs[0].Help, "YYYY-MM-DD HH:mm") {
		t.Fatalf("expected placeholder in help, got %q", driver.inputCfgs[0].Help)
	}
}

func TestEditRepromptsRejectedValue(t *testing.T) {
	form := testsupport.AcaoForm(t)
	for i := range form.Fields {
		if form.Fields[i].Name == "observacoes" {
			form.Fields[i].Required = true
		}
	}
	s, fx := mountAcao(t, form, formsync.Create())
	driver := &stubDriver{
		inputs:    []string{"2024-03-05T09:15", "", "", "", "ok"},
		confirm:   []bool{false, false},
		selectIdx: []int{0, 0, 0},
	}

	if err := newRenderer(t, driver).Edit(context.Background(), s); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !driver.infoContaining("Observacoes:") {
		t.Fatalf("expected a validation message, got %v", driver.infoMessages)
	}
	if got := fx.api.Calls("CreateEntity")[0].Payload["observacoes"]; got != "ok" {
		t.Fatalf("expected corrected value, got %v", got)
	}
	if !strings.HasSuffix(driver.inputCfgs[3].Message, " *") {
		t.Fatalf("required label should be marked, got %q", driver.inputCfgs[3].Message)
	}
}

func TestEditKeepsLoadedValues(t *testing.T) {
	s, fx := mountAcao(t, testsupport.AcaoForm(t), formsync.Edit("42"))
	driver := &stubDriver{useDefaults: true}

	if err := newRenderer(t, driver).Edit(context.Background(), s); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !driver.infoContaining("ID: 42") {
		t.Fatalf("expected read-only id to be shown, got %v", driver.infoMessages)
	}
	if driver.selectCfgs[0].DefaultIndex != 2 {
		t.Fatalf("expected cadastroDoacao 7 preselected, got %d", driver.selectCfgs[0].DefaultIndex)
	}

	calls := fx.api.Calls("UpdateEntity")
	if len(calls) != 1 {
		t.Fatalf("expected one update, got %d", len(calls))
	}
	payload := calls[0].Payload
	if payload.ID() != "42" || payload["versao"] != int64(3) || payload["pendente"] != true {
		t.Fatalf("unexpected update payload %+v", payload)
	}
	if payload["dataCriacao"] != "2024-01-15T10:30:00Z" || payload.ReferenceID("cadastroDoacao") != "7" {
		t.Fatalf("unexpected update payload %+v", payload)
	}
}

func TestEditRetriesAfterServerFailure(t *testing.T) {
	s, fx := mountAcao(t, testsupport.AcaoForm(t), formsync.Edit("42"))
	fx.api.FailSave(errors.New("backend down"))

	driver := &stubDriver{useDefaults: true}
	driver.confirmHook = func(cfg ConfirmConfig) {
		if strings.HasPrefix(cfg.Message, "Save failed") {
			fx.api.FailSave(nil)
		}
	}

	if err := newRenderer(t, driver).Edit(context.Background(), s); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if got := len(fx.api.Calls("UpdateEntity")); got != 2 {
		t.Fatalf("expected two update attempts, got %d", got)
	}
	if got := len(fx.notifier.Failures()); got != 1 {
		t.Fatalf("expected one failure notification, got %d", got)
	}
}

func TestEditGivesUpWhenDeclined(t *testing.T) {
	s, fx := mountAcao(t, testsupport.AcaoForm(t), formsync.Edit("42"))
	fx.api.FailSave(errors.New("backend down"))

	driver := &stubDriver{useDefaults: true}
	driver.confirmHook = func(cfg ConfirmConfig) {
		if strings.HasPrefix(cfg.Message, "Save failed") {
			driver.confirm = append(driver.confirm, false)
			driver.confirmPos = len(driver.confirm) - 1
		}
	}

	err := newRenderer(t, driver).Edit(context.Background(), s)
	if !errors.Is(err, ErrGaveUp) {
		t.Fatalf("expected ErrGaveUp, got %v", err)
	}
	if routes := fx.navigator.Routes(); len(routes) != 0 {
		t.Fatalf("failed submit must not navigate, got %v", routes)
	}
}

func TestEditRejectsUnloadedEntity(t *testing.T) {
	api := testsupport.NewRecordingAPI(testsupport.NewAcaoAPI())
	api.FailEntity(errors.New("not found"))
	s, err := formsync.New(testsupport.AcaoForm(t), formsync.Edit("99"), store.New(api))
	if err != nil {
		t.Fatalf("new synchronizer: %v", err)
	}
	t.Cleanup(s.Unmount)
	ctx := testsupport.Context(t)
	if err := s.Mount(ctx); err != nil {
		t.Fatalf("mount: %v", err)
	}
	_ = s.Wait(ctx)

	driver := &stubDriver{}
	if err := newRenderer(t, driver).Edit(ctx, s); err == nil {
		t.Fatalf("expected error for an entity that failed to load")
	}
	if len(driver.inputCfgs) != 0 {
		t.Fatalf("no prompt expected, got %d", len(driver.inputCfgs))
	}
}

type recordingRegistrar struct {
	mu       sync.Mutex
	requests []account.Request
}

func (r *recordingRegistrar) Register(_ context.Context, req account.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	return nil
}

func TestRegisterRepromptsMismatchedPassword(t *testing.T) {
	registrar := &recordingRegistrar{}
	svc := account.NewService(registrar, account.WithLangKey("pt-br"))
	driver := &stubDriver{
		inputs:    []string{"maria", "maria@example.com"},
		passwords: []string{"secret", "other", "secret"},
		// optional profile fields are skipped
		useDefaults: true,
	}

	values, err := newRenderer(t, driver).Register(context.Background(), svc, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !driver.infoContaining("As senhas não são iguais!") {
		t.Fatalf("expected mismatch message, got %v", driver.infoMessages)
	}
	if values["secondPassword"] != "secret" {
		t.Fatalf("unexpected values %+v", values)
	}
	if len(registrar.requests) != 1 {
		t.Fatalf("expected one request, got %d", len(registrar.requests))
	}
	req := registrar.requests[0]
	if req.Login != "maria" || req.Email != "maria@example.com" || req.Password != "secret" || req.LangKey != "pt-br" {
		t.Fatalf("unexpected request %+v", req)
	}
	if !driver.infoContaining(account.DefaultSuccessMessage) {
		t.Fatalf("expected success message, got %v", driver.infoMessages)
	}
}

func TestSummaryFormats(t *testing.T) {
	values := map[string]any{
		"id":             int64(42),
		"observacoes":    "a b",
		"cadastroDoacao": entity.Entity{"id": int64(7)},
	}

	jsonOut, err := newRenderer(t, &stubDriver{}).Summary(values)
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(jsonOut, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["observacoes"] != "a b" {
		t.Fatalf("unexpected json %s", jsonOut)
	}

	r := newRenderer(t, &stubDriver{}, WithOutputFormat(OutputFormatFormURLEncoded))
	formOut, err := r.Summary(values)
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if string(formOut) != "cadastroDoacao.id=7&id=42&observacoes=a+b" {
		t.Fatalf("unexpected form output %q", formOut)
	}
	if r.ContentType() != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}

	pretty, err := newRenderer(t, &stubDriver{}, WithOutputFormat(OutputFormatPrettyText)).Summary(values)
	if err != nil {
		t.Fatalf("pretty: %v", err)
	}
	if !strings.Contains(string(pretty), "observacoes: a b") {
		t.Fatalf("unexpected pretty output %q", pretty)
	}
}

func TestPlainTextHelp(t *testing.T) {
	field := model.FieldSpec{Name: "nota", Kind: model.KindDate, Description: "Use <b>ISO</b> &amp; UTC"}
	if got := displayHelp(field); got != "Use ISO & UTC Format: YYYY-MM-DD" {
		t.Fatalf("unexpected help %q", got)
	}
}
