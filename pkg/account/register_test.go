package account_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-entityform/pkg/account"
)

type fakeRegistrar struct {
	requests []account.Request
	err      error
}

func (f *fakeRegistrar) Register(_ context.Context, req account.Request) error {
	f.requests = append(f.requests, req)
	return f.err
}

type notes struct{ ok, bad []string }

func (n *notes) Success(msg string) { n.ok = append(n.ok, msg) }
func (n *notes) Failure(msg string) { n.bad = append(n.bad, msg) }

func validValues() map[string]any {
	return map[string]any{
		"username":       "ana.maria",
		"email":          "ana@example.com",
		"firstPassword":  "s3cret",
		"secondPassword": "s3cret",
		"cidade":         "Recife",
	}
}

func TestRegisterSendsRequest(t *testing.T) {
	reg := &fakeRegistrar{}
	n := &notes{}
	svc := account.NewService(reg, account.WithNotifier(n))

	if err := svc.Register(context.Background(), validValues()); err != nil {
		t.Fatalf("register: %v", err)
	}

	want := []account.Request{{
		Login: "ana.maria", Email: "ana@example.com", Password: "s3cret", LangKey: "en",
	}}
	if diff := cmp.Diff(want, reg.requests); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{account.DefaultSuccessMessage}, n.ok); diff != "" {
		t.Fatalf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisterRejectsMismatchedPasswords(t *testing.T) {
	reg := &fakeRegistrar{}
	svc := account.NewService(reg)

	values := validValues()
	values["secondPassword"] = "s3creT"

	err := svc.Register(context.Background(), values)
	var verr *account.ValidationError
	if !errors.As(err, &verr) || !errors.Is(err, account.ErrInvalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := verr.Fields.First("secondPassword"); got != "As senhas não são iguais!" {
		t.Fatalf("secondPassword error = %q", got)
	}
	if len(reg.requests) != 0 {
		t.Fatalf("registrar must not be called on invalid input")
	}
}

func TestRegisterRejectsInvalidUsername(t *testing.T) {
	svc := account.NewService(&fakeRegistrar{})
	values := validValues()
	values["username"] = "ana maria"
	errs := svc.Validate(values)
	if errs.First("username") != "Seu usuário é inválido." {
		t.Fatalf("username errors = %v", errs["username"])
	}
}

func TestRegisterAcceptsEmailLikeUsername(t *testing.T) {
	svc := account.NewService(&fakeRegistrar{})
	values := validValues()
	values["username"] = "ana@example.com"
	if errs := svc.Validate(values); errs != nil {
		t.Fatalf("expected valid, got %v", errs)
	}
}

func TestRegisterFailureIsReported(t *testing.T) {
	reg := &fakeRegistrar{err: errors.New("login already used")}
	n := &notes{}
	svc := account.NewService(reg, account.WithNotifier(n))

	if err := svc.Register(context.Background(), validValues()); err == nil {
		t.Fatalf("expected error")
	}
	if len(n.bad) != 1 {
		t.Fatalf("expected failure notification, got %v", n.bad)
	}
}

func TestFormIsStructurallyValid(t *testing.T) {
	if err := account.Form().Validate(); err != nil {
		t.Fatalf("form: %v", err)
	}
}
