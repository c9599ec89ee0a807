// Package account implements the account registration form: its field
// schema, client-side validation and submission through a Registrar.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-entityform/pkg/model"
	"github.com/goliatone/go-entityform/pkg/store"
	"github.com/goliatone/go-entityform/pkg/validation"
)

// UsernamePattern accepts either an email-like login or a plain login.
const UsernamePattern = `^[a-zA-Z0-9!$&*+=?^_` + "`" + `{|}~.-]+@[a-zA-Z0-9-]+(?:\.[a-zA-Z0-9-]+)*$|^[_.@A-Za-z0-9-]+$`

// DefaultSuccessMessage is reported after the backend accepted the account.
const DefaultSuccessMessage = "Registration saved! Please check your email for confirmation."

// Request is the payload sent to the registration endpoint. Profile fields
// of the form are validated but not sent.
type Request struct {
	Login    string `json:"login"`
	Email    string `json:"email"`
	Password string `json:"password"`
	LangKey  string `json:"langKey"`
}

// Registrar submits registration requests.
type Registrar interface {
	Register(ctx context.Context, req Request) error
}

// ErrInvalid wraps validation failures returned by Register.
var ErrInvalid = errors.New("account: registration is invalid")

// ValidationError lists the failing fields.
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("account: invalid fields %s", strings.Join(e.Fields.Fields(), ", "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

func optional(name, label, placeholder string, minLen, maxLen int) model.FieldSpec {
	return model.FieldSpec{
		Name:        name,
		Kind:        model.KindText,
		Label:       label,
		Placeholder: placeholder,
		Validations: []model.ValidationRule{
			model.MinLength(minLen, fmt.Sprintf("É obrigatório ter pelo menos %d caractere.", minLen)),
			model.MaxLength(maxLen, fmt.Sprintf("Não é permitido mais que %d caracteres.", maxLen)),
		},
	}
}

// Form returns the registration form description.
func Form() model.FormSpec {
	return model.FormSpec{
		Entity:     "register",
		Collection: "register",
		ListRoute:  "/",
		Title:      "Registro",
		Fields: []model.FieldSpec{
			{
				Name: "username", Kind: model.KindText, Label: "Usuário", Placeholder: "Seu nome de usuário",
				Validations: []model.ValidationRule{
					model.Required("Seu nome de usuário é obrigatório."),
					model.Pattern(UsernamePattern, "Seu usuário é inválido."),
					model.MinLength(1, "É obrigatório ter pelo menos 1 caractere."),
					model.MaxLength(50, "Não é permitido mais que 50 caracteres."),
				},
			},
			{
				Name: "email", Kind: model.KindText, Format: model.FormatEmail, Label: "Email", Placeholder: "Seu email",
				Validations: []model.ValidationRule{
					model.Required("Seu email é obrigatório."),
					model.MinLength(5, "É obrigatório ter pelo menos 5 caracteres."),
					model.MaxLength(254, "Não é permitido mais que 254 caracteres."),
					model.Email("Seu email é inválido."),
				},
			},
			{
				Name: "firstPassword", Kind: model.KindText, Format: model.FormatPassword, Label: "Senha", Placeholder: "Insira sua senha",
				Validations: []model.ValidationRule{
					model.Required("Sua senha é obrigatória."),
					model.MinLength(4, "É obrigatório ter pelo menos 4 caracteres."),
					model.MaxLength(50, "Não é permitido mais que 50 caracteres."),
				},
			},
			{
				Name: "secondPassword", Kind: model.KindText, Format: model.FormatPassword, Label: "Confirme a senha", Placeholder: "Confirme sua senha",
				Validations: []model.ValidationRule{
					model.Required("Sua senha de confirmação é obrigatória."),
					model.MinLength(4, "É obrigatório ter pelo menos 4 caracteres."),
					model.MaxLength(50, "Não é permitido mais que 50 caracteres."),
					model.EqualTo("firstPassword", "As senhas não são iguais!"),
				},
			},
			optional("nome", "Nome", "Seu nome", 2, 75),
			optional("telefone", "Telefone", "Informe seu telefone com DDD", 6, 20),
			optional("tipo", "Tipo", "Tipo de pessoa Ex: ONG, Pessoa física, etc", 2, 30),
			optional("pais", "País", "Seu País", 2, 35),
			optional("estado", "Estado", "Seu Estado", 2, 30),
			optional("cidade", "Cidade", "Sua cidade", 1, 30),
			optional("logradouro", "Logradouro", "Sua rua", 3, 50),
			optional("numero", "Número", "Infome o número de sua residência", 1, 6),
			optional("complemento", "Complemento", "Ex: Muro azul, apt 5", 2, 50),
		},
	}
}

// Service validates and submits registrations.
type Service struct {
	registrar Registrar
	notifier  store.Notifier
	logger    *zap.Logger
	langKey   string
	form      model.FormSpec
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier reports the success message through n.
func WithNotifier(n store.Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLangKey overrides the language key sent with requests.
func WithLangKey(key string) Option {
	return func(s *Service) {
		if key = strings.TrimSpace(key); key != "" {
			s.langKey = key
		}
	}
}

// NewService constructs a registration service.
func NewService(registrar Registrar, opts ...Option) *Service {
	s := &Service{
		registrar: registrar,
		logger:    zap.NewNop(),
		langKey:   "en",
		form:      Form(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Form exposes the registration form description.
func (s *Service) Form() model.FormSpec {
	return s.form
}

// Validate checks the draft values.
func (s *Service) Validate(values map[string]any) validation.Errors {
	return validation.Validate(s.form, values)
}

// Register validates values and submits them. Validation failures never
// reach the registrar.
func (s *Service) Register(ctx context.Context, values map[string]any) error {
	if errs := s.Validate(values); errs != nil {
		return &ValidationError{Fields: errs}
	}

	text := func(name string) string {
		v, _ := values[name].(string)
		return strings.TrimSpace(v)
	}
	req := Request{
		Login:    text("username"),
		Email:    text("email"),
		Password: fmt.Sprint(values["firstPassword"]),
		LangKey:  s.langKey,
	}

	if err := s.registrar.Register(ctx, req); err != nil {
		s.logger.Warn("registration failed", zap.String("login", req.Login), zap.Error(err))
		if s.notifier != nil {
			s.notifier.Failure(err.Error())
		}
		return fmt.Errorf("account: register: %w", err)
	}

	s.logger.Info("registration accepted", zap.String("login", req.Login))
	if s.notifier != nil {
		s.notifier.Success(DefaultSuccessMessage)
	}
	return nil
}
