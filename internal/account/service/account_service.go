package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/IslamMhareeq/sha-256/config"
	"github.com/IslamMhareeq/sha-256/internal/account/domain"
	"github.com/IslamMhareeq/sha-256/internal/account/dto"
	autherror "github.com/IslamMhareeq/sha-256/internal/errors"
	"github.com/IslamMhareeq/sha-256/internal/logging"
	"github.com/go-playground/validator/v10"
)

const (
	MsgRegistered     = "Registered successfully."
	MsgResetRequested = "If that account exists, you’ll receive a reset link shortly."
	MsgPasswordReset  = "Password has been reset."

	DefaultTokenType = "Bearer"
)

// Recorder receives one event per finished operation. The metrics package
// provides the Prometheus implementation.
type Recorder interface {
	Record(operation, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) Record(string, string) {}

type Option func(*AccountService)

func WithLogger(l *slog.Logger) Option {
	return func(s *AccountService) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *AccountService) {
		if r != nil {
			s.recorder = r
		}
	}
}

type AccountService struct {
	repo         domain.AccountRepository
	tokenService TokenGenerator
	hasher       PasswordHasher
	cfg          *config.Config
	validate     *validator.Validate
	logger       *slog.Logger
	recorder     Recorder

	// dummyHash is verified against when the username is unknown so both
	// failure paths of Login cost one hash comparison.
	dummyOnce sync.Once
	dummyHash string
}

func NewAccountService(repo domain.AccountRepository, tokenService TokenGenerator, hasher PasswordHasher, cfg *config.Config, opts ...Option) *AccountService {
	if cfg == nil {
		cfg = &config.Config{}
	}

	s := &AccountService{
		repo:         repo,
		tokenService: tokenService,
		hasher:       hasher,
		cfg:          cfg,
		validate:     newValidator(),
		logger:       logging.Discard(),
		recorder:     noopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AccountService) Register(ctx context.Context, input dto.RegisterInput) (*dto.MessageResponse, error) {
	if err := validateInput(s.validate, input); err != nil {
		s.recorder.Record("register", "invalid")
		return nil, err
	}

	role := domain.Role(input.Role)
	if role == "" {
		role = domain.RoleUser
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.recorder.Record("register", outcomeFor(err))
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		Username:     input.Username,
		PasswordHash: hash,
		Role:         role,
		Profile: domain.Profile{
			FirstName:        input.FirstName,
			LastName:         input.LastName,
			IDNumber:         input.IDNumber,
			CreditCardNumber: input.CreditCardNumber,
			ValidDate:        input.ValidDate,
			CVC:              input.CVC,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, account); err != nil {
		s.recorder.Record("register", outcomeFor(err))
		if errors.Is(err, autherror.ErrUsernameTaken) {
			return nil, autherror.ErrUsernameTaken
		}
		s.logger.ErrorContext(ctx, "create account failed", "username", input.Username, "error", err)
		return nil, err
	}

	s.recorder.Record("register", "success")
	s.logger.InfoContext(ctx, "account registered", "username", account.Username, "role", account.Role)
	return &dto.MessageResponse{Message: MsgRegistered}, nil
}

func (s *AccountService) Login(ctx context.Context, input dto.LoginInput) (*dto.LoginResponse, error) {
	if input.Username == "" || input.Password == "" {
		s.recorder.Record("login", "invalid")
		return nil, autherror.ErrInvalidCredentials
	}

	account, err := s.repo.GetByUsername(ctx, input.Username)
	if err != nil {
		s.recorder.Record("login", "error")
		s.logger.ErrorContext(ctx, "lookup account failed", "error", err)
		return nil, err
	}

	if account == nil {
		_, _ = s.hasher.Verify(input.Password, s.placeholderHash())
		s.recorder.Record("login", "unauthorized")
		return nil, autherror.ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(input.Password, account.PasswordHash)
	if err != nil {
		s.logger.ErrorContext(ctx, "stored password hash unreadable", "username", account.Username, "error", err)
	}
	if !ok {
		s.recorder.Record("login", "unauthorized")
		return nil, autherror.ErrInvalidCredentials
	}

	token, _, err := s.tokenService.IssueSession(account.Username, account.Role)
	if err != nil {
		s.recorder.Record("login", "error")
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	s.recorder.Record("login", "success")
	return &dto.LoginResponse{
		Token:     token,
		TokenType: DefaultTokenType,
		ExpiresIn: int(s.tokenService.GetSessionTokenExpiry().Seconds()),
	}, nil
}

// ForgotPassword answers with the same message whether or not the account
// exists. Only an existing account gets a reset link.
func (s *AccountService) ForgotPassword(ctx context.Context, input dto.ForgotPasswordInput) (*dto.ForgotPasswordResponse, error) {
	if err := validateInput(s.validate, input); err != nil {
		s.recorder.Record("forgot_password", "invalid")
		return nil, err
	}

	resp := &dto.ForgotPasswordResponse{Message: MsgResetRequested}

	account, err := s.repo.GetByUsername(ctx, input.Username)
	if err != nil {
		s.recorder.Record("forgot_password", "error")
		s.logger.ErrorContext(ctx, "lookup account failed", "error", err)
		return nil, err
	}
	if account == nil {
		s.recorder.Record("forgot_password", "success")
		return resp, nil
	}

	token, expiresAt, err := s.tokenService.IssueReset(account.Username)
	if err != nil {
		s.recorder.Record("forgot_password", "error")
		return nil, fmt.Errorf("issue reset token: %w", err)
	}

	link, err := buildResetLink(s.resetLinkBase(), token)
	if err != nil {
		s.recorder.Record("forgot_password", "error")
		return nil, err
	}
	resp.ResetLink = &link

	s.recorder.Record("forgot_password", "success")
	s.logger.DebugContext(ctx, "reset link issued", "username", account.Username, "expires_at", expiresAt, "link", link)
	return resp, nil
}

func (s *AccountService) ResetPassword(ctx context.Context, input dto.ResetPasswordInput) (*dto.MessageResponse, error) {
	if input.Token == "" {
		s.recorder.Record("reset_password", "invalid_token")
		return nil, autherror.ErrInvalidResetToken
	}

	claims, err := s.tokenService.VerifyReset(input.Token)
	if err != nil {
		s.recorder.Record("reset_password", "invalid_token")
		s.logger.DebugContext(ctx, "reset token rejected", "reason", err)
		return nil, autherror.ErrInvalidResetToken
	}

	if err := validateInput(s.validate, input); err != nil {
		s.recorder.Record("reset_password", "invalid")
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.recorder.Record("reset_password", outcomeFor(err))
		return nil, err
	}

	if err := s.repo.UpdatePassword(ctx, claims.Username, hash); err != nil {
		if errors.Is(err, autherror.ErrAccountNotFound) {
			s.recorder.Record("reset_password", "invalid_token")
			return nil, autherror.ErrInvalidResetToken
		}
		s.recorder.Record("reset_password", "error")
		s.logger.ErrorContext(ctx, "update password failed", "username", claims.Username, "error", err)
		return nil, err
	}

	s.recorder.Record("reset_password", "success")
	s.logger.InfoContext(ctx, "password reset", "username", claims.Username)
	return &dto.MessageResponse{Message: MsgPasswordReset}, nil
}

// ListAccounts returns every account to an admin caller. Unless
// ListExposeSensitive is set the password hash and CVC are dropped and the
// card number is masked.
func (s *AccountService) ListAccounts(ctx context.Context, callerRole domain.Role) ([]dto.AccountOutput, error) {
	if callerRole != domain.RoleAdmin {
		s.recorder.Record("list_accounts", "forbidden")
		return nil, autherror.ErrForbidden
	}

	accounts, err := s.repo.ListAll(ctx)
	if err != nil {
		s.recorder.Record("list_accounts", "error")
		s.logger.ErrorContext(ctx, "list accounts failed", "error", err)
		return nil, err
	}

	out := make([]dto.AccountOutput, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, s.toOutput(a))
	}

	s.recorder.Record("list_accounts", "success")
	return out, nil
}

func (s *AccountService) toOutput(a domain.Account) dto.AccountOutput {
	o := dto.AccountOutput{
		Username:  a.Username,
		Role:      string(a.Role),
		FirstName: a.Profile.FirstName,
		LastName:  a.Profile.LastName,
		IDNumber:  a.Profile.IDNumber,
		ValidDate: a.Profile.ValidDate,
		CreatedAt: a.CreatedAt,
	}

	if s.cfg.ListExposeSensitive {
		o.CreditCardNumber = a.Profile.CreditCardNumber
		o.CVC = a.Profile.CVC
		o.PasswordHash = a.PasswordHash
		return o
	}

	o.CreditCardNumber = MaskCardNumber(a.Profile.CreditCardNumber)
	return o
}

// MaskCardNumber keeps only the last four digits of a card number.
func MaskCardNumber(card string) string {
	if card == "" {
		return ""
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, card)
	if len(digits) < 4 {
		return "****"
	}
	return "**** **** **** " + digits[len(digits)-4:]
}

func (s *AccountService) resetLinkBase() string {
	if s.cfg.ResetLinkBaseURL != "" {
		return s.cfg.ResetLinkBaseURL
	}
	return config.DefaultResetLinkBaseURL
}

func buildResetLink(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid reset link base %q: %w", base, err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *AccountService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		buf := make([]byte, 16)
		_, _ = rand.Read(buf)
		h, err := s.hasher.Hash(hex.EncodeToString(buf))
		if err != nil {
			h = Digest(hex.EncodeToString(buf))
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, autherror.ErrValidation):
		return "invalid"
	case errors.Is(err, autherror.ErrUsernameTaken):
		return "conflict"
	default:
		return "error"
	}
}
