package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/go-playground/validator"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/rbroggi/studyhub/internal/core/access"
	"github.com/rbroggi/studyhub/internal/core/model"
	"github.com/rbroggi/studyhub/internal/core/ports"
	"github.com/rbroggi/studyhub/internal/core/token"
)

// AccountServiceArgs contain the mandatory arguments for the AccountService.
type AccountServiceArgs struct {
	// Accounts is the account repository.
	Accounts ports.AccountRepository

	// Tags is the shared tag reference-data repository.
	Tags ports.TagRepository

	// Zones is the shared zone reference-data repository.
	Zones ports.ZoneRepository

	// Issuer issues and validates verification/login tokens.
	Issuer *token.Issuer

	// Sessions issues session tokens once an actor authenticates.
	Sessions *access.Coordinator

	// Mail is the outbound mail queue.
	Mail ports.MailSender

	// BaseURL is the public base URL embedded in mailed links.
	BaseURL string
}

// AccountServiceOptArgs are the optional arguments for building an AccountService.
type AccountServiceOptArgs = func(*AccountService)

// WithAccountNowFunc can be used to override the nowFunc. Useful for testing.
func WithAccountNowFunc(nowFunc func() time.Time) AccountServiceOptArgs {
	return func(s *AccountService) {
		s.nowFunc = nowFunc
	}
}

// NewAccountService creates a new AccountService.
func NewAccountService(args AccountServiceArgs, optArgs ...AccountServiceOptArgs) *AccountService {
	s := &AccountService{
		accounts: args.Accounts,
		tags:     args.Tags,
		zones:    args.Zones,
		issuer:   args.Issuer,
		sessions: args.Sessions,
		mail:     args.Mail,
		baseURL:  args.BaseURL,
		validate: newValidate(),
		locks:    newKeyedMutex(),
		nowFunc:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range optArgs {
		opt(s)
	}
	return s
}

// AccountService gathers the account lifecycle: sign-up with email verification,
// passwordless login links and the settings operations.
type AccountService struct {
	accounts ports.AccountRepository
	tags     ports.TagRepository
	zones    ports.ZoneRepository
	issuer   *token.Issuer
	sessions *access.Coordinator
	mail     ports.MailSender
	baseURL  string
	validate *validator.Validate
	locks    *keyedMutex
	nowFunc  func() time.Time
}

// SignUp creates an unverified account, issues its first verification token and mails
// the verification link. A failure to enqueue the mail does not roll back the created
// account: the response carries the account and the error wraps
// model.ErrNotificationFailed.
func (s *AccountService) SignUp(ctx context.Context, args model.SignUpArgs) (*model.SignUpResponse, error) {
	if err := validateStruct(s.validate, args); err != nil {
		return nil, err
	}
	if err := s.checkEmailFree(ctx, args.Email); err != nil {
		return nil, err
	}
	if err := s.checkNicknameFree(ctx, args.Nickname); err != nil {
		return nil, err
	}

	hash, err := argon2id.CreateHash(args.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("error creating password hash: %w", err)
	}

	account := &model.Account{
		ID:           uuid.New(),
		Email:        args.Email,
		Nickname:     args.Nickname,
		PasswordHash: hash,
		// web notifications default to on, mail ones stay opt-in
		StudyCreatedByWeb:          true,
		StudyEnrollmentResultByWeb: true,
		StudyUpdatedByWeb:          true,
	}
	tok, err := s.issuer.Issue(account)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.SaveAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("error saving account in repository: %w", err)
	}

	resp := &model.SignUpResponse{Account: *account}
	if err := s.mail.Send(ctx, s.verificationMail(account, tok)); err != nil {
		log.WithError(err).WithField("email", account.Email).Error("could not enqueue sign-up verification mail")
		return resp, fmt.Errorf("%w: %v", model.ErrNotificationFailed, err)
	}
	return resp, nil
}

// CompleteVerification verifies the account behind the mailed link and authenticates it.
// A wrong token fails with model.ErrTokenMismatch; verifying an already-verified account
// fails with model.ErrInvalidStateTransition.
func (s *AccountService) CompleteVerification(ctx context.Context, args model.CompleteVerificationArgs) (*model.CompleteVerificationResponse, error) {
	if err := validateStruct(s.validate, args); err != nil {
		return nil, err
	}

	unlock := s.locks.lock("account:" + args.Email)
	defer unlock()

	account, err := s.accounts.GetAccountByEmail(ctx, args.Email)
	if err != nil {
		return nil, err
	}
	if !s.issuer.Validate(account, args.Token) {
		return nil, model.ErrTokenMismatch
	}
	if err := account.CompleteVerification(s.nowFunc()); err != nil {
		return nil, err
	}
	if err := s.accounts.UpdateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("error updating account: %w", err)
	}

	session, err := s.sessions.IssueSession(account)
	if err != nil {
		return nil, err
	}
	return &model.CompleteVerificationResponse{Account: *account, SessionToken: session}, nil
}

// ResendVerification reissues the account token and mails a fresh verification link.
// Rejected with model.ErrCooldownActive within one hour of the previous issuance and
// with model.ErrInvalidStateTransition once the account is verified.
func (s *AccountService) ResendVerification(ctx context.Context, email string) error {
	unlock := s.locks.lock("account:" + email)
	defer unlock()

	account, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		return err
	}
	if account.EmailVerified {
		return model.ErrInvalidStateTransition
	}
	if !s.issuer.CanIssue(account) {
		return model.ErrCooldownActive
	}
	tok, err := s.issuer.Issue(account)
	if err != nil {
		return err
	}
	if err := s.accounts.UpdateAccount(ctx, account); err != nil {
		return fmt.Errorf("error updating account: %w", err)
	}

	if err := s.mail.Send(ctx, s.verificationMail(account, tok)); err != nil {
		log.WithError(err).WithField("email", account.Email).Error("could not enqueue verification mail")
		return fmt.Errorf("%w: %v", model.ErrNotificationFailed, err)
	}
	return nil
}

// RequestLoginLink reissues the account token and mails a login link. Rejected with
// model.ErrCooldownActive within one hour of the previous issuance. Reissuing
// invalidates any previously mailed link.
func (s *AccountService) RequestLoginLink(ctx context.Context, email string) error {
	unlock := s.locks.lock("account:" + email)
	defer unlock()

	account, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !s.issuer.CanIssue(account) {
		return model.ErrCooldownActive
	}
	tok, err := s.issuer.Issue(account)
	if err != nil {
		return err
	}
	if err := s.accounts.UpdateAccount(ctx, account); err != nil {
		return fmt.Errorf("error updating account: %w", err)
	}

	if err := s.mail.Send(ctx, s.loginLinkMail(account, tok)); err != nil {
		log.WithError(err).WithField("email", account.Email).Error("could not enqueue login-link mail")
		return fmt.Errorf("%w: %v", model.ErrNotificationFailed, err)
	}
	return nil
}

// ConsumeLoginLink authenticates the account behind a mailed login link. Unlike
// CompleteVerification it neither requires the unverified state nor stamps JoinedAt.
func (s *AccountService) ConsumeLoginLink(ctx context.Context, args model.ConsumeLoginLinkArgs) (*model.ConsumeLoginLinkResponse, error) {
	if err := validateStruct(s.validate, args); err != nil {
		return nil, err
	}

	unlock := s.locks.lock("account:" + args.Email)
	defer unlock()

	account, err := s.accounts.GetAccountByEmail(ctx, args.Email)
	if err != nil {
		return nil, err
	}
	if !s.issuer.Validate(account, args.Token) {
		return nil, model.ErrTokenMismatch
	}

	session, err := s.sessions.IssueSession(account)
	if err != nil {
		return nil, err
	}
	return &model.ConsumeLoginLinkResponse{Account: *account, SessionToken: session}, nil
}

// GetAccount returns the account with the given nickname.
func (s *AccountService) GetAccount(ctx context.Context, nickname string) (*model.Account, error) {
	return s.accounts.GetAccountByNickname(ctx, nickname)
}

// UpdateProfile updates the profile fields of the acting account.
func (s *AccountService) UpdateProfile(ctx context.Context, actor *model.Account, args model.UpdateProfileArgs) error {
	if err := validateStruct(s.validate, args); err != nil {
		return err
	}
	return s.mutateAccount(ctx, actor, func(account *model.Account) error {
		account.Bio = args.Bio
		account.URL = args.URL
		account.Occupation = args.Occupation
		account.Location = args.Location
		return nil
	})
}

// UpdatePassword re-hashes and stores a new password for the acting account.
func (s *AccountService) UpdatePassword(ctx context.Context, actor *model.Account, args model.UpdatePasswordArgs) error {
	if err := validateStruct(s.validate, args); err != nil {
		return err
	}
	hash, err := argon2id.CreateHash(args.Password, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("error creating password hash: %w", err)
	}
	return s.mutateAccount(ctx, actor, func(account *model.Account) error {
		account.PasswordHash = hash
		return nil
	})
}

// UpdateNotifications stores the per-event-type channel flags of the acting account.
func (s *AccountService) UpdateNotifications(ctx context.Context, actor *model.Account, args model.UpdateNotificationsArgs) error {
	return s.mutateAccount(ctx, actor, func(account *model.Account) error {
		account.StudyCreatedByEmail = args.StudyCreatedByEmail
		account.StudyCreatedByWeb = args.StudyCreatedByWeb
		account.StudyEnrollmentResultByEmail = args.StudyEnrollmentResultByEmail
		account.StudyEnrollmentResultByWeb = args.StudyEnrollmentResultByWeb
		account.StudyUpdatedByEmail = args.StudyUpdatedByEmail
		account.StudyUpdatedByWeb = args.StudyUpdatedByWeb
		return nil
	})
}

// UpdateNickname renames the acting account after checking the nickname is free.
func (s *AccountService) UpdateNickname(ctx context.Context, actor *model.Account, args model.UpdateNicknameArgs) error {
	if err := validateStruct(s.validate, args); err != nil {
		return err
	}
	if err := s.checkNicknameFree(ctx, args.Nickname); err != nil {
		return err
	}
	return s.mutateAccount(ctx, actor, func(account *model.Account) error {
		account.Nickname = args.Nickname
		return nil
	})
}

// AddTag registers interest in a topic, lazily creating the shared tag.
func (s *AccountService) AddTag(ctx context.Context, actor *model.Account, title string) (*model.Tag, error) {
	if actor == nil {
		return nil, model.ErrAccessDenied
	}
	tag, err := s.tags.FindOrCreateTag(ctx, title)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.AddAccountTag(ctx, actor.ID, tag.ID); err != nil {
		return nil, fmt.Errorf("error linking tag to account: %w", err)
	}
	return tag, nil
}

// RemoveTag drops interest in a topic.
func (s *AccountService) RemoveTag(ctx context.Context, actor *model.Account, title string) error {
	if actor == nil {
		return model.ErrAccessDenied
	}
	tag, err := s.tags.FindOrCreateTag(ctx, title)
	if err != nil {
		return err
	}
	return s.accounts.RemoveAccountTag(ctx, actor.ID, tag.ID)
}

// AddZone registers interest in a region. Unknown zones fail with model.ErrNotFound
// since zones are seeded reference data, never created by user flows.
func (s *AccountService) AddZone(ctx context.Context, actor *model.Account, city, province string) (*model.Zone, error) {
	if actor == nil {
		return nil, model.ErrAccessDenied
	}
	zone, err := s.zones.GetZone(ctx, city, province)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.AddAccountZone(ctx, actor.ID, zone.ID); err != nil {
		return nil, fmt.Errorf("error linking zone to account: %w", err)
	}
	return zone, nil
}

// RemoveZone drops interest in a region.
func (s *AccountService) RemoveZone(ctx context.Context, actor *model.Account, city, province string) error {
	if actor == nil {
		return model.ErrAccessDenied
	}
	zone, err := s.zones.GetZone(ctx, city, province)
	if err != nil {
		return err
	}
	return s.accounts.RemoveAccountZone(ctx, actor.ID, zone.ID)
}

// mutateAccount runs the load-mutate-save cycle for the acting account under its lock.
func (s *AccountService) mutateAccount(ctx context.Context, actor *model.Account, mutate func(*model.Account) error) error {
	if actor == nil {
		return model.ErrAccessDenied
	}

	unlock := s.locks.lock("account:" + actor.Email)
	defer unlock()

	account, err := s.accounts.GetAccountByID(ctx, actor.ID)
	if err != nil {
		return err
	}
	if err := mutate(account); err != nil {
		return err
	}
	if err := s.accounts.UpdateAccount(ctx, account); err != nil {
		return fmt.Errorf("error updating account: %w", err)
	}
	*actor = *account
	return nil
}

func (s *AccountService) checkEmailFree(ctx context.Context, email string) error {
	_, err := s.accounts.GetAccountByEmail(ctx, email)
	if err == nil {
		return model.Invalid("email", "already in use")
	}
	if !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("error checking email uniqueness: %w", err)
	}
	return nil
}

func (s *AccountService) checkNicknameFree(ctx context.Context, nickname string) error {
	_, err := s.accounts.GetAccountByNickname(ctx, nickname)
	if err == nil {
		return model.Invalid("nickname", "already in use")
	}
	if !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("error checking nickname uniqueness: %w", err)
	}
	return nil
}

func (s *AccountService) verificationMail(account *model.Account, tok string) model.MailMessage {
	link := fmt.Sprintf("%s/check-email-token?token=%s&email=%s", s.baseURL, tok, url.QueryEscape(account.Email))
	return model.MailMessage{
		To:      account.Email,
		Subject: "studyhub, verify your email",
		Body: fmt.Sprintf("Hello %s,\n\nFollow the link to verify your email and finish signing up:\n%s\n",
			account.Nickname, link),
	}
}

func (s *AccountService) loginLinkMail(account *model.Account, tok string) model.MailMessage {
	link := fmt.Sprintf("%s/login-by-email?token=%s&email=%s", s.baseURL, tok, url.QueryEscape(account.Email))
	return model.MailMessage{
		To:      account.Email,
		Subject: "studyhub login link",
		Body: fmt.Sprintf("Hello %s,\n\nFollow the link to log into studyhub:\n%s\n",
			account.Nickname, link),
	}
}
