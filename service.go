package accounts

import (
	"context"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-accounts/social"
)

// Service coordinates the repositories, the token issuer, the mailer, and
// the social provider adapters to implement every account operation.
type Service struct {
	repo         RepositoryManager
	tokenService TokenService
	mailer       Mailer
	providers    *social.Registry
	domain       string
	logger       Logger
}

// NewService returns a new account Service
func NewService(repo RepositoryManager, providers *social.Registry, opts Config) *Service {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Service{
		repo:         repo,
		providers:    providers,
		tokenService: tokenService,
		domain:       opts.GetDomain(),
		mailer:       devMailer{logger: defLogger{}},
		logger:       defLogger{},
	}
}

func (s *Service) WithLogger(logger Logger) *Service {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithMailer configures the transactional mail sender.
func (s *Service) WithMailer(mailer Mailer) *Service {
	if mailer != nil {
		s.mailer = mailer
	}
	return s
}

// WithTokenService overrides the session token issuer.
func (s *Service) WithTokenService(ts TokenService) *Service {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Service
func (s *Service) TokenService() TokenService {
	return s.tokenService
}

// LoginResult carries a signed session token together with the account it
// was issued for.
type LoginResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Login verifies a password credential. onlyAdmin selects the admin login
// surface: only admin-role accounts are eligible; otherwise only user-role
// accounts are.
func (s *Service) Login(ctx context.Context, email, password string, onlyAdmin bool) (*LoginResult, error) {
	role := RoleUser
	if onlyAdmin {
		role = RoleAdmin
	}

	user, err := s.repo.Users().GetByEmail(ctx, email, role)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, NewNotFound("email")
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during login")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to compare password hash")
	}

	token, err := s.tokenService.Generate(NewIdentityFromUser(user))
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, User: user}, nil
}

// SocialLoginRequest carries the provider tag, the provider credentials, and
// fallback names used when the provider profile omits them.
type SocialLoginRequest struct {
	Type        string             `json:"social_type"`
	Credentials social.Credentials `json:"credentials"`
	FirstName   string             `json:"first_name,omitempty"`
	LastName    string             `json:"last_name,omitempty"`
}

// SocialLogin resolves a provider profile to an account, linking or creating
// as needed, and issues a session token.
//
// Resolution order: the exact (provider, social id) identity wins over an
// email match, because the provider identity is stable while the
// provider-registered email may drift. Email matching is the fallback that
// keeps a returning user from ending up with duplicate accounts.
func (s *Service) SocialLogin(ctx context.Context, req SocialLoginRequest) (*LoginResult, error) {
	provider, err := s.providers.Resolve(req.Type)
	if err != nil {
		return nil, err
	}

	profile, err := provider.ProfileByToken(ctx, req.Credentials)
	if err != nil {
		if perr, ok := social.AsProviderError(err); ok {
			return nil, social.WrapProviderError(social.ErrTokenExchangeFailed, perr)
		}
		return nil, err
	}

	var byEmail *User
	if profile.Email != "" {
		byEmail, err = s.repo.Users().GetByEmail(ctx, profile.Email)
		if err != nil && !errors.IsNotFound(err) {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up account by profile email")
		}
	}

	byIdentity, err := s.repo.Users().GetBySocial(ctx, req.Type, profile.ID)
	if err != nil && !errors.IsNotFound(err) {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up account by social identity")
	}

	var user *User
	switch {
	case byIdentity != nil:
		user = byIdentity
		// Backfill the email from the profile only when no independent
		// account already owns it; on the email-matched branch below no
		// mutation is needed since the account's email already matches.
		if profile.Email != "" && byEmail == nil {
			user.Email = NormalizeEmail(profile.Email)
			if user, err = s.updateUser(ctx, user); err != nil {
				return nil, err
			}
		}
	case byEmail != nil:
		user = byEmail
	default:
		first, last := profile.SplitName()
		if first == "" {
			first = req.FirstName
		}
		if last == "" {
			last = req.LastName
		}

		created, err := s.repo.Users().Create(ctx, &User{
			Role:      RoleUser,
			Status:    UserStatusActive,
			Email:     NormalizeEmail(profile.Email),
			FirstName: first,
			LastName:  last,
			Provider:  req.Type,
			SocialID:  profile.ID,
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryConflict, "could not create account from social profile")
		}

		// re-read so the caller sees the persisted record, generated
		// timestamps included
		if user, err = s.repo.Users().GetByID(ctx, created.ID.String()); err != nil {
			return nil, err
		}
	}

	token, err := s.tokenService.Generate(NewIdentityFromUser(user))
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, User: user}, nil
}

// RegisterUserMessage holds the registration fields
type RegisterUserMessage struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	UseHashid bool   `json:"-"`
}

// Register creates an inactive account with a pending confirmation hash and
// sends the activation mail. No session token is issued; the caller confirms
// the email and logs in separately. A duplicate email surfaces as the storage
// layer's uniqueness violation.
func (s *Service) Register(ctx context.Context, msg RegisterUserMessage) (*User, error) {
	confirmation, err := NewOpaqueHash()
	if err != nil {
		return nil, err
	}

	passwordHash, err := HashPassword(msg.Password)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return nil, errors.Wrap(richErr, errors.CategoryValidation, "invalid password provided")
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		Role:             RoleUser,
		Status:           UserStatusInactive,
		Email:            NormalizeEmail(msg.Email),
		Phone:            msg.Phone,
		FirstName:        msg.FirstName,
		LastName:         msg.LastName,
		PasswordHash:     passwordHash,
		Provider:         ProviderEmail,
		ConfirmationHash: confirmation,
	}

	if msg.UseHashid {
		if id, err := hashid.NewUUID(user.Email); err == nil {
			user.ID = id
		}
	}

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = s.repo.Users().CreateTx(ctx, tx, user)
		if err != nil {
			return errors.Wrap(err, errors.CategoryConflict, "could not create user")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// NOTE: a mail failure here leaves the inactive account behind with no
	// compensating rollback; losing the row would be worse than asking the
	// caller to retry delivery.
	if err := s.mailer.Send(ctx, MailMessage{
		To:       user.Email,
		Subject:  "Confirm your account",
		Template: TemplateActivation,
		Context: map[string]any{
			"url": s.buildLink("confirm-email", confirmation),
		},
	}); err != nil {
		return nil, errors.Wrap(err, errors.CategoryExternal, "failed to send activation email")
	}

	return user, nil
}

// ConfirmEmail activates the account owning the confirmation hash. The hash
// is cleared on success, so resubmitting a used hash fails with NotFound;
// confirmation is single use by construction.
func (s *Service) ConfirmEmail(ctx context.Context, hash string) (*User, error) {
	user, err := s.repo.Users().GetByConfirmationHash(ctx, hash)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, NewNotFound("hash")
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user for confirmation")
	}

	user.ConfirmationHash = ""
	user.Status = UserStatusActive

	return s.updateUser(ctx, user)
}

// ForgotPassword creates a password recovery ticket and mails the reset
// link. Prior outstanding tickets stay valid; each grants one reset.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return NewNotFound("email")
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user for password recovery")
	}

	hash, err := NewOpaqueHash()
	if err != nil {
		return err
	}

	recovery := &PasswordRecovery{
		Hash:   hash,
		UserID: &user.ID,
	}
	if recovery.ID == uuid.Nil {
		recovery.ID = uuid.New()
	}

	if _, err := s.repo.PasswordRecoveries().Create(ctx, recovery); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to create password recovery record")
	}

	if err := s.mailer.Send(ctx, MailMessage{
		To:       user.Email,
		Subject:  "Reset your password",
		Template: TemplateResetPassword,
		Context: map[string]any{
			"url": s.buildLink("password-change", hash),
		},
	}); err != nil {
		return errors.Wrap(err, errors.CategoryExternal, "failed to send reset password email")
	}

	return nil
}

// ResetPassword consumes the recovery ticket and sets the new password. The
// consume is a conditional soft delete, so the ticket grants exactly one
// reset even under concurrent submissions.
func (s *Service) ResetPassword(ctx context.Context, hash, newPassword string) (*User, error) {
	passwordHash, err := HashPassword(newPassword)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid new password provided")
	}

	var userID uuid.UUID

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		recovery, err := s.repo.PasswordRecoveries().ConsumeTx(ctx, tx, hash)
		if err != nil {
			if errors.IsNotFound(err) {
				return NewNotFound("hash")
			}
			return errors.Wrap(err, errors.CategoryInternal, "could not retrieve password recovery record")
		}

		if recovery.UserID == nil {
			return errors.New("password recovery record is not associated with a user", errors.CategoryInternal)
		}
		userID = *recovery.UserID

		if err := s.repo.Users().ResetPasswordTx(ctx, tx, userID, passwordHash); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to update user password")
		}

		return nil
	})
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to finalize password reset")
	}

	return s.repo.Users().GetByID(ctx, userID.String())
}

// Me re-fetches the caller's own account so the caller never acts on a stale
// copy of the record.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*User, error) {
	user, err := s.repo.Users().GetByID(ctx, userID.String())
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	return user, nil
}

// ProfileUpdate is the self-service patch; nil fields are left untouched.
// Field-level authorization happens upstream, the patch is trusted to carry
// only caller-editable fields.
type ProfileUpdate struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
}

// UpdateProfile merges the patch onto the caller's account and returns the
// refreshed record.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, patch ProfileUpdate) (*User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.Email != nil {
		user.Email = NormalizeEmail(*patch.Email)
	}

	if _, err := s.updateUser(ctx, user); err != nil {
		return nil, err
	}

	return s.repo.Users().GetByID(ctx, userID.String())
}

// Delete soft-deletes the caller's own account; the record stays for audit
// but is excluded from every active lookup.
func (s *Service) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.Users().SoftDelete(ctx, userID); err != nil {
		if errors.IsNotFound(err) {
			return ErrIdentityNotFound
		}
		return err
	}
	return nil
}

func (s *Service) updateUser(ctx context.Context, user *User) (*User, error) {
	updated, err := s.repo.Users().Update(ctx, user, repository.UpdateByID(user.ID.String()))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to persist user record")
	}
	return updated, nil
}

func (s *Service) buildLink(path, hash string) string {
	return strings.TrimRight(s.domain, "/") + "/" + path + "/" + hash
}
