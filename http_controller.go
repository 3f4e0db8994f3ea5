package accounts

import (
	stderrors "errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"

	"github.com/goliatone/go-accounts/social"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Patch(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPConfig configures the HTTP controller.
type HTTPConfig struct {
	Debug bool

	// ClaimsContextKey is the locals key the session guard stores the
	// validated claims under (default: "accounts:claims")
	ClaimsContextKey string
}

// HTTPController exposes the account operations as a JSON API.
type HTTPController struct {
	service *Service
	config  HTTPConfig
	logger  Logger
}

// NewHTTPController creates a new account HTTP controller.
func NewHTTPController(service *Service, cfg HTTPConfig) *HTTPController {
	if cfg.ClaimsContextKey == "" {
		cfg.ClaimsContextKey = "accounts:claims"
	}

	return &HTTPController{
		service: service,
		config:  cfg,
		logger:  defLogger{},
	}
}

func (c *HTTPController) WithLogger(logger Logger) *HTTPController {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// RegisterRoutes registers the account routes.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar) {
	group.Post("/login", c.Login)
	group.Post("/admin/login", c.AdminLogin)
	group.Post("/social-login", c.SocialLogin)
	group.Post("/register", c.Register)
	group.Get("/confirm-email/:hash", c.ConfirmEmail)
	group.Post("/forgot-password", c.ForgotPassword)
	group.Post("/password-change/:hash", c.ResetPassword)
	group.Get("/me", c.Me, c.RequireSession)
	group.Patch("/me", c.UpdateProfile, c.RequireSession)
	group.Delete("/me", c.DeleteAccount, c.RequireSession)
}

// RequireSession validates the bearer token and stores the claims in the
// request locals for the handler.
func (c *HTTPController) RequireSession(next router.HandlerFunc) router.HandlerFunc {
	return func(ctx router.Context) error {
		token := bearerToken(ctx.Header("Authorization"))
		if token == "" {
			return ctx.JSON(fiber.StatusUnauthorized, map[string]string{
				"error": "authentication required",
			})
		}

		claims, err := c.service.TokenService().Validate(token)
		if err != nil {
			c.logger.Info("session token rejected", "error", err)
			return ctx.JSON(fiber.StatusUnauthorized, map[string]string{
				"error": "invalid session token",
			})
		}

		ctx.Locals(c.config.ClaimsContextKey, claims)
		ctx.SetContext(WithClaimsContext(ctx.Context(), claims))
		return next(ctx)
	}
}

// LoginRequestPayload is the password login payload
type LoginRequestPayload struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequestPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (c *HTTPController) Login(ctx router.Context) error {
	return c.login(ctx, false)
}

// AdminLogin is the admin login surface: the same credential check but only
// admin accounts are eligible.
func (c *HTTPController) AdminLogin(ctx router.Context) error {
	return c.login(ctx, true)
}

func (c *HTTPController) login(ctx router.Context, onlyAdmin bool) error {
	payload := new(LoginRequestPayload)

	if err := ctx.Bind(payload); err != nil {
		return c.bindError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.validationError(ctx, err)
	}

	if c.config.Debug {
		fmt.Println("======= ACCOUNTS LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=============================")
	}

	res, err := c.service.Login(ctx.Context(), payload.Email, payload.Password, onlyAdmin)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, res)
}

// SocialLoginPayload is the social login payload
type SocialLoginPayload struct {
	SocialType        string `form:"social_type" json:"social_type"`
	AccessToken       string `form:"access_token" json:"access_token"`
	AccessTokenSecret string `form:"access_token_secret" json:"access_token_secret"`
	IdentityToken     string `form:"identity_token" json:"identity_token"`
	FirstName         string `form:"first_name" json:"first_name"`
	LastName          string `form:"last_name" json:"last_name"`
}

// Validate will run validation rules. Provider tags are not enumerated here;
// the registry rejects unknown tags so new providers need no payload change.
func (r SocialLoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.SocialType,
			validation.Required,
		),
	)
}

func (c *HTTPController) SocialLogin(ctx router.Context) error {
	payload := new(SocialLoginPayload)

	if err := ctx.Bind(payload); err != nil {
		return c.bindError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.validationError(ctx, err)
	}

	res, err := c.service.SocialLogin(ctx.Context(), SocialLoginRequest{
		Type: payload.SocialType,
		Credentials: social.Credentials{
			AccessToken:       payload.AccessToken,
			AccessTokenSecret: payload.AccessTokenSecret,
			IdentityToken:     payload.IdentityToken,
		},
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
	})
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, res)
}

// RegistrationCreatePayload is the registration payload
type RegistrationCreatePayload struct {
	FirstName       string `form:"first_name" json:"first_name"`
	LastName        string `form:"last_name" json:"last_name"`
	Email           string `form:"email" json:"email"`
	Phone           string `form:"phone_number" json:"phone_number"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Phone, validation.By(ValidatePhoneNumber("US"))),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.Length(10, 100),
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (c *HTTPController) Register(ctx router.Context) error {
	payload := new(RegistrationCreatePayload)

	if err := ctx.Bind(payload); err != nil {
		return c.bindError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.validationError(ctx, err)
	}

	user, err := c.service.Register(ctx.Context(), RegisterUserMessage{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Password:  payload.Password,
	})
	if err != nil {
		c.logger.Error("register user: ", "error", err)
		return c.handleError(ctx, err)
	}

	return ctx.JSON(fiber.StatusCreated, user)
}

func (c *HTTPController) ConfirmEmail(ctx router.Context) error {
	hash := ctx.Param("hash", "")
	if hash == "" {
		return c.handleError(ctx, NewNotFound("hash"))
	}

	user, err := c.service.ConfirmEmail(ctx.Context(), hash)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, user)
}

// ForgotPasswordPayload holds the email to send the reset link to
type ForgotPasswordPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will validate the payload
func (r ForgotPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
	)
}

func (c *HTTPController) ForgotPassword(ctx router.Context) error {
	payload := new(ForgotPasswordPayload)

	if err := ctx.Bind(payload); err != nil {
		return c.bindError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.validationError(ctx, err)
	}

	if err := c.service.ForgotPassword(ctx.Context(), payload.Email); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(fiber.StatusAccepted, map[string]string{
		"status": "recovery email sent",
	})
}

// PasswordChangePayload holds the new password for a recovery ticket
type PasswordChangePayload struct {
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r PasswordChangePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(10, 100),
		),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.Length(10, 100),
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (c *HTTPController) ResetPassword(ctx router.Context) error {
	hash := ctx.Param("hash", "")
	payload := new(PasswordChangePayload)

	if err := ctx.Bind(payload); err != nil {
		return c.bindError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.validationError(ctx, err)
	}

	user, err := c.service.ResetPassword(ctx.Context(), hash, payload.Password)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, user)
}

func (c *HTTPController) Me(ctx router.Context) error {
	userID, err := c.sessionUserID(ctx)
	if err != nil {
		return c.handleError(ctx, err)
	}

	user, err := c.service.Me(ctx.Context(), userID)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, user)
}

// ProfileUpdatePayload is the self-service profile patch
type ProfileUpdatePayload struct {
	FirstName *string `form:"first_name" json:"first_name"`
	LastName  *string `form:"last_name" json:"last_name"`
	Email     *string `form:"email" json:"email"`
}

// Validate will validate the payload
func (r ProfileUpdatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.NilOrNotEmpty, is.Email),
	)
}

func (c *HTTPController) UpdateProfile(ctx router.Context) error {
	userID, err := c.sessionUserID(ctx)
	if err != nil {
		return c.handleError(ctx, err)
	}

	payload := new(ProfileUpdatePayload)

	if err := ctx.Bind(payload); err != nil {
		return c.bindError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return c.validationError(ctx, err)
	}

	user, err := c.service.UpdateProfile(ctx.Context(), userID, ProfileUpdate{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
	})
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, user)
}

func (c *HTTPController) DeleteAccount(ctx router.Context) error {
	userID, err := c.sessionUserID(ctx)
	if err != nil {
		return c.handleError(ctx, err)
	}

	if err := c.service.Delete(ctx.Context(), userID); err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]string{
		"status": "account deleted",
	})
}

func (c *HTTPController) sessionUserID(ctx router.Context) (uuid.UUID, error) {
	claims, ok := GetRouterClaims(ctx, c.config.ClaimsContextKey)
	if !ok || claims == nil {
		return uuid.Nil, errors.New("no session claims in request context", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized)
	}

	userID, err := uuid.Parse(claims.UserID())
	if err != nil {
		return uuid.Nil, errors.Wrap(err, errors.CategoryAuth, "session claims carry no valid user id").
			WithCode(errors.CodeUnauthorized)
	}

	return userID, nil
}

func (c *HTTPController) bindError(ctx router.Context, err error) error {
	c.logger.Error("failed to parse payload: ", "error", err)
	return ctx.JSON(fiber.StatusBadRequest, map[string]string{
		"error": "failed to parse request body",
	})
}

func (c *HTTPController) validationError(ctx router.Context, err error) error {
	return ctx.JSON(fiber.StatusUnprocessableEntity, map[string]any{
		"error":      "validation failed",
		"validation": FormatValidationErrorToMap(err),
	})
}

func (c *HTTPController) handleError(ctx router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := statusForError(richErr)
	if status >= fiber.StatusInternalServerError {
		c.logger.Error(
			"account operation failed",
			"error", richErr.Message,
			"category", richErr.Category,
			"details", print.MaybePrettyJSON(richErr.Metadata),
		)
	}

	body := map[string]any{
		"error": richErr.Message,
	}
	if richErr.TextCode != "" {
		body["text_code"] = richErr.TextCode
	}
	if field := FailureField(richErr); field != "" {
		body["field"] = field
	}

	return ctx.JSON(status, body)
}

func statusForError(err *errors.Error) int {
	switch err.Category {
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	case errors.CategoryValidation, errors.CategoryBadInput:
		return fiber.StatusBadRequest
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized
	case errors.CategoryAuthz:
		return fiber.StatusForbidden
	case errors.CategoryConflict:
		return fiber.StatusConflict
	case errors.CategoryExternal:
		return fiber.StatusBadGateway
	default:
		if err.Code > 0 {
			return err.Code
		}
		return fiber.StatusInternalServerError
	}
}

// FormatValidationErrorToMap flattens ozzo field errors into a field->message
// map for JSON responses.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}

	var verrs validation.Errors
	if stderrors.As(err, &verrs) {
		for field, ferr := range verrs {
			out[field] = ferr.Error()
		}
		return out
	}

	out["error"] = err.Error()
	return out
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return stderrors.New("values must match")
		}
		return nil
	}
}

// ValidatePhoneNumber checks the value parses as a dialable number for the
// region. Empty values pass, the field is optional.
func ValidatePhoneNumber(region string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}

		num, err := phonenumbers.Parse(s, region)
		if err != nil {
			return stderrors.New("must be a valid phone number")
		}
		if !phonenumbers.IsValidNumber(num) {
			return stderrors.New("must be a valid phone number")
		}
		return nil
	}
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
