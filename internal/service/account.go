package service

import (
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lumeo-dev/lumeo/internal/apperr"
	"github.com/lumeo-dev/lumeo/internal/config"
	"github.com/lumeo-dev/lumeo/internal/domain"
	"github.com/lumeo-dev/lumeo/internal/events"
	"github.com/lumeo-dev/lumeo/internal/logger"
	"github.com/lumeo-dev/lumeo/internal/notification"
	"golang.org/x/crypto/bcrypt"
)

type AccountService interface {
	Register(handle domain.Handle, email domain.Email, password domain.Password, role domain.Role) (domain.Account, error)
	Activate(tokenValue string) (domain.Account, error)
	Login(email domain.Email, password domain.Password) (string, error)

	RequestEmailChange(accountId domain.AccountId, newEmail domain.Email) error
	ConfirmEmailChange(tokenValue string) (domain.Account, error)

	ChangePassword(accountId domain.AccountId, oldPassword, newPassword domain.Password) error
	RequestPasswordReset(email domain.Email) error
	ConfirmPasswordReset(tokenValue string, newPassword domain.Password) error

	ChangeUsername(accountId domain.AccountId, newHandle domain.Handle) error
	Delete(accountId domain.AccountId) error
}

type AccountStorage interface {
	CreateAccount(account domain.Account, token domain.Token) (domain.Account, error)
	AccountById(id domain.AccountId) (domain.Account, error)
	AccountByEmail(email domain.Email) (domain.Account, error)
	ActivateAccount(id domain.AccountId, tokenId string) (domain.Account, error)
	DeactivateForEmailChange(id domain.AccountId, token domain.Token) error
	CommitEmailChange(id domain.AccountId, newEmail domain.Email, tokenId string) (domain.Account, error)
	UpdatePassword(id domain.AccountId, passHash string) error
	ResetPassword(id domain.AccountId, passHash, tokenId string) error
	UpdateHandle(id domain.AccountId, handle domain.Handle) error
	UpdateLastLogin(id domain.AccountId) error
	DeleteAccount(id domain.AccountId) error

	SaveToken(token domain.Token) error
	TokenById(id string) (domain.Token, error)
	DeleteToken(id string) error
}

// Notifier accepts a rendered message for asynchronous delivery.
type Notifier interface {
	Enqueue(msg notification.Message)
}

// SiteInfoProvider supplies the shared site-information block every
// notification embeds.
type SiteInfoProvider interface {
	Current() domain.SiteInfo
}

type Jwt interface {
	NewToken(account domain.Account) (string, error)
}

// Account drives accounts through their valid state transitions.
//
// Every transition follows the same ordering: the storage mutation
// commits first (the store is the source of truth), then the lifecycle
// event is published, then the notification is enqueued. Event and
// notification failures never roll the mutation back.
type Account struct {
	storage  AccountStorage
	bus      *events.Bus
	notifier Notifier
	siteInfo SiteInfoProvider
	jwt      Jwt
	cfg      *config.Config
}

func NewAccount(storage AccountStorage, bus *events.Bus, notifier Notifier, siteInfo SiteInfoProvider, jwt Jwt, cfg *config.Config) *Account {
	return &Account{
		storage:  storage,
		bus:      bus,
		notifier: notifier,
		siteInfo: siteInfo,
		jwt:      jwt,
		cfg:      cfg,
	}
}

// Register creates a PendingActivation account, stores the activation
// token with it atomically, and emails the activation code.
func (a *Account) Register(handle domain.Handle, email domain.Email, password domain.Password, role domain.Role) (domain.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	handle = strings.TrimSpace(handle)

	if err := validateEmail(email); err != nil {
		return domain.Account{}, err
	}
	if handle == "" {
		return domain.Account{}, &apperr.Error{Message: "Handle is required", StatusCode: http.StatusBadRequest}
	}
	if len(password) < 8 {
		return domain.Account{}, &apperr.Error{Message: "Password must be at least 8 characters", StatusCode: http.StatusBadRequest}
	}
	if role == "" {
		role = domain.RoleOther
	}
	// Admin accounts are created out-of-band, never through registration.
	if role == domain.RoleAdmin || !role.Valid() {
		return domain.Account{}, &apperr.Error{Message: "Invalid role", StatusCode: http.StatusBadRequest}
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return domain.Account{}, err
	}

	tokenValue, token, err := a.mintToken(domain.TokenActivation, "", a.cfg.ActivationTokenTTL())
	if err != nil {
		return domain.Account{}, err
	}

	account, err := a.storage.CreateAccount(domain.Account{
		Handle:   handle,
		Email:    email,
		PassHash: string(passHash),
		Role:     role,
	}, token)
	if err != nil {
		return domain.Account{}, err
	}

	a.publish(domain.Event{Kind: domain.EventRegistered, AccountId: account.Id, Email: account.Email})
	a.notify(notification.KindActivation, account.Email, notification.Context{
		Handle: account.Handle,
		Token:  tokenValue,
	})
	return account, nil
}

// Activate redeems an activation token and flips the account to Active.
func (a *Account) Activate(tokenValue string) (domain.Account, error) {
	token, err := a.redeemCheck(tokenValue, domain.TokenActivation)
	if err != nil {
		return domain.Account{}, err
	}

	account, err := a.storage.ActivateAccount(token.AccountId, token.Id)
	if err != nil {
		return domain.Account{}, err
	}

	a.publish(domain.Event{Kind: domain.EventActivated, AccountId: account.Id, Email: account.Email})
	a.notify(notification.KindConfirmation, account.Email, notification.Context{Handle: account.Handle})
	return account, nil
}

// Login authenticates an account and returns an access token. Inactive
// accounts cannot authenticate, whatever made them inactive.
func (a *Account) Login(email domain.Email, password domain.Password) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return "", err
	}

	account, err := a.storage.AccountByEmail(email)
	if err != nil {
		// Do not leak which addresses exist.
		if apperr.IsNotFound(err) {
			return "", &apperr.Error{Message: "Invalid credentials", StatusCode: http.StatusUnauthorized}
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PassHash), []byte(password)); err != nil {
		return "", &apperr.Error{Message: "Invalid credentials", StatusCode: http.StatusUnauthorized}
	}

	if !account.Active {
		return "", &apperr.Error{Message: "Account is not active", StatusCode: http.StatusForbidden}
	}

	if err := a.storage.UpdateLastLogin(account.Id); err != nil {
		logger.Log.Warn("failed to record last login", "account_id", account.Id, "error", err)
	}

	accessToken, err := a.jwt.NewToken(account)
	if err != nil {
		logger.Log.Error("failed to create jwt token", "account_id", account.Id, "error", err)
		return "", err
	}
	return accessToken, nil
}

// RequestEmailChange deactivates the account for the duration of the
// pending change and emails a confirmation code to the NEW address.
// The deactivation is deliberate: the account cannot authenticate
// until the new address is confirmed or the change is re-requested.
func (a *Account) RequestEmailChange(accountId domain.AccountId, newEmail domain.Email) error {
	newEmail = strings.ToLower(strings.TrimSpace(newEmail))
	if err := validateEmail(newEmail); err != nil {
		return err
	}

	account, err := a.storage.AccountById(accountId)
	if err != nil {
		return err
	}
	if _, err := a.storage.AccountByEmail(newEmail); err == nil {
		return apperr.DuplicateIdentity("email")
	} else if !apperr.IsNotFound(err) {
		return err
	}

	tokenValue, token, err := a.mintToken(domain.TokenEmailChange, newEmail, a.cfg.EmailChangeTokenTTL())
	if err != nil {
		return err
	}
	token.AccountId = accountId

	if err := a.storage.DeactivateForEmailChange(accountId, token); err != nil {
		return err
	}

	correlation := token.Id
	a.publish(domain.Event{Kind: domain.EventEmailChangeRequest, AccountId: accountId, Email: account.Email, NewValue: newEmail, CorrelationId: correlation})
	// Deactivated is published separately: subscribers auditing or
	// halting in-flight work key off this one.
	a.publish(domain.Event{Kind: domain.EventDeactivated, AccountId: accountId, Email: account.Email, CorrelationId: correlation})

	a.notify(notification.KindEmailChange, newEmail, notification.Context{
		Handle:   account.Handle,
		Token:    tokenValue,
		NewValue: newEmail,
	})
	return nil
}

// ConfirmEmailChange commits the pending address and reactivates the
// account. An expired token leaves the account deactivated until the
// owner re-requests the change; there is no automatic recovery sweep.
func (a *Account) ConfirmEmailChange(tokenValue string) (domain.Account, error) {
	token, err := a.redeemCheck(tokenValue, domain.TokenEmailChange)
	if err != nil {
		return domain.Account{}, err
	}

	account, err := a.storage.CommitEmailChange(token.AccountId, token.NewValue, token.Id)
	if err != nil {
		return domain.Account{}, err
	}

	a.publish(domain.Event{Kind: domain.EventReactivated, AccountId: account.Id, Email: account.Email, NewValue: account.Email, CorrelationId: token.Id})
	a.notify(notification.KindConfirmation, account.Email, notification.Context{Handle: account.Handle})
	return account, nil
}

// ChangePassword verifies the old secret before storing the new hash.
// No activity-flag transition.
func (a *Account) ChangePassword(accountId domain.AccountId, oldPassword, newPassword domain.Password) error {
	if len(newPassword) < 8 {
		return &apperr.Error{Message: "Password must be at least 8 characters", StatusCode: http.StatusBadRequest}
	}

	account, err := a.storage.AccountById(accountId)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PassHash), []byte(oldPassword)); err != nil {
		return &apperr.Error{Message: "Invalid credentials", StatusCode: http.StatusUnauthorized}
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return err
	}
	if err := a.storage.UpdatePassword(accountId, string(passHash)); err != nil {
		return err
	}

	a.publish(domain.Event{Kind: domain.EventPasswordChanged, AccountId: account.Id, Email: account.Email})
	a.notify(notification.KindPasswordChanged, account.Email, notification.Context{Handle: account.Handle})
	return nil
}

// RequestPasswordReset issues a reset token. Unknown addresses succeed
// silently so the endpoint cannot be used to probe for accounts.
func (a *Account) RequestPasswordReset(email domain.Email) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return err
	}

	account, err := a.storage.AccountByEmail(email)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil
		}
		return err
	}

	tokenValue, token, err := a.mintToken(domain.TokenPasswordReset, "", a.cfg.EmailChangeTokenTTL())
	if err != nil {
		return err
	}
	token.AccountId = account.Id
	if err := a.storage.SaveToken(token); err != nil {
		return err
	}

	a.notify(notification.KindPasswordReset, account.Email, notification.Context{
		Handle: account.Handle,
		Token:  tokenValue,
	})
	return nil
}

// ConfirmPasswordReset redeems a reset token and stores the new hash.
func (a *Account) ConfirmPasswordReset(tokenValue string, newPassword domain.Password) error {
	if len(newPassword) < 8 {
		return &apperr.Error{Message: "Password must be at least 8 characters", StatusCode: http.StatusBadRequest}
	}

	token, err := a.redeemCheck(tokenValue, domain.TokenPasswordReset)
	if err != nil {
		return err
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return err
	}
	if err := a.storage.ResetPassword(token.AccountId, string(passHash), token.Id); err != nil {
		return err
	}

	account, err := a.storage.AccountById(token.AccountId)
	if err != nil {
		logger.Log.Warn("password reset committed but account fetch failed", "account_id", token.AccountId, "error", err)
		return nil
	}

	a.publish(domain.Event{Kind: domain.EventPasswordChanged, AccountId: account.Id, Email: account.Email})
	a.notify(notification.KindPasswordChanged, account.Email, notification.Context{Handle: account.Handle})
	return nil
}

// ChangeUsername renames the account. Uniqueness is enforced by the
// storage layer.
func (a *Account) ChangeUsername(accountId domain.AccountId, newHandle domain.Handle) error {
	newHandle = strings.TrimSpace(newHandle)
	if newHandle == "" {
		return &apperr.Error{Message: "Handle is required", StatusCode: http.StatusBadRequest}
	}

	account, err := a.storage.AccountById(accountId)
	if err != nil {
		return err
	}
	if err := a.storage.UpdateHandle(accountId, newHandle); err != nil {
		return err
	}

	a.publish(domain.Event{Kind: domain.EventUsernameChanged, AccountId: account.Id, Email: account.Email, NewValue: newHandle})
	a.notify(notification.KindUsernameChanged, account.Email, notification.Context{Handle: newHandle, NewValue: newHandle})
	return nil
}

// Delete is terminal. The farewell notification is built before the
// purge because its content needs the owner's address; delivery still
// happens after the mutation commits.
func (a *Account) Delete(accountId domain.AccountId) error {
	account, err := a.storage.AccountById(accountId)
	if err != nil {
		return err
	}

	msg, buildErr := notification.Build(notification.KindDelete, account.Email, notification.Context{
		Handle: account.Handle,
		Site:   a.siteInfo.Current(),
	})

	if err := a.storage.DeleteAccount(accountId); err != nil {
		return err
	}

	a.publish(domain.Event{Kind: domain.EventDeleted, AccountId: account.Id, Email: account.Email})
	if buildErr != nil {
		logger.Log.Warn("failed to build delete notification", "account_id", account.Id, "error", buildErr)
	} else {
		a.notifier.Enqueue(msg)
	}
	return nil
}

// =========================================================================
// Internals
// =========================================================================

// mintToken produces the user-facing token value "<id>.<secret>" and
// the storable record holding only the bcrypt hash of the secret.
func (a *Account) mintToken(kind domain.TokenKind, newValue string, ttl time.Duration) (string, domain.Token, error) {
	id := uuid.NewString()
	secret := uuid.NewString()

	secretHash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash token secret", "error", err)
		return "", domain.Token{}, err
	}

	token := domain.Token{
		Id:         id,
		Kind:       kind,
		SecretHash: string(secretHash),
		NewValue:   newValue,
		Expires:    time.Now().UTC().Add(ttl),
	}
	return id + "." + secret, token, nil
}

// redeemCheck validates a presented token value without consuming it:
// the consuming delete runs inside the transition's storage
// transaction so a lost race still means single use. Every failure
// mode collapses to the same InvalidToken error.
func (a *Account) redeemCheck(tokenValue string, kind domain.TokenKind) (domain.Token, error) {
	id, secret, found := strings.Cut(tokenValue, ".")
	if !found || id == "" || secret == "" {
		return domain.Token{}, apperr.InvalidToken()
	}

	token, err := a.storage.TokenById(id)
	if err != nil {
		return domain.Token{}, err
	}

	// bcrypt comparison is constant-time; a wrong secret and an
	// unknown token are indistinguishable to the caller.
	if bcrypt.CompareHashAndPassword([]byte(token.SecretHash), []byte(secret)) != nil {
		return domain.Token{}, apperr.InvalidToken()
	}
	if token.Kind != kind {
		return domain.Token{}, apperr.InvalidToken()
	}
	if token.Expires.Before(time.Now()) {
		if err := a.storage.DeleteToken(token.Id); err != nil {
			logger.Log.Warn("failed to clean up expired token", "token_id", token.Id, "error", err)
		}
		return domain.Token{}, apperr.InvalidToken()
	}
	return token, nil
}

func (a *Account) publish(e domain.Event) {
	e.At = time.Now().UTC()
	if e.CorrelationId == "" {
		e.CorrelationId = uuid.NewString()
	}
	if err := a.bus.Publish(e); err != nil {
		logger.Log.Warn("event subscribers reported errors", "kind", e.Kind, "account_id", e.AccountId, "error", err)
	}
}

func (a *Account) notify(kind notification.Kind, to string, ctx notification.Context) {
	ctx.Site = a.siteInfo.Current()
	msg, err := notification.Build(kind, to, ctx)
	if err != nil {
		logger.Log.Warn("failed to build notification", "kind", kind, "error", err)
		return
	}
	a.notifier.Enqueue(msg)
}

func validateEmail(email domain.Email) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return &apperr.Error{Message: fmt.Sprintf("Invalid email: %s", err), StatusCode: http.StatusBadRequest}
	}
	return nil
}
