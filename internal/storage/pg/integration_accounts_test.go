package pg

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lumeo-dev/lumeo/internal/apperr"
	"github.com/lumeo-dev/lumeo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testToken(kind domain.TokenKind) domain.Token {
	return domain.Token{
		Id:         uuid.NewString(),
		Kind:       kind,
		SecretHash: "hash",
		Expires:    time.Now().Add(time.Hour),
	}
}

func createAccount(t *testing.T, handle, email string) domain.Account {
	t.Helper()
	account, err := storage.CreateAccount(
		domain.Account{Handle: handle, Email: email, PassHash: "hash", Role: domain.RoleCustomer},
		testToken(domain.TokenActivation),
	)
	require.NoError(t, err)
	return account
}

func TestCreateAccount(t *testing.T) {
	account := createAccount(t, "alice", "alice@example.com")
	assert.Greater(t, account.Id, int64(0))
	assert.False(t, account.Active, "new accounts start pending activation")

	// Activation token stored alongside.
	fetched, err := storage.AccountByEmail("ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, account.Id, fetched.Id)
}

func TestCreateAccount_DuplicateEmail(t *testing.T) {
	createAccount(t, "bob", "bob@example.com")

	_, err := storage.CreateAccount(
		domain.Account{Handle: "bob2", Email: "bob@example.com", PassHash: "hash", Role: domain.RoleCustomer},
		testToken(domain.TokenActivation),
	)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeDuplicateIdentity))
}

func TestCreateAccount_DuplicateHandle(t *testing.T) {
	createAccount(t, "carol", "carol@example.com")

	_, err := storage.CreateAccount(
		domain.Account{Handle: "Carol", Email: "carol2@example.com", PassHash: "hash", Role: domain.RoleCustomer},
		testToken(domain.TokenActivation),
	)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeDuplicateIdentity))
}

func TestActivateAccount_ConsumesToken(t *testing.T) {
	token := testToken(domain.TokenActivation)
	account, err := storage.CreateAccount(
		domain.Account{Handle: "dave", Email: "dave@example.com", PassHash: "hash", Role: domain.RoleCustomer},
		token,
	)
	require.NoError(t, err)

	activated, err := storage.ActivateAccount(account.Id, token.Id)
	require.NoError(t, err)
	assert.True(t, activated.Active)

	// Second redeem of the same token must fail: single use.
	_, err = storage.ActivateAccount(account.Id, token.Id)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidState), "already active wins over token check")

	_, err = storage.TokenById(token.Id)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidToken))
}

func TestEmailChangeRoundTrip(t *testing.T) {
	token := testToken(domain.TokenActivation)
	account, err := storage.CreateAccount(
		domain.Account{Handle: "erin", Email: "erin@example.com", PassHash: "hash", Role: domain.RoleCustomer},
		token,
	)
	require.NoError(t, err)
	_, err = storage.ActivateAccount(account.Id, token.Id)
	require.NoError(t, err)

	change := testToken(domain.TokenEmailChange)
	change.AccountId = account.Id
	change.NewValue = "erin2@example.com"
	require.NoError(t, storage.DeactivateForEmailChange(account.Id, change))

	mid, err := storage.AccountById(account.Id)
	require.NoError(t, err)
	assert.False(t, mid.Active, "account is barred while the change is pending")

	updated, err := storage.CommitEmailChange(account.Id, "erin2@example.com", change.Id)
	require.NoError(t, err)
	assert.True(t, updated.Active)
	assert.Equal(t, "erin2@example.com", updated.Email)
}

func TestDeactivateForEmailChange_RequiresActive(t *testing.T) {
	account := createAccount(t, "frank", "frank@example.com")

	err := storage.DeactivateForEmailChange(account.Id, testToken(domain.TokenEmailChange))
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidState))
}

func TestSaveToken_ReplacesPrevious(t *testing.T) {
	account := createAccount(t, "grace", "grace@example.com")

	first := testToken(domain.TokenPasswordReset)
	first.AccountId = account.Id
	require.NoError(t, storage.SaveToken(first))

	second := testToken(domain.TokenPasswordReset)
	second.AccountId = account.Id
	require.NoError(t, storage.SaveToken(second))

	// The first token is gone: one pending token per (account, kind).
	_, err := storage.TokenById(first.Id)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidToken))

	fetched, err := storage.TokenById(second.Id)
	require.NoError(t, err)
	assert.Equal(t, account.Id, fetched.AccountId)
}

func TestDeleteToken_SingleUse(t *testing.T) {
	account := createAccount(t, "kim", "kim@example.com")

	token := testToken(domain.TokenPasswordReset)
	token.AccountId = account.Id
	require.NoError(t, storage.SaveToken(token))

	// Token write and delete both run outside a lifecycle transaction,
	// straight on the pool.
	require.NoError(t, storage.DeleteToken(token.Id))
	err := storage.DeleteToken(token.Id)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidToken))
}

func TestDeleteAccount_CascadesTokensAndProfile(t *testing.T) {
	token := testToken(domain.TokenActivation)
	account, err := storage.CreateAccount(
		domain.Account{Handle: "heidi", Email: "heidi@example.com", PassHash: "hash", Role: domain.RoleCustomer},
		token,
	)
	require.NoError(t, err)
	require.NoError(t, storage.EnsureProfile(account.Id))

	require.NoError(t, storage.DeleteAccount(account.Id))

	_, err = storage.AccountById(account.Id)
	assert.True(t, apperr.IsNotFound(err))
	_, err = storage.TokenById(token.Id)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidToken))
	_, err = storage.Profile(account.Id)
	assert.True(t, apperr.IsNotFound(err))

	assert.Error(t, storage.DeleteAccount(account.Id), "second delete reports not found")
}

func TestUpdateHandle_Unique(t *testing.T) {
	a := createAccount(t, "ivan", "ivan@example.com")
	createAccount(t, "judy", "judy@example.com")

	err := storage.UpdateHandle(a.Id, "judy")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeDuplicateIdentity))

	require.NoError(t, storage.UpdateHandle(a.Id, "ivan2"))
	fetched, err := storage.AccountById(a.Id)
	require.NoError(t, err)
	assert.Equal(t, "ivan2", fetched.Handle)
}

func TestProfileRoundTrip(t *testing.T) {
	account := createAccount(t, "mallory", "mallory@example.com")

	require.NoError(t, storage.EnsureProfile(account.Id))
	require.NoError(t, storage.EnsureProfile(account.Id), "EnsureProfile is idempotent")

	p := domain.Profile{AccountId: account.Id, FirstName: "Mallory", LastName: "M", Phone: "+1 555", About: "hi"}
	require.NoError(t, storage.SaveProfile(p))

	fetched, err := storage.Profile(account.Id)
	require.NoError(t, err)
	assert.Equal(t, "Mallory", fetched.FirstName)
}

func TestSiteInfoRoundTrip(t *testing.T) {
	info, err := storage.SiteInfo()
	require.NoError(t, err, "missing singleton row is not an error")
	assert.Empty(t, info.ContactEmail)

	require.NoError(t, storage.SaveSiteInfo(domain.SiteInfo{ContactEmail: "support@lumeo.dev", WhyUs: "because"}))
	require.NoError(t, storage.SaveSiteInfo(domain.SiteInfo{ContactEmail: "help@lumeo.dev"}))

	info, err = storage.SiteInfo()
	require.NoError(t, err)
	assert.Equal(t, "help@lumeo.dev", info.ContactEmail, "upsert keeps a single row")
}
