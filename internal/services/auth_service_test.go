package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/devprosvn/devpros-achievo/internal/config"
	"github.com/devprosvn/devpros-achievo/internal/db/models"
	"github.com/devprosvn/devpros-achievo/internal/store"
	"github.com/devprosvn/devpros-achievo/internal/store/memstore"
)

func newAuthTestService() (*AuthService, *RoleService, *store.Store) {
	st := memstore.New()
	roles := NewRoleService(st, testOwner, zap.NewNop())
	auth := NewAuthService(st, roles, config.SecurityConfig{
		JWTSecret:         "test-secret",
		SessionTimeout:    time.Hour,
		PasswordMinLength: 8,
	}, zap.NewNop())
	return auth, roles, st
}

func registerTestOrg(t *testing.T, auth *AuthService) *models.Organization {
	t.Helper()
	org, err := auth.RegisterOrganization(context.Background(), &RegisterOrgInput{
		Name:          "Achievo Education Institute",
		Email:         "Contact@Achievo-Edu.org",
		Password:      "correct horse battery",
		WalletAddress: "achievo-org.testnet",
	})
	require.NoError(t, err)
	return org
}

func TestRegisterOrganization(t *testing.T) {
	ctx := context.Background()
	auth, roles, st := newAuthTestService()

	org := registerTestOrg(t, auth)
	require.Equal(t, "contact@achievo-edu.org", org.Email)
	require.NotEmpty(t, org.PasswordHash)
	require.NotEqual(t, "correct horse battery", org.PasswordHash)

	// Registration grants the organization role.
	role, err := roles.RoleOf(ctx, "achievo-org.testnet")
	require.NoError(t, err)
	require.Equal(t, models.RoleOrgVerifier, role)

	stored, err := st.Organizations.ByWallet(ctx, "achievo-org.testnet")
	require.NoError(t, err)
	require.Equal(t, org.ID, stored.ID)
}

func TestRegisterOrganizationRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newAuthTestService()
	registerTestOrg(t, auth)

	_, err := auth.RegisterOrganization(ctx, &RegisterOrgInput{
		Name:          "Copycat",
		Email:         "contact@achievo-edu.org",
		Password:      "another password",
		WalletAddress: "copycat.testnet",
	})
	require.ErrorIs(t, err, ErrPolicy)

	_, err = auth.RegisterOrganization(ctx, &RegisterOrgInput{
		Name:          "Copycat",
		Email:         "copycat@example.com",
		Password:      "another password",
		WalletAddress: "achievo-org.testnet",
	})
	require.ErrorIs(t, err, ErrPolicy)
}

func TestRegisterOrganizationValidation(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newAuthTestService()

	_, err := auth.RegisterOrganization(ctx, &RegisterOrgInput{
		Name:          "Short Password Org",
		Email:         "short@example.com",
		Password:      "short",
		WalletAddress: "short.testnet",
	})
	require.ErrorIs(t, err, ErrValidation)

	_, err = auth.RegisterOrganization(ctx, &RegisterOrgInput{
		Email:         "nameless@example.com",
		Password:      "long enough password",
		WalletAddress: "nameless.testnet",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newAuthTestService()
	registerTestOrg(t, auth)

	token, org, err := auth.Login(ctx, "contact@achievo-edu.org", "correct horse battery")
	require.NoError(t, err)
	require.Equal(t, "achievo-org.testnet", org.WalletAddress)

	claims, err := auth.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "achievo-org.testnet", claims.WalletAddress)
	require.Equal(t, string(models.RoleOrgVerifier), claims.Role)

	_, _, err = auth.Login(ctx, "contact@achievo-edu.org", "wrong password")
	require.ErrorIs(t, err, ErrNotAuthorized)

	_, _, err = auth.Login(ctx, "nobody@example.com", "whatever password")
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestWalletLogin(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newAuthTestService()

	token, role, err := auth.WalletLogin(ctx, "alice.testnet")
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, role)

	claims, err := auth.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "alice.testnet", claims.WalletAddress)

	_, role, err = auth.WalletLogin(ctx, testOwner)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, role)

	_, _, err = auth.WalletLogin(ctx, "  ")
	require.ErrorIs(t, err, ErrValidation)
}

func TestParseTokenRejectsForgeries(t *testing.T) {
	auth, _, _ := newAuthTestService()

	token, err := auth.IssueToken("alice.testnet", models.RoleUser)
	require.NoError(t, err)

	_, err = auth.ParseToken(token + "x")
	require.ErrorIs(t, err, ErrNotAuthorized)

	other := NewAuthService(&store.Store{}, nil, config.SecurityConfig{
		JWTSecret:      "different-secret",
		SessionTimeout: time.Hour,
	}, zap.NewNop())
	foreign, err := other.IssueToken("alice.testnet", models.RoleAdmin)
	require.NoError(t, err)

	_, err = auth.ParseToken(foreign)
	require.ErrorIs(t, err, ErrNotAuthorized)
}
