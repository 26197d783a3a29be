package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/devprosvn/devpros-achievo/internal/config"
	"github.com/devprosvn/devpros-achievo/internal/db/models"
	"github.com/devprosvn/devpros-achievo/internal/store"
	"github.com/devprosvn/devpros-achievo/internal/utils"
)

// AuthService issues and verifies the bearer tokens the API runs on.
// Wallet login is the primary path; organizations may additionally
// register with email and password.
type AuthService struct {
	orgs           store.OrganizationStore
	roles          *RoleService
	secret         []byte
	tokenTTL       time.Duration
	minPasswordLen int
	logger         *zap.Logger
}

func NewAuthService(st *store.Store, roles *RoleService, cfg config.SecurityConfig, logger *zap.Logger) *AuthService {
	return &AuthService{
		orgs:           st.Organizations,
		roles:          roles,
		secret:         []byte(cfg.JWTSecret),
		tokenTTL:       cfg.SessionTimeout,
		minPasswordLen: cfg.PasswordMinLength,
		logger:         logger.With(zap.String("service", "auth_service")),
	}
}

// Claims is the session token payload.
type Claims struct {
	WalletAddress string `json:"wallet_address"`
	Role          string `json:"role"`
	jwt.RegisteredClaims
}

type RegisterOrgInput struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	WalletAddress string `json:"wallet_address"`
	Description   string `json:"description"`
	Website       string `json:"website"`
}

// RegisterOrganization stores a new issuing organization and grants its
// wallet the organization role. The role grant runs as the contract
// owner, the one identity guaranteed to hold admin.
func (as *AuthService) RegisterOrganization(ctx context.Context, input *RegisterOrgInput) (*models.Organization, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	wallet := strings.TrimSpace(input.WalletAddress)
	switch {
	case input.Name == "":
		return nil, fmt.Errorf("%w: organization name is required", ErrValidation)
	case email == "":
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	case wallet == "":
		return nil, fmt.Errorf("%w: wallet_address is required", ErrValidation)
	case len(input.Password) < as.minPasswordLen:
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, as.minPasswordLen)
	}

	if _, err := as.orgs.ByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", ErrPolicy)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if _, err := as.orgs.ByWallet(ctx, wallet); err == nil {
		return nil, fmt.Errorf("%w: wallet already registered", ErrPolicy)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := utils.EncryptPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	org := &models.Organization{
		Name:          input.Name,
		Email:         email,
		WalletAddress: wallet,
		Description:   input.Description,
		Website:       input.Website,
		Verified:      false,
		PasswordHash:  hash,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := as.orgs.Insert(ctx, org); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCollaborator, err)
	}

	if _, err := as.roles.AssignRole(ctx, as.roles.OwnerAccountID(), wallet, models.RoleOrgVerifier); err != nil {
		as.logger.Warn("failed to grant organization role at registration",
			zap.String("wallet", wallet), zap.Error(err))
	}

	as.logger.Info("Organization registered",
		zap.String("name", org.Name),
		zap.String("wallet", org.WalletAddress))
	return org, nil
}

// Login authenticates an organization by email and password and returns
// a session token for its wallet.
func (as *AuthService) Login(ctx context.Context, email, password string) (string, *models.Organization, error) {
	org, err := as.orgs.ByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, store.ErrNotFound) {
		return "", nil, fmt.Errorf("%w: unknown email or wrong password", ErrNotAuthorized)
	}
	if err != nil {
		return "", nil, err
	}
	if org.PasswordHash == "" || !utils.VerifyPassword(org.PasswordHash, password) {
		return "", nil, fmt.Errorf("%w: unknown email or wrong password", ErrNotAuthorized)
	}

	role, err := as.roles.RoleOf(ctx, org.WalletAddress)
	if err != nil {
		return "", nil, err
	}

	token, err := as.IssueToken(org.WalletAddress, role)
	if err != nil {
		return "", nil, err
	}
	return token, org, nil
}

// WalletLogin issues a session token for a wallet address, provisioning
// its role on first sight.
func (as *AuthService) WalletLogin(ctx context.Context, walletAddress string) (string, models.Role, error) {
	wallet := strings.TrimSpace(walletAddress)
	if wallet == "" {
		return "", "", fmt.Errorf("%w: wallet_address is required", ErrValidation)
	}

	role, err := as.roles.RoleOf(ctx, wallet)
	if err != nil {
		return "", "", err
	}

	token, err := as.IssueToken(wallet, role)
	if err != nil {
		return "", "", err
	}
	return token, role, nil
}

// IssueToken signs a session token for the wallet. The embedded role is
// informational; authorization re-derives it per request.
func (as *AuthService) IssueToken(walletAddress string, role models.Role) (string, error) {
	now := time.Now()
	claims := &Claims{
		WalletAddress: walletAddress,
		Role:          string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   walletAddress,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.secret)
}

// ParseToken verifies a session token and returns its claims.
func (as *AuthService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return as.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid session token", ErrNotAuthorized)
	}
	return claims, nil
}
