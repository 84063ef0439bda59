package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"solemate_backend/internal/models"
	"solemate_backend/internal/repositories"
	"solemate_backend/pkg/utils"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// --- AuthService Interface ---

// AuthService resolves a submitted password to an actor. There are no
// usernames: the hub password comes from configuration, and a store is
// identified by comparing the password against every store's hash.
type AuthService interface {
	Login(password string) (*models.LoginResult, error)
	Refresh(refreshToken string) (*models.LoginResult, error)
	RegisterStore(payload models.RegisterStorePayload) (*models.Store, error)
	GetStores() ([]models.Store, error)
}

type authService struct {
	storeRepo   repositories.StoreRepository
	hubPassword string
}

// NewAuthService creates a new instance of AuthService. hubPassword is the
// configured hub credential; empty disables hub login.
func NewAuthService(sr repositories.StoreRepository, hubPassword string) AuthService {
	return &authService{storeRepo: sr, hubPassword: hubPassword}
}

// --- Method Implementations ---

func (s *authService) Login(password string) (*models.LoginResult, error) {
	if utils.IsEmpty(password) {
		return nil, ErrInvalidCredentials
	}

	if s.hubPassword != "" && password == s.hubPassword {
		return s.issueTokens("", "", utils.RoleHub)
	}

	stores, err := s.storeRepo.GetStores()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stores for login: %w", err)
	}
	for _, store := range stores {
		if bcrypt.CompareHashAndPassword([]byte(store.PasswordHash), []byte(password)) == nil {
			return s.issueTokens(store.ID, store.Name, utils.RoleStore)
		}
	}
	return nil, ErrInvalidCredentials
}

func (s *authService) Refresh(refreshToken string) (*models.LoginResult, error) {
	claims, err := utils.ValidateToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if claims.Role == utils.RoleHub {
		return s.issueTokens("", "", utils.RoleHub)
	}

	store, err := s.storeRepo.GetStoreByID(claims.StoreID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to resolve store for refresh: %w", err)
	}
	return s.issueTokens(store.ID, store.Name, utils.RoleStore)
}

func (s *authService) RegisterStore(payload models.RegisterStorePayload) (*models.Store, error) {
	if utils.IsEmpty(payload.Name) || utils.IsEmpty(payload.Password) {
		return nil, fmt.Errorf("%w: store name and password required", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash store password: %w", err)
	}

	store := &models.Store{
		ID:           uuid.NewString(),
		Name:         payload.Name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.storeRepo.CreateStore(store); err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	return store, nil
}

func (s *authService) GetStores() ([]models.Store, error) {
	stores, err := s.storeRepo.GetStores()
	if err != nil {
		return nil, fmt.Errorf("failed to get stores: %w", err)
	}
	return stores, nil
}

func (s *authService) issueTokens(storeID, storeName, role string) (*models.LoginResult, error) {
	accessToken, err := utils.GenerateAccessToken(storeID, storeName, role)
	if err != nil {
		return nil, err
	}
	refreshToken, err := utils.GenerateRefreshToken(storeID, role)
	if err != nil {
		return nil, err
	}

	result := &models.LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Role:         role,
	}
	if role == utils.RoleStore {
		result.StoreID = &storeID
		result.StoreName = &storeName
	}
	return result, nil
}
