package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"solemate_backend/internal/models"
	"solemate_backend/internal/repositories"
	"solemate_backend/pkg/utils"
)

var ErrCatalogEntryNotFound = errors.New("catalog entry not found")

// CatalogEntryRequest creates an entry in either intake catalog.
type CatalogEntryRequest struct {
	Description  string   `json:"description" binding:"required"`
	DefaultPrice *float64 `json:"default_price" binding:"required"`
}

// --- CatalogService Interface ---

type CatalogService interface {
	GetComplaints() ([]models.Complaint, error)
	CreateComplaint(req CatalogEntryRequest) (*models.Complaint, error)
	DeleteComplaint(complaintID string) error

	GetInHousePresets() ([]models.InHousePreset, error)
	CreateInHousePreset(req CatalogEntryRequest) (*models.InHousePreset, error)
	DeleteInHousePreset(presetID string) error
}

type catalogService struct {
	catalogRepo repositories.CatalogRepository
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(cr repositories.CatalogRepository) CatalogService {
	return &catalogService{catalogRepo: cr}
}

// --- Method Implementations ---

func (s *catalogService) GetComplaints() ([]models.Complaint, error) {
	complaints, err := s.catalogRepo.GetComplaints()
	if err != nil {
		return nil, fmt.Errorf("failed to get complaints: %w", err)
	}
	return complaints, nil
}

func (s *catalogService) CreateComplaint(req CatalogEntryRequest) (*models.Complaint, error) {
	if err := validateCatalogEntry(req); err != nil {
		return nil, err
	}
	complaint := &models.Complaint{
		ID:           uuid.NewString(),
		Description:  req.Description,
		DefaultPrice: *req.DefaultPrice,
		CreatedAt:    time.Now(),
	}
	if err := s.catalogRepo.CreateComplaint(complaint); err != nil {
		return nil, fmt.Errorf("failed to create complaint: %w", err)
	}
	return complaint, nil
}

// DeleteComplaint removes a catalog entry. Existing orders keep their
// snapshots, so history is unaffected.
func (s *catalogService) DeleteComplaint(complaintID string) error {
	if err := s.catalogRepo.DeleteComplaint(complaintID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCatalogEntryNotFound
		}
		return fmt.Errorf("failed to delete complaint: %w", err)
	}
	return nil
}

func (s *catalogService) GetInHousePresets() ([]models.InHousePreset, error) {
	presets, err := s.catalogRepo.GetInHousePresets()
	if err != nil {
		return nil, fmt.Errorf("failed to get in-house presets: %w", err)
	}
	return presets, nil
}

func (s *catalogService) CreateInHousePreset(req CatalogEntryRequest) (*models.InHousePreset, error) {
	if err := validateCatalogEntry(req); err != nil {
		return nil, err
	}
	preset := &models.InHousePreset{
		ID:           uuid.NewString(),
		Description:  req.Description,
		DefaultPrice: *req.DefaultPrice,
		CreatedAt:    time.Now(),
	}
	if err := s.catalogRepo.CreateInHousePreset(preset); err != nil {
		return nil, fmt.Errorf("failed to create in-house preset: %w", err)
	}
	return preset, nil
}

func (s *catalogService) DeleteInHousePreset(presetID string) error {
	if err := s.catalogRepo.DeleteInHousePreset(presetID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCatalogEntryNotFound
		}
		return fmt.Errorf("failed to delete in-house preset: %w", err)
	}
	return nil
}

func validateCatalogEntry(req CatalogEntryRequest) error {
	if utils.IsEmpty(req.Description) {
		return fmt.Errorf("%w: description required", ErrValidation)
	}
	if req.DefaultPrice == nil || *req.DefaultPrice < 0 {
		return fmt.Errorf("%w: default price must not be negative", ErrValidation)
	}
	return nil
}
