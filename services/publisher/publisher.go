// Package publisher registers companies ("empresas") from their CNPJ.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	publisherRepo "github.com/S204-Inatel-2025-2/AgendaFacil/database/repository/publisher"
	"github.com/S204-Inatel-2025-2/AgendaFacil/models"
	"github.com/S204-Inatel-2025-2/AgendaFacil/utils"
)

// RegisterInput lets the caller override contact details from the registry.
type RegisterInput struct {
	CNPJ  string `json:"cnpj" binding:"required"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type PublisherService interface {
	// LookupCNPJ returns the registry view of a company without storing it.
	LookupCNPJ(ctx context.Context, cnpj string) (*models.Publisher, error)
	// Register returns the stored publisher for the CNPJ, creating it from the
	// registry on first use.
	Register(ctx context.Context, in RegisterInput) (*models.Publisher, error)
	GetByID(ctx context.Context, id string) (*models.Publisher, error)
	List(ctx context.Context) ([]models.Publisher, error)
}

type DefaultPublisherService struct {
	Repo   publisherRepo.PublisherRepository
	CNPJ   CNPJLookup
	Locker utils.Locker
	Logger *zap.Logger
}

var _ PublisherService = (*DefaultPublisherService)(nil)

func (s *DefaultPublisherService) LookupCNPJ(ctx context.Context, raw string) (*models.Publisher, error) {
	cnpj, err := NormalizeCNPJ(raw)
	if err != nil {
		return nil, err
	}
	record, err := s.CNPJ.Lookup(ctx, cnpj)
	if err != nil {
		return nil, err
	}
	return fromRecord(cnpj, record), nil
}

func fromRecord(cnpj string, record *CNPJRecord) *models.Publisher {
	name := strings.TrimSpace(record.TradeName)
	if name == "" {
		name = record.LegalName
	}
	return &models.Publisher{
		Name:      name,
		LegalName: record.LegalName,
		CNPJ:      cnpj,
		Email:     record.Email,
		Phone:     record.Phone,
	}
}

func (s *DefaultPublisherService) Register(ctx context.Context, in RegisterInput) (*models.Publisher, error) {
	cnpj, err := NormalizeCNPJ(in.CNPJ)
	if err != nil {
		return nil, err
	}

	unlock, err := s.Locker.Lock(ctx, "publisher:cnpj:"+cnpj)
	if err != nil {
		return nil, fmt.Errorf("failed to lock cnpj %s: %w", cnpj, err)
	}
	defer unlock()

	existing, err := s.Repo.FindByCNPJ(ctx, cnpj)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing publisher: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	record, err := s.CNPJ.Lookup(ctx, cnpj)
	if err != nil {
		return nil, err
	}
	candidate := fromRecord(cnpj, record)
	if email := strings.TrimSpace(in.Email); email != "" {
		candidate.Email = email
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		candidate.Phone = phone
	}

	saved, err := s.Repo.Save(ctx, candidate)
	if errors.Is(err, models.ErrDuplicateCNPJ) {
		// Another process registered it between our check and insert.
		return s.Repo.FindByCNPJ(ctx, cnpj)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create publisher: %w", err)
	}

	if s.Logger != nil {
		s.Logger.Info("Publisher registered", zap.String("publisherID", saved.ID), zap.String("cnpj", cnpj))
	}
	return saved, nil
}

func (s *DefaultPublisherService) GetByID(ctx context.Context, id string) (*models.Publisher, error) {
	p, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch publisher: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("publisher %s: %w", id, models.ErrNotFound)
	}
	return p, nil
}

func (s *DefaultPublisherService) List(ctx context.Context) ([]models.Publisher, error) {
	return s.Repo.FindAll(ctx)
}
