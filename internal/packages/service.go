package packages

import (
	"log/slog"

	errors "github.com/mitrakatalog/catalog-management/internal"
	packagesDatamodel "github.com/mitrakatalog/catalog-management/internal/core/datamodel/packages"
)

type RepositoryAPI interface {
	GetAll() ([]*packagesDatamodel.Package, error)
	GetByID(id int64) (*packagesDatamodel.Package, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetActivePackages lists the packages a member can currently purchase.
func (s *Service) GetActivePackages() ([]PackageResponse, error) {
	models, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get packages from repository", "error", err)
		return nil, errors.NewInternalError("failed to get packages", err)
	}

	var responses []PackageResponse
	for _, m := range models {
		p := FromDataModel(m)
		if p.IsActivePackage() {
			responses = append(responses, p.ToResponse())
		}
	}

	return responses, nil
}

// GetActivePackage resolves a single purchasable package. Inactive and
// unknown packages both come back as not-found so callers cannot snapshot
// a retired plan.
func (s *Service) GetActivePackage(id int64) (*Package, error) {
	m, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get package from repository", "package_id", id, "error", err)
		return nil, errors.NewInternalError("failed to get package", err)
	}
	if m == nil {
		return nil, errors.ErrPackageNotFound
	}

	p := FromDataModel(m)
	if !p.IsActivePackage() {
		return nil, errors.ErrPackageNotFound
	}

	return p, nil
}
