package postgres

import (
	packagesDatamodel "github.com/mitrakatalog/catalog-management/internal/core/datamodel/packages"
	"github.com/mitrakatalog/catalog-management/internal/packages"
	"gorm.io/gorm"
)

type PackageRepository struct {
	db *gorm.DB
}

func NewPackageRepository(db *gorm.DB) packages.RepositoryAPI {
	return &PackageRepository{db: db}
}

func (r *PackageRepository) GetAll() ([]*packagesDatamodel.Package, error) {
	var pkgs []*packagesDatamodel.Package
	err := r.db.Order("price ASC").Find(&pkgs).Error
	return pkgs, err
}

func (r *PackageRepository) GetByID(id int64) (*packagesDatamodel.Package, error) {
	var pkg packagesDatamodel.Package
	err := r.db.Where("id = ?", id).First(&pkg).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &pkg, nil
}
