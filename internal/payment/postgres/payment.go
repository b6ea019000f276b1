package postgres

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	errors "github.com/mitrakatalog/catalog-management/internal"
	catalogDatamodel "github.com/mitrakatalog/catalog-management/internal/core/datamodel/catalog"
	paymentDatamodel "github.com/mitrakatalog/catalog-management/internal/core/datamodel/payment"
	"github.com/mitrakatalog/catalog-management/internal/payment"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) payment.RepositoryAPI {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) GetByCatalogID(catalogID int64) (*paymentDatamodel.CatalogPayment, error) {
	var m paymentDatamodel.CatalogPayment
	err := r.db.Where("catalog_id = ?", catalogID).First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// SubmitWithStatus upserts the evidence row and moves the catalog to the new
// status in one transaction. The catalog update carries a status predicate;
// zero affected rows rolls everything back with ErrStaleStatus so evidence
// can never attach to a catalog that transitioned concurrently.
func (r *PaymentRepository) SubmitWithStatus(evidence *paymentDatamodel.CatalogPayment, expectedCatalogStatus, newCatalogStatus string) error {
	now := time.Now()
	evidence.UpdatedAt = now
	if evidence.CreatedAt.IsZero() {
		evidence.CreatedAt = now
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "catalog_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"payment_method",
				"bank_name",
				"sender_name",
				"reference_no",
				"receipt_url",
				"notes",
				"submitted_at",
				"updated_at",
			}),
		}).Create(evidence).Error
		if err != nil {
			return err
		}

		result := tx.Model(&catalogDatamodel.Catalog{}).
			Where("id = ? AND status = ?", evidence.CatalogID, expectedCatalogStatus).
			Updates(map[string]interface{}{
				"status":     newCatalogStatus,
				"updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errors.ErrStaleStatus
		}
		return nil
	})
}
