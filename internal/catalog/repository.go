package catalog

import (
	"context"

	"github.com/angelmondragon/stockline-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository wires together the read-mostly persistence helpers used while
// building drafts: products, suppliers, clients and their addresses.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListProducts returns the full catalog ordered by name.
func (r *Repository) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindProductByID loads a single product without associations.
func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// SearchClientsByName matches clients whose name contains the query,
// case-insensitively, capped at limit rows.
func (r *Repository) SearchClientsByName(ctx context.Context, query string, limit int) ([]models.Client, error) {
	var clients []models.Client
	if err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE LOWER(?)", "%"+query+"%").
		Order("name ASC").
		Limit(limit).
		Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// FindClientByID loads a single client.
func (r *Repository) FindClientByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// ListSuppliers returns all suppliers ordered by name.
func (r *Repository) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&suppliers).Error; err != nil {
		return nil, err
	}
	return suppliers, nil
}

// FindSupplierByID loads a single supplier.
func (r *Repository) FindSupplierByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := r.db.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

// ListAddressesByClient returns the delivery addresses on file for a client.
func (r *Repository) ListAddressesByClient(ctx context.Context, clientID uuid.UUID) ([]models.Address, error) {
	var addresses []models.Address
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at ASC").
		Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

// FindAddressByID loads a single address.
func (r *Repository) FindAddressByID(ctx context.Context, id uuid.UUID) (*models.Address, error) {
	var address models.Address
	if err := r.db.WithContext(ctx).First(&address, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &address, nil
}

// CreateAddress persists a new delivery address for a client.
func (r *Repository) CreateAddress(ctx context.Context, address *models.Address) (*models.Address, error) {
	if address.ID == uuid.Nil {
		address.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(address).Error; err != nil {
		return nil, err
	}
	return address, nil
}
