package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/stockline-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/stockline-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultSearchLimit = 15

// Service exposes the catalog read paths the workflows select entities from,
// plus the single write path: registering a new client address mid-flow.
type Service interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	SearchClients(ctx context.Context, query string) ([]models.Client, error)
	GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
	ListSuppliers(ctx context.Context) ([]models.Supplier, error)
	GetSupplier(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	ListClientAddresses(ctx context.Context, clientID uuid.UUID) ([]models.Address, error)
	GetAddress(ctx context.Context, id uuid.UUID) (*models.Address, error)
	AddClientAddress(ctx context.Context, clientID uuid.UUID, text string) (*models.Address, error)
}

type service struct {
	repo        *Repository
	searchLimit int
}

// NewService wires the catalog service with its repository.
func NewService(repo *Repository, searchLimit int) (Service, error) {
	if repo == nil {
		return nil, errors.New("catalog: repository is required")
	}
	if searchLimit <= 0 {
		searchLimit = defaultSearchLimit
	}
	return &service{repo: repo, searchLimit: searchLimit}, nil
}

func (s *service) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return products, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "product not found", "load product")
	}
	return product, nil
}

func (s *service) SearchClients(ctx context.Context, query string) ([]models.Client, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search query must not be empty")
	}
	clients, err := s.repo.SearchClientsByName(ctx, query, s.searchLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search clients")
	}
	return clients, nil
}

func (s *service) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	client, err := s.repo.FindClientByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "client not found", "load client")
	}
	return client, nil
}

func (s *service) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	suppliers, err := s.repo.ListSuppliers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list suppliers")
	}
	return suppliers, nil
}

func (s *service) GetSupplier(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	supplier, err := s.repo.FindSupplierByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "supplier not found", "load supplier")
	}
	return supplier, nil
}

func (s *service) ListClientAddresses(ctx context.Context, clientID uuid.UUID) ([]models.Address, error) {
	addresses, err := s.repo.ListAddressesByClient(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list client addresses")
	}
	return addresses, nil
}

func (s *service) GetAddress(ctx context.Context, id uuid.UUID) (*models.Address, error) {
	address, err := s.repo.FindAddressByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "address not found", "load address")
	}
	return address, nil
}

func (s *service) AddClientAddress(ctx context.Context, clientID uuid.UUID, text string) (*models.Address, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address must not be empty")
	}
	if _, err := s.repo.FindClientByID(ctx, clientID); err != nil {
		return nil, notFoundOr(err, "client not found", "load client")
	}
	address, err := s.repo.CreateAddress(ctx, &models.Address{
		ClientID:    clientID,
		AddressText: text,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create address")
	}
	return address, nil
}

func notFoundOr(err error, notFoundMsg, internalMsg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMsg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, internalMsg)
}
