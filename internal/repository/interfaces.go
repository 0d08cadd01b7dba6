package repository

import (
	"context"

	"github.com/SigNoz/marketplace-go-app/internal/models"
	"github.com/shopspring/decimal"
)

// Store groups the repositories of one connection or transaction.
type Store interface {
	Users() UserRepository
	Companies() CompanyRepository
	Shops() ShopRepository
	Products() ProductRepository
	Categories() CategoryRepository
	Containers() ContainerRepository
	Ratings() RatingRepository
	Interactions() InteractionRepository

	// InTx runs fn against a Store bound to one transaction. The transaction
	// commits when fn returns nil and rolls back otherwise. Calling InTx on a
	// transactional Store runs fn in the same transaction.
	InTx(ctx context.Context, fn func(tx Store) error) error
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)

	CreateProfile(ctx context.Context, profile *models.UserProfile) error
	GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error)
}

type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id int64) (*models.Company, error)
	GetByAdmin(ctx context.Context, userID int64) (*models.Company, error)
}

type ShopRepository interface {
	Create(ctx context.Context, shop *models.Shop) error
	GetByID(ctx context.Context, id int64) (*models.Shop, error)
	// GetInCompany finds a shop by id only if it belongs to companyID.
	GetInCompany(ctx context.Context, companyID, shopID int64) (*models.Shop, error)
	// List returns a page of shops, all of them when companyID is nil, and the total count.
	List(ctx context.Context, companyID *int64, page models.Page) ([]models.Shop, int64, error)
	Update(ctx context.Context, shop *models.Shop) error
	Delete(ctx context.Context, companyID, shopID int64) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	// GetInShop finds a product by id only if it belongs to shopID.
	GetInShop(ctx context.Context, shopID, productID int64) (*models.Product, error)
	List(ctx context.Context, q models.ProductQuery, page models.Page) ([]models.Product, int64, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, shopID, productID int64) error

	// LockForUpdate takes a row lock on the product for the rest of the transaction.
	LockForUpdate(ctx context.Context, id int64) error
	// RefreshAverageRating stores the mean of the product's ratings (0 when
	// there are none) in a single statement and returns the stored value.
	RefreshAverageRating(ctx context.Context, id int64) (decimal.Decimal, error)
}

type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	Get(ctx context.Context, id int64) (*models.Category, error)
	// ListSubCategories returns the sub-categories of categoryID, or all of them when nil.
	ListSubCategories(ctx context.Context, categoryID *int64) ([]models.SubCategory, error)
	GetSubCategory(ctx context.Context, id int64) (*models.SubCategory, error)
}

// ContainerRepository persists carts, wishlists and orders and their items.
type ContainerRepository interface {
	Get(ctx context.Context, kind models.ContainerKind, ownerID int64) (*models.Container, error)
	// Create returns ErrDuplicate when the owner already has a container of this kind.
	Create(ctx context.Context, kind models.ContainerKind, ownerID int64) (*models.Container, error)
	UpdateDeliveryAddress(ctx context.Context, cartID int64, address string) error

	// AddItem returns ErrDuplicate when the product is already in the container.
	AddItem(ctx context.Context, kind models.ContainerKind, item *models.LineItem) error
	GetItem(ctx context.Context, kind models.ContainerKind, containerID, productID int64) (*models.LineItem, error)
	// ListItems returns items with product details; a nil page returns all of them.
	ListItems(ctx context.Context, kind models.ContainerKind, containerID int64, page *models.Page) ([]models.LineItem, int64, error)
	UpdateItemQuantity(ctx context.Context, kind models.ContainerKind, containerID, productID int64, quantity int) error
	UpdateItemStatus(ctx context.Context, orderID, productID int64, status string) error
	// RemoveItem returns ErrNotFound when the product is not in the container.
	RemoveItem(ctx context.Context, kind models.ContainerKind, containerID, productID int64) error
	ClearItems(ctx context.Context, kind models.ContainerKind, containerID int64) (int64, error)
	CountItems(ctx context.Context, kind models.ContainerKind, containerID int64) (int64, error)
}

type RatingRepository interface {
	// Upsert inserts the rating or replaces the score of the user's existing one.
	Upsert(ctx context.Context, rating *models.Rating) error
	Get(ctx context.Context, productID, userID int64) (*models.Rating, error)
	Delete(ctx context.Context, productID, userID int64) error
}

type InteractionRepository interface {
	// Touch records an interaction, refreshing its timestamp if it already exists.
	Touch(ctx context.Context, userID, productID int64, interactionType string) error
	// ListProducts returns the products a user interacted with, most recent first.
	ListProducts(ctx context.Context, userID int64, interactionType string, page models.Page) ([]models.Product, int64, error)
	Clear(ctx context.Context, userID int64, interactionType string) (int64, error)
}
