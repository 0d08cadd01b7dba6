package models

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Product stock statuses
const (
	StatusInStock    = "In Stock"
	StatusLowStock   = "Low Stock"
	StatusOutOfStock = "Out of Stock"
)

// Product admin review statuses
const (
	AdminApproved    = "approved"
	AdminNotApproved = "notApproved"
)

// Order item fulfilment statuses
const (
	OrderItemShipped   = "shipped"
	OrderItemCancelled = "cancelled"
	OrderItemDelivered = "delivered"
)

// Profile roles
const (
	RoleSeller = "seller"
	RoleBuyer  = "buyer"
)

// Interaction types
const (
	InteractionViewed    = "Viewed"
	InteractionPurchased = "Purchased"
	InteractionLiked     = "Liked"
)

// User represents an account
type User struct {
	ID             int64     `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	IsVerified     bool      `json:"is_verified" db:"is_verified"`
	IsCompanyAdmin bool      `json:"is_company_admin" db:"is_company_admin"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// UserProfile holds the personal details attached one-to-one to a user
type UserProfile struct {
	ID          int64  `json:"id" db:"id"`
	UserID      int64  `json:"user_id" db:"user_id"`
	FirstName   string `json:"first_name" db:"first_name"`
	MiddleName  string `json:"middle_name" db:"middle_name"`
	LastName    string `json:"last_name" db:"last_name"`
	Country     string `json:"country" db:"country"`
	Region      string `json:"region" db:"region"`
	Zone        string `json:"zone" db:"zone"`
	Woreda      string `json:"woreda" db:"woreda"`
	Kebele      string `json:"kebele" db:"kebele"`
	PhoneNumber string `json:"phone_number" db:"phone_number"`
	Role        string `json:"role" db:"role"`
}

// Company is a legal seller entity administered by exactly one user
type Company struct {
	ID          int64     `json:"id" db:"id"`
	AdminUserID int64     `json:"company_admin" db:"admin_user_id"`
	Name        string    `json:"name" db:"name"`
	Country     string    `json:"country" db:"country"`
	Region      string    `json:"region" db:"region"`
	Zone        string    `json:"zone" db:"zone"`
	Woreda      string    `json:"woreda" db:"woreda"`
	Kebele      string    `json:"kebele" db:"kebele"`
	HouseNumber string    `json:"house_number" db:"house_number"`
	TIN         string    `json:"tin_number" db:"tin_number"`
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Shop is a storefront owned by a company
type Shop struct {
	ID          int64     `json:"id" db:"id"`
	CompanyID   int64     `json:"company" db:"company_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Category is a top level product classification
type Category struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

// SubCategory belongs to exactly one category
type SubCategory struct {
	ID          int64  `json:"id" db:"id"`
	CategoryID  int64  `json:"parent" db:"category_id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

// Product represents a sellable item of a shop
type Product struct {
	ID            int64               `json:"id" db:"id"`
	ShopID        int64               `json:"shop" db:"shop_id"`
	CompanyID     int64               `json:"company" db:"company_id"`
	CategoryID    int64               `json:"category" db:"category_id"`
	SubCategoryID int64               `json:"sub_category" db:"sub_category_id"`
	Name          string              `json:"name" db:"name"`
	Description   string              `json:"description" db:"description"`
	Status        string              `json:"status" db:"status"`
	Quantity      *int64              `json:"quantity" db:"quantity"`
	Price         decimal.Decimal     `json:"price" db:"price"`
	Tax           decimal.Decimal     `json:"tax" db:"tax"`
	HasDiscount   bool                `json:"has_discount" db:"has_discount"`
	DiscountPrice decimal.NullDecimal `json:"discount_price" db:"discount_price"`
	Currency      string              `json:"currency" db:"currency"`
	AdminStatus   *string             `json:"admin_status" db:"admin_status"`
	IsPublished   bool                `json:"is_published" db:"is_published"`
	IsDeleted     bool                `json:"is_deleted" db:"is_deleted"`
	AverageRating decimal.Decimal     `json:"ave_rating" db:"average_rating"`
	CreatedAt     time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" db:"updated_at"`
}

// EffectiveDiscount returns the per-unit discount amount, if the product is discounted.
func (p *Product) EffectiveDiscount() decimal.NullDecimal {
	if !p.HasDiscount || !p.DiscountPrice.Valid {
		return decimal.NullDecimal{}
	}
	return p.DiscountPrice
}

// ContainerKind names one of the per-user line item containers
type ContainerKind string

const (
	KindCart     ContainerKind = "cart"
	KindWishlist ContainerKind = "wishlist"
	KindOrder    ContainerKind = "order"
)

// Container is a cart, wishlist or order owned by exactly one user
type Container struct {
	ID              int64         `json:"id" db:"id"`
	Kind            ContainerKind `json:"-"`
	OwnerID         int64         `json:"owner" db:"owner_id"`
	DeliveryAddress string        `json:"delivery_address,omitempty" db:"delivery_address"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// PriceSnapshot freezes prices on an order item when it is added
type PriceSnapshot struct {
	CustomerID        int64           `json:"customer" db:"customer_id"`
	MerchantCompanyID int64           `json:"merchant_company" db:"merchant_company_id"`
	OrderPrice        decimal.Decimal `json:"order_price" db:"order_price"`
	OrderTax          decimal.Decimal `json:"order_tax" db:"order_tax"`
	OrderDiscount     decimal.Decimal `json:"order_discount" db:"order_discount"`
}

// ProductDetails is the product view embedded in line items
type ProductDetails struct {
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	Status        string              `json:"status"`
	Price         decimal.Decimal     `json:"price"`
	Tax           decimal.Decimal     `json:"tax"`
	HasDiscount   bool                `json:"has_discount"`
	DiscountPrice decimal.NullDecimal `json:"discount_price"`
	Currency      string              `json:"currency"`
}

// LineItem is a (container, product) pair; cart and order items carry a quantity
type LineItem struct {
	ID          int64           `json:"id" db:"id"`
	ContainerID int64           `json:"container" db:"container_id"`
	ProductID   int64           `json:"product" db:"product_id"`
	Quantity    int             `json:"quantity,omitempty" db:"quantity"`
	Status      *string         `json:"status,omitempty" db:"status"`
	Snapshot    *PriceSnapshot  `json:"snapshot,omitempty"`
	Product     *ProductDetails `json:"product_details,omitempty"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Rating is one user's 1..5 score for one product
type Rating struct {
	ID        int64     `json:"id" db:"id"`
	ProductID int64     `json:"product" db:"product_id"`
	UserID    int64     `json:"user" db:"user_id"`
	Rating    int       `json:"rating" db:"rating"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ProductInteraction records a user's interaction with a product
type ProductInteraction struct {
	ID              int64     `json:"id" db:"id"`
	UserID          int64     `json:"user" db:"user_id"`
	ProductID       int64     `json:"product" db:"product_id"`
	InteractionType string    `json:"interaction_type" db:"interaction_type"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Page selects a 1-based page of a listing
type Page struct {
	Number int
	Size   int
}

// Offset returns the number of rows to skip. It saturates at math.MaxInt
// instead of overflowing.
func (p Page) Offset() int {
	if p.Number < 1 || p.Size < 1 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Size
}

// MaxNumber is the largest page number whose rows are addressable
func (p Page) MaxNumber() int {
	if p.Size < 1 {
		return math.MaxInt
	}
	return math.MaxInt / p.Size
}

// ProductSort orders product listings
type ProductSort int

const (
	SortNewest ProductSort = iota
	SortDiscountAsc
	SortQuantityDesc
	SortDiscountDesc
)

// ProductQuery filters product listings; nil/zero fields are ignored
type ProductQuery struct {
	ShopID          *int64
	CategoryID      *int64
	SubCategoryID   *int64
	CategoryName    string
	SubCategoryName string
	DiscountBelow   decimal.NullDecimal
	HasDiscount     *bool
	RatingAbove     decimal.NullDecimal
	PriceAbove      decimal.NullDecimal
	PriceBelow      decimal.NullDecimal
	Keywords        string
	ExcludeID       *int64
	// OnlyDiscounted keeps products with has_discount and a discount price
	OnlyDiscounted bool
	// OnlyListed keeps approved, non-deleted products
	OnlyListed     bool
	ExcludeDeleted bool
	Sort           ProductSort
}
