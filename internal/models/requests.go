package models

import "github.com/shopspring/decimal"

// ProfileInput is the profile part of a registration request
type ProfileInput struct {
	FirstName   string `json:"first_name" validate:"required,max=100"`
	MiddleName  string `json:"middle_name" validate:"max=100"`
	LastName    string `json:"last_name" validate:"required,max=100"`
	Country     string `json:"country" validate:"max=100"`
	Region      string `json:"region" validate:"max=100"`
	Zone        string `json:"zone" validate:"max=100"`
	Woreda      string `json:"woreda" validate:"max=100"`
	Kebele      string `json:"kebele" validate:"max=100"`
	PhoneNumber string `json:"phone_number" validate:"max=20"`
	Role        string `json:"role" validate:"omitempty,oneof=seller buyer"`
}

// CompanyInput is the company part of a registration request
type CompanyInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Country     string `json:"country" validate:"max=100"`
	Region      string `json:"region" validate:"max=100"`
	Zone        string `json:"zone" validate:"max=100"`
	Woreda      string `json:"woreda" validate:"max=100"`
	Kebele      string `json:"kebele" validate:"max=100"`
	HouseNumber string `json:"house_number" validate:"max=50"`
	TIN         string `json:"tin_number" validate:"max=50"`
	PhoneNumber string `json:"phone_number" validate:"max=20"`
}

// RegistrationRequest creates a user, its profile and its company atomically
type RegistrationRequest struct {
	Email    string       `json:"email" validate:"required,email,max=255"`
	Password string       `json:"password" validate:"required,min=6,max=68"`
	Profile  ProfileInput `json:"user_profile"`
	Company  CompanyInput `json:"company"`
}

// LoginRequest carries credentials
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CheckEmailRequest asks whether an email is still free
type CheckEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ShopInput creates or updates a shop; nil fields are left unchanged on update
type ShopInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// ProductInput creates or partially updates a product
type ProductInput struct {
	Name          *string              `json:"name" validate:"omitempty,min=1,max=200"`
	Description   *string              `json:"description" validate:"omitempty,max=5000"`
	CategoryID    *int64               `json:"category" validate:"omitempty,gt=0"`
	SubCategoryID *int64               `json:"sub_category" validate:"omitempty,gt=0"`
	Status        *string              `json:"status" validate:"omitempty,oneof='In Stock' 'Low Stock' 'Out of Stock'"`
	Quantity      *int64               `json:"quantity" validate:"omitempty,gte=0"`
	Price         *decimal.Decimal     `json:"price"`
	Tax           *decimal.Decimal     `json:"tax"`
	HasDiscount   *bool                `json:"has_discount"`
	DiscountPrice *decimal.NullDecimal `json:"discount_price"`
	IsPublished   *bool                `json:"is_published"`
}

// DeliveryAddressInput updates a cart's delivery address
type DeliveryAddressInput struct {
	DeliveryAddress string `json:"delivery_address" validate:"required,max=500"`
}

// QuantityInput accepts a quantity as JSON number or string; it is parsed by the service
type QuantityInput struct {
	Quantity interface{} `json:"quantity"`
}

// RatingInput carries a 1..5 score
type RatingInput struct {
	Rating interface{} `json:"rating"`
}

// ItemStatusInput updates an order item's status
type ItemStatusInput struct {
	Status string `json:"status" validate:"required,oneof=shipped cancelled delivered"`
}
