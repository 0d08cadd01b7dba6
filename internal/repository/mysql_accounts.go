package repository

import (
	"context"
	"time"

	"github.com/SigNoz/marketplace-go-app/internal/models"
)

type mysqlUsers struct{ s *MySQLStore }

const userColumns = "id, email, password_hash, is_active, is_verified, is_company_admin, created_at, updated_at"

func (r *mysqlUsers) Create(ctx context.Context, u *models.User) error {
	query := "INSERT INTO users (email, password_hash, is_active, is_verified, is_company_admin) VALUES (?, ?, ?, ?, ?)"
	res, err := r.s.exec(ctx, "INSERT", "users", query, u.Email, u.PasswordHash, u.IsActive, u.IsVerified, u.IsCompanyAdmin)
	if err != nil {
		return err
	}
	if u.ID, err = insertID(res); err != nil {
		return err
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	return nil
}

func (r *mysqlUsers) get(ctx context.Context, where string, arg any) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE " + where
	var u models.User
	err := r.s.queryRow(ctx, "users", query, []any{arg},
		&u.ID, &u.Email, &u.PasswordHash, &u.IsActive, &u.IsVerified, &u.IsCompanyAdmin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *mysqlUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.get(ctx, "id = ?", id)
}

func (r *mysqlUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.get(ctx, "email = ?", email)
}

func (r *mysqlUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	n, err := r.s.count(ctx, "users", "SELECT COUNT(*) FROM users WHERE email = ?", email)
	return n > 0, err
}

func (r *mysqlUsers) CreateProfile(ctx context.Context, p *models.UserProfile) error {
	query := `INSERT INTO user_profiles
		(user_id, first_name, middle_name, last_name, country, region, zone, woreda, kebele, phone_number, role)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.s.exec(ctx, "INSERT", "user_profiles", query,
		p.UserID, p.FirstName, p.MiddleName, p.LastName, p.Country, p.Region, p.Zone, p.Woreda, p.Kebele, p.PhoneNumber, p.Role,
	)
	if err != nil {
		return err
	}
	p.ID, err = insertID(res)
	return err
}

func (r *mysqlUsers) GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	query := `SELECT id, user_id, first_name, middle_name, last_name, country, region, zone, woreda, kebele, phone_number, role
		FROM user_profiles WHERE user_id = ?`
	var p models.UserProfile
	err := r.s.queryRow(ctx, "user_profiles", query, []any{userID},
		&p.ID, &p.UserID, &p.FirstName, &p.MiddleName, &p.LastName, &p.Country, &p.Region, &p.Zone, &p.Woreda, &p.Kebele, &p.PhoneNumber, &p.Role,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

type mysqlCompanies struct{ s *MySQLStore }

const companyColumns = "id, admin_user_id, name, country, region, zone, woreda, kebele, house_number, tin_number, phone_number, created_at"

func (r *mysqlCompanies) Create(ctx context.Context, c *models.Company) error {
	query := `INSERT INTO companies
		(admin_user_id, name, country, region, zone, woreda, kebele, house_number, tin_number, phone_number)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.s.exec(ctx, "INSERT", "companies", query,
		c.AdminUserID, c.Name, c.Country, c.Region, c.Zone, c.Woreda, c.Kebele, c.HouseNumber, c.TIN, c.PhoneNumber,
	)
	if err != nil {
		return err
	}
	if c.ID, err = insertID(res); err != nil {
		return err
	}
	c.CreatedAt = time.Now()
	return nil
}

func (r *mysqlCompanies) get(ctx context.Context, where string, arg any) (*models.Company, error) {
	query := "SELECT " + companyColumns + " FROM companies WHERE " + where
	var c models.Company
	err := r.s.queryRow(ctx, "companies", query, []any{arg},
		&c.ID, &c.AdminUserID, &c.Name, &c.Country, &c.Region, &c.Zone, &c.Woreda, &c.Kebele, &c.HouseNumber, &c.TIN, &c.PhoneNumber, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *mysqlCompanies) GetByID(ctx context.Context, id int64) (*models.Company, error) {
	return r.get(ctx, "id = ?", id)
}

func (r *mysqlCompanies) GetByAdmin(ctx context.Context, userID int64) (*models.Company, error) {
	return r.get(ctx, "admin_user_id = ?", userID)
}
