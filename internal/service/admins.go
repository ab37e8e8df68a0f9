package service

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"clubcorra/internal/domain"
)

// AdminInput is a new portal account
type AdminInput struct {
	Email    string
	Name     string
	Password string
	Role     domain.AdminRole
}

// AdminService manages portal accounts
type AdminService interface {
	Create(ctx context.Context, in AdminInput) (*domain.Admin, error)
	List(ctx context.Context) ([]domain.Admin, error)
	Get(ctx context.Context, id uint) (*domain.Admin, error)
	// SetActive enables or disables an admin; nobody can disable themselves
	SetActive(ctx context.Context, id, actorID uint, active bool) (*domain.Admin, error)
}

type adminService struct {
	db *gorm.DB
}

// NewAdminService constructs an AdminService
func NewAdminService(db *gorm.DB) AdminService {
	return &adminService{db: db}
}

func (s *adminService) Create(ctx context.Context, in AdminInput) (*domain.Admin, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, invalid("email", "is required")
	}
	// Validate password length
	if len(in.Password) < 8 || len(in.Password) > 64 {
		return nil, invalid("password", "must be 8 to 64 characters")
	}
	role := in.Role
	if role == "" {
		role = domain.AdminRoleAdmin
	}
	if !role.Valid() {
		return nil, invalid("role", "must be ADMIN or SUPER_ADMIN")
	}
	// Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	a := domain.Admin{Email: email, Name: in.Name, PasswordHash: string(hash), Role: role, IsActive: true}
	if err := s.db.WithContext(ctx).Create(&a).Error; err != nil {
		return nil, translate(err)
	}
	logrus.WithFields(logrus.Fields{"admin_id": a.ID, "role": a.Role}).Info("Admin created")
	return &a, nil
}

func (s *adminService) List(ctx context.Context) ([]domain.Admin, error) {
	var out []domain.Admin
	if err := s.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *adminService) Get(ctx context.Context, id uint) (*domain.Admin, error) {
	var a domain.Admin
	if err := s.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *adminService) SetActive(ctx context.Context, id, actorID uint, active bool) (*domain.Admin, error) {
	// Admins cannot deactivate themselves
	if id == actorID && !active {
		return nil, ErrForbidden
	}
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(a).Update("is_active", active).Error; err != nil {
		return nil, err
	}
	a.IsActive = active
	logrus.WithFields(logrus.Fields{"admin_id": id, "actor_id": actorID, "active": active}).Info("Admin status changed")
	return a, nil
}
