package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kendall-kelly/kendalls-studio-api/models"
	"github.com/kendall-kelly/kendalls-studio-api/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserFilter narrows List. An empty UsernameOrEmail returns everyone.
type UserFilter struct {
	UsernameOrEmail string
}

type CreateUserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
	IsActive  bool
}

type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Email     *string
}

// UserService manages user accounts
type UserService struct {
	db         *gorm.DB
	bcryptCost int
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db, bcryptCost: bcrypt.DefaultCost}
}

// WithBcryptCost overrides the hashing cost (tests use bcrypt.MinCost)
func (s *UserService) WithBcryptCost(cost int) *UserService {
	s.bcryptCost = cost
	return s
}

func (s *UserService) withTx(tx *gorm.DB) *UserService {
	return &UserService{db: tx, bcryptCost: s.bcryptCost}
}

func (s *UserService) List(ctx context.Context, f UserFilter) ([]models.User, error) {
	q := s.db.WithContext(ctx).Order("id")
	if f.UsernameOrEmail != "" {
		q = q.Where("username = ? OR email = ?", f.UsernameOrEmail, f.UsernameOrEmail)
	}

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, lookupError(err, "user", "id", id)
	}
	return &user, nil
}

// GetByUsernameOrEmail resolves a login name, which may be either
func (s *UserService) GetByUsernameOrEmail(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", login, strings.ToLower(login)).
		First(&user).Error
	if err != nil {
		return nil, lookupError(err, "user", "username or email", login)
	}
	return &user, nil
}

// Create hashes the password and stores a new user. Role defaults to USER.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if !utils.ValidPassword(in.Password) {
		return nil, badRequest("INVALID_PASSWORD", "%s", utils.PasswordPolicyMessage)
	}
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if !models.IsValidRole(role) {
		return nil, badRequest("INVALID_ROLE", "invalid role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username:  in.Username,
		Email:     strings.ToLower(in.Email),
		Password:  string(hash),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      role,
		IsActive:  in.IsActive,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnique(tx, "username", user.Username); err != nil {
			return err
		}
		if err := ensureUnique(tx, "email", user.Email); err != nil {
			return err
		}
		return createUser(tx, &user)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("User created")
	return &user, nil
}

func createUser(tx *gorm.DB, user *models.User) error {
	err := tx.Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return alreadyExists("user", "username or email", user.Username)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// ensureUnique also checks soft-deleted rows, which still hold the unique index
func ensureUnique(tx *gorm.DB, column, value string) error {
	var count int64
	if err := tx.Unscoped().Model(&models.User{}).Where(column+" = ?", value).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check %s: %w", column, err)
	}
	if count > 0 {
		return alreadyExists("user", column, value)
	}
	return nil
}

func (s *UserService) Update(ctx context.Context, p models.Principal, id uint, in UpdateUserInput) (*models.User, error) {
	if !p.CanActFor(id) {
		return nil, forbidden("cannot update another user")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return lookupError(err, "user", "id", id)
		}

		updates := map[string]interface{}{}
		if in.FirstName != nil {
			updates["first_name"] = *in.FirstName
		}
		if in.LastName != nil {
			updates["last_name"] = *in.LastName
		}
		if in.Email != nil {
			email := strings.ToLower(*in.Email)
			if email != user.Email {
				if err := ensureUnique(tx, "email", email); err != nil {
					return err
				}
				updates["email"] = email
			}
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&user).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Activate marks the account as verified
func (s *UserService) Activate(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_active", true)
	if res.Error != nil {
		return fmt.Errorf("failed to activate user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("user", "id", id)
	}
	logrus.WithField("user_id", id).Info("User activated")
	return nil
}

// Delete soft-deletes the user and removes their addresses
func (s *UserService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound("user", "id", id)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Address{}).Error; err != nil {
			return fmt.Errorf("failed to delete addresses: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	logrus.WithField("user_id", id).Info("User deleted")
	return nil
}

// purge hard-deletes a user that never became usable, freeing its username
// and email
func (s *UserService) purge(ctx context.Context, id uint) error {
	if err := s.db.WithContext(ctx).Unscoped().Delete(&models.User{}, id).Error; err != nil {
		return fmt.Errorf("failed to remove user: %w", err)
	}
	return nil
}

// CheckCredentials returns the user when login and password match and the
// account is active. Unknown users and wrong passwords fail the same way.
func (s *UserService) CheckCredentials(ctx context.Context, login, password string) (*models.User, error) {
	user, err := s.GetByUsernameOrEmail(ctx, login)
	if errors.Is(err, ErrNotFound) {
		return nil, authenticationFailed("invalid username or password")
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, authenticationFailed("invalid username or password")
	}
	if !user.IsActive {
		return nil, newError(ErrAuthenticationFailed, "ACCOUNT_NOT_VERIFIED", "account %s has not been verified", user.Username)
	}
	return user, nil
}

// PrincipalFor resolves the subject of an access token to the caller acting
// on a request. Deleted and inactive accounts no longer authenticate.
func (s *UserService) PrincipalFor(ctx context.Context, username string) (models.Principal, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Principal{}, authenticationFailed("unknown token subject")
	}
	if err != nil {
		return models.Principal{}, fmt.Errorf("failed to load principal: %w", err)
	}
	if !user.IsActive {
		return models.Principal{}, newError(ErrAuthenticationFailed, "ACCOUNT_NOT_VERIFIED", "account %s has not been verified", user.Username)
	}
	return models.PrincipalFor(user), nil
}
