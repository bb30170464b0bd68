package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shandysiswandi/chemvis/internal/account/entity"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkgerror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement:false"`
	Username     string    `gorm:"size:150;not null;uniqueIndex"`
	Email        string    `gorm:"size:254;not null"`
	PasswordHash string    `gorm:"size:128;not null"`
	IsStaff      bool      `gorm:"not null"`
	IsSuperuser  bool      `gorm:"not null"`
	IsActive     bool      `gorm:"not null"`
	DateJoined   time.Time `gorm:"not null;index"`
}

func (userModel) TableName() string { return "users" }

type tokenModel struct {
	Key       string    `gorm:"primaryKey;size:40"`
	UserID    int64     `gorm:"not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null"`
	User      userModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (tokenModel) TableName() string { return "auth_tokens" }

func (m userModel) toEntity() entity.User {
	u := entity.User(m)
	u.DateJoined = m.DateJoined.UTC()
	return u
}

var errDuplicateUsername = pkgerror.NewBusiness("a user with that username already exists", pkgerror.CodeConflict)

// GormStore keeps users and their API tokens.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&userModel{}, &tokenModel{}); err != nil {
		return fmt.Errorf("migrate account tables: %w", err)
	}
	return nil
}

func (s *GormStore) CountUsers(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&userModel{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return int(n), nil
}

func (s *GormStore) GetUser(ctx context.Context, id int64) (entity.User, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (entity.User, error) {
	return s.first(ctx, "username = ?", username)
}

func (s *GormStore) first(ctx context.Context, query string, arg any) (entity.User, error) {
	var m userModel
	err := s.db.WithContext(ctx).Where(query, arg).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.User{}, pkgerror.ErrNotFound
	}
	if err != nil {
		return entity.User{}, fmt.Errorf("get user: %w", err)
	}
	return m.toEntity(), nil
}

// ListUsers pages through accounts, most recently joined first.
func (s *GormStore) ListUsers(ctx context.Context, page, pageSize int) ([]entity.User, int, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&userModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	var rows []userModel
	if err := db.
		Order("date_joined DESC").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	out := make([]entity.User, len(rows))
	for i, m := range rows {
		out[i] = m.toEntity()
	}

	return out, int(total), nil
}

func (s *GormStore) CreateUser(ctx context.Context, u entity.User) error {
	m := userModel(u)
	err := s.db.WithContext(ctx).Create(&m).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errDuplicateUsername
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *GormStore) UpdateUser(ctx context.Context, u entity.User) error {
	m := userModel(u)
	res := s.db.WithContext(ctx).
		Model(&userModel{}).
		Where("id = ?", u.ID).
		Select("username", "email", "password_hash", "is_staff", "is_superuser", "is_active").
		Updates(&m)
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return errDuplicateUsername
	}
	if res.Error != nil {
		return fmt.Errorf("update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerror.ErrNotFound
	}
	return nil
}

func (s *GormStore) DeleteUser(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&tokenModel{}).Error; err != nil {
			return fmt.Errorf("delete token: %w", err)
		}

		res := tx.Where("id = ?", id).Delete(&userModel{})
		if res.Error != nil {
			return fmt.Errorf("delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return pkgerror.ErrNotFound
		}
		return nil
	})
}

func (s *GormStore) IssueToken(ctx context.Context, candidate entity.Token) (entity.Token, error) {
	db := s.db.WithContext(ctx)

	m := tokenModel{Key: candidate.Key, UserID: candidate.UserID, CreatedAt: candidate.CreatedAt}
	if err := db.Omit(clause.Associations).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&m).Error; err != nil {
		return entity.Token{}, fmt.Errorf("issue token: %w", err)
	}

	var stored tokenModel
	if err := db.Where("user_id = ?", candidate.UserID).First(&stored).Error; err != nil {
		return entity.Token{}, fmt.Errorf("load token: %w", err)
	}

	return entity.Token{Key: stored.Key, UserID: stored.UserID, CreatedAt: stored.CreatedAt.UTC()}, nil
}

func (s *GormStore) FindToken(ctx context.Context, key string) (entity.Token, entity.User, error) {
	if key == "" {
		return entity.Token{}, entity.User{}, pkgerror.ErrNotFound
	}

	var m tokenModel
	err := s.db.WithContext(ctx).Preload("User").Where(&tokenModel{Key: key}).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.Token{}, entity.User{}, pkgerror.ErrNotFound
	}
	if err != nil {
		return entity.Token{}, entity.User{}, fmt.Errorf("find token: %w", err)
	}

	return entity.Token{Key: m.Key, UserID: m.UserID, CreatedAt: m.CreatedAt.UTC()}, m.User.toEntity(), nil
}
