package casdoor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/redis/go-redis/v9"

	"github.com/altius-edu/portal-service/internal/models"
	"github.com/altius-edu/portal-service/internal/repositories"
)

// CasdoorConfig holds the configuration for Casdoor connection
type CasdoorConfig struct {
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}

type UserCasdoor struct {
	client *casdoorsdk.Client
	redis  *redis.Client
	config CasdoorConfig

	// Cache settings
	cachePrefix string
	cacheTTL    time.Duration
}

func NewUserCasdoor(config CasdoorConfig, redisClient *redis.Client) repositories.UserRepository {
	client := casdoorsdk.NewClient(
		config.Endpoint,
		config.ClientID,
		config.ClientSecret,
		config.Certificate,
		config.OrganizationName,
		config.ApplicationName,
	)

	return &UserCasdoor{
		client:      client,
		redis:       redisClient,
		config:      config,
		cachePrefix: "user:",
		cacheTTL:    15 * time.Minute,
	}
}

// ===== CACHE METHODS =====

func (u *UserCasdoor) getCacheKey(key string) string {
	return fmt.Sprintf("%s%s", u.cachePrefix, key)
}

func (u *UserCasdoor) getUserFromCache(ctx context.Context, key string) (*models.User, error) {
	if u.redis == nil {
		return nil, nil // Cache not available
	}

	data, err := u.redis.Get(ctx, u.getCacheKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Not found in cache
		}
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached user: %w", err)
	}

	return &user, nil
}

func (u *UserCasdoor) setUserCache(ctx context.Context, key string, user *models.User) error {
	if u.redis == nil {
		return nil
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user for cache: %w", err)
	}

	return u.redis.Set(ctx, u.getCacheKey(key), data, u.cacheTTL).Err()
}

// InvalidateCache drops the cached read model for a user.
func (u *UserCasdoor) InvalidateCache(ctx context.Context, id string) error {
	if u.redis == nil {
		return nil
	}
	return u.redis.Del(ctx, u.getCacheKey(id)).Err()
}

// ===== CONVERSION METHODS =====

// ConvertCasdoorUser converts a Casdoor user to the portal's read model. The
// raw role vocabulary (Type/Tag) goes through the normalizer here, so every
// downstream consumer only sees canonical roles.
func ConvertCasdoorUser(casdoorUser *casdoorsdk.User) *models.User {
	if casdoorUser == nil {
		return nil
	}

	var createdAt, updatedAt time.Time
	if casdoorUser.CreatedTime != "" {
		createdAt, _ = time.Parse(time.RFC3339, casdoorUser.CreatedTime)
	}
	if casdoorUser.UpdatedTime != "" {
		updatedAt, _ = time.Parse(time.RFC3339, casdoorUser.UpdatedTime)
	}

	firstName, lastName := casdoorUser.FirstName, casdoorUser.LastName
	if firstName == "" && lastName == "" && casdoorUser.DisplayName != "" {
		firstName, lastName = splitDisplayName(casdoorUser.DisplayName)
	}

	rawRole := casdoorUser.Type
	if rawRole == "" {
		rawRole = casdoorUser.Tag
	}

	user := &models.User{
		ID:        casdoorUser.Id,
		Email:     casdoorUser.Email,
		FirstName: firstName,
		LastName:  lastName,
		Role:      models.NormalizeRole(rawRole),
		IsActive:  !casdoorUser.IsForbidden && !casdoorUser.IsDeleted,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if casdoorUser.Avatar != "" {
		avatar := casdoorUser.Avatar
		user.AvatarURL = &avatar
	}
	if casdoorUser.Affiliation != "" {
		affiliation := casdoorUser.Affiliation
		user.InstitutionID = &affiliation
	}

	return user
}

func splitDisplayName(displayName string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(displayName), " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

// ===== REPOSITORY METHODS =====

func (u *UserCasdoor) GetByID(ctx context.Context, id string) (*models.User, error) {
	if cached, err := u.getUserFromCache(ctx, id); err == nil && cached != nil {
		return cached, nil
	}

	casdoorUser, err := u.client.GetUserByUserId(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user from casdoor: %w", err)
	}
	if casdoorUser == nil {
		return nil, repositories.ErrNotFound
	}

	user := ConvertCasdoorUser(casdoorUser)
	// Cache write failures must not fail the read.
	_ = u.setUserCache(ctx, id, user)

	return user, nil
}

func (u *UserCasdoor) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if cached, err := u.getUserFromCache(ctx, "email:"+email); err == nil && cached != nil {
		return cached, nil
	}

	casdoorUser, err := u.client.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email from casdoor: %w", err)
	}
	if casdoorUser == nil {
		return nil, repositories.ErrNotFound
	}

	user := ConvertCasdoorUser(casdoorUser)
	_ = u.setUserCache(ctx, "email:"+email, user)

	return user, nil
}

func (u *UserCasdoor) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		user, err := u.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				continue
			}
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (u *UserCasdoor) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	casdoorUsers, err := u.client.GetUsers()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users from casdoor: %w", err)
	}

	var users []*models.User
	for _, cu := range casdoorUsers {
		user := ConvertCasdoorUser(cu)
		if !matchesFilters(user, filters) {
			continue
		}
		users = append(users, user)
	}

	total := int64(len(users))
	users = paginate(users, filters.Limit, filters.Offset)

	return users, total, nil
}

func (u *UserCasdoor) Search(ctx context.Context, query string, filters repositories.UserFilters) ([]*models.User, int64, error) {
	filters.Query = query
	return u.List(ctx, filters)
}

func (u *UserCasdoor) ExistsByID(ctx context.Context, id string) (bool, error) {
	_, err := u.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (u *UserCasdoor) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	user, err := u.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return user.Role == role, nil
}

// ===== HELPERS =====

func matchesFilters(user *models.User, filters repositories.UserFilters) bool {
	if filters.Role != nil && user.Role != *filters.Role {
		return false
	}
	if filters.InstitutionID != nil {
		if user.InstitutionID == nil || *user.InstitutionID != *filters.InstitutionID {
			return false
		}
	}
	if filters.Query != "" {
		q := strings.ToLower(filters.Query)
		if !strings.Contains(strings.ToLower(user.FullName()), q) &&
			!strings.Contains(strings.ToLower(user.Email), q) {
			return false
		}
	}
	return true
}

func paginate(users []*models.User, limit, offset int) []*models.User {
	if offset >= len(users) {
		return nil
	}
	users = users[offset:]
	if limit > 0 && limit < len(users) {
		users = users[:limit]
	}
	return users
}
