package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/mirrorhours/mirror-api/internal/apperrors"
	"github.com/mirrorhours/mirror-api/internal/models"
	"github.com/mirrorhours/mirror-api/internal/repository"
)

// Service handles business logic
type Service struct {
	repo *repository.Repository
	log  *logrus.Logger
}

// NewService initializes a new service
func NewService(repo *repository.Repository, log *logrus.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Register creates a new user with hashed password
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, apperrors.Validation("Missing username, email, or password")
	}

	taken, err := s.repo.UsernameOrEmailTaken(ctx, username, email)
	if err != nil {
		return nil, apperrors.Storage("Failed to register user", err)
	}
	if taken {
		return nil, apperrors.Conflict("User with this username or email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to register user", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		// The pre-check races with concurrent registrations; the unique
		// constraint decides.
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, apperrors.Conflict("User with this username or email already exists")
		}
		return nil, apperrors.Storage("Failed to register user", err)
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user by username and password. Unknown username
// and wrong password yield the same error.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, apperrors.Validation("Missing username or password")
	}

	user, err := s.repo.FindUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Auth("Invalid username or password")
	}
	if err != nil {
		return nil, apperrors.Storage("Failed to log in", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Auth("Invalid username or password")
	}

	s.log.Infof("User logged in: %s", user.Username)
	return user, nil
}

// CreateHistoryItem stores a new item for an existing user. details may
// be any JSON value: a string is stored verbatim, any other value as
// its compact JSON text, an absent value as NULL.
func (s *Service) CreateHistoryItem(ctx context.Context, userID int, timeLabel, itemType string, thoughts *string, details json.RawMessage) (*models.HistoryItem, error) {
	if userID == 0 || timeLabel == "" || itemType == "" {
		return nil, apperrors.Validation("Missing required fields: userId, time, type")
	}

	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return nil, apperrors.Storage("Failed to create history item", err)
	}
	if !exists {
		return nil, apperrors.NotFound(fmt.Sprintf("User with ID %d not found", userID))
	}

	detailsText, err := normalizeDetails(details)
	if err != nil {
		return nil, apperrors.Validation("Invalid details payload")
	}

	item := &models.HistoryItem{
		UserID:   userID,
		Time:     timeLabel,
		Type:     itemType,
		Thoughts: thoughts,
		Details:  detailsText,
	}
	if err := s.repo.CreateHistoryItem(ctx, item); err != nil {
		return nil, apperrors.Storage("Failed to create history item", err)
	}

	s.log.Infof("History item %d created for user %d", item.ID, userID)
	return item, nil
}

// ListHistory returns the user's items newest first. A user with no
// items gets an empty slice, not an error.
func (s *Service) ListHistory(ctx context.Context, userID int) ([]models.HistoryItem, error) {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return nil, apperrors.Storage("Failed to list history items", err)
	}
	if !exists {
		return nil, apperrors.NotFound(fmt.Sprintf("User with ID %d not found", userID))
	}

	items, err := s.repo.ListHistoryByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Storage("Failed to list history items", err)
	}
	return items, nil
}

// DeleteHistoryItem removes an item by id. There is no ownership check;
// any caller who knows the id may delete it.
func (s *Service) DeleteHistoryItem(ctx context.Context, itemID int) error {
	err := s.repo.DeleteHistoryItem(ctx, itemID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(fmt.Sprintf("History item with ID %d not found", itemID))
	}
	if err != nil {
		return apperrors.Storage("Failed to delete history item", err)
	}
	s.log.Infof("History item %d deleted", itemID)
	return nil
}

// normalizeDetails resolves the polymorphic details field into the
// single text form that gets stored and returned. The stored text is
// never re-parsed on read.
func normalizeDetails(raw json.RawMessage) (*string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return &asString, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, err
	}
	text := buf.String()
	return &text, nil
}
