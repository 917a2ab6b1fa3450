package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorhours/mirror-api/internal/apperrors"
	"github.com/mirrorhours/mirror-api/internal/repository"
	"github.com/mirrorhours/mirror-api/internal/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	store, err := storage.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewService(repository.NewRepository(store), log)
}

func requireKind(t *testing.T, err error, kind apperrors.Kind) *apperrors.Error {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*apperrors.Error)
	require.True(t, ok, "expected *apperrors.Error, got %T", err)
	require.Equal(t, kind, appErr.Kind)
	return appErr
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, tc := range []struct{ username, email, password string }{
		{"", "a@example.com", "pw"},
		{"alice", "", "pw"},
		{"alice", "a@example.com", ""},
	} {
		_, err := svc.Register(ctx, tc.username, tc.email, tc.password)
		appErr := requireKind(t, err, apperrors.KindValidation)
		assert.Equal(t, "Missing username, email, or password", appErr.Message)
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.Register(context.Background(), "alice", "alice@example.com", "s3cret")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "s3cret", user.PasswordHash)
	assert.NotEmpty(t, user.PasswordHash)
}

func TestRegisterConflicts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)

	// Same username, different email.
	_, err = svc.Register(ctx, "alice", "other@example.com", "pw")
	appErr := requireKind(t, err, apperrors.KindConflict)
	assert.Equal(t, "User with this username or email already exists", appErr.Message)

	// Same email, different username.
	_, err = svc.Register(ctx, "bob", "alice@example.com", "pw")
	requireKind(t, err, apperrors.KindConflict)
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "alice@example.com", "s3cret")
	require.NoError(t, err)

	user, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	// Wrong password and unknown username produce the same message.
	_, err = svc.Login(ctx, "alice", "wrong")
	wrongPw := requireKind(t, err, apperrors.KindAuth)
	_, err = svc.Login(ctx, "nobody", "s3cret")
	unknown := requireKind(t, err, apperrors.KindAuth)
	assert.Equal(t, wrongPw.Message, unknown.Message)
	assert.Equal(t, "Invalid username or password", wrongPw.Message)
}

func TestLoginValidation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Login(context.Background(), "", "pw")
	appErr := requireKind(t, err, apperrors.KindValidation)
	assert.Equal(t, "Missing username or password", appErr.Message)
}

func TestCreateHistoryItemValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateHistoryItem(ctx, 0, "10:10", "mirror", nil, nil)
	requireKind(t, err, apperrors.KindValidation)
	_, err = svc.CreateHistoryItem(ctx, 1, "", "mirror", nil, nil)
	requireKind(t, err, apperrors.KindValidation)
	_, err = svc.CreateHistoryItem(ctx, 1, "10:10", "", nil, nil)
	appErr := requireKind(t, err, apperrors.KindValidation)
	assert.Equal(t, "Missing required fields: userId, time, type", appErr.Message)
}

func TestCreateHistoryItemUnknownUser(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateHistoryItem(context.Background(), 42, "10:10", "mirror", nil, nil)
	appErr := requireKind(t, err, apperrors.KindNotFound)
	assert.Equal(t, "User with ID 42 not found", appErr.Message)
}

func TestCreateHistoryItemDetailsForms(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)

	// Structured details get their compact JSON text.
	item, err := svc.CreateHistoryItem(ctx, user.ID, "10:10", "mirror", nil,
		json.RawMessage(`{"source": "form", "digits": [1, 0]}`))
	require.NoError(t, err)
	require.NotNil(t, item.Details)
	assert.Equal(t, `{"source":"form","digits":[1,0]}`, *item.Details)

	// A JSON string is stored verbatim, without quotes.
	item, err = svc.CreateHistoryItem(ctx, user.ID, "11:11", "mirror", nil,
		json.RawMessage(`"already text"`))
	require.NoError(t, err)
	require.NotNil(t, item.Details)
	assert.Equal(t, "already text", *item.Details)

	// Absent and null both store NULL.
	item, err = svc.CreateHistoryItem(ctx, user.ID, "12:12", "mirror", nil, nil)
	require.NoError(t, err)
	assert.Nil(t, item.Details)
	item, err = svc.CreateHistoryItem(ctx, user.ID, "13:13", "mirror", nil, json.RawMessage(`null`))
	require.NoError(t, err)
	assert.Nil(t, item.Details)
}

func TestListHistoryUnknownUser(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ListHistory(context.Background(), 42)
	requireKind(t, err, apperrors.KindNotFound)
}

func TestListHistoryEmptyForNewUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)

	items, err := svc.ListHistory(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDeleteHistoryItemTwice(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)
	item, err := svc.CreateHistoryItem(ctx, user.ID, "10:10", "mirror", nil, nil)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteHistoryItem(ctx, item.ID))

	err = svc.DeleteHistoryItem(ctx, item.ID)
	appErr := requireKind(t, err, apperrors.KindNotFound)
	assert.Equal(t, fmt.Sprintf("History item with ID %d not found", item.ID), appErr.Message)
}

func TestNormalizeDetails(t *testing.T) {
	got, err := normalizeDetails(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = normalizeDetails(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = normalizeDetails(json.RawMessage(`"plain"`))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "plain", *got)

	got, err = normalizeDetails(json.RawMessage(`[1, 2, 3]`))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "[1,2,3]", *got)

	got, err = normalizeDetails(json.RawMessage(`42`))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "42", *got)
}
