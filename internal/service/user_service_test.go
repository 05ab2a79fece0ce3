package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/talkroom/talkroom-api/internal/dto"
	"github.com/talkroom/talkroom-api/internal/models"
)

func newTestUserService(users *stubUserRepo, rooms *stubRoomRepo, messages *stubMessageRepo, topics *stubTopicRepo, storage *stubStorage) UserService {
	return newTestUserServiceWithCache(users, rooms, messages, topics, storage, &stubCache{})
}

func newTestUserServiceWithCache(users *stubUserRepo, rooms *stubRoomRepo, messages *stubMessageRepo, topics *stubTopicRepo, storage *stubStorage, cache *stubCache) UserService {
	return NewUserService(users, rooms, messages, topics, storage, validator.New(validator.WithRequiredStructEnabled()), cache, 1, zerolog.Nop())
}

func seedUser(users *stubUserRepo) models.User {
	user := models.User{Name: "Ada Lovelace", Username: "ada01", Email: "ada@example.com"}
	users.Create(context.Background(), &user)
	return user
}

func strptr(s string) *string { return &s }

// fileHeader builds a real multipart.FileHeader by round-tripping a form.
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("avatar", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&buf, writer.Boundary()).ReadForm(int64(len(content)) + 10240)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	return form.File["avatar"][0]
}

var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52}

func TestUserServiceGetProfileComposesPage(t *testing.T) {
	users := newStubUserRepo()
	user := seedUser(users)

	rooms := newStubRoomRepo()
	rooms.rooms[1] = models.Room{ID: 1, Name: "gophers", HostID: user.ID, Topic: models.Topic{ID: 1, Name: "go"}}
	rooms.rooms[2] = models.Room{ID: 2, Name: "others", HostID: user.ID + 1}

	messages := newStubMessageRepo()
	messages.messages[1] = models.Message{ID: 1, RoomID: 1, UserID: user.ID, Body: "hello"}

	topics := &stubTopicRepo{topics: []models.Topic{{ID: 1, Name: "go"}}}
	svc := newTestUserService(users, rooms, messages, topics, &stubStorage{})

	profile, err := svc.GetProfile(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, "ada01", profile.User.Username)
	require.Len(t, profile.Rooms, 1)
	require.Len(t, profile.Messages, 1)
	require.Len(t, profile.Topics, 1)
}

func TestUserServiceGetProfileMissing(t *testing.T) {
	svc := newTestUserService(newStubUserRepo(), newStubRoomRepo(), newStubMessageRepo(), &stubTopicRepo{}, &stubStorage{})

	_, err := svc.GetProfile(context.Background(), 99)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUserServiceUpdateProfile(t *testing.T) {
	users := newStubUserRepo()
	user := seedUser(users)
	svc := newTestUserService(users, newStubRoomRepo(), newStubMessageRepo(), &stubTopicRepo{}, &stubStorage{})

	_, err := svc.UpdateProfile(context.Background(), 0, dto.ProfileUpdateRequest{})
	require.ErrorIs(t, err, ErrUnauthenticated)

	updated, err := svc.UpdateProfile(context.Background(), user.ID, dto.ProfileUpdateRequest{
		Username: strptr("Countess"),
		Bio:      strptr("first <script>alert(1)</script>programmer"),
	})
	require.NoError(t, err)
	require.Equal(t, "countess", updated.Username)
	require.Equal(t, "first programmer", updated.Bio)
}

func TestUserServiceUpdateProfileUniqueness(t *testing.T) {
	users := newStubUserRepo()
	user := seedUser(users)
	other := models.User{Name: "Grace", Username: "grace", Email: "grace@example.com"}
	users.Create(context.Background(), &other)

	svc := newTestUserService(users, newStubRoomRepo(), newStubMessageRepo(), &stubTopicRepo{}, &stubStorage{})

	_, err := svc.UpdateProfile(context.Background(), user.ID, dto.ProfileUpdateRequest{Username: strptr("Grace")})
	require.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.UpdateProfile(context.Background(), user.ID, dto.ProfileUpdateRequest{Email: strptr("GRACE@example.com")})
	require.ErrorIs(t, err, ErrEmailTaken)

	// Re-submitting your own current username is not a conflict.
	_, err = svc.UpdateProfile(context.Background(), user.ID, dto.ProfileUpdateRequest{Username: strptr("ADA01")})
	require.NoError(t, err)
}

func TestUserServiceUpdateAvatar(t *testing.T) {
	users := newStubUserRepo()
	user := seedUser(users)
	storage := &stubStorage{url: "https://cdn.example.com/avatars/ada.png"}
	svc := newTestUserService(users, newStubRoomRepo(), newStubMessageRepo(), &stubTopicRepo{}, storage)

	updated, err := svc.UpdateAvatar(context.Background(), user.ID, fileHeader(t, "ada.png", pngBytes))
	require.NoError(t, err)
	require.Equal(t, storage.url, updated.AvatarURL)
	require.Equal(t, []string{"ada.png"}, storage.uploads)
	require.Equal(t, storage.url, users.users[user.ID].AvatarURL)
}

func TestUserServiceUpdateAvatarRejectsNonImage(t *testing.T) {
	users := newStubUserRepo()
	user := seedUser(users)
	storage := &stubStorage{}
	svc := newTestUserService(users, newStubRoomRepo(), newStubMessageRepo(), &stubTopicRepo{}, storage)

	_, err := svc.UpdateAvatar(context.Background(), user.ID, fileHeader(t, "notes.txt", []byte("plain text, not an image")))
	require.ErrorIs(t, err, ErrAvatarNotImage)
	require.Empty(t, storage.uploads)

	_, err = svc.UpdateAvatar(context.Background(), user.ID, nil)
	require.ErrorIs(t, err, ErrAvatarNotImage)
}

func TestUserServiceUpdateAvatarRejectsOversize(t *testing.T) {
	users := newStubUserRepo()
	user := seedUser(users)
	svc := newTestUserService(users, newStubRoomRepo(), newStubMessageRepo(), &stubTopicRepo{}, &stubStorage{})

	big := append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{0}, 2*1024*1024)...)
	_, err := svc.UpdateAvatar(context.Background(), user.ID, fileHeader(t, "huge.png", big))
	require.ErrorIs(t, err, ErrAvatarTooLarge)
}

func TestUserServiceUpdatesInvalidateSearchCache(t *testing.T) {
	users := newStubUserRepo()
	user := seedUser(users)
	cache := &stubCache{}
	storage := &stubStorage{url: "https://cdn.example.com/avatars/ada.png"}
	svc := newTestUserServiceWithCache(users, newStubRoomRepo(), newStubMessageRepo(), &stubTopicRepo{}, storage, cache)

	// Cached home responses embed host identity, so profile changes must
	// drop them.
	_, err := svc.UpdateProfile(context.Background(), user.ID, dto.ProfileUpdateRequest{Username: strptr("Countess")})
	require.NoError(t, err)
	require.Equal(t, 1, cache.invalidations)

	_, err = svc.UpdateAvatar(context.Background(), user.ID, fileHeader(t, "ada.png", pngBytes))
	require.NoError(t, err)
	require.Equal(t, 2, cache.invalidations)
}

func TestUserServiceUpdateProfileDuplicateRace(t *testing.T) {
	users := newStubUserRepo()
	user := seedUser(users)
	users.updateErr = gorm.ErrDuplicatedKey
	svc := newTestUserService(users, newStubRoomRepo(), newStubMessageRepo(), &stubTopicRepo{}, &stubStorage{})

	// A concurrent registration can claim the name between the existence
	// check and the write; the constraint violation keeps the taxonomy.
	_, err := svc.UpdateProfile(context.Background(), user.ID, dto.ProfileUpdateRequest{Username: strptr("grace")})
	require.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.UpdateProfile(context.Background(), user.ID, dto.ProfileUpdateRequest{Email: strptr("grace@example.com")})
	require.ErrorIs(t, err, ErrEmailTaken)
}
