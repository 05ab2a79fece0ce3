package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/talkroom/talkroom-api/internal/models"
)

func TestRoomRepositorySearchMatchesAnyField(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	host := createTestUser(t, db, "alice")

	django := models.Room{Name: "Intro", HostID: host.ID}
	require.NoError(t, repo.Create(context.Background(), &django, "django"))

	golang := models.Room{Name: "Deep Dive", Description: "channels and goroutines", HostID: host.ID}
	require.NoError(t, repo.Create(context.Background(), &golang, "golang"))

	cases := []struct {
		query string
		want  []string
	}{
		{"", []string{"Intro", "Deep Dive"}},
		{"DJAN", []string{"Intro"}},
		{"dive", []string{"Deep Dive"}},
		{"goroutine", []string{"Deep Dive"}},
		{"nothing-matches", nil},
	}

	for _, tc := range cases {
		rooms, err := repo.Search(context.Background(), tc.query)
		require.NoError(t, err, "query %q", tc.query)

		names := make([]string, 0, len(rooms))
		for _, room := range rooms {
			names = append(names, room.Name)
		}
		require.ElementsMatch(t, tc.want, names, "query %q", tc.query)
	}
}

func TestRoomRepositorySearchPreloadsTopicAndHost(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	host := createTestUser(t, db, "alice")

	room := models.Room{Name: "Intro", HostID: host.ID}
	require.NoError(t, repo.Create(context.Background(), &room, "django"))

	rooms, err := repo.Search(context.Background(), "django")
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	require.Equal(t, "django", rooms[0].Topic.Name)
	require.Equal(t, "alice", rooms[0].Host.Username)
}

func TestRoomRepositoryCreateReusesExistingTopic(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	host := createTestUser(t, db, "alice")

	first := models.Room{Name: "One", HostID: host.ID}
	require.NoError(t, repo.Create(context.Background(), &first, "django"))

	second := models.Room{Name: "Two", HostID: host.ID}
	require.NoError(t, repo.Create(context.Background(), &second, "django"))

	require.Equal(t, first.TopicID, second.TopicID)

	var count int64
	require.NoError(t, db.Model(&models.Topic{}).Where("name = ?", "django").Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestRoomRepositoryTopicLookupIsCaseSensitive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	host := createTestUser(t, db, "alice")

	lower := models.Room{Name: "One", HostID: host.ID}
	require.NoError(t, repo.Create(context.Background(), &lower, "django"))

	upper := models.Room{Name: "Two", HostID: host.ID}
	require.NoError(t, repo.Create(context.Background(), &upper, "Django"))

	require.NotEqual(t, lower.TopicID, upper.TopicID)
}

func TestRoomRepositoryUpdateChangesTopicNotHost(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	host := createTestUser(t, db, "alice")

	room := models.Room{Name: "Intro", HostID: host.ID}
	require.NoError(t, repo.Create(context.Background(), &room, "django"))

	room.Name = "Intro v2"
	room.Description = "updated"
	require.NoError(t, repo.Update(context.Background(), &room, "python"))

	stored, err := repo.Get(context.Background(), room.ID)
	require.NoError(t, err)
	require.Equal(t, "Intro v2", stored.Name)
	require.Equal(t, "updated", stored.Description)
	require.Equal(t, "python", stored.Topic.Name)
	require.Equal(t, host.ID, stored.HostID)
}

func TestRoomRepositoryDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	rooms := NewRoomRepository(db)
	messages := NewMessageRepository(db)
	host := createTestUser(t, db, "alice")
	poster := createTestUser(t, db, "bob")

	room := models.Room{Name: "Intro", HostID: host.ID}
	require.NoError(t, rooms.Create(context.Background(), &room, "django"))

	message := models.Message{RoomID: room.ID, UserID: poster.ID, Body: "hi"}
	require.NoError(t, messages.Create(context.Background(), &message))

	require.NoError(t, rooms.Delete(context.Background(), room.ID))

	var messageCount int64
	require.NoError(t, db.Model(&models.Message{}).Where("room_id = ?", room.ID).Count(&messageCount).Error)
	require.Zero(t, messageCount, "no orphan messages may remain")

	var participantCount int64
	require.NoError(t, db.Model(&roomParticipant{}).Where("room_id = ?", room.ID).Count(&participantCount).Error)
	require.Zero(t, participantCount, "no orphan participant rows may remain")

	_, err := rooms.Get(context.Background(), room.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRoomRepositoryDeleteMissingRoom(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)

	err := repo.Delete(context.Background(), 42)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRoomRepositoryListByHost(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	mine := models.Room{Name: "Mine", HostID: alice.ID}
	require.NoError(t, repo.Create(context.Background(), &mine, "django"))

	theirs := models.Room{Name: "Theirs", HostID: bob.ID}
	require.NoError(t, repo.Create(context.Background(), &theirs, "django"))

	rooms, err := repo.ListByHost(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	require.Equal(t, "Mine", rooms[0].Name)
}

func TestRoomRepositorySearchMatchesLikeMetacharsLiterally(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	host := createTestUser(t, db, "alice")

	plain := models.Room{Name: "abc discussion", HostID: host.ID}
	require.NoError(t, repo.Create(context.Background(), &plain, "general"))

	percent := models.Room{Name: "100% remote work", HostID: host.ID}
	require.NoError(t, repo.Create(context.Background(), &percent, "general"))

	underscore := models.Room{Name: "snake_case style", HostID: host.ID}
	require.NoError(t, repo.Create(context.Background(), &underscore, "general"))

	backslash := models.Room{Name: `C:\docs tips`, HostID: host.ID}
	require.NoError(t, repo.Create(context.Background(), &backslash, "general"))

	cases := []struct {
		query string
		want  []string
	}{
		// "_" and "%" are literal characters, not wildcards.
		{"a_c", nil},
		{"100%", []string{"100% remote work"}},
		{"e_c", []string{"snake_case style"}},
		{`:\doc`, []string{`C:\docs tips`}},
		{"abc", []string{"abc discussion"}},
	}

	for _, tc := range cases {
		rooms, err := repo.Search(context.Background(), tc.query)
		require.NoError(t, err, "query %q", tc.query)

		names := make([]string, 0, len(rooms))
		for _, room := range rooms {
			names = append(names, room.Name)
		}
		require.ElementsMatch(t, tc.want, names, "query %q", tc.query)
	}
}
