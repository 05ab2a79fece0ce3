package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/talkroom/talkroom-api/internal/dto"
	"github.com/talkroom/talkroom-api/internal/handler"
)

type mockSearchService struct {
	homeFn   func(ctx context.Context, query string) (dto.SearchResponse, error)
	topicsFn func(ctx context.Context, query string) ([]dto.TopicResponse, error)
	feedFn   func(ctx context.Context) ([]dto.MessageResponse, error)
}

func (m *mockSearchService) Home(ctx context.Context, query string) (dto.SearchResponse, error) {
	return m.homeFn(ctx, query)
}

func (m *mockSearchService) Topics(ctx context.Context, query string) ([]dto.TopicResponse, error) {
	return m.topicsFn(ctx, query)
}

func (m *mockSearchService) Activity(ctx context.Context) ([]dto.MessageResponse, error) {
	return m.feedFn(ctx)
}

func (m *mockSearchService) InvalidateCache(context.Context) {}

func newSearchApp(svc *mockSearchService) *fiber.App {
	app := fiber.New()
	handler.NewSearchHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/"), authAs(0))
	return app
}

func TestSearchHandler_SearchPassesQuery(t *testing.T) {
	svc := &mockSearchService{homeFn: func(_ context.Context, query string) (dto.SearchResponse, error) {
		require.Equal(t, "go", query)
		return dto.SearchResponse{RoomCount: 2}, nil
	}}
	app := newSearchApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/search?q=go", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data dto.SearchResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, 2, body.Data.RoomCount)
}

func TestSearchHandler_SearchEmptyQuery(t *testing.T) {
	svc := &mockSearchService{homeFn: func(_ context.Context, query string) (dto.SearchResponse, error) {
		require.Empty(t, query)
		return dto.SearchResponse{}, nil
	}}
	app := newSearchApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/search", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSearchHandler_Topics(t *testing.T) {
	svc := &mockSearchService{topicsFn: func(_ context.Context, query string) ([]dto.TopicResponse, error) {
		require.Equal(t, "fo", query)
		return []dto.TopicResponse{{ID: 3, Name: "food", RoomCount: 4}}, nil
	}}
	app := newSearchApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/topics?q=fo", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data []dto.TopicResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Len(t, body.Data, 1)
	require.EqualValues(t, 4, body.Data[0].RoomCount)
}

func TestSearchHandler_Activity(t *testing.T) {
	svc := &mockSearchService{feedFn: func(context.Context) ([]dto.MessageResponse, error) {
		return []dto.MessageResponse{{ID: 1, Body: "hello"}, {ID: 2, Body: "again"}}, nil
	}}
	app := newSearchApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/activity", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data []dto.MessageResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Len(t, body.Data, 2)
}
