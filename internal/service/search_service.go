package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/talkroom/talkroom-api/internal/dto"
	"github.com/talkroom/talkroom-api/internal/observability"
	"github.com/talkroom/talkroom-api/internal/repository"
)

const searchCachePrefix = "talkroom:search:"

// SearchService serves the public read surface: home search, the topics
// listing and the activity feed. Every operation is available to anonymous
// identities.
type SearchService interface {
	Home(ctx context.Context, query string) (dto.SearchResponse, error)
	Topics(ctx context.Context, query string) ([]dto.TopicResponse, error)
	Activity(ctx context.Context) ([]dto.MessageResponse, error)
	InvalidateCache(ctx context.Context)
}

type searchService struct {
	rooms    repository.RoomRepository
	topics   repository.TopicRepository
	messages repository.MessageRepository
	cache    *redis.Client
	ttl      time.Duration
	logger   zerolog.Logger
}

// NewSearchService builds the search service. The redis client is optional;
// without it every call hits the store directly.
func NewSearchService(rooms repository.RoomRepository, topics repository.TopicRepository, messages repository.MessageRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) SearchService {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &searchService{
		rooms:    rooms,
		topics:   topics,
		messages: messages,
		cache:    cache,
		ttl:      ttl,
		logger:   logger.With().Str("component", "search_service").Logger(),
	}
}

// Home composes the home page for the given query: rooms matched on topic
// name, room name or description; the first five topics; the matching room
// count; and recent messages filtered by topic name only.
func (s *searchService) Home(ctx context.Context, query string) (dto.SearchResponse, error) {
	start := time.Now()
	defer func() {
		observability.SearchLatency().Observe(time.Since(start).Seconds())
	}()

	cacheKey := searchCachePrefix + strings.ToLower(query)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			var response dto.SearchResponse
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				observability.SearchCacheRequests().WithLabelValues("hit").Inc()
				return response, nil
			}
		}
		observability.SearchCacheRequests().WithLabelValues("miss").Inc()
	}

	rooms, err := s.rooms.Search(ctx, query)
	if err != nil {
		return dto.SearchResponse{}, err
	}

	topics, err := s.topics.First(ctx, 5)
	if err != nil {
		return dto.SearchResponse{}, err
	}

	messages, err := s.messages.ListByTopicQuery(ctx, query)
	if err != nil {
		return dto.SearchResponse{}, err
	}

	response := dto.SearchResponse{
		Rooms:     dto.NewRoomResponseSlice(rooms),
		Topics:    dto.NewTopicResponseSlice(topics),
		RoomCount: len(rooms),
		Messages:  dto.NewMessageResponseSlice(messages),
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, encoded, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to cache search result")
			}
		}
	}

	return response, nil
}

// Topics lists every topic whose name contains query case-insensitively,
// together with room counts. Empty query matches all.
func (s *searchService) Topics(ctx context.Context, query string) ([]dto.TopicResponse, error) {
	topics, err := s.topics.List(ctx, query)
	if err != nil {
		return nil, err
	}

	return dto.NewTopicWithCountResponseSlice(topics), nil
}

// Activity returns every message in the system, newest first.
func (s *searchService) Activity(ctx context.Context) ([]dto.MessageResponse, error) {
	messages, err := s.messages.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewMessageResponseSlice(messages), nil
}

// InvalidateCache drops every cached search result. Called after any room,
// topic or message mutation.
func (s *searchService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}

	keys, err := s.cache.Keys(ctx, searchCachePrefix+"*").Result()
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to list search cache keys")
		return
	}

	if len(keys) == 0 {
		return
	}

	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate search cache")
	}
}
