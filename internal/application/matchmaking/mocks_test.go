package matchmaking

import (
	"context"
	"sync"

	"github.com/harbinger-games/harbinger/internal/domain/matchmaking"
	vo "github.com/harbinger-games/harbinger/internal/domain/matchmaking/valueobjects"
)

type mockPublisher struct {
	mu     sync.Mutex
	events []matchmaking.MatchFormedEvent

	PublishMatchFormedFunc func(ctx context.Context, event matchmaking.MatchFormedEvent) error
}

func (m *mockPublisher) PublishMatchFormed(ctx context.Context, event matchmaking.MatchFormedEvent) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	if m.PublishMatchFormedFunc != nil {
		return m.PublishMatchFormedFunc(ctx, event)
	}
	return nil
}

func (m *mockPublisher) Events() []matchmaking.MatchFormedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]matchmaking.MatchFormedEvent(nil), m.events...)
}

type mockFormer struct {
	mu    sync.Mutex
	calls []vo.Bucket

	FormFunc func(ctx context.Context, bucket vo.Bucket) FormResult
}

func (m *mockFormer) Form(ctx context.Context, bucket vo.Bucket) FormResult {
	m.mu.Lock()
	m.calls = append(m.calls, bucket)
	m.mu.Unlock()
	if m.FormFunc != nil {
		return m.FormFunc(ctx, bucket)
	}
	return FormResult{}
}

func (m *mockFormer) Calls() []vo.Bucket {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]vo.Bucket(nil), m.calls...)
}
