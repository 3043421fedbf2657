package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/scanlink/scanlink-server-go/internal/analytics"
	"github.com/scanlink/scanlink-server-go/internal/model"
	"github.com/scanlink/scanlink-server-go/internal/sse"
)

type mockCodeRepo struct {
	findByIDFunc                 func(ctx context.Context, id string) (*model.ShortCode, error)
	insertFunc                   func(ctx context.Context, params model.CreateShortCodeParams) (*model.ShortCode, error)
	updateFunc                   func(ctx context.Context, id string, params model.UpdateShortCodeParams) (*model.ShortCode, error)
	publishFunc                  func(ctx context.Context, id string, styleConfig json.RawMessage) (*model.ShortCode, error)
	conditionalIncrementScanFunc func(ctx context.Context, id string, now time.Time) (int64, error)
	deleteFunc                   func(ctx context.Context, id string) (int64, error)
	findByOwnerIDFunc            func(ctx context.Context, ownerID string, limit, offset int) ([]model.ShortCode, error)
	findCompleteByOwnerIDFunc    func(ctx context.Context, ownerID string, limit, offset int) ([]model.ShortCode, error)
}

func (m *mockCodeRepo) FindByID(ctx context.Context, id string) (*model.ShortCode, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockCodeRepo) FindByOwnerID(ctx context.Context, ownerID string, limit, offset int) ([]model.ShortCode, error) {
	if m.findByOwnerIDFunc != nil {
		return m.findByOwnerIDFunc(ctx, ownerID, limit, offset)
	}
	return nil, nil
}

func (m *mockCodeRepo) FindCompleteByOwnerID(ctx context.Context, ownerID string, limit, offset int) ([]model.ShortCode, error) {
	if m.findCompleteByOwnerIDFunc != nil {
		return m.findCompleteByOwnerIDFunc(ctx, ownerID, limit, offset)
	}
	return nil, nil
}

func (m *mockCodeRepo) CountByOwnerID(ctx context.Context, ownerID string) (int, error) {
	return 0, nil
}

func (m *mockCodeRepo) CountByStatus(ctx context.Context, status model.CodeStatus) (int, error) {
	return 0, nil
}

func (m *mockCodeRepo) Insert(ctx context.Context, params model.CreateShortCodeParams) (*model.ShortCode, error) {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, params)
	}
	return nil, nil
}

func (m *mockCodeRepo) Update(ctx context.Context, id string, params model.UpdateShortCodeParams) (*model.ShortCode, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, params)
	}
	return nil, nil
}

func (m *mockCodeRepo) Publish(ctx context.Context, id string, styleConfig json.RawMessage) (*model.ShortCode, error) {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, id, styleConfig)
	}
	return nil, nil
}

func (m *mockCodeRepo) ConditionalIncrementScan(ctx context.Context, id string, now time.Time) (int64, error) {
	if m.conditionalIncrementScanFunc != nil {
		return m.conditionalIncrementScanFunc(ctx, id, now)
	}
	return 1, nil
}

func (m *mockCodeRepo) Delete(ctx context.Context, id string) (int64, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return 1, nil
}

type mockScanFeed struct {
	mu     sync.Mutex
	events []sse.Event
}

func (m *mockScanFeed) Publish(ctx context.Context, ownerID string, event sse.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

type mockPublisher struct {
	mu     sync.Mutex
	events []analytics.ScanEvent
}

func (m *mockPublisher) Publish(ctx context.Context, event analytics.ScanEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *mockPublisher) Close() error { return nil }
