package handler

import (
	"context"
	"io"

	"github.com/waitlist/backend/internal/model"
)

type mockDB struct {
	pingFunc func(ctx context.Context) error
}

func (m *mockDB) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}

type mockWaitlistService struct {
	joinFunc  func(ctx context.Context, in model.WaitlistInput) (*model.WaitlistEntry, error)
	countFunc func(ctx context.Context) (int, error)
}

func (m *mockWaitlistService) Join(ctx context.Context, in model.WaitlistInput) (*model.WaitlistEntry, error) {
	if m.joinFunc != nil {
		return m.joinFunc(ctx, in)
	}
	return &model.WaitlistEntry{ID: 1}, nil
}

func (m *mockWaitlistService) Count(ctx context.Context) (int, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

type mockContactService struct {
	submitFunc      func(ctx context.Context, in model.ContactInput) (*model.ContactMessage, error)
	listFunc        func(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error)
	updateFlagsFunc func(ctx context.Context, id int64, upd model.ContactFlagsUpdate) (*model.ContactMessage, error)
}

func (m *mockContactService) Submit(ctx context.Context, in model.ContactInput) (*model.ContactMessage, error) {
	if m.submitFunc != nil {
		return m.submitFunc(ctx, in)
	}
	return &model.ContactMessage{ID: 1}, nil
}

func (m *mockContactService) List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, opts)
	}
	return nil, nil
}

func (m *mockContactService) UpdateFlags(ctx context.Context, id int64, upd model.ContactFlagsUpdate) (*model.ContactMessage, error) {
	if m.updateFlagsFunc != nil {
		return m.updateFlagsFunc(ctx, id, upd)
	}
	return &model.ContactMessage{ID: id}, nil
}

type mockExportService struct {
	writeFunc    func(ctx context.Context, w io.Writer) (int, error)
	snapshotFunc func(ctx context.Context) (string, error)
}

func (m *mockExportService) WriteWaitlistCSV(ctx context.Context, w io.Writer) (int, error) {
	if m.writeFunc != nil {
		return m.writeFunc(ctx, w)
	}
	return 0, nil
}

func (m *mockExportService) Snapshot(ctx context.Context) (string, error) {
	if m.snapshotFunc != nil {
		return m.snapshotFunc(ctx)
	}
	return "", nil
}
