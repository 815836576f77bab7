package lists_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vrsandeep/reel-go/internal/models"
)

// MockRepository is a testify mock of lists.Repository.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetList(ctx context.Context, listID string) (*models.List, error) {
	args := m.Called(ctx, listID)
	list, _ := args.Get(0).(*models.List)
	return list, args.Error(1)
}

func (m *MockRepository) ListLists(ctx context.Context, userID string) ([]*models.List, error) {
	args := m.Called(ctx, userID)
	lists, _ := args.Get(0).([]*models.List)
	return lists, args.Error(1)
}

func (m *MockRepository) CreateList(ctx context.Context, list *models.List) error {
	return m.Called(ctx, list).Error(0)
}

func (m *MockRepository) DeleteList(ctx context.Context, userID, listID string) (int, error) {
	args := m.Called(ctx, userID, listID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) GetListItems(ctx context.Context, userID, listID string) ([]*models.ListItem, error) {
	args := m.Called(ctx, userID, listID)
	items, _ := args.Get(0).([]*models.ListItem)
	return items, args.Error(1)
}

func (m *MockRepository) GetWatchlistItems(ctx context.Context, userID string) ([]*models.ListItem, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]*models.ListItem)
	return items, args.Error(1)
}

func (m *MockRepository) ItemIDs(ctx context.Context, ref models.ListRef) (map[string]bool, error) {
	args := m.Called(ctx, ref)
	ids, _ := args.Get(0).(map[string]bool)
	return ids, args.Error(1)
}

func (m *MockRepository) AddItems(ctx context.Context, ref models.ListRef, items []*models.ListItem) error {
	return m.Called(ctx, ref, items).Error(0)
}

func (m *MockRepository) DeleteItem(ctx context.Context, ref models.ListRef, itemID string) error {
	return m.Called(ctx, ref, itemID).Error(0)
}
