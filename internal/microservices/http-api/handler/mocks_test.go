package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"mediahub/internal/auth"
	"mediahub/internal/catalog"
	"mediahub/internal/importer"
	"mediahub/internal/library"
	"mediahub/internal/microservices/http-api/middleware"
	"mediahub/internal/microservices/http-api/service"
	"mediahub/internal/rating"
)

var testSession = auth.Context{UserID: "11111111-2222-3333-4444-555555555555", Email: "test@example.com"}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.WithSession(testSession))
	return r
}

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Movies(ctx context.Context, query string) ([]catalog.Item, error) {
	args := m.Called(ctx, query)
	items, _ := args.Get(0).([]catalog.Item)
	return items, args.Error(1)
}

func (m *MockSearchService) Games(ctx context.Context, query string) ([]catalog.Item, error) {
	args := m.Called(ctx, query)
	items, _ := args.Get(0).([]catalog.Item)
	return items, args.Error(1)
}

func (m *MockSearchService) PopularGames(ctx context.Context) ([]catalog.Item, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]catalog.Item)
	return items, args.Error(1)
}

type MockLibraryService struct {
	mock.Mock
}

func (m *MockLibraryService) List(ctx context.Context, session auth.Context, list service.ListName) ([]library.Entry, error) {
	args := m.Called(ctx, session, list)
	entries, _ := args.Get(0).([]library.Entry)
	return entries, args.Error(1)
}

func (m *MockLibraryService) Get(ctx context.Context, session auth.Context, list service.ListName, id int64) (library.Entry, error) {
	args := m.Called(ctx, session, list, id)
	return args.Get(0).(library.Entry), args.Error(1)
}

func (m *MockLibraryService) Add(ctx context.Context, session auth.Context, list service.ListName, item library.RatedItem) error {
	return m.Called(ctx, session, list, item).Error(0)
}

func (m *MockLibraryService) Rate(ctx context.Context, session auth.Context, list service.ListName, id int64, value float64) error {
	return m.Called(ctx, session, list, id, value).Error(0)
}

func (m *MockLibraryService) Remove(ctx context.Context, session auth.Context, list service.ListName, id int64) error {
	return m.Called(ctx, session, list, id).Error(0)
}

func (m *MockLibraryService) RatedStore(session auth.Context, kind catalog.Kind) (*library.Store, error) {
	args := m.Called(session, kind)
	store, _ := args.Get(0).(*library.Store)
	return store, args.Error(1)
}

type MockVersusService struct {
	mock.Mock
}

func (m *MockVersusService) Start(ctx context.Context, session auth.Context, kind catalog.Kind) (service.VersusState, error) {
	args := m.Called(ctx, session, kind)
	return args.Get(0).(service.VersusState), args.Error(1)
}

func (m *MockVersusService) Get(ctx context.Context, session auth.Context, id string) (service.VersusState, error) {
	args := m.Called(ctx, session, id)
	return args.Get(0).(service.VersusState), args.Error(1)
}

func (m *MockVersusService) Choose(ctx context.Context, session auth.Context, id string, winner rating.Winner) (service.VersusState, error) {
	args := m.Called(ctx, session, id, winner)
	return args.Get(0).(service.VersusState), args.Error(1)
}

func (m *MockVersusService) Skip(ctx context.Context, session auth.Context, id string) (service.VersusState, error) {
	args := m.Called(ctx, session, id)
	return args.Get(0).(service.VersusState), args.Error(1)
}

func (m *MockVersusService) Finish(ctx context.Context, session auth.Context, id string) (rating.Summary, error) {
	args := m.Called(ctx, session, id)
	return args.Get(0).(rating.Summary), args.Error(1)
}

type MockImportService struct {
	mock.Mock
}

func (m *MockImportService) Validate(text string) importer.Validation {
	return m.Called(text).Get(0).(importer.Validation)
}

func (m *MockImportService) Start(ctx context.Context, session auth.Context, text string) (service.ImportJob, error) {
	args := m.Called(ctx, session, text)
	return args.Get(0).(service.ImportJob), args.Error(1)
}

func (m *MockImportService) Get(session auth.Context, id string) (service.ImportJob, error) {
	args := m.Called(session, id)
	return args.Get(0).(service.ImportJob), args.Error(1)
}

func (m *MockImportService) Run(ctx context.Context, session auth.Context, text string, onProgress func(importer.Progress)) (*importer.Result, error) {
	args := m.Called(ctx, session, text, onProgress)
	res, _ := args.Get(0).(*importer.Result)
	return res, args.Error(1)
}
