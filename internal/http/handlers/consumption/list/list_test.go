package list_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/consumption-tracker/internal/http/handlers/consumption/list"
	"github.com/magabrotheeeer/consumption-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/consumption-tracker/internal/http/response"
	"github.com/magabrotheeeer/consumption-tracker/internal/models"
	consumptionservice "github.com/magabrotheeeer/consumption-tracker/internal/services/consumption"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) List(ctx context.Context, userUID string, page, perPage int) (*consumptionservice.ListResult, error) {
	args := m.Called(ctx, userUID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*consumptionservice.ListResult), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func doRequest(t *testing.T, svc *ServiceMock, userUID, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/consumption"+query, nil)
	if userUID != "" {
		ctx := context.WithValue(req.Context(), middlewarectx.UserUID, userUID)
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()

	list.New(newNoopLogger(), svc).ServeHTTP(rec, req)
	return rec
}

func TestList_DefaultsApplied(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("List", mock.Anything, "uid-1", 1, 20).
		Return(&consumptionservice.ListResult{
			Items: []*models.Consumption{},
			Meta:  models.Pagination{Page: 1, PerPage: 20},
		}, nil).Once()

	rec := doRequest(t, svc, "uid-1", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestList_ExplicitPagination(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("List", mock.Anything, "uid-1", 2, 50).
		Return(&consumptionservice.ListResult{
			Items: []*models.Consumption{{ID: 1, UserUID: "uid-1"}},
			Meta: models.Pagination{
				Page: 2, PerPage: 50, TotalItems: 51, TotalPages: 2,
				HasPrev: true, HasNext: false,
			},
		}, nil).Once()

	rec := doRequest(t, svc, "uid-1", "?page=2&per_page=50")

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status string                         `json:"status"`
		Data   consumptionservice.ListResult `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Meta.Page)
	assert.True(t, resp.Data.Meta.HasPrev)
	assert.False(t, resp.Data.Meta.HasNext)
	svc.AssertExpectations(t)
}

func TestList_NonNumericParams(t *testing.T) {
	svc := new(ServiceMock)
	rec := doRequest(t, svc, "uid-1", "?page=abc")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp response.Response
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, response.CodeValidationError, resp.ErrorCode)
	assert.Contains(t, resp.Details, "page")
	svc.AssertNotCalled(t, "List")
}

func TestList_ServiceValidation(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("List", mock.Anything, "uid-1", 99, 20).
		Return(nil, consumptionservice.ErrInvalidPage).Once()

	rec := doRequest(t, svc, "uid-1", "?page=99")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp response.Response
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Details, "page")
}

func TestList_Unauthorized(t *testing.T) {
	svc := new(ServiceMock)
	rec := doRequest(t, svc, "", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "List")
}
