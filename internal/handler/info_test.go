package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/lumeo-dev/lumeo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockInfoService struct {
	InfoService

	MockFAQs     func(filter domain.ListFilter, admin bool) ([]domain.FAQ, error)
	MockSaveFAQ  func(f domain.FAQ) (domain.FAQ, error)
	MockNewsItem func(id int64, admin bool) (domain.News, error)
}

func (m *MockInfoService) FAQs(filter domain.ListFilter, admin bool) ([]domain.FAQ, error) {
	if m.MockFAQs != nil {
		return m.MockFAQs(filter, admin)
	}
	return nil, nil
}

func (m *MockInfoService) SaveFAQ(f domain.FAQ) (domain.FAQ, error) {
	if m.MockSaveFAQ != nil {
		return m.MockSaveFAQ(f)
	}
	return f, nil
}

func (m *MockInfoService) NewsItem(id int64, admin bool) (domain.News, error) {
	if m.MockNewsItem != nil {
		return m.MockNewsItem(id, admin)
	}
	return domain.News{Id: id}, nil
}

func TestListFAQsHandler(t *testing.T) {
	var gotFilter domain.ListFilter
	var gotAdmin bool
	h := &Handler{cfg: testHandlerConfig(), info: &MockInfoService{
		MockFAQs: func(filter domain.ListFilter, admin bool) ([]domain.FAQ, error) {
			gotFilter, gotAdmin = filter, admin
			return []domain.FAQ{{Id: 1, Quote: "q", Answer: "a", Active: true}}, nil
		},
	}}

	req := httptest.NewRequest(http.MethodGet, "/v1/info/faqs?search=refund&limit=5&offset=10", nil)
	rr := httptest.NewRecorder()
	h.ListFAQs(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, gotAdmin, "public listing")
	assert.Equal(t, domain.ListFilter{Search: "refund", Limit: 5, Offset: 10}, gotFilter)

	var list []domain.FAQ
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 1)
}

func TestAdminSaveFAQHandler(t *testing.T) {
	h := &Handler{cfg: testHandlerConfig(), info: &MockInfoService{
		MockSaveFAQ: func(f domain.FAQ) (domain.FAQ, error) {
			if f.Id == 0 {
				f.Id = 42
			}
			return f, nil
		},
	}}

	// Create: no id in body.
	req := createRequest(t, http.MethodPost, "/v1/admin/faqs",
		[]byte(`{"quote":"How?","answer":"Like this.","active":true}`))
	rr := httptest.NewRecorder()
	h.AdminSaveFAQ(rr, req)
	assert.Equal(t, http.StatusCreated, rr.Code)

	// Update: id set.
	req = createRequest(t, http.MethodPost, "/v1/admin/faqs",
		[]byte(`{"id":42,"quote":"How?","answer":"Differently.","active":false}`))
	rr = httptest.NewRecorder()
	h.AdminSaveFAQ(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, routeCtx))
}

func TestGetNewsHandler(t *testing.T) {
	h := &Handler{cfg: testHandlerConfig(), info: &MockInfoService{
		MockNewsItem: func(id int64, admin bool) (domain.News, error) {
			assert.False(t, admin)
			return domain.News{Id: id, Title: "Launch", BodyHTML: "<h1>Launch</h1>"}, nil
		},
	}}

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/v1/info/news/5", nil), "id", "5")
	rr := httptest.NewRecorder()
	h.GetNews(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var n domain.News
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &n))
	assert.Equal(t, int64(5), n.Id)

	req = withURLParam(httptest.NewRequest(http.MethodGet, "/v1/info/news/abc", nil), "id", "abc")
	rr = httptest.NewRecorder()
	h.GetNews(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

type MockSiteInfoService struct {
	info domain.SiteInfo
	err  error
}

func (m *MockSiteInfoService) Current() domain.SiteInfo { return m.info }
func (m *MockSiteInfoService) Update(info domain.SiteInfo) error {
	if m.err != nil {
		return m.err
	}
	m.info = info
	return nil
}

func TestSiteInfoHandlers(t *testing.T) {
	site := &MockSiteInfoService{info: domain.SiteInfo{ContactEmail: "support@lumeo.dev"}}
	h := &Handler{cfg: testHandlerConfig(), siteInfo: site}

	rr := httptest.NewRecorder()
	h.SiteInfo(rr, httptest.NewRequest(http.MethodGet, "/v1/info/site", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "support@lumeo.dev")

	req := createRequest(t, http.MethodPut, "/v1/admin/info/site",
		[]byte(`{"contact_email":"help@lumeo.dev","telegram":"@lumeo"}`))
	rr = httptest.NewRecorder()
	h.AdminUpdateSiteInfo(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "help@lumeo.dev", site.info.ContactEmail)

	// contact_email is mandatory.
	req = createRequest(t, http.MethodPut, "/v1/admin/info/site", []byte(`{"telegram":"@lumeo"}`))
	rr = httptest.NewRecorder()
	h.AdminUpdateSiteInfo(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

type MockPinger struct {
	err error
}

func (m *MockPinger) Ping(ctx context.Context) error { return m.err }

func TestHealthHandlers(t *testing.T) {
	h := &Handler{cfg: testHandlerConfig(), health: &MockPinger{}}

	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.Ready(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	h.health = &MockPinger{err: errors.New("down")}
	rr = httptest.NewRecorder()
	h.Ready(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

type MockStatsService struct {
	chart domain.ChartData
	err   error
}

func (m *MockStatsService) AccountsByRole() (domain.ChartData, error)  { return m.chart, m.err }
func (m *MockStatsService) AccountActivity() (domain.ChartData, error) { return m.chart, m.err }
func (m *MockStatsService) Registrations() (domain.ChartData, error)   { return m.chart, m.err }
func (m *MockStatsService) Content() (domain.ChartData, error)         { return m.chart, m.err }

func TestStatsHandler(t *testing.T) {
	h := &Handler{cfg: testHandlerConfig(), stats: &MockStatsService{
		chart: domain.ChartData{Type: domain.ChartPie, Labels: []string{"customer"}},
	}}

	rr := httptest.NewRecorder()
	h.StatsAccountsByRole(rr, httptest.NewRequest(http.MethodGet, "/v1/admin/stats/accounts-by-role", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	var chart domain.ChartData
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &chart))
	assert.Equal(t, domain.ChartPie, chart.Type)
}
