package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	appsfa "github.com/erp/sfa/internal/application/sfa"
	"github.com/erp/sfa/internal/domain/sfa"
	"github.com/erp/sfa/internal/infrastructure/export"
	"github.com/erp/sfa/internal/infrastructure/persistence"
	"github.com/erp/sfa/internal/infrastructure/persistence/models"
	"github.com/erp/sfa/internal/infrastructure/sfawire"
	"github.com/erp/sfa/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type rawResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
}

func newSFATestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	require.NoError(t, db.Create(&[]models.CodeModel{
		{Category: sfa.CodeCategoryBillingType, Code: "CARD", Name: "Card", Sort: 2},
		{Category: sfa.CodeCategoryBillingType, Code: "TAX_INVOICE", Name: "Tax invoice", Sort: 1},
	}).Error)
	require.NoError(t, db.Create(&[]models.TeamModel{{ID: "A", Name: "Team A"}, {ID: "B", Name: "Team B"}}).Error)
	require.NoError(t, db.Create(&[]models.CustomerModel{{ID: "c1", Name: "Acme"}, {ID: "c2", Name: "Globex"}}).Error)

	svc := appsfa.NewRevenueService(
		persistence.NewGormRevenueRepository(db),
		persistence.NewGormPaymentRepository(db),
		persistence.NewGormCodeRepository(db),
		persistence.NewGormTeamRepository(db),
		persistence.NewGormCustomerRepository(db),
		nil,
	)
	svc.SetExporter(export.NewXLSXExporter())

	h := NewSFAHandler(svc)
	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/sfas", h.CreateRevenue)
	api.GET("/sfas/:id", h.GetRevenue)
	api.GET("/sfas/:id/payments", h.ListPayments)
	api.GET("/sfas/:id/payments/export", h.ExportPayments)
	api.POST("/sfa-by-payment", h.CreatePayment)
	api.PUT("/sfa-by-payment/:id", h.UpdatePayment)
	api.GET("/sfa-by-payment/:id/history", h.History)
	api.GET("/codes/:category", h.Codes)
	api.GET("/teams", h.Teams)
	api.GET("/customers", h.SearchCustomers)
	return r
}

func serve(t *testing.T, r *gin.Engine, method, path string, body []byte) (*httptest.ResponseRecorder, rawResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp rawResponse
	if w.Header().Get("Content-Type") != xlsxContentType {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func validRecord() *sfa.RevenueRecord {
	return &sfa.RevenueRecord{
		Name:           "Support renewal",
		Classification: "NEW",
		SalesType:      "DIRECT",
		CustomerID:     "c1",
		CustomerName:   "Acme",
		SalesItems:     []sfa.SalesItem{{TeamID: "A", TeamName: "Team A", ItemID: "i1", ItemName: "Support", Amount: "5000"}},
		Payments: []sfa.PaymentEntry{{
			BillingType:       "TAX_INVOICE",
			IsConfirmed:       true,
			Amount:            "5000",
			MarginProfitValue: "10",
			RecognitionDate:   "2026-01-31",
			TeamAllocations:   []sfa.TeamAllocation{{TeamID: "A", TeamName: "Team A", ItemID: "i1", ItemName: "Support"}},
		}},
	}
}

func createRecord(t *testing.T, r *gin.Engine) *sfa.RevenueRecord {
	t.Helper()
	body, err := sfawire.EncodeRevenue(validRecord())
	require.NoError(t, err)

	w, resp := serve(t, r, http.MethodPost, "/api/v1/sfas", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	record, err := sfawire.DecodeRevenue(resp.Data)
	require.NoError(t, err)
	return record
}

func TestSFAHandler_CreateAndGetRevenue(t *testing.T) {
	r := newSFATestRouter(t)
	created := createRecord(t, r)

	require.NotEqual(t, uuid.Nil, created.ID)
	require.Len(t, created.Payments, 1)
	p := created.Payments[0]
	assert.Equal(t, sfa.ProbabilityConfirmed, p.Probability)
	assert.Equal(t, int64(500), p.ProfitAmount)
	assert.Equal(t, int64(5000), p.TeamAllocations[0].AllocatedAmount)

	w, resp := serve(t, r, http.MethodGet, "/api/v1/sfas/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(resp.Data), `"sales_items"`)
	assert.Contains(t, string(resp.Data), `"profit_config":"{`)

	fetched, err := sfawire.DecodeRevenue(resp.Data)
	require.NoError(t, err)
	assert.Equal(t, "Support renewal", fetched.Name)
	require.Len(t, fetched.Payments, 1)
	assert.Equal(t, p.ID, fetched.Payments[0].ID)
}

func TestSFAHandler_CreateRevenue_Validation(t *testing.T) {
	r := newSFATestRouter(t)
	record := validRecord()
	record.Name = ""
	record.SalesItems = nil
	body, err := sfawire.EncodeRevenue(record)
	require.NoError(t, err)

	w, resp := serve(t, r, http.MethodPost, "/api/v1/sfas", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "basicInfo")
	assert.Contains(t, resp.Error.Details, "salesItems")
	assert.NotContains(t, resp.Error.Details, "payments")
}

func TestSFAHandler_BadInput(t *testing.T) {
	r := newSFATestRouter(t)

	tests := []struct {
		name         string
		method       string
		path         string
		body         string
		expectedCode int
		expectedErr  string
	}{
		{"malformed json", http.MethodPost, "/api/v1/sfas", `{"name":`, http.StatusBadRequest, dto.ErrCodeInvalidInput},
		{"empty body", http.MethodPost, "/api/v1/sfa-by-payment", ``, http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"bad id", http.MethodGet, "/api/v1/sfas/not-a-uuid", ``, http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"unknown record", http.MethodGet, "/api/v1/sfas/" + uuid.NewString(), ``, http.StatusNotFound, dto.ErrCodeNotFound},
		{"unknown record payments", http.MethodGet, "/api/v1/sfas/" + uuid.NewString() + "/payments", ``, http.StatusNotFound, dto.ErrCodeNotFound},
		{"empty patch", http.MethodPut, "/api/v1/sfa-by-payment/" + uuid.NewString(), `{}`, http.StatusBadRequest, dto.ErrCodeEmptyPatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := serve(t, r, tt.method, tt.path, []byte(tt.body))
			assert.Equal(t, tt.expectedCode, w.Code, w.Body.String())
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
		})
	}
}

func TestSFAHandler_PaymentLifecycle(t *testing.T) {
	r := newSFATestRouter(t)
	record := createRecord(t, r)

	extra := sfa.NewPaymentEntry(record.ID)
	extra.BillingType = "CARD"
	extra.Probability = "50"
	extra.Amount = "2000"
	extra.IsProfit = true
	extra.MarginProfitValue = "300"
	extra.RecognitionDate = "2026-02-28"
	extra.TeamAllocations = []sfa.TeamAllocation{{TeamID: "A", TeamName: "Team A"}}
	body, err := sfawire.EncodePayment(extra)
	require.NoError(t, err)

	w, resp := serve(t, r, http.MethodPost, "/api/v1/sfa-by-payment", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created, err := sfawire.DecodePayment(resp.Data)
	require.NoError(t, err)
	assert.Equal(t, int64(300), created.ProfitAmount)

	w, resp = serve(t, r, http.MethodGet, "/api/v1/sfas/"+record.ID.String()+"/payments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed, err := sfawire.DecodePayments(resp.Data)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, created.ID, listed[1].ID)

	paymentPath := "/api/v1/sfa-by-payment/" + created.ID.String()
	w, resp = serve(t, r, http.MethodPut, paymentPath, []byte(`{"memo":"call back in March"}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated, err := sfawire.DecodePayment(resp.Data)
	require.NoError(t, err)
	assert.Equal(t, "call back in March", updated.Memo)
	assert.Equal(t, "2000", updated.Amount)

	w, _ = serve(t, r, http.MethodPut, paymentPath, []byte(`{"is_deleted":true}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, resp = serve(t, r, http.MethodPut, paymentPath, []byte(`{"memo":"again"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodePaymentDeleted, resp.Error.Code)

	w, resp = serve(t, r, http.MethodGet, "/api/v1/sfas/"+record.ID.String()+"/payments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed, err = sfawire.DecodePayments(resp.Data)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	w, resp = serve(t, r, http.MethodGet, paymentPath+"/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	history, err := sfawire.DecodeHistory(resp.Data)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, sfa.HistoryActionCreated, history[0].Action)
	assert.Equal(t, sfa.HistoryActionUpdated, history[1].Action)
	assert.Equal(t, sfa.HistoryActionDeleted, history[2].Action)
	assert.True(t, history[2].Snapshot.IsDeleted)
}

func TestSFAHandler_ExportPayments(t *testing.T) {
	r := newSFATestRouter(t)
	record := createRecord(t, r)

	w, _ := serve(t, r, http.MethodGet, "/api/v1/sfas/"+record.ID.String()+"/payments/export", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), record.ID.String())
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

func TestSFAHandler_Lookups(t *testing.T) {
	r := newSFATestRouter(t)

	w, resp := serve(t, r, http.MethodGet, "/api/v1/codes/"+sfa.CodeCategoryBillingType, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var codes []sfa.Code
	require.NoError(t, sfawire.Unmarshal(resp.Data, &codes))
	require.Len(t, codes, 2)
	assert.Equal(t, "TAX_INVOICE", codes[0].Code)

	w, resp = serve(t, r, http.MethodGet, "/api/v1/codes/unknown", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(resp.Data))

	w, resp = serve(t, r, http.MethodGet, "/api/v1/teams", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var teams []sfa.Team
	require.NoError(t, sfawire.Unmarshal(resp.Data, &teams))
	assert.Len(t, teams, 2)

	w, resp = serve(t, r, http.MethodGet, "/api/v1/customers?search=glob", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var customers []sfa.Customer
	require.NoError(t, sfawire.Unmarshal(resp.Data, &customers))
	require.Len(t, customers, 1)
	assert.Equal(t, "Globex", customers[0].Name)
}
