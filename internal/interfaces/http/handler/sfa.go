package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/erp/sfa/internal/domain/sfa"
	"github.com/erp/sfa/internal/infrastructure/sfawire"
	"github.com/erp/sfa/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RevenueStore is the server-side store the handler delegates to
type RevenueStore interface {
	CreateRevenue(ctx context.Context, record *sfa.RevenueRecord) (*sfa.RevenueRecord, error)
	GetRevenue(ctx context.Context, id uuid.UUID) (*sfa.RevenueRecord, error)
	ListPayments(ctx context.Context, revenueID uuid.UUID) ([]sfa.PaymentEntry, error)
	CreatePayment(ctx context.Context, payment sfa.PaymentEntry) (*sfa.PaymentEntry, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, patch sfa.PaymentPatch) (*sfa.PaymentEntry, error)
	History(ctx context.Context, paymentID uuid.UUID) ([]sfa.PaymentHistory, error)
	ExportPayments(ctx context.Context, revenueID uuid.UUID, w io.Writer) error
	Codes(ctx context.Context, category string) ([]sfa.Code, error)
	Teams(ctx context.Context) ([]sfa.Team, error)
	SearchCustomers(ctx context.Context, query string) ([]sfa.Customer, error)
}

// SFAHandler serves revenue records, their payments and the form lookups.
// Request and response bodies use the snake_case wire encoding.
type SFAHandler struct {
	BaseHandler
	store RevenueStore
}

// NewSFAHandler creates a new SFAHandler
func NewSFAHandler(store RevenueStore) *SFAHandler {
	return &SFAHandler{store: store}
}

// respond writes already-encoded data inside the success envelope
func (h *SFAHandler) respond(c *gin.Context, status int, data []byte, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(status, dto.NewSuccessResponse(json.RawMessage(data)))
}

func (h *SFAHandler) readBody(c *gin.Context) ([]byte, bool) {
	body, err := c.GetRawData()
	if err != nil {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Request body could not be read")
		return nil, false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		h.BadRequest(c, "Request body is required")
		return nil, false
	}
	return body, true
}

// CreateRevenue stores a record with its sales items and payments
//
//	@ID				createRevenue
//	@Summary		Create revenue record
//	@Description	Create a revenue record with its sales items and payments
//	@Tags			sfa
//	@Accept			json
//	@Produce		json
//	@Param			request	body		object	true	"Revenue record in snake_case wire encoding"
//	@Success		201		{object}	dto.Response
//	@Failure		400		{object}	dto.Response
//	@Failure		500		{object}	dto.Response
//	@Router			/sfas [post]
func (h *SFAHandler) CreateRevenue(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}
	record, err := sfawire.DecodeRevenue(body)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	created, err := h.store.CreateRevenue(c.Request.Context(), record)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	data, err := sfawire.EncodeRevenue(created)
	h.respond(c, http.StatusCreated, data, err)
}

// GetRevenue returns a record with its items and non-deleted payments
//
//	@ID				getRevenue
//	@Summary		Get revenue record
//	@Tags			sfa
//	@Produce		json
//	@Param			id	path		string	true	"Revenue record ID"	format(uuid)
//	@Success		200	{object}	dto.Response
//	@Failure		400	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Router			/sfas/{id} [get]
func (h *SFAHandler) GetRevenue(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	record, err := h.store.GetRevenue(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	data, err := sfawire.EncodeRevenue(record)
	h.respond(c, http.StatusOK, data, err)
}

// ListPayments returns the non-deleted payments of a record
//
//	@ID				listPayments
//	@Summary		List payments
//	@Tags			sfa
//	@Produce		json
//	@Param			id	path		string	true	"Revenue record ID"	format(uuid)
//	@Success		200	{object}	dto.Response
//	@Failure		400	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Router			/sfas/{id}/payments [get]
func (h *SFAHandler) ListPayments(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	payments, err := h.store.ListPayments(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	data, err := sfawire.EncodePayments(payments)
	h.respond(c, http.StatusOK, data, err)
}

// ExportPayments streams the payment list as an xlsx workbook
//
//	@ID				exportPayments
//	@Summary		Export payments
//	@Tags			sfa
//	@Produce		application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Param			id	path		string	true	"Revenue record ID"	format(uuid)
//	@Success		200	{file}		binary
//	@Failure		404	{object}	dto.Response
//	@Router			/sfas/{id}/payments/export [get]
func (h *SFAHandler) ExportPayments(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	// render fully first so failures still get a JSON error
	var buf bytes.Buffer
	if err := h.store.ExportPayments(c.Request.Context(), id, &buf); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="sfa-%s-payments.xlsx"`, id))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// CreatePayment stores one payment and records its history
//
//	@ID				createPayment
//	@Summary		Create payment
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			request	body		object	true	"Payment entry in snake_case wire encoding"
//	@Success		201		{object}	dto.Response
//	@Failure		400		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Router			/sfa-by-payment [post]
func (h *SFAHandler) CreatePayment(c *gin.Context) {
	body, ok := h.readBody(c)
	if !ok {
		return
	}
	payment, err := sfawire.DecodePayment(body)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	created, err := h.store.CreatePayment(c.Request.Context(), payment)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	data, err := sfawire.EncodePayment(*created)
	h.respond(c, http.StatusCreated, data, err)
}

// UpdatePayment applies a partial update; is_deleted=true soft-deletes
//
//	@ID				updatePayment
//	@Summary		Update payment
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string	true	"Payment ID"	format(uuid)
//	@Param			request	body		object	true	"Fields to change"
//	@Success		200		{object}	dto.Response
//	@Failure		400		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Failure		423		{object}	dto.Response
//	@Router			/sfa-by-payment/{id} [put]
func (h *SFAHandler) UpdatePayment(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	body, ok := h.readBody(c)
	if !ok {
		return
	}
	patch, err := sfawire.DecodePatch(body)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	updated, err := h.store.UpdatePayment(c.Request.Context(), id, patch)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	data, err := sfawire.EncodePayment(*updated)
	h.respond(c, http.StatusOK, data, err)
}

// History returns the change log of a payment, oldest first
//
//	@ID				paymentHistory
//	@Summary		Payment history
//	@Tags			payments
//	@Produce		json
//	@Param			id	path		string	true	"Payment ID"	format(uuid)
//	@Success		200	{object}	dto.Response
//	@Failure		400	{object}	dto.Response
//	@Router			/sfa-by-payment/{id}/history [get]
func (h *SFAHandler) History(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	rows, err := h.store.History(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	data, err := sfawire.EncodeHistory(rows)
	h.respond(c, http.StatusOK, data, err)
}

// Codes returns the codes of one category
//
//	@ID				listCodes
//	@Summary		List codes
//	@Tags			lookups
//	@Produce		json
//	@Param			category	path		string	true	"Code category"
//	@Success		200			{object}	dto.Response
//	@Router			/codes/{category} [get]
func (h *SFAHandler) Codes(c *gin.Context) {
	codes, err := h.store.Codes(c.Request.Context(), c.Param("category"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if codes == nil {
		codes = []sfa.Code{}
	}
	data, err := sfawire.Marshal(codes)
	h.respond(c, http.StatusOK, data, err)
}

// Teams returns every business unit
//
//	@ID				listTeams
//	@Summary		List teams
//	@Tags			lookups
//	@Produce		json
//	@Success		200	{object}	dto.Response
//	@Router			/teams [get]
func (h *SFAHandler) Teams(c *gin.Context) {
	teams, err := h.store.Teams(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if teams == nil {
		teams = []sfa.Team{}
	}
	data, err := sfawire.Marshal(teams)
	h.respond(c, http.StatusOK, data, err)
}

// SearchCustomers finds customers and partners by name
//
//	@ID				searchCustomers
//	@Summary		Search customers
//	@Tags			lookups
//	@Produce		json
//	@Param			search	query		string	false	"Name fragment"	maxlength(100)
//	@Success		200		{object}	dto.Response
//	@Failure		400		{object}	dto.Response
//	@Router			/customers [get]
func (h *SFAHandler) SearchCustomers(c *gin.Context) {
	var req dto.CustomerSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	customers, err := h.store.SearchCustomers(c.Request.Context(), req.Search)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if customers == nil {
		customers = []sfa.Customer{}
	}
	data, err := sfawire.Marshal(customers)
	h.respond(c, http.StatusOK, data, err)
}
