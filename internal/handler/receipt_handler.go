package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"receiptbox/internal/errors"
	"receiptbox/internal/model"
	"receiptbox/internal/repository"
	"receiptbox/internal/service"
	"receiptbox/internal/storage"
)

// ReceiptHandler handles receipt endpoints.
type ReceiptHandler struct {
	svc   service.ReceiptService
	files storage.FileStore
}

// NewReceiptHandler creates a new receipt handler.
func NewReceiptHandler(svc service.ReceiptService, files storage.FileStore) *ReceiptHandler {
	return &ReceiptHandler{svc: svc, files: files}
}

// OwnerSummary is the materialized owner of a receipt.
type OwnerSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ReceiptResponse represents a receipt in API responses.
type ReceiptResponse struct {
	ID            uuid.UUID       `json:"id"`
	StoreName     string          `json:"store_name"`
	PurchaseDate  model.Date      `json:"purchase_date"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Category      *string         `json:"category"`
	PaymentMethod *string         `json:"payment_method"`
	FileURL       *string         `json:"file_url"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Owner         OwnerSummary    `json:"owner"`
}

func (h *ReceiptHandler) toResponse(receipt *model.Receipt, owner *model.User) ReceiptResponse {
	resp := ReceiptResponse{
		ID:            receipt.ID,
		StoreName:     receipt.StoreName,
		PurchaseDate:  receipt.PurchaseDate,
		TotalAmount:   receipt.TotalAmount,
		Category:      receipt.Category,
		PaymentMethod: receipt.PaymentMethod,
		CreatedAt:     receipt.CreatedAt,
		UpdatedAt:     receipt.UpdatedAt,
		Owner: OwnerSummary{
			ID:    owner.ID,
			Name:  owner.Name,
			Email: owner.Email,
		},
	}
	if receipt.FileName != nil {
		url := h.files.URL(*receipt.FileName)
		resp.FileURL = &url
	}
	return resp
}

func (h *ReceiptHandler) toResponsePage(page repository.Page[model.Receipt], owner *model.User) repository.Page[ReceiptResponse] {
	content := make([]ReceiptResponse, 0, len(page.Content))
	for i := range page.Content {
		content = append(content, h.toResponse(&page.Content[i], owner))
	}
	return repository.Page[ReceiptResponse]{
		Content:       content,
		Page:          page.Page,
		Size:          page.Size,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
	}
}

// bindReceiptInput parses the multipart form fields into a service input.
func bindReceiptInput(c echo.Context) (service.ReceiptInput, error) {
	var input service.ReceiptInput

	input.StoreName = c.FormValue("storeName")

	if raw := c.FormValue("purchaseDate"); raw != "" {
		date, err := model.ParseDate(raw)
		if err != nil {
			return input, echo.NewHTTPError(http.StatusBadRequest, "purchaseDate must be YYYY-MM-DD")
		}
		input.PurchaseDate = date
	}

	if raw := c.FormValue("totalAmount"); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return input, echo.NewHTTPError(http.StatusBadRequest, "totalAmount must be a decimal number")
		}
		input.TotalAmount = amount
	}

	if v := c.FormValue("category"); v != "" {
		input.Category = &v
	}
	if v := c.FormValue("paymentMethod"); v != "" {
		input.PaymentMethod = &v
	}

	return input, nil
}

// formAttachment opens the optional "file" part. The returned closer is
// non-nil whenever the attachment is.
func formAttachment(c echo.Context) (*service.Attachment, multipart.File, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		// A missing part means no attachment; anything else is a bad request.
		if err == http.ErrMissingFile || err == http.ErrNotMultipart {
			return nil, nil, nil
		}
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid file upload")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid file upload")
	}

	return &service.Attachment{Filename: fileHeader.Filename, Content: src}, src, nil
}

// bindPageRequest parses pagination query params with the given default size.
func bindPageRequest(c echo.Context, defaultSize int) repository.PageRequest {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, err := strconv.Atoi(c.QueryParam("size"))
	if err != nil || size <= 0 {
		size = defaultSize
	}
	return repository.PageRequest{
		Page:    page,
		Size:    size,
		SortBy:  c.QueryParam("sortBy"),
		SortDir: c.QueryParam("sortDir"),
	}
}

func domainError(err error) *echo.HTTPError {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// Create godoc
// @Summary Upload a new receipt
// @Tags receipts
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param storeName formData string true "Store name"
// @Param purchaseDate formData string true "Purchase date (YYYY-MM-DD)"
// @Param totalAmount formData string true "Total amount"
// @Param category formData string false "Category"
// @Param paymentMethod formData string false "Payment method"
// @Param file formData file false "Receipt file (PDF or image)"
// @Success 201 {object} ReceiptResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /receipts [post]
func (h *ReceiptHandler) Create(c echo.Context) error {
	identity, err := IdentityFromContext(c)
	if err != nil {
		return err
	}

	input, err := bindReceiptInput(c)
	if err != nil {
		return err
	}

	attachment, src, err := formAttachment(c)
	if err != nil {
		return err
	}
	if src != nil {
		defer src.Close()
	}

	receipt, err := h.svc.Create(c.Request().Context(), identity.UserID, input, attachment)
	if err != nil {
		return domainError(err)
	}

	owner, err := h.svc.Owner(c.Request().Context(), receipt.OwnerID)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, h.toResponse(receipt, owner))
}

// List godoc
// @Summary List the caller's receipts
// @Tags receipts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Zero-based page index"
// @Param size query int false "Page size"
// @Param sortBy query string false "Sort field"
// @Param sortDir query string false "Sort direction (ASC or DESC)"
// @Success 200 {object} repository.Page[ReceiptResponse]
// @Failure 401 {object} errors.ErrorResponse
// @Router /receipts [get]
func (h *ReceiptHandler) List(c echo.Context) error {
	identity, err := IdentityFromContext(c)
	if err != nil {
		return err
	}

	page, err := h.svc.List(c.Request().Context(), identity.UserID, bindPageRequest(c, 100))
	if err != nil {
		return domainError(err)
	}

	owner, err := h.svc.Owner(c.Request().Context(), identity.UserID)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, h.toResponsePage(page, owner))
}

// Get godoc
// @Summary Get a receipt by ID
// @Tags receipts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Receipt ID"
// @Success 200 {object} ReceiptResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /receipts/{id} [get]
func (h *ReceiptHandler) Get(c echo.Context) error {
	identity, err := IdentityFromContext(c)
	if err != nil {
		return err
	}

	receiptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid receipt id")
	}

	receipt, err := h.svc.Get(c.Request().Context(), receiptID, identity.UserID)
	if err != nil {
		return domainError(err)
	}

	owner, err := h.svc.Owner(c.Request().Context(), receipt.OwnerID)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, h.toResponse(receipt, owner))
}

// Update godoc
// @Summary Update a receipt
// @Tags receipts
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Receipt ID"
// @Param storeName formData string true "Store name"
// @Param purchaseDate formData string true "Purchase date (YYYY-MM-DD)"
// @Param totalAmount formData string true "Total amount"
// @Param category formData string false "Category"
// @Param paymentMethod formData string false "Payment method"
// @Param file formData file false "Replacement receipt file"
// @Success 200 {object} ReceiptResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /receipts/{id} [put]
func (h *ReceiptHandler) Update(c echo.Context) error {
	identity, err := IdentityFromContext(c)
	if err != nil {
		return err
	}

	receiptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid receipt id")
	}

	input, err := bindReceiptInput(c)
	if err != nil {
		return err
	}

	attachment, src, err := formAttachment(c)
	if err != nil {
		return err
	}
	if src != nil {
		defer src.Close()
	}

	receipt, err := h.svc.Update(c.Request().Context(), receiptID, identity.UserID, input, attachment)
	if err != nil {
		return domainError(err)
	}

	owner, err := h.svc.Owner(c.Request().Context(), receipt.OwnerID)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, h.toResponse(receipt, owner))
}

// Delete godoc
// @Summary Delete a receipt
// @Tags receipts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Receipt ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /receipts/{id} [delete]
func (h *ReceiptHandler) Delete(c echo.Context) error {
	identity, err := IdentityFromContext(c)
	if err != nil {
		return err
	}

	receiptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid receipt id")
	}

	if err := h.svc.Delete(c.Request().Context(), receiptID, identity.UserID); err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "receipt deleted successfully",
	})
}

// Search godoc
// @Summary Search the caller's receipts
// @Tags receipts
// @Produce json
// @Security BearerAuth
// @Param storeName query string false "Store name substring"
// @Param category query string false "Category substring"
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Param page query int false "Zero-based page index"
// @Param size query int false "Page size"
// @Param sortBy query string false "Sort field"
// @Param sortDir query string false "Sort direction (ASC or DESC)"
// @Success 200 {object} repository.Page[ReceiptResponse]
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /receipts/search [get]
func (h *ReceiptHandler) Search(c echo.Context) error {
	identity, err := IdentityFromContext(c)
	if err != nil {
		return err
	}

	filter := repository.ReceiptFilter{
		StoreName: c.QueryParam("storeName"),
		Category:  c.QueryParam("category"),
	}
	if raw := c.QueryParam("startDate"); raw != "" {
		date, err := model.ParseDate(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "startDate must be YYYY-MM-DD")
		}
		filter.StartDate = &date
	}
	if raw := c.QueryParam("endDate"); raw != "" {
		date, err := model.ParseDate(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "endDate must be YYYY-MM-DD")
		}
		filter.EndDate = &date
	}

	page, err := h.svc.Search(c.Request().Context(), identity.UserID, filter, bindPageRequest(c, 10))
	if err != nil {
		return domainError(err)
	}

	owner, err := h.svc.Owner(c.Request().Context(), identity.UserID)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, h.toResponsePage(page, owner))
}
