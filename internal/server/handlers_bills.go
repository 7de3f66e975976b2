package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ledgerline/backoffice/internal/authz"
	"github.com/ledgerline/backoffice/internal/billing"
	"github.com/ledgerline/backoffice/internal/files"
)

// attachmentField is the multipart form field carrying the invoice file.
const attachmentField = "image"

// handleListBills returns all bills.
func (s *Server) handleListBills(c *gin.Context) {
	bills, err := s.engine.ListBills(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list bills", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve bills"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": bills})
}

// handleGetBill returns one bill with its payment history.
func (s *Server) handleGetBill(c *gin.Context) {
	bill, payments, err := s.engine.GetBill(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, billing.ErrBillNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Bill not found"})
			return
		}
		slog.Error("Failed to get bill", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve bill"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bill": bill, "payments": payments})
}

// handleCreateBill creates a bill, optionally prepaid, with an optional
// invoice attachment.
func (s *Server) handleCreateBill(c *gin.Context) {
	in, cleanup, err := s.billInput(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	defer cleanup()

	bill, payment, err := s.engine.CreateBill(c.Request.Context(), currentUser(c), in)
	if err != nil {
		s.renderBillingError(c, err)
		return
	}

	resp := gin.H{"message": "Bill created successfully", "bill": bill}
	if payment != nil {
		resp["message"] = "Bill created and marked as paid successfully"
		resp["paidBill"] = payment
	}
	c.JSON(http.StatusCreated, resp)
}

// handleRecordPayment appends a payment to an existing bill.
func (s *Server) handleRecordPayment(c *gin.Context) {
	in, cleanup, err := s.billInput(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	defer cleanup()

	bill, payment, err := s.engine.RecordPayment(c.Request.Context(), currentUser(c), c.Param("id"), in)
	if err != nil {
		s.renderBillingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Bill payment recorded successfully",
		"bill":          bill,
		"recordPayment": payment,
	})
}

// handleBillReport aggregates bills over a closed time window.
func (s *Server) handleBillReport(c *gin.Context) {
	start, ok := parseReportTime(c.Query("startTime"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or missing startTime"})
		return
	}
	end, ok := parseReportTime(c.Query("endTime"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or missing endTime"})
		return
	}

	report, err := s.engine.Report(c.Request.Context(), start, end)
	if err != nil {
		slog.Error("Failed to build bill report", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to build report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// billInput reads the shared bill/payment form fields and the optional
// attachment. The returned cleanup closes the attachment file.
func (s *Server) billInput(c *gin.Context) (billing.Input, func(), error) {
	in := billing.Input{
		Name:           c.PostForm("name"),
		Description:    c.PostForm("description"),
		Amount:         c.PostForm("bill_amount"),
		AmountReceived: c.PostForm("amount_received"),
	}
	cleanup := func() {}

	header, err := c.FormFile(attachmentField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return in, cleanup, nil
		}
		return in, cleanup, err
	}

	file, err := header.Open()
	if err != nil {
		return in, cleanup, err
	}

	in.Attachment = &files.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     file,
	}
	return in, func() { file.Close() }, nil
}

// renderBillingError maps engine failures to responses. Every error path
// ends in an explicit response.
func (s *Server) renderBillingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, billing.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, authz.ErrPrepaidForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case errors.Is(err, billing.ErrBillNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Bill not found"})
	default:
		slog.Error("Billing operation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to process bill"})
	}
}

// parseReportTime accepts RFC 3339 or date-only timestamps.
func parseReportTime(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true
	}
	return time.Time{}, false
}
