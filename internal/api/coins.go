package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Bill amounts
	"github.com/sirupsen/logrus"    // Logging library

	"clubcorra/internal/domain"
	"clubcorra/internal/middleware"
	"clubcorra/internal/service"
	"clubcorra/internal/utils"
)

// RewardRequest is a bill submitted for coins
type RewardRequest struct {
	BrandID       uint            `json:"brand_id" binding:"required"`                      // Brand the bill was paid at
	BillAmount    decimal.Decimal `json:"bill_amount"`                                      // Checked positive by the service
	BillDate      string          `json:"bill_date" binding:"required,datetime=2006-01-02"` // Day of purchase
	CoinsToRedeem int64           `json:"coins_to_redeem" binding:"gte=0"`                  // 0 for earn-only requests
	ReceiptKey    string          `json:"receipt_key" binding:"omitempty,max=255"`          // Key returned by the receipt upload
}

// ReviewRequest carries reviewer notes
type ReviewRequest struct {
	Notes string `json:"notes" binding:"omitempty,max=1000"`
}

// RejectRequest must explain the rejection
type RejectRequest struct {
	Notes string `json:"notes" binding:"required,max=1000"`
}

// PaidRequest records the payout reference
type PaidRequest struct {
	PaymentTransactionID string `json:"payment_transaction_id" binding:"required,max=191"`
	PaymentMethod        string `json:"payment_method" binding:"required,max=30"`
}

// BalanceHandler returns the caller's coin balance
func BalanceHandler(coins service.CoinService) gin.HandlerFunc {
	return func(c *gin.Context) {
		bal, err := coins.Balance(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, bal)
	}
}

// SubmitRewardRequestHandler submits a bill; redeemed coins are held until review
func SubmitRewardRequestHandler(coins service.CoinService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserID(c) // Get userID from context
		var req RewardRequest          // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		billDate, err := parseDate("bill_date", req.BillDate)
		if err != nil {
			respondError(c, err)
			return
		}
		// Validation, reservation and the insert happen in one DB transaction
		t, err := coins.SubmitRewardRequest(c.Request.Context(), userID, service.RewardRequestInput{
			BrandID:       req.BrandID,
			BillAmount:    req.BillAmount,
			BillDate:      billDate,
			CoinsToRedeem: req.CoinsToRedeem,
			ReceiptKey:    req.ReceiptKey,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, t)
	}
}

// transactionFilter reads the listing filters; owner pins the user for app listings
func transactionFilter(c *gin.Context, owner uint) (service.TransactionFilter, error) {
	f := service.TransactionFilter{
		UserID: owner,
		Type:   domain.TransactionType(c.Query("type")),
		Status: domain.TransactionStatus(c.Query("status")),
	}
	if f.Type != "" && !f.Type.Valid() {
		return f, &service.FieldError{Field: "type", Message: "unknown type"}
	}
	if f.Status != "" && !f.Status.Valid() {
		return f, &service.FieldError{Field: "status", Message: "unknown status"}
	}
	var err error
	if f.BrandID, err = queryID(c, "brand_id"); err != nil {
		return f, err
	}
	if owner == 0 {
		if f.UserID, err = queryID(c, "user_id"); err != nil {
			return f, err
		}
	}
	if f.From, err = queryDate(c, "from"); err != nil {
		return f, err
	}
	if f.To, err = queryDate(c, "to"); err != nil {
		return f, err
	}
	if f.To != nil {
		end := f.To.AddDate(0, 0, 1) // to is inclusive of the whole day
		f.To = &end
	}
	return f, nil
}

// ListMyTransactionsHandler returns the caller's transaction history
func ListMyTransactionsHandler(coins service.CoinService) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := transactionFilter(c, middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		page, err := coins.ListTransactions(c.Request.Context(), f, utils.ParsePage(c.Query("page"), c.Query("page_size")))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// GetMyTransactionHandler returns one of the caller's transactions
func GetMyTransactionHandler(coins service.CoinService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		t, err := coins.GetUserTransaction(c.Request.Context(), middleware.UserID(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

// UploadReceiptHandler stores a bill photo or PDF and returns its key
func UploadReceiptHandler(receipts service.ReceiptService) gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			respondError(c, &service.FieldError{Field: "file", Message: "is required"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			respondError(c, err)
			return
		}
		defer f.Close()
		info, err := receipts.Upload(c.Request.Context(), middleware.UserID(c), f, fh.Filename, fh.Header.Get("Content-Type"), fh.Size)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"receipt_key": info.Key, "size": info.Size})
	}
}

// ListTransactionsHandler returns transactions across users for the portal
func ListTransactionsHandler(coins service.CoinService) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := transactionFilter(c, 0)
		if err != nil {
			respondError(c, err)
			return
		}
		page, err := coins.ListTransactions(c.Request.Context(), f, utils.ParsePage(c.Query("page"), c.Query("page_size")))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// GetTransactionHandler returns any transaction
func GetTransactionHandler(coins service.CoinService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		t, err := coins.GetTransaction(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

// respondTransition writes the result of a status change and logs it
func respondTransition(c *gin.Context, action string, t *domain.CoinTransaction, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	logrus.WithFields(logrus.Fields{
		"transaction_id": t.ID,                 // Transaction moved
		"admin_id":       middleware.UserID(c), // Reviewer
		"status":         t.Status,             // New status
		"request_id":     middleware.GetRequestID(c),
	}).Info("Transaction " + action)
	c.JSON(http.StatusOK, t)
}

// ApproveTransactionHandler approves a pending request and credits earned coins
func ApproveTransactionHandler(coins service.CoinService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req ReviewRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				respondBindError(c, err)
				return
			}
		}
		t, err := coins.Approve(c.Request.Context(), id, middleware.UserID(c), req.Notes)
		respondTransition(c, "approved", t, err)
	}
}

// RejectTransactionHandler rejects a pending request and refunds held coins
func RejectTransactionHandler(coins service.CoinService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req RejectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		t, err := coins.Reject(c.Request.Context(), id, middleware.UserID(c), req.Notes)
		respondTransition(c, "rejected", t, err)
	}
}

// ProcessTransactionHandler queues an approved redemption for payout
func ProcessTransactionHandler(coins service.CoinService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		t, err := coins.MarkProcessed(c.Request.Context(), id, middleware.UserID(c))
		respondTransition(c, "processed", t, err)
	}
}

// MarkPaidHandler records that the payout was sent
func MarkPaidHandler(coins service.CoinService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req PaidRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		t, err := coins.MarkPaid(c.Request.Context(), id, middleware.UserID(c), service.PaymentInput{
			PaymentTransactionID: req.PaymentTransactionID,
			PaymentMethod:        req.PaymentMethod,
		})
		respondTransition(c, "paid", t, err)
	}
}

// ReceiptURLHandler returns a short-lived link to a transaction's receipt
func ReceiptURLHandler(receipts service.ReceiptService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		url, err := receipts.ReceiptURL(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": url, "expires_in": int(service.ReceiptURLExpiry.Seconds())})
	}
}

// DashboardHandler returns the portal summary
func DashboardHandler(dashboard service.DashboardService) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := dashboard.Summary(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	}
}
