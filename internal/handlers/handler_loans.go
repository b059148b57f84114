package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/safebank/ledger_backend/internal/apperrors"
	portssvc "github.com/safebank/ledger_backend/internal/core/ports/services"
	"github.com/safebank/ledger_backend/internal/core/services"
	"github.com/safebank/ledger_backend/internal/dto"
	"github.com/safebank/ledger_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// loanHandler handles HTTP requests for the loan lifecycle.
type loanHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLoanHandler(ls portssvc.LedgerSvcFacade) *loanHandler {
	return &loanHandler{
		ledgerService: ls,
	}
}

// registerLoanRoutes registers loan request, listing and lifecycle routes.
func registerLoanRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLoanHandler(ledgerService)

	rg.POST("/accounts/:id/loans", h.requestLoan)
	rg.GET("/accounts/:id/loans", h.listLoans)

	loans := rg.Group("/loans")
	{
		loans.POST("/:id/approve", h.approveLoan)
		loans.POST("/:id/pay", h.payLoan)
	}
}

func respondLoanError(c *gin.Context, logger *slog.Logger, err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, services.ErrInvalidAmount):
		logger.Warn("Invalid loan amount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrLoanLimitExceeded):
		logger.Warn("Loan limit exceeded", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrLoanNotFound):
		logger.Warn("Loan not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": "Loan not found"})
	case errors.Is(err, services.ErrLoanNotPending), errors.Is(err, services.ErrLoanNotApproved):
		logger.Warn("Loan in wrong state", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrLoanExceedsBalance):
		logger.Warn("Loan repayment exceeds balance", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAccountNotFound), errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Account not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
	case errors.Is(err, apperrors.ErrTransientLock):
		logger.Warn("Row contended, asking client to retry", slog.String("error", err.Error()))
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Account busy, please retry"})
	default:
		logger.Error("Loan operation failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Operation failed"})
	}
	return true
}

func (h *loanHandler) requestLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RequestLoan", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("account_id", accountID), slog.String("amount", req.Amount.String()))
	logger.Info("Received loan request")

	txn, err := h.ledgerService.RequestLoan(c.Request.Context(), accountID, req.Amount, userID)
	if respondLoanError(c, logger, err) {
		return
	}

	logger.Info("Loan requested", slog.String("transaction_id", txn.TransactionID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

func (h *loanHandler) listLoans(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	loans, err := h.ledgerService.ListLoans(c.Request.Context(), accountID)
	if respondLoanError(c, logger, err) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"loans": dto.ToTransactionResponses(loans)})
}

func (h *loanHandler) approveLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loanID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("loan_transaction_id", loanID))
	logger.Info("Received loan approval request")

	txn, err := h.ledgerService.ApproveLoan(c.Request.Context(), loanID, userID)
	if respondLoanError(c, logger, err) {
		return
	}

	logger.Info("Loan approved")
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

func (h *loanHandler) payLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loanID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("loan_transaction_id", loanID))
	logger.Info("Received loan repayment request")

	settlement, err := h.ledgerService.PayLoan(c.Request.Context(), loanID, userID)
	if respondLoanError(c, logger, err) {
		return
	}

	logger.Info("Loan settled", slog.String("settlement_transaction_id", settlement.TransactionID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(settlement))
}
