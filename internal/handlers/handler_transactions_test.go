package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/safebank/ledger_backend/internal/core/domain"
	portssvc "github.com/safebank/ledger_backend/internal/core/ports/services"
	"github.com/safebank/ledger_backend/internal/core/services"
	"github.com/safebank/ledger_backend/internal/dto"
	"github.com/safebank/ledger_backend/internal/handlers"
	"github.com/safebank/ledger_backend/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccountByNo(ctx context.Context, accountNo string) (*domain.Account, error) {
	args := m.Called(ctx, accountNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) GetAccountByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) SetBankruptFlag(ctx context.Context, accountID string, bankrupt bool, userID string) error {
	args := m.Called(ctx, accountID, bankrupt, userID)
	return args.Error(0)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Deposit(ctx context.Context, accountID string, amount decimal.Decimal, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, accountID, amount, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockLedgerService) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, accountID, amount, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockLedgerService) Transfer(ctx context.Context, sourceAccountID string, destAccountNo string, amount decimal.Decimal, userID string) (*domain.TransferResult, error) {
	args := m.Called(ctx, sourceAccountID, destAccountNo, amount, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransferResult), args.Error(1)
}
func (m *MockLedgerService) RequestLoan(ctx context.Context, accountID string, amount decimal.Decimal, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, accountID, amount, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockLedgerService) ApproveLoan(ctx context.Context, loanTransactionID string, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, loanTransactionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockLedgerService) PayLoan(ctx context.Context, loanTransactionID string, userID string) (*domain.Transaction, error) {
	args := m.Called(ctx, loanTransactionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockLedgerService) ListLoans(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) GenerateReport(ctx context.Context, accountID string, params dto.ReportParams) (*domain.Report, error) {
	args := m.Called(ctx, accountID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

var _ portssvc.ReportingSvcFacade = (*MockReportingService)(nil)

// --- Test Suite ---
type TransactionHandlerTestSuite struct {
	suite.Suite
	router               *gin.Engine
	mockAccountService   *MockAccountService
	mockLedgerService    *MockLedgerService
	mockReportingService *MockReportingService
	jwtSecret            string
}

func (suite *TransactionHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "bankledger-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *TransactionHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.mockAccountService = new(MockAccountService)
	suite.mockLedgerService = new(MockLedgerService)
	suite.mockReportingService = new(MockReportingService)

	cfg := &config.Config{JWTSecret: suite.jwtSecret}
	container := &portssvc.ServiceContainer{
		Account:   suite.mockAccountService,
		Ledger:    suite.mockLedgerService,
		Reporting: suite.mockReportingService,
	}
	handlers.RegisterRoutes(suite.router, cfg, container)
}

func (suite *TransactionHandlerTestSuite) doJSON(method, url, userID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *TransactionHandlerTestSuite) TestDeposit_Success() {
	accountID := uuid.NewString()
	userID := uuid.NewString()
	amount := decimal.NewFromInt(50)

	expected := &domain.Transaction{
		TransactionID:   uuid.NewString(),
		AccountID:       accountID,
		Amount:          amount,
		TransactionType: domain.Deposit,
		BalanceAfter:    decimal.NewFromInt(1050),
		Timestamp:       time.Now().UTC(),
	}
	suite.mockLedgerService.On("Deposit", mock.Anything, accountID, mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(amount)
	}), userID).Return(expected, nil).Once()

	url := fmt.Sprintf("/api/v1/accounts/%s/deposit", accountID)
	w := suite.doJSON(http.MethodPost, url, userID, dto.AmountRequest{Amount: amount})

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.TransactionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(expected.TransactionID, resp.TransactionID)
	suite.True(resp.BalanceAfter.Equal(decimal.NewFromInt(1050)))
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *TransactionHandlerTestSuite) TestDeposit_Unauthorized() {
	url := fmt.Sprintf("/api/v1/accounts/%s/deposit", uuid.NewString())
	w := suite.doJSON(http.MethodPost, url, "", dto.AmountRequest{Amount: decimal.NewFromInt(50)})

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockLedgerService.AssertNotCalled(suite.T(), "Deposit")
}

func (suite *TransactionHandlerTestSuite) TestWithdraw_InsufficientFunds() {
	accountID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockLedgerService.On("Withdraw", mock.Anything, accountID, mock.Anything, userID).
		Return(nil, services.ErrInsufficientFunds).Once()

	url := fmt.Sprintf("/api/v1/accounts/%s/withdraw", accountID)
	w := suite.doJSON(http.MethodPost, url, userID, dto.AmountRequest{Amount: decimal.NewFromInt(5000)})

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *TransactionHandlerTestSuite) TestTransfer_Success() {
	accountID := uuid.NewString()
	userID := uuid.NewString()
	amount := decimal.NewFromInt(250)

	transferID := uuid.NewString()
	result := &domain.TransferResult{
		TransferID: transferID,
		Sent: domain.Transaction{
			TransactionID:   uuid.NewString(),
			AccountID:       accountID,
			Amount:          amount,
			TransactionType: domain.TransferSent,
			BalanceAfter:    decimal.NewFromInt(750),
			TransferID:      transferID,
		},
		Received: domain.Transaction{
			TransactionID:   uuid.NewString(),
			Amount:          amount,
			TransactionType: domain.TransferReceived,
			BalanceAfter:    decimal.NewFromInt(450),
			TransferID:      transferID,
		},
		SourceBalance:      decimal.NewFromInt(750),
		DestinationBalance: decimal.NewFromInt(450),
	}
	suite.mockLedgerService.On("Transfer", mock.Anything, accountID, "ACC-3001", mock.Anything, userID).
		Return(result, nil).Once()

	url := fmt.Sprintf("/api/v1/accounts/%s/transfer", accountID)
	w := suite.doJSON(http.MethodPost, url, userID, dto.TransferRequest{AccountNo: "ACC-3001", Amount: amount})

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.TransferResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(result.TransferID, resp.TransferID)
	suite.Equal(resp.Sent.TransferID, resp.Received.TransferID)
}

func (suite *TransactionHandlerTestSuite) TestTransfer_SameAccount() {
	accountID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockLedgerService.On("Transfer", mock.Anything, accountID, "ACC-1001", mock.Anything, userID).
		Return(nil, services.ErrSameAccount).Once()

	url := fmt.Sprintf("/api/v1/accounts/%s/transfer", accountID)
	w := suite.doJSON(http.MethodPost, url, userID, dto.TransferRequest{AccountNo: "ACC-1001", Amount: decimal.NewFromInt(10)})

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TransactionHandlerTestSuite) TestPayLoan_WrongState() {
	loanID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockLedgerService.On("PayLoan", mock.Anything, loanID, userID).
		Return(nil, services.ErrLoanNotApproved).Once()

	url := fmt.Sprintf("/api/v1/loans/%s/pay", loanID)
	w := suite.doJSON(http.MethodPost, url, userID, nil)

	suite.Equal(http.StatusConflict, w.Code)
}

func TestTransactionHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionHandlerTestSuite))
}
