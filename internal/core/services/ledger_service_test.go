package services_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/safebank/ledger_backend/internal/apperrors"
	"github.com/safebank/ledger_backend/internal/core/domain"
	portsrepo "github.com/safebank/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/safebank/ledger_backend/internal/core/ports/services"
	"github.com/safebank/ledger_backend/internal/core/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockAccountRepository is a mock type for the AccountRepository interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByNo(ctx context.Context, accountNo string) (*domain.Account, error) {
	args := m.Called(ctx, accountNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SetBankruptFlag(ctx context.Context, accountID string, bankrupt bool, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, bankrupt, userID, now)
	return args.Error(0)
}

// fakeLedgerRepository is an in-memory LedgerRepository. It stages changes
// made through the mutator and commits them only when the callback succeeds,
// mirroring the transactional behavior of the real repository.
type fakeLedgerRepository struct {
	accounts     map[string]domain.Account
	transactions []domain.Transaction
}

func newFakeLedgerRepository() *fakeLedgerRepository {
	return &fakeLedgerRepository{
		accounts: make(map[string]domain.Account),
	}
}

type fakeMutator struct {
	repo         *fakeLedgerRepository
	snapshot     map[string]domain.Account
	newBalances  map[string]decimal.Decimal
	inserted     []domain.Transaction
	loanStatuses map[string]domain.LoanStatus
}

func (m *fakeMutator) Account(accountID string) (domain.Account, bool) {
	acc, ok := m.snapshot[accountID]
	return acc, ok
}

func (m *fakeMutator) UpdateBalance(_ context.Context, accountID string, newBalance decimal.Decimal, _ string, _ time.Time) error {
	if _, ok := m.snapshot[accountID]; !ok {
		return apperrors.ErrNotFound
	}
	m.newBalances[accountID] = newBalance
	return nil
}

func (m *fakeMutator) InsertTransaction(_ context.Context, txn domain.Transaction) error {
	m.inserted = append(m.inserted, txn)
	return nil
}

func (m *fakeMutator) LoanForUpdate(_ context.Context, transactionID string) (*domain.Transaction, error) {
	for i := range m.repo.transactions {
		txn := m.repo.transactions[i]
		if txn.TransactionID == transactionID && txn.TransactionType == domain.Loan {
			return &txn, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *fakeMutator) UpdateLoanStatus(_ context.Context, transactionID string, status domain.LoanStatus, _ string, _ time.Time) error {
	m.loanStatuses[transactionID] = status
	return nil
}

func (r *fakeLedgerRepository) MutateAccounts(ctx context.Context, accountIDs []string, fn func(ctx context.Context, m portsrepo.LedgerMutator) error) error {
	snapshot := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if acc, ok := r.accounts[id]; ok {
			snapshot[id] = acc
		}
	}

	mut := &fakeMutator{
		repo:         r,
		snapshot:     snapshot,
		newBalances:  make(map[string]decimal.Decimal),
		loanStatuses: make(map[string]domain.LoanStatus),
	}
	if err := fn(ctx, mut); err != nil {
		return err
	}

	for id, balance := range mut.newBalances {
		acc := r.accounts[id]
		acc.Balance = balance
		r.accounts[id] = acc
	}
	r.transactions = append(r.transactions, mut.inserted...)
	for id, status := range mut.loanStatuses {
		for i := range r.transactions {
			if r.transactions[i].TransactionID == id {
				r.transactions[i].LoanStatus = status
			}
		}
	}
	return nil
}

func (r *fakeLedgerRepository) FindTransactionByID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	for i := range r.transactions {
		if r.transactions[i].TransactionID == transactionID {
			txn := r.transactions[i]
			return &txn, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeLedgerRepository) CountLoansByStatus(_ context.Context, accountID string, status domain.LoanStatus) (int, error) {
	count := 0
	for _, txn := range r.transactions {
		if txn.AccountID == accountID && txn.TransactionType == domain.Loan && txn.LoanStatus == status {
			count++
		}
	}
	return count, nil
}

func (r *fakeLedgerRepository) ListLoansByAccount(_ context.Context, accountID string) ([]domain.Transaction, error) {
	loans := []domain.Transaction{}
	for _, txn := range r.transactions {
		if txn.AccountID == accountID && txn.TransactionType == domain.Loan {
			loans = append(loans, txn)
		}
	}
	return loans, nil
}

func (r *fakeLedgerRepository) ListTransactionsByAccount(_ context.Context, accountID string, from, to *time.Time) ([]domain.Transaction, error) {
	result := []domain.Transaction{}
	for _, txn := range r.transactions {
		if txn.AccountID != accountID {
			continue
		}
		if from != nil && txn.Timestamp.Before(*from) {
			continue
		}
		if to != nil && txn.Timestamp.After(*to) {
			continue
		}
		result = append(result, txn)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Timestamp.Before(result[j].Timestamp) })
	return result, nil
}

// recordingNotifier collects notifications for assertions.
type recordingNotifier struct {
	notifications []domain.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, notification domain.Notification) error {
	n.notifications = append(n.notifications, notification)
	return nil
}

// --- Test Suite Setup ---

type LedgerServiceTestSuite struct {
	suite.Suite
	ledgerRepo  *fakeLedgerRepository
	accountRepo *MockAccountRepository
	notifier    *recordingNotifier
	service     portssvc.LedgerSvcFacade

	accountID string
	userID    string
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.ledgerRepo = newFakeLedgerRepository()
	suite.accountRepo = new(MockAccountRepository)
	suite.notifier = &recordingNotifier{}
	suite.service = services.NewLedgerService(suite.ledgerRepo, suite.accountRepo, suite.notifier)

	suite.accountID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.seedAccount(suite.accountID, "ACC-1001", "1000", false)
}

func (suite *LedgerServiceTestSuite) seedAccount(accountID, accountNo, balance string, bankrupt bool) domain.Account {
	acc := domain.Account{
		AccountID:  accountID,
		AccountNo:  accountNo,
		UserID:     uuid.NewString(),
		Balance:    decimal.RequireFromString(balance),
		IsBankrupt: bankrupt,
		IsActive:   true,
	}
	suite.ledgerRepo.accounts[accountID] = acc
	return acc
}

func (suite *LedgerServiceTestSuite) seedLoan(accountID, amount string, status domain.LoanStatus) domain.Transaction {
	loan := domain.Transaction{
		TransactionID:   uuid.NewString(),
		AccountID:       accountID,
		Amount:          decimal.RequireFromString(amount),
		TransactionType: domain.Loan,
		BalanceAfter:    suite.ledgerRepo.accounts[accountID].Balance,
		LoanStatus:      status,
		Timestamp:       time.Now().UTC(),
	}
	suite.ledgerRepo.transactions = append(suite.ledgerRepo.transactions, loan)
	return loan
}

func (suite *LedgerServiceTestSuite) balanceOf(accountID string) decimal.Decimal {
	return suite.ledgerRepo.accounts[accountID].Balance
}

// --- Deposit ---

func (suite *LedgerServiceTestSuite) TestDeposit_Success() {
	txn, err := suite.service.Deposit(context.Background(), suite.accountID, decimal.RequireFromString("50"), suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.Deposit, txn.TransactionType)
	suite.True(txn.BalanceAfter.Equal(decimal.RequireFromString("1050")))
	suite.True(suite.balanceOf(suite.accountID).Equal(decimal.RequireFromString("1050")))
	suite.Require().Len(suite.notifier.notifications, 1)
	suite.Equal(domain.NotifyDeposit, suite.notifier.notifications[0].Kind)
}

func (suite *LedgerServiceTestSuite) TestDeposit_RejectsNonPositiveAmount() {
	for _, amount := range []string{"0", "-5"} {
		_, err := suite.service.Deposit(context.Background(), suite.accountID, decimal.RequireFromString(amount), suite.userID)
		suite.ErrorIs(err, services.ErrInvalidAmount)
	}
	suite.Empty(suite.ledgerRepo.transactions)
	suite.True(suite.balanceOf(suite.accountID).Equal(decimal.RequireFromString("1000")))
}

func (suite *LedgerServiceTestSuite) TestDeposit_UnknownAccount() {
	_, err := suite.service.Deposit(context.Background(), uuid.NewString(), decimal.RequireFromString("50"), suite.userID)
	suite.ErrorIs(err, services.ErrAccountNotFound)
}

// --- Withdraw ---

func (suite *LedgerServiceTestSuite) TestWithdraw_BalanceSequence() {
	ctx := context.Background()

	txn, err := suite.service.Withdraw(ctx, suite.accountID, decimal.RequireFromString("300"), suite.userID)
	suite.Require().NoError(err)
	suite.True(txn.BalanceAfter.Equal(decimal.RequireFromString("700")))

	txn, err = suite.service.Deposit(ctx, suite.accountID, decimal.RequireFromString("50"), suite.userID)
	suite.Require().NoError(err)
	suite.True(txn.BalanceAfter.Equal(decimal.RequireFromString("750")))

	suite.True(suite.balanceOf(suite.accountID).Equal(decimal.RequireFromString("750")))
	suite.Len(suite.ledgerRepo.transactions, 2)
}

func (suite *LedgerServiceTestSuite) TestWithdraw_InsufficientFunds() {
	_, err := suite.service.Withdraw(context.Background(), suite.accountID, decimal.RequireFromString("1000.01"), suite.userID)

	suite.ErrorIs(err, services.ErrInsufficientFunds)
	suite.True(suite.balanceOf(suite.accountID).Equal(decimal.RequireFromString("1000")))
	suite.Empty(suite.ledgerRepo.transactions)
	suite.Empty(suite.notifier.notifications)
}

func (suite *LedgerServiceTestSuite) TestWithdraw_FullBalanceWhileBankrupt() {
	bankruptID := uuid.NewString()
	suite.seedAccount(bankruptID, "ACC-2001", "500", true)

	_, err := suite.service.Withdraw(context.Background(), bankruptID, decimal.RequireFromString("500"), suite.userID)
	suite.ErrorIs(err, services.ErrBankBankrupt)
	suite.True(suite.balanceOf(bankruptID).Equal(decimal.RequireFromString("500")))

	// A smaller withdrawal from the same bankrupt account is still permitted.
	txn, err := suite.service.Withdraw(context.Background(), bankruptID, decimal.RequireFromString("499.99"), suite.userID)
	suite.Require().NoError(err)
	suite.True(txn.BalanceAfter.Equal(decimal.RequireFromString("0.01")))
}

func (suite *LedgerServiceTestSuite) TestWithdraw_FullBalanceWhileSolvent() {
	txn, err := suite.service.Withdraw(context.Background(), suite.accountID, decimal.RequireFromString("1000"), suite.userID)

	suite.Require().NoError(err)
	suite.True(txn.BalanceAfter.Equal(decimal.Zero))
	suite.True(suite.balanceOf(suite.accountID).Equal(decimal.Zero))
}

// --- Transfer ---

func (suite *LedgerServiceTestSuite) TestTransfer_Success() {
	destID := uuid.NewString()
	dest := suite.seedAccount(destID, "ACC-3001", "200", false)
	suite.accountRepo.On("FindAccountByNo", mock.Anything, "ACC-3001").Return(&dest, nil)

	result, err := suite.service.Transfer(context.Background(), suite.accountID, "ACC-3001", decimal.RequireFromString("250"), suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.TransferSent, result.Sent.TransactionType)
	suite.Equal(domain.TransferReceived, result.Received.TransactionType)
	suite.Equal(result.Sent.TransferID, result.Received.TransferID)
	suite.NotEmpty(result.TransferID)
	suite.True(result.SourceBalance.Equal(decimal.RequireFromString("750")))
	suite.True(result.DestinationBalance.Equal(decimal.RequireFromString("450")))
	suite.True(suite.balanceOf(suite.accountID).Equal(decimal.RequireFromString("750")))
	suite.True(suite.balanceOf(destID).Equal(decimal.RequireFromString("450")))
	suite.Len(suite.ledgerRepo.transactions, 2)
	suite.Require().Len(suite.notifier.notifications, 2)
	suite.Equal(domain.NotifyTransferSent, suite.notifier.notifications[0].Kind)
	suite.Equal(domain.NotifyTransferReceived, suite.notifier.notifications[1].Kind)
}

func (suite *LedgerServiceTestSuite) TestTransfer_InsufficientFundsLeavesNoTrace() {
	destID := uuid.NewString()
	dest := suite.seedAccount(destID, "ACC-3002", "200", false)
	suite.accountRepo.On("FindAccountByNo", mock.Anything, "ACC-3002").Return(&dest, nil)

	_, err := suite.service.Transfer(context.Background(), suite.accountID, "ACC-3002", decimal.RequireFromString("1500"), suite.userID)

	suite.ErrorIs(err, services.ErrInsufficientFunds)
	suite.True(suite.balanceOf(suite.accountID).Equal(decimal.RequireFromString("1000")))
	suite.True(suite.balanceOf(destID).Equal(decimal.RequireFromString("200")))
	suite.Empty(suite.ledgerRepo.transactions)
	suite.Empty(suite.notifier.notifications)
}

func (suite *LedgerServiceTestSuite) TestTransfer_SameAccount() {
	src := suite.ledgerRepo.accounts[suite.accountID]
	suite.accountRepo.On("FindAccountByNo", mock.Anything, "ACC-1001").Return(&src, nil)

	_, err := suite.service.Transfer(context.Background(), suite.accountID, "ACC-1001", decimal.RequireFromString("10"), suite.userID)
	suite.ErrorIs(err, services.ErrSameAccount)
}

func (suite *LedgerServiceTestSuite) TestTransfer_DestinationNotFound() {
	suite.accountRepo.On("FindAccountByNo", mock.Anything, "ACC-9999").Return(nil, apperrors.ErrNotFound)

	_, err := suite.service.Transfer(context.Background(), suite.accountID, "ACC-9999", decimal.RequireFromString("10"), suite.userID)
	suite.ErrorIs(err, services.ErrAccountNotFound)
}

// --- Loans ---

func (suite *LedgerServiceTestSuite) TestRequestLoan_Success() {
	txn, err := suite.service.RequestLoan(context.Background(), suite.accountID, decimal.RequireFromString("400"), suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.Loan, txn.TransactionType)
	suite.Equal(domain.LoanPending, txn.LoanStatus)
	// Requesting a loan moves no funds.
	suite.True(txn.BalanceAfter.Equal(decimal.RequireFromString("1000")))
	suite.True(suite.balanceOf(suite.accountID).Equal(decimal.RequireFromString("1000")))
	suite.Require().Len(suite.notifier.notifications, 1)
	suite.Equal(domain.NotifyLoanRequested, suite.notifier.notifications[0].Kind)
}

func (suite *LedgerServiceTestSuite) TestRequestLoan_LimitCountsApprovedOnly() {
	for i := 0; i < 3; i++ {
		suite.seedLoan(suite.accountID, "100", domain.LoanApproved)
	}
	// Pending and settled loans do not count toward the limit.
	suite.seedLoan(suite.accountID, "100", domain.LoanPending)
	suite.seedLoan(suite.accountID, "100", domain.LoanSettled)

	_, err := suite.service.RequestLoan(context.Background(), suite.accountID, decimal.RequireFromString("50"), suite.userID)
	suite.ErrorIs(err, services.ErrLoanLimitExceeded)
}

func (suite *LedgerServiceTestSuite) TestRequestLoan_BelowLimitSucceeds() {
	suite.seedLoan(suite.accountID, "100", domain.LoanApproved)
	suite.seedLoan(suite.accountID, "100", domain.LoanApproved)
	suite.seedLoan(suite.accountID, "100", domain.LoanSettled)

	_, err := suite.service.RequestLoan(context.Background(), suite.accountID, decimal.RequireFromString("50"), suite.userID)
	suite.NoError(err)
}

func (suite *LedgerServiceTestSuite) TestApproveLoan_Success() {
	loan := suite.seedLoan(suite.accountID, "400", domain.LoanPending)

	approved, err := suite.service.ApproveLoan(context.Background(), loan.TransactionID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.LoanApproved, approved.LoanStatus)

	stored, err := suite.ledgerRepo.FindTransactionByID(context.Background(), loan.TransactionID)
	suite.Require().NoError(err)
	suite.Equal(domain.LoanApproved, stored.LoanStatus)
}

func (suite *LedgerServiceTestSuite) TestApproveLoan_AlreadyApproved() {
	loan := suite.seedLoan(suite.accountID, "400", domain.LoanApproved)

	_, err := suite.service.ApproveLoan(context.Background(), loan.TransactionID, suite.userID)
	suite.ErrorIs(err, services.ErrLoanNotPending)
}

func (suite *LedgerServiceTestSuite) TestApproveLoan_NotALoan() {
	deposit, err := suite.service.Deposit(context.Background(), suite.accountID, decimal.RequireFromString("10"), suite.userID)
	suite.Require().NoError(err)

	_, err = suite.service.ApproveLoan(context.Background(), deposit.TransactionID, suite.userID)
	suite.ErrorIs(err, services.ErrLoanNotFound)
}

func (suite *LedgerServiceTestSuite) TestPayLoan_Success() {
	loan := suite.seedLoan(suite.accountID, "400", domain.LoanApproved)

	settlement, err := suite.service.PayLoan(context.Background(), loan.TransactionID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.LoanPaid, settlement.TransactionType)
	suite.Equal(loan.TransactionID, settlement.RelatedTransactionID)
	suite.True(settlement.BalanceAfter.Equal(decimal.RequireFromString("600")))
	suite.True(suite.balanceOf(suite.accountID).Equal(decimal.RequireFromString("600")))

	stored, err := suite.ledgerRepo.FindTransactionByID(context.Background(), loan.TransactionID)
	suite.Require().NoError(err)
	suite.Equal(domain.LoanSettled, stored.LoanStatus)
}

func (suite *LedgerServiceTestSuite) TestPayLoan_NotApproved() {
	loan := suite.seedLoan(suite.accountID, "400", domain.LoanPending)

	_, err := suite.service.PayLoan(context.Background(), loan.TransactionID, suite.userID)
	suite.ErrorIs(err, services.ErrLoanNotApproved)
	suite.True(suite.balanceOf(suite.accountID).Equal(decimal.RequireFromString("1000")))
}

func (suite *LedgerServiceTestSuite) TestPayLoan_AmountEqualToBalanceRejected() {
	loan := suite.seedLoan(suite.accountID, "1000", domain.LoanApproved)

	_, err := suite.service.PayLoan(context.Background(), loan.TransactionID, suite.userID)
	suite.ErrorIs(err, services.ErrLoanExceedsBalance)
	suite.True(suite.balanceOf(suite.accountID).Equal(decimal.RequireFromString("1000")))
}

func (suite *LedgerServiceTestSuite) TestPayLoan_UnknownLoan() {
	_, err := suite.service.PayLoan(context.Background(), uuid.NewString(), suite.userID)
	suite.ErrorIs(err, services.ErrLoanNotFound)
}

func (suite *LedgerServiceTestSuite) TestListLoans() {
	suite.seedLoan(suite.accountID, "100", domain.LoanPending)
	suite.seedLoan(suite.accountID, "200", domain.LoanApproved)

	loans, err := suite.service.ListLoans(context.Background(), suite.accountID)
	suite.Require().NoError(err)
	suite.Len(loans, 2)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
