package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	apperrors "github.com/captcha-dashboard/internal/errors"
	"github.com/captcha-dashboard/internal/logging"
	"github.com/captcha-dashboard/internal/metrics"
	"github.com/captcha-dashboard/internal/models"
	"github.com/captcha-dashboard/internal/storage"
	"github.com/captcha-dashboard/internal/types"
	"github.com/captcha-dashboard/internal/validation"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// WithdrawalMethod is one payout channel with its minimum and fee
type WithdrawalMethod struct {
	Method     types.PaymentMethod `json:"method"`
	Minimum    decimal.Decimal     `json:"minimum"`
	FeePercent decimal.Decimal     `json:"feePercent"`
}

// Fee returns the fee for amount, rounded to 4 decimal places
func (m WithdrawalMethod) Fee(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(m.FeePercent).Div(decimal.NewFromInt(100)).Round(4)
}

var withdrawalMethods = []WithdrawalMethod{
	{Method: types.PaymentPayPal, Minimum: decimal.RequireFromString("5.00"), FeePercent: decimal.RequireFromString("2")},
	{Method: types.PaymentBitcoin, Minimum: decimal.RequireFromString("20.00"), FeePercent: decimal.RequireFromString("1")},
	{Method: types.PaymentEthereum, Minimum: decimal.RequireFromString("15.00"), FeePercent: decimal.RequireFromString("1.5")},
	{Method: types.PaymentUSDT, Minimum: decimal.RequireFromString("10.00"), FeePercent: decimal.RequireFromString("1")},
}

// Legacy base58 (P2PKH/P2SH) and bech32 (segwit/taproot) mainnet shapes
var (
	bitcoinBase58 = regexp.MustCompile(`^[13][1-9A-HJ-NP-Za-km-z]{25,34}$`)
	bitcoinBech32 = regexp.MustCompile(`^bc1[02-9ac-hj-np-z]{39,59}$`)
)

// WithdrawalService validates payout requests and writes pending withdrawals
type WithdrawalService struct {
	store    *storage.Store
	activity *ActivityService
}

// NewWithdrawalService creates a new withdrawal service
func NewWithdrawalService(store *storage.Store, activity *ActivityService) *WithdrawalService {
	return &WithdrawalService{store: store, activity: activity}
}

// WithdrawalRequest is the input for a payout request
type WithdrawalRequest struct {
	Amount         string `json:"amount" validate:"required,decimal_positive"`
	PaymentMethod  string `json:"paymentMethod" validate:"required,oneof=paypal bitcoin ethereum usdt"`
	PaymentAddress string `json:"paymentAddress" validate:"required,max=256"`
}

// ListWithdrawalMethods returns the payout channels with their minimums and fees
func (s *WithdrawalService) ListWithdrawalMethods() []WithdrawalMethod {
	out := make([]WithdrawalMethod, len(withdrawalMethods))
	copy(out, withdrawalMethods)
	return out
}

// RequestWithdrawal checks the request against the balance, the method's
// minimum and the address format, then records a pending withdrawal. The
// balance is debited by the full amount; the fee comes out of the payout.
func (s *WithdrawalService) RequestWithdrawal(ctx context.Context, req *WithdrawalRequest) (*models.Transaction, error) {
	tx, err := s.requestWithdrawal(ctx, req)
	outcome := "accepted"
	if err != nil {
		outcome = "rejected"
	}
	metrics.RecordWithdrawal(req.PaymentMethod, outcome)
	return tx, err
}

func (s *WithdrawalService) requestWithdrawal(ctx context.Context, req *WithdrawalRequest) (*models.Transaction, error) {
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr.ToCategorizedError()
	}

	amount, err := validation.ParseMoney(req.Amount)
	if err != nil {
		return nil, apperrors.NewInvalidParameterError("amount", "must be a decimal number")
	}

	user, err := s.store.DefaultUser(ctx)
	if err != nil {
		return nil, storeError(err, "user", storage.DefaultUsername)
	}
	if amount.GreaterThan(user.Balance) {
		return nil, apperrors.NewInsufficientBalanceError(amount.String(), user.Balance.String())
	}

	method, ok := lookupMethod(types.PaymentMethod(req.PaymentMethod))
	if !ok {
		return nil, apperrors.NewInvalidParameterError("paymentMethod", "unsupported payment method")
	}
	if amount.LessThan(method.Minimum) {
		return nil, apperrors.NewInvalidParameterError("amount",
			fmt.Sprintf("minimum withdrawal for %s is %s", method.Method, method.Minimum.StringFixed(2)))
	}

	address, err := normalizeAddress(method.Method, req.PaymentAddress)
	if err != nil {
		return nil, apperrors.NewInvalidParameterError("paymentAddress", err.Error())
	}

	fee := method.Fee(amount)
	pm := method.Method
	tx, err := s.store.DebitWithdrawal(ctx, user.ID, &models.Transaction{
		Amount:         amount,
		Fee:            fee,
		NetAmount:      amount.Sub(fee),
		PaymentMethod:  &pm,
		PaymentAddress: &address,
	})
	if err != nil {
		if errors.Is(err, storage.ErrInsufficientBalance) {
			// the balance moved between the pre-check and the debit
			current, _ := s.store.DefaultUser(ctx)
			balance := decimal.Zero
			if current != nil {
				balance = current.Balance
			}
			return nil, apperrors.NewInsufficientBalanceError(amount.String(), balance.String())
		}
		return nil, storeError(err, "user", user.ID)
	}

	s.activity.Record(ctx, nil, "Withdrawal requested",
		fmt.Sprintf("$%s via %s (fee $%s)", amount.StringFixed(2), pm, fee.StringFixed(4)), types.ActivityInfo)
	logging.FromContext(ctx).WithFields(map[string]interface{}{
		"transactionId": tx.ID,
		"method":        pm,
		"amount":        amount.String(),
	}).Info("Withdrawal requested")

	return tx, nil
}

func lookupMethod(m types.PaymentMethod) (WithdrawalMethod, bool) {
	for _, wm := range withdrawalMethods {
		if wm.Method == m {
			return wm, true
		}
	}
	return WithdrawalMethod{}, false
}

// normalizeAddress validates address for method and returns the stored form.
// EVM addresses are stored EIP-55 checksummed.
func normalizeAddress(method types.PaymentMethod, address string) (string, error) {
	address = strings.TrimSpace(address)

	switch method {
	case types.PaymentPayPal:
		if err := validation.GetValidator().Var(address, "email"); err != nil {
			return "", fmt.Errorf("must be the e-mail address of a PayPal account")
		}
		return address, nil

	case types.PaymentEthereum, types.PaymentUSDT:
		if !strings.HasPrefix(address, "0x") || !common.IsHexAddress(address) {
			return "", fmt.Errorf("must be a 0x-prefixed 20-byte hex address")
		}
		return common.HexToAddress(address).Hex(), nil

	case types.PaymentBitcoin:
		if bitcoinBase58.MatchString(address) {
			return address, nil
		}
		if lower := strings.ToLower(address); (lower == address || strings.ToUpper(address) == address) && bitcoinBech32.MatchString(lower) {
			return lower, nil
		}
		return "", fmt.Errorf("must be a bitcoin mainnet address")
	}

	return "", fmt.Errorf("unsupported payment method %q", method)
}
