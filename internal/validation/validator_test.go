package validation

import (
	"net/http"
	"strings"
	"testing"
	"time"

	apperrors "github.com/captcha-dashboard/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Amount string `json:"amount" validate:"required,decimal_positive"`
	Method string `json:"paymentMethod" validate:"required,oneof=paypal bitcoin"`
	Name   string `json:"name" validate:"omitempty,max=5"`
	Ratio  string `json:"ratio" validate:"omitempty,decimal"`
}

func TestValidateStruct_Valid(t *testing.T) {
	req := sampleRequest{Amount: "10.50", Method: "paypal", Ratio: "-1.5"}
	assert.Nil(t, ValidateStruct(&req))
	assert.NoError(t, Validate(&req))
}

func TestValidateStruct_FieldErrors(t *testing.T) {
	tests := []struct {
		name      string
		req       sampleRequest
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{"missing amount", sampleRequest{Method: "paypal"}, "amount", "required", "amount is required"},
		{"zero amount", sampleRequest{Amount: "0", Method: "paypal"}, "amount", "decimal_positive", "amount must be a positive decimal number"},
		{"negative amount", sampleRequest{Amount: "-3", Method: "paypal"}, "amount", "decimal_positive", "amount must be a positive decimal number"},
		{"garbage amount", sampleRequest{Amount: "ten", Method: "paypal"}, "amount", "decimal_positive", "amount must be a positive decimal number"},
		{"unknown method", sampleRequest{Amount: "1", Method: "cash"}, "paymentMethod", "oneof", "paymentMethod must be one of: paypal bitcoin"},
		{"long name", sampleRequest{Amount: "1", Method: "paypal", Name: "abcdefg"}, "name", "max", "name must be at most 5 characters"},
		{"bad ratio", sampleRequest{Amount: "1", Method: "paypal", Ratio: "x"}, "ratio", "decimal", "ratio must be a decimal number"},
		{"huge exponent amount", sampleRequest{Amount: "1e10000000", Method: "paypal"}, "amount", "decimal_positive", "amount must be a positive decimal number"},
		{"tiny exponent ratio", sampleRequest{Amount: "1", Method: "paypal", Ratio: "1e-10000000"}, "ratio", "decimal", "ratio must be a decimal number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&tt.req)
			require.NotNil(t, verr)
			require.Len(t, verr.Fields(), 1)

			f := verr.Fields()[0]
			assert.Equal(t, tt.wantField, f.Field)
			assert.Equal(t, tt.wantTag, f.Tag)
			assert.Equal(t, tt.wantMsg, f.Message)
		})
	}
}

func TestToCategorizedError(t *testing.T) {
	verr := ValidateStruct(&sampleRequest{})
	require.NotNil(t, verr)

	catErr := verr.ToCategorizedError()
	assert.Equal(t, http.StatusBadRequest, catErr.StatusCode)
	assert.Equal(t, apperrors.CodeValidation, catErr.Code)

	fields, ok := catErr.Details["fields"].([]apperrors.FieldError)
	require.True(t, ok)
	assert.Len(t, fields, 2)
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "10.50", want: "10.5"},
		{in: " 0.0200 ", want: "0.02"},
		{in: "1e3", want: "1000"},
		{in: "0e1000000", want: "0"},
		{in: "0.12345678", want: "0.12345678"},
		{in: "1.50000000000000", want: "1.5"},
		{in: "999999999999", want: "999999999999"},
		{in: "-2.5", want: "-2.5"},
		{in: "1e10000000", wantErr: true},
		{in: "1e-10000000", wantErr: true},
		{in: "1e12", wantErr: true},
		{in: "1000000000000", wantErr: true},
		{in: "0.123456789", wantErr: true},
		{in: "1" + strings.Repeat("0", 70), wantErr: true},
		{in: "ten", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			start := time.Now()
			d, err := ParseMoney(tt.in)
			assert.Less(t, time.Since(start), time.Second)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestParseMoney_OutOfRangeSentinel(t *testing.T) {
	_, err := ParseMoney("1e10000000")
	assert.ErrorIs(t, err, ErrMoneyOutOfRange)
}
