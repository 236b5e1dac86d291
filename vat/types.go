package vat

import (
	"time"

	"github.com/jrsteele09/go-hmrc-client/api"
)

// ObligationStatus is the filing state of a VAT obligation.
type ObligationStatus string

const (
	ObligationOpen      ObligationStatus = "O"
	ObligationFulfilled ObligationStatus = "F"
)

// PaymentIndicator is the method HMRC will use to settle a return.
type PaymentIndicator string

const (
	PaymentDirectDebit  PaymentIndicator = "DD"
	PaymentDirectCredit PaymentIndicator = "BANK"
)

// Obligation is a required VAT filing for an accounting period. It is
// server data and immutable once received.
type Obligation struct {
	Start     api.Date         `json:"start"`
	End       api.Date         `json:"end"`
	Due       api.Date         `json:"due"`
	Status    ObligationStatus `json:"status"`
	PeriodKey string           `json:"periodKey"`
	Received  *api.Date        `json:"received,omitempty"`
}

type obligationList struct {
	Obligations []Obligation `json:"obligations"`
}

// Return is the nine-box VAT form for one accounting period. The five
// money boxes carry pence precision; the four turnover boxes are whole
// pounds. Fields are pointers so that an unset box is distinguishable
// from a legitimate zero: submission requires every box.
//
// The "ExVAT" JSON suffix does not follow the usual camelCase of the
// HMRC APIs; the tags preserve the wire spelling.
type Return struct {
	PeriodKey                    string      `json:"periodKey" validate:"required"`
	VatDueSales                  *api.Amount `json:"vatDueSales" validate:"required"`
	VatDueAcquisitions           *api.Amount `json:"vatDueAcquisitions" validate:"required"`
	TotalVatDue                  *api.Amount `json:"totalVatDue" validate:"required"`
	VatReclaimedCurrPeriod       *api.Amount `json:"vatReclaimedCurrPeriod" validate:"required"`
	NetVatDue                    *api.Amount `json:"netVatDue" validate:"required"`
	TotalValueSalesExVAT         *int64      `json:"totalValueSalesExVAT" validate:"required"`
	TotalValuePurchasesExVAT     *int64      `json:"totalValuePurchasesExVAT" validate:"required"`
	TotalValueGoodsSuppliedExVAT *int64      `json:"totalValueGoodsSuppliedExVAT" validate:"required"`
	TotalAcquisitionsExVAT       *int64      `json:"totalAcquisitionsExVAT" validate:"required"`
}

// Submission is a Return plus the declaration flag. HMRC only accepts
// finalised returns; a draft exists client-side only.
type Submission struct {
	Return
	Finalised bool `json:"finalised"`
}

// Confirmation acknowledges a successful return submission.
type Confirmation struct {
	ProcessingDate   time.Time        `json:"processingDate"`
	PaymentIndicator PaymentIndicator `json:"paymentIndicator,omitempty"`
	FormBundleNumber string           `json:"formBundleNumber,omitempty"`
	ChargeRefNumber  string           `json:"chargeRefNumber,omitempty"`
}

// Payment is a VAT payment HMRC has received. Read-only server data.
type Payment struct {
	Amount   api.Amount `json:"amount"`
	Received *api.Date  `json:"received,omitempty"`
}

type paymentList struct {
	Payments []Payment `json:"payments"`
}

// TaxPeriod bounds a liability's accounting period.
type TaxPeriod struct {
	From api.Date `json:"from"`
	To   api.Date `json:"to"`
}

// Liability is an amount owed to HMRC for a tax period.
type Liability struct {
	TaxPeriod         *TaxPeriod  `json:"taxPeriod,omitempty"`
	Type              string      `json:"type"`
	OriginalAmount    api.Amount  `json:"originalAmount"`
	OutstandingAmount *api.Amount `json:"outstandingAmount,omitempty"`
	Due               *api.Date   `json:"due,omitempty"`
}

type liabilityList struct {
	Liabilities []Liability `json:"liabilities"`
}
