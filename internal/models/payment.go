package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentRequest struct {
	RequestCode string            `json:"requestCode"`
	OrderCode   string            `json:"orderCode"`
	Amount      decimal.Decimal   `json:"amount"`
	VNPData     map[string]string `json:"vnpData,omitempty"`
	Data        map[string]string `json:"data,omitempty"`
}

// PaymentResponse is the outcome of a callback or a QueryDR reply.
// Result is nil when the gateway signature could not be verified.
type PaymentResponse struct {
	Result      *bool             `json:"result"`
	RequestCode string            `json:"requestCode"`
	OrderCode   string            `json:"orderCode"`
	Amount      decimal.Decimal   `json:"amount"`
	VNPData     map[string]string `json:"vnpData"`
	Data        map[string]string `json:"data"`
}

const (
	FlowReturnURL = "ReturnURL"
	FlowIPN       = "IPN"
	FlowQueryDR   = "QueryDR"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomePending = "pending"
)

func Outcome(result *bool) string {
	switch {
	case result == nil:
		return OutcomePending
	case *result:
		return OutcomeSuccess
	default:
		return OutcomeFailed
	}
}

func (r *PaymentResponse) Outcome() string {
	return Outcome(r.Result)
}

type CorrelationEntry struct {
	Type        string
	RedirectURL string
	Data        map[string]string
}

type ClientInfo struct {
	IP      string
	BaseURL string
}

type QueryResult struct {
	Result  *bool             `json:"result"`
	VNPData map[string]string `json:"vnpData"`
}

func (r *QueryResult) Outcome() string {
	return Outcome(r.Result)
}

type IPNAck struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

type ReconcileEvent struct {
	Flow            string
	RequestCode     string
	OrderCode       string
	TransactionDate time.Time
}
