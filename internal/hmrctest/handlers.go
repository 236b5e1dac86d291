package hmrctest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jrsteele09/go-hmrc-client/api"
	"github.com/jrsteele09/go-hmrc-client/internal/utils"
	"github.com/jrsteele09/go-hmrc-client/vat"
)

// restricted wraps a handler with bearer token validation, answering
// 401 with the HMRC error envelope when the token is missing, expired
// or unknown.
func (s *Server) restricted(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || !s.validAccessToken(raw) {
			s.writeError(w, http.StatusUnauthorized, api.ErrorResponse{ErrorDetail: api.ErrorDetail{
				Code:    "INVALID_CREDENTIALS",
				Message: "Invalid Authentication information provided",
			}})
			return
		}
		next(w, r)
	}
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeOAuthError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if r.PostForm.Get("client_id") != ClientID || r.PostForm.Get("client_secret") != ClientSecret {
		s.writeOAuthError(w, http.StatusUnauthorized, "invalid_client")
		return
	}

	s.mu.Lock()
	granted := false
	switch r.PostForm.Get("grant_type") {
	case "authorization_code":
		code := r.PostForm.Get("code")
		granted = s.codes[code]
		delete(s.codes, code)
	case "refresh_token":
		refresh := r.PostForm.Get("refresh_token")
		granted = s.refresh[refresh]
		delete(s.refresh, refresh)
	}
	s.mu.Unlock()
	if !granted {
		s.writeOAuthError(w, http.StatusBadRequest, "invalid_grant")
		return
	}

	tok := s.issue(s.TokenTTL)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  tok.AccessToken,
		"token_type":    "bearer",
		"expires_in":    int(s.TokenTTL.Seconds()),
		"refresh_token": tok.RefreshToken,
		"scope":         r.PostForm.Get("scope"),
	})
}

func (s *Server) handleHello(message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"message": message})
	}
}

// cannedObligations is the static 2018 quarterly data served by the
// obligations endpoint. The MONTHLY_TWO_MET scenario serves a monthly
// variant instead.
func cannedObligations(scenario string) []vat.Obligation {
	if scenario == "MONTHLY_TWO_MET" {
		received := api.NewDate(2018, 3, 5)
		return []vat.Obligation{
			{Start: api.NewDate(2018, 1, 1), End: api.NewDate(2018, 1, 31), Due: api.NewDate(2018, 3, 7), Status: vat.ObligationFulfilled, PeriodKey: "18AD", Received: &received},
			{Start: api.NewDate(2018, 2, 1), End: api.NewDate(2018, 2, 28), Due: api.NewDate(2018, 4, 7), Status: vat.ObligationFulfilled, PeriodKey: "18AE", Received: &received},
			{Start: api.NewDate(2018, 3, 1), End: api.NewDate(2018, 3, 31), Due: api.NewDate(2018, 5, 7), Status: vat.ObligationOpen, PeriodKey: "18AF"},
		}
	}
	received := api.NewDate(2018, 4, 15)
	return []vat.Obligation{
		{Start: api.NewDate(2018, 1, 1), End: api.NewDate(2018, 3, 31), Due: api.NewDate(2018, 5, 7), Status: vat.ObligationFulfilled, PeriodKey: "18A1", Received: &received},
		{Start: api.NewDate(2018, 4, 1), End: api.NewDate(2018, 6, 30), Due: api.NewDate(2018, 8, 7), Status: vat.ObligationOpen, PeriodKey: "18A2"},
	}
}

func (s *Server) handleObligations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	status := query.Get("status")

	var matched []vat.Obligation
	for _, ob := range cannedObligations(r.Header.Get("Gov-Test-Scenario")) {
		if status != "" && string(ob.Status) != status {
			continue
		}
		if from := query.Get("from"); from != "" {
			if d, err := api.ParseDate(from); err == nil && ob.End.Before(d.Time) {
				continue
			}
		}
		if to := query.Get("to"); to != "" {
			if d, err := api.ParseDate(to); err == nil && ob.End.After(d.Time) {
				continue
			}
		}
		matched = append(matched, ob)
	}
	if len(matched) == 0 {
		s.writeError(w, http.StatusNotFound, api.ErrorResponse{ErrorDetail: api.ErrorDetail{
			Code:    "NOT_FOUND",
			Message: "The remote endpoint has indicated that no data can be found",
		}})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"obligations": matched})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	vrn := mux.Vars(r)["vrn"]
	var sub vat.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		s.writeError(w, http.StatusBadRequest, api.ErrorResponse{ErrorDetail: api.ErrorDetail{
			Code:    "INVALID_REQUEST",
			Message: "Invalid request",
		}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.returns[vrn][sub.PeriodKey]; exists {
		s.writeError(w, http.StatusForbidden, api.ErrorResponse{
			ErrorDetail: api.ErrorDetail{Code: "BUSINESS_ERROR", Message: "Business validation error"},
			Errors: []api.ErrorDetail{{
				Code:    "DUPLICATE_SUBMISSION",
				Message: "The VAT return was already submitted for the given period",
			}},
		})
		return
	}
	if s.returns[vrn] == nil {
		s.returns[vrn] = map[string]vat.Submission{}
	}
	s.returns[vrn][sub.PeriodKey] = sub

	s.writeJSON(w, http.StatusCreated, vat.Confirmation{
		ProcessingDate:   time.Now().UTC().Truncate(time.Millisecond),
		PaymentIndicator: vat.PaymentDirectCredit,
		FormBundleNumber: fmt.Sprintf("%012d", len(s.returns[vrn])),
	})
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s.mu.Lock()
	sub, exists := s.returns[vars["vrn"]][vars["periodKey"]]
	s.mu.Unlock()
	if !exists {
		s.writeError(w, http.StatusNotFound, api.ErrorResponse{ErrorDetail: api.ErrorDetail{
			Code:    "NOT_FOUND",
			Message: "The remote endpoint has indicated that no data can be found",
		}})
		return
	}
	s.writeJSON(w, http.StatusOK, sub.Return)
}

func (s *Server) handlePayments(w http.ResponseWriter, r *http.Request) {
	vrn := mux.Vars(r)["vrn"]
	s.mu.Lock()
	payments := []vat.Payment{}
	for _, sub := range s.returns[vrn] {
		received := api.NewDate(2018, 6, 7)
		payments = append(payments, vat.Payment{
			Amount:   utils.Value(sub.NetVatDue),
			Received: &received,
		})
	}
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, map[string]any{"payments": payments})
}

func (s *Server) handleLiabilities(w http.ResponseWriter, r *http.Request) {
	vrn := mux.Vars(r)["vrn"]
	s.mu.Lock()
	liabilities := []vat.Liability{}
	for _, sub := range s.returns[vrn] {
		due := api.NewDate(2018, 8, 7)
		liabilities = append(liabilities, vat.Liability{
			TaxPeriod:         &vat.TaxPeriod{From: api.NewDate(2018, 4, 1), To: api.NewDate(2018, 6, 30)},
			Type:              "VAT Return Debit Charge",
			OriginalAmount:    utils.Value(sub.NetVatDue),
			OutstandingAmount: utils.Ptr(api.Amount(0)),
			Due:               &due,
		})
	}
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, map[string]any{"liabilities": liabilities})
}

func (s *Server) handleCreateUser(organisation bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ServiceNames []string `json:"serviceNames"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, api.ErrorResponse{ErrorDetail: api.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: "Invalid request",
			}})
			return
		}

		user := map[string]any{
			"userId":       "user-" + uuid.New().String()[:8],
			"password":     uuid.New().String(),
			"userFullName": "Ida Newton",
			"emailAddress": "ida.newton@example.com",
		}
		if organisation {
			user["organisationDetails"] = map[string]any{
				"name": "Company ABF123",
				"address": map[string]string{
					"line1":    "1 Abbey Road",
					"line2":    "Aberdeen",
					"postcode": "TS4 3PA",
				},
			}
		}
		for _, service := range req.ServiceNames {
			if service == "mtd-vat" {
				user["vrn"] = "101747696"
				user["vatRegistrationDate"] = "2017-01-02"
			}
		}
		s.writeJSON(w, http.StatusCreated, user)
	}
}

// requiredFraudHeaders are the Gov-Client headers the validate endpoint
// insists on.
var requiredFraudHeaders = []string{
	"Gov-Client-Connection-Method",
	"Gov-Client-Device-ID",
	"Gov-Client-Local-IPs",
	"Gov-Client-MAC-Addresses",
	"Gov-Client-Timezone",
	"Gov-Client-User-Agent",
	"Gov-Client-User-IDs",
	"Gov-Vendor-Version",
}

func (s *Server) handleFraudCheck(w http.ResponseWriter, r *http.Request) {
	var missing []string
	for _, header := range requiredFraudHeaders {
		if r.Header.Get(header) == "" {
			missing = append(missing, header)
		}
	}
	report := map[string]any{
		"specVersion": "3.0",
		"code":        "NO_ERRORS_OR_WARNINGS",
		"message":     "All headers are valid",
	}
	if len(missing) > 0 {
		report["code"] = "INVALID_HEADERS"
		report["message"] = "At least one header is invalid"
		report["errors"] = []map[string]any{{
			"code":    "MISSING_HEADER",
			"message": "Header is missing",
			"headers": missing,
		}}
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.t.Errorf("encoding response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, envelope api.ErrorResponse) {
	s.writeJSON(w, status, envelope)
}

func (s *Server) writeOAuthError(w http.ResponseWriter, status int, code string) {
	s.writeJSON(w, status, map[string]string{"error": code})
}
