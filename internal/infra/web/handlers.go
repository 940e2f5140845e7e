package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"pagarme-checkout/internal/domain"
	"pagarme-checkout/internal/domain/model"
	"pagarme-checkout/internal/usecase"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErrors(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"errors": msg})
}

// captureHandler finalizes a checkout. The token arrives as a form field from
// the gateway's checkout javascript. Violations are client errors; a token
// that resolves to a different transaction is bounced back to the checkout
// page.
func captureHandler(checkoutUC usecase.CheckoutUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		slug := chi.URLParam(r, "slug")

		token := r.FormValue("token")
		if token == "" {
			writeErrors(w, http.StatusBadRequest, "token é obrigatório")
			return
		}

		payment, err := checkoutUC.Capture(ctx, token)
		if err != nil {
			var violation *domain.PaymentViolation
			var mismatch *domain.TransactionMismatchError
			switch {
			case errors.As(err, &violation):
				writeErrors(w, http.StatusBadRequest, violation.Msg)
			case errors.As(err, &mismatch):
				// The error carries the id the gateway actually reported; hand
				// it back so the retry captures the right transaction.
				http.Redirect(w, r, "/checkout/"+slug+"?token="+url.QueryEscape(mismatch.TransactionID), http.StatusSeeOther)
			case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrItemUnavailable):
				http.NotFound(w, r)
			case errors.Is(err, domain.ErrInvalidArgument):
				writeErrors(w, http.StatusBadRequest, "transação inválida")
			default:
				http.Error(w, "Failed to capture transaction", http.StatusInternalServerError)
			}
			return
		}

		response := struct {
			ID            string   `json:"id"`
			TransactionID string   `json:"transaction_id"`
			Method        string   `json:"payment_method"`
			Amount        int64    `json:"amount"`
			Installments  int      `json:"installments"`
			ItemSlugs     []string `json:"item_slugs"`
			BoletoURL     *string  `json:"boleto_url,omitempty"`
			BoletoBarcode *string  `json:"boleto_barcode,omitempty"`
		}{
			ID:            payment.ID,
			TransactionID: payment.TransactionID,
			Method:        payment.Method,
			Amount:        payment.Amount,
			Installments:  payment.Installments,
			ItemSlugs:     payment.ItemSlugs,
			BoletoURL:     payment.BoletoURL,
			BoletoBarcode: payment.BoletoBarcode,
		}
		writeJSON(w, http.StatusOK, response)
	}
}

// checkoutPageHandler serves the data the checkout page renders: the item,
// its installment choices, and (when a user id is known) the stored
// customer prefill.
func checkoutPageHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		slug := chi.URLParam(r, "slug")

		item, plans, err := catalogUC.PaymentPlans(ctx, slug)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrItemUnavailable) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "Failed to load item", http.StatusInternalServerError)
			return
		}

		response := struct {
			Item    *model.ItemConfig         `json:"item"`
			Plans   []model.PaymentPlan       `json:"payment_plans"`
			Profile *model.UserPaymentProfile `json:"profile,omitempty"`
			Upsell  *string                   `json:"upsell_slug,omitempty"`
		}{
			Item:   item,
			Plans:  plans,
			Upsell: item.UpsellSlug,
		}
		if userID := r.URL.Query().Get("user_id"); userID != "" {
			if profile, err := catalogUC.Profile(ctx, userID); err == nil {
				response.Profile = profile
			}
		}
		writeJSON(w, http.StatusOK, response)
	}
}

// notificationHandler receives gateway postbacks. The raw body must be read
// before form parsing so the signature check sees the exact bytes sent.
// Out-of-order deliveries are acknowledged with 200 so the gateway stops
// retrying them.
func notificationHandler(
	handle func(r *http.Request, body []byte, signature string) error,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read body", http.StatusBadRequest)
			return
		}
		signature := r.Header.Get("X-Hub-Signature")

		err = handle(r, body, signature)
		if err != nil {
			var violation *domain.PaymentViolation
			var transition *domain.StatusTransitionError
			switch {
			case errors.As(err, &transition):
				// Stale delivery: acknowledged, not recorded.
			case errors.As(err, &violation):
				writeErrors(w, http.StatusBadRequest, violation.Msg)
				return
			case errors.Is(err, domain.ErrInvalidArgument):
				http.Error(w, "Malformed notification", http.StatusBadRequest)
				return
			case errors.Is(err, domain.ErrNotFound):
				http.NotFound(w, r)
				return
			default:
				http.Error(w, "Failed to handle notification", http.StatusInternalServerError)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}

// ===== Admin API handlers =====

type sessionRequest struct {
	Key string `json:"key"`
}

func sessionHandler(auth *AuthManager, adminSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Key != adminSecret {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		token, err := auth.Mint(w)
		if err != nil {
			http.Error(w, "Failed to mint session", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

type configCreateRequest struct {
	Name               string   `json:"name"`
	MaxInstallments    int      `json:"max_installments"`
	DefaultInstallment int      `json:"default_installment"`
	FreeInstallment    int      `json:"free_installment"`
	InterestRate       float64  `json:"interest_rate"`
	PaymentMethods     []string `json:"payment_methods"`
}

func configCreateHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req configCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		cfg, err := catalogUC.CreateConfig(r.Context(), req.Name,
			req.MaxInstallments, req.DefaultInstallment, req.FreeInstallment,
			req.InterestRate, req.PaymentMethods)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "Failed to create config", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, cfg)
	}
}

type itemCreateRequest struct {
	Slug           string     `json:"slug"`
	Name           string     `json:"name"`
	Price          int64      `json:"price"`
	Tangible       bool       `json:"tangible"`
	ConfigID       string     `json:"config_id"`
	AvailableFrom  *time.Time `json:"available_from"`
	AvailableUntil *time.Time `json:"available_until"`
}

func itemCreateHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req itemCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		item, err := catalogUC.CreateItem(r.Context(), req.Slug, req.Name, req.Price,
			req.Tangible, req.ConfigID, req.AvailableFrom, req.AvailableUntil)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "Failed to create item", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, item)
	}
}

func itemsListHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := catalogUC.ListItems(r.Context())
		if err != nil {
			http.Error(w, "Failed to list items", http.StatusInternalServerError)
			return
		}
		response := struct {
			Data []*model.ItemConfig `json:"data"`
		}{Data: items}
		writeJSON(w, http.StatusOK, response)
	}
}

type planCreateRequest struct {
	GatewayPlanID  string   `json:"gateway_plan_id"`
	Name           string   `json:"name"`
	Amount         int64    `json:"amount"`
	Days           int      `json:"days"`
	TrialDays      int      `json:"trial_days"`
	PaymentMethods []string `json:"payment_methods"`
}

func planCreateHandler(subUC usecase.SubscriptionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req planCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		plan, err := subUC.CreatePlan(r.Context(), req.GatewayPlanID, req.Name,
			req.Amount, req.Days, req.TrialDays, req.PaymentMethods)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "Failed to create plan", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, plan)
	}
}

func plansListHandler(subUC usecase.SubscriptionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plans, err := subUC.ListPlans(r.Context())
		if err != nil {
			http.Error(w, "Failed to list plans", http.StatusInternalServerError)
			return
		}
		response := struct {
			Data []*model.Plan `json:"data"`
		}{Data: plans}
		writeJSON(w, http.StatusOK, response)
	}
}

type subscriptionRegisterRequest struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	PlanID         string `json:"plan_id"`
	PaymentMethod  string `json:"payment_method"`
	CardID         string `json:"card_id"`
	CardLastDigits string `json:"card_last_digits"`
	Customer       struct {
		ExternalID string `json:"external_id"`
		Name       string `json:"name"`
		Email      string `json:"email"`
		Document   string `json:"document"`
		Phone      string `json:"phone"`
	} `json:"customer"`
	CurrentTransaction struct {
		ID            string `json:"id"`
		Status        string `json:"status"`
		Amount        int64  `json:"amount"`
		Installments  int    `json:"installments"`
		BoletoURL     string `json:"boleto_url"`
		BoletoBarcode string `json:"boleto_barcode"`
	} `json:"current_transaction"`
}

func subscriptionRegisterHandler(subUC usecase.SubscriptionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subscriptionRegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		gs := &model.GatewaySubscription{
			ID:             req.ID,
			Status:         req.Status,
			PlanID:         req.PlanID,
			PaymentMethod:  req.PaymentMethod,
			CardID:         req.CardID,
			CardLastDigits: req.CardLastDigits,
			Customer: model.GatewayCustomer{
				ExternalID: req.Customer.ExternalID,
				Name:       req.Customer.Name,
				Email:      req.Customer.Email,
				Document:   req.Customer.Document,
				Phone:      req.Customer.Phone,
			},
			CurrentTransaction: model.GatewayTransaction{
				ID:             req.CurrentTransaction.ID,
				Status:         req.CurrentTransaction.Status,
				PaymentMethod:  req.PaymentMethod,
				Amount:         req.CurrentTransaction.Amount,
				Installments:   req.CurrentTransaction.Installments,
				CardID:         req.CardID,
				CardLastDigits: req.CardLastDigits,
				BoletoURL:      req.CurrentTransaction.BoletoURL,
				BoletoBarcode:  req.CurrentTransaction.BoletoBarcode,
				SubscriptionID: req.ID,
			},
		}
		sub, err := subUC.Register(r.Context(), gs)
		if err != nil {
			var violation *domain.PaymentViolation
			switch {
			case errors.As(err, &violation):
				writeErrors(w, http.StatusBadRequest, violation.Msg)
			case errors.Is(err, domain.ErrInvalidArgument):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, domain.ErrNotFound):
				http.Error(w, "Unknown plan", http.StatusUnprocessableEntity)
			default:
				http.Error(w, "Failed to register subscription", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusCreated, sub)
	}
}

func statsHandler(statsUC usecase.StatsUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		week, month, year, err := statsUC.Revenue(r.Context())
		if err != nil {
			http.Error(w, "Failed to get revenue", http.StatusInternalServerError)
			return
		}
		response := struct {
			Revenue struct {
				Week  int64 `json:"week"`
				Month int64 `json:"month"`
				Year  int64 `json:"year"`
			} `json:"revenue"`
		}{}
		response.Revenue.Week = week
		response.Revenue.Month = month
		response.Revenue.Year = year
		writeJSON(w, http.StatusOK, response)
	}
}
