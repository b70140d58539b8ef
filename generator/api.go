package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alovak/cardflow-bingen/generator/models"
	"github.com/alovak/cardflow-bingen/internal/authmsg"
	"github.com/alovak/cardflow-bingen/internal/cardgen"
	"github.com/alovak/cardflow-bingen/internal/expiry"
	"github.com/alovak/cardflow-bingen/internal/logger"
	"github.com/alovak/cardflow-bingen/internal/security"
)

// DefaultQuantity is used when a generate request omits quantity.
const DefaultQuantity = 10

// API is a HTTP API for the generator service
type API struct {
	generator *Service
}

func NewAPI(generator *Service) *API {
	return &API{
		generator: generator,
	}
}

func (a *API) AppendRoutes(r chi.Router) {
	r.Route("/cards", func(r chi.Router) {
		r.Post("/generate", a.generateCards)
		r.Post("/validate", a.validateCard)
	})
	r.Get("/bins/{bin}", a.lookupBIN)
}

type GenerateRequest struct {
	// BINs is the ";"-separated list typed by the user.
	BINs     string `json:"bins"`
	CVV      string `json:"cvv"`
	Month    string `json:"month"`
	Year     string `json:"year"`
	Quantity *int   `json:"quantity"`
}

type cardResponse struct {
	*models.Card
	CardFace string `json:"card_face"`
}

type batchResponse struct {
	ID        string         `json:"batch_id"`
	CreatedAt time.Time      `json:"created_at"`
	Cards     []cardResponse `json:"cards"`
}

type errorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	BINs    []string `json:"bins,omitempty"`
}

func (a *API) generateCards(w http.ResponseWriter, r *http.Request) {
	body := GenerateRequest{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, errorResponse{Code: "invalid_input", Message: err.Error()})
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", "json", "text", "iso8583":
	default:
		writeError(w, r, http.StatusBadRequest, errorResponse{Code: "invalid_input", Message: fmt.Sprintf("unsupported format %q", format)})
		return
	}

	req, err := body.toRequest()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, errorResponse{Code: "invalid_input", Message: err.Error()})
		return
	}

	batch, err := a.generator.GenerateBatch(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}

	switch format {
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(models.FormatText(batch.Cards)))
	case "iso8583":
		messages, err := authmsg.PackHex(batch.Cards, authmsg.DefaultParams(batch.CreatedAt))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, struct {
			ID       string   `json:"batch_id"`
			Messages []string `json:"messages"`
		}{batch.ID, messages})
	default:
		resp := batchResponse{ID: batch.ID, CreatedAt: batch.CreatedAt, Cards: make([]cardResponse, len(batch.Cards))}
		for i, c := range batch.Cards {
			resp.Cards[i] = cardResponse{Card: c, CardFace: expiry.CardFace(c.Month, c.Year)}
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

// toRequest applies the input-layer rules of the generator form.
func (b GenerateRequest) toRequest() (Request, error) {
	req := Request{
		BINs:     SplitBINs(b.BINs),
		CVV:      security.SanitizeCVV(b.CVV),
		Month:    b.Month,
		Year:     b.Year,
		Quantity: DefaultQuantity,
	}
	if b.Quantity != nil {
		req.Quantity = *b.Quantity
	}
	if req.Month == "" {
		req.Month = expiry.Random
	}
	if req.Year == "" {
		req.Year = expiry.Random
	}
	if err := expiry.ValidateMonth(req.Month); err != nil {
		return Request{}, err
	}
	if err := expiry.ValidateYear(req.Year); err != nil {
		return Request{}, err
	}
	return req, nil
}

func (a *API) validateCard(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Number string `json:"number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, errorResponse{Code: "invalid_input", Message: err.Error()})
		return
	}

	pan := cardgen.NormalizePAN(body.Number)
	resp := struct {
		Valid   bool            `json:"valid"`
		Network cardgen.Network `json:"network"`
		Masked  string          `json:"masked"`
		Error   string          `json:"error,omitempty"`
	}{
		Valid:   true,
		Network: cardgen.Classify(pan),
		Masked:  cardgen.MaskPAN(pan),
	}
	if err := cardgen.ValidatePAN(pan); err != nil {
		resp.Valid = false
		resp.Error = err.Error()
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (a *API) lookupBIN(w http.ResponseWriter, r *http.Request) {
	bin := chi.URLParam(r, "bin")

	network, md, err := a.generator.LookupBIN(r.Context(), bin)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, struct {
		BIN     string          `json:"bin"`
		Network cardgen.Network `json:"network"`
		BINInfo any             `json:"bin_info"`
	}{bin, network, md})
}

func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *InvalidBINError
	switch {
	case errors.As(err, &invalid):
		writeError(w, r, http.StatusBadRequest, errorResponse{Code: "invalid_input", Message: err.Error(), BINs: invalid.BINs})
	case errors.Is(err, ErrEmptyInput):
		writeError(w, r, http.StatusBadRequest, errorResponse{Code: "invalid_input", Message: err.Error()})
	default:
		logger.FromContext(r.Context()).Error("unexpected error", slog.Any("err", err))
		writeError(w, r, http.StatusInternalServerError, errorResponse{Code: "internal_error", Message: "Error generating cards. Please try again."})
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, resp errorResponse) {
	writeJSON(w, r, status, resp)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response", slog.Any("err", err), slog.Int("status", status))
	}
}
