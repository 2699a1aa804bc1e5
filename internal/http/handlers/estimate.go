package handlers

import (
	"encoding/json"
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"renderlab/internal/studio"
)

var vndPrinter = message.NewPrinter(language.Vietnamese)

// FormatVND renders an amount the way Vietnamese storefronts display prices,
// with grouped thousands.
func FormatVND(amount int64) string {
	return vndPrinter.Sprintf("%d ₫", amount)
}

type estimateResponse struct {
	studio.Quote
	CostVNDDisplay string `json:"cost_vnd_display"`
}

// Estimate quotes a settings snapshot without enqueueing anything. The same
// normalization and sizing run at submit time, so the quoted unit count
// matches what a submit of the same snapshot would dispatch.
func (a *App) Estimate(w http.ResponseWriter, r *http.Request) {
	var settings studio.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	settings.Normalize()
	quote := studio.Estimate(settings)
	a.json(w, http.StatusOK, estimateResponse{
		Quote:          quote,
		CostVNDDisplay: FormatVND(quote.CostVND),
	})
}
