package handlers

import (
	"net/http"
	"strconv"

	"tajabazar-be/internal/delivery"
	"tajabazar-be/internal/httpx"
	"tajabazar-be/internal/metrics"
	"tajabazar-be/internal/payment"
)

// DeliveryZones lists the static delivery zone table.
func DeliveryZones(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, delivery.Zones())
}

// PaymentMethods lists accepted payment methods. When an amount query
// parameter is present the instruction steps have it substituted in.
func PaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods := payment.Methods()

	if v, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64); err == nil {
		for i := range methods {
			if steps, ok := payment.InstructionsFor(methods[i].Name, v); ok {
				methods[i].Instructions = steps
			}
		}
	}

	httpx.WriteJSON(w, http.StatusOK, methods)
}

// Metrics exposes order counters for operational checks.
func Metrics(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, metrics.Snapshot())
}

// Health is the liveness probe.
func Health(w http.ResponseWriter, r *http.Request) {
	httpx.WriteMessage(w, http.StatusOK, "ok")
}
