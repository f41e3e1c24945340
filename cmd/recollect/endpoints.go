package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/always-cache/recollect"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
)

type sku struct {
	Code            string   `json:"code"`
	VariationValues []string `json:"variationValues"`
	Price           float64  `json:"price"`
	Cost            float64  `json:"cost"`
	QuantityOnHand  int      `json:"quantityOnHand"`
}

type product struct {
	Id             int      `json:"id"`
	Code           string   `json:"code"`
	Description    string   `json:"description"`
	VariationNames []string `json:"variationNames"`
	Skus           []sku    `json:"skus"`
}

var products = []product{
	{
		Id:             1,
		Code:           "JLF10",
		Description:    "Suit Jacket",
		VariationNames: []string{"Colour", "Size"},
		Skus: []sku{
			{Code: "20000332", VariationValues: []string{"Navy", "102L"}, Price: 99.95, Cost: 56, QuantityOnHand: 10},
			{Code: "20000334", VariationValues: []string{"Red", "102M"}, Price: 99.95, Cost: 56, QuantityOnHand: 10},
			{Code: "20000335", VariationValues: []string{"Red", "102M"}, Price: 99.95, Cost: 56, QuantityOnHand: 8},
			{Code: "20000336", VariationValues: []string{"Red", "102S"}, Price: 99.95, Cost: 56, QuantityOnHand: 12},
		},
	},
}

// registerSamplePolicies attaches the policies of the sample endpoints.
func registerSamplePolicies(registry *recollect.Registry) {
	registry.Register("/api/product/{id}", recollect.NewPolicy(
		recollect.WithClientCacheSeconds(60),
		recollect.WithMustRevalidate(true),
		recollect.WithProxyRevalidate(true),
		recollect.WithNoTransform(true),
		recollect.WithPublicCache(recollect.PublicCacheAlways),
		recollect.WithSharedCacheSeconds(60),
		recollect.WithVaryHeaders("accept,accept-encoding,accept-language,accept-charset"),
		recollect.WithPrivateHeaders("X-Custom-ResponseId,X-Custom-RequestId"),
	))
	registry.Register("/api/info/servertime", recollect.NewPolicy(
		recollect.WithNoCache(true),
		recollect.WithNoStore(true),
		recollect.WithNoTransform(true),
		recollect.WithMustRevalidate(true),
		recollect.WithPublicCache(recollect.PublicCacheNever),
	))
}

func getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}
	for _, p := range products {
		if p.Id == id {
			writeJSON(w, r, p)
			return
		}
	}
	http.NotFound(w, r)
}

func getServerTime(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, time.Now())
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("Could not write response body to client")
	}
}
