package dto

import "github.com/shopspring/decimal"

// DiscountRequest body para POST /api/checkout/discounts/{preview,apply}.
// Value es el texto tal como lo tecleó el usuario ("60,000", "12.5").
type DiscountRequest struct {
	Kind      string          `json:"kind" validate:"required,oneof=percentage fixed"`
	Value     string          `json:"value" validate:"max=32"`
	BaseTotal decimal.Decimal `json:"base_total"`
}

// AmountDisplay montos ya formateados para mostrar (agrupación de miles y moneda).
type AmountDisplay struct {
	BaseTotal      string `json:"base_total"`
	DiscountAmount string `json:"discount_amount"`
	FinalTotal     string `json:"final_total"`
}

// DiscountPreviewResponse resultado de evaluar un descuento sin aplicarlo.
type DiscountPreviewResponse struct {
	Kind           string          `json:"kind"`
	Value          string          `json:"value"`
	InputDisplay   string          `json:"input_display"`
	BaseTotal      decimal.Decimal `json:"base_total"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalTotal     decimal.Decimal `json:"final_total"`
	Display        AmountDisplay   `json:"display"`
}

// DiscountApplication lo que el orquestador del checkout guarda: tipo y valor validado.
type DiscountApplication struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// DiscountApplyResponse respuesta de POST /api/checkout/discounts/apply.
type DiscountApplyResponse struct {
	Application DiscountApplication     `json:"application"`
	Result      DiscountPreviewResponse `json:"result"`
}

// DiscountClearedResponse respuesta de POST /api/checkout/discounts/clear.
type DiscountClearedResponse struct {
	Cleared bool   `json:"cleared"`
	Kind    string `json:"kind"`
	Value   string `json:"value"`
}
