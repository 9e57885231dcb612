package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	apperrors "github.com/shanebasham/artstore/internal/errors"
	"github.com/shanebasham/artstore/kvstore"
)

// KeyCheckoutArtwork is the store key of the pending purchase.
const KeyCheckoutArtwork = "checkoutArtwork"

// SelectedPrint is the print size and formatted price picked in the shop.
type SelectedPrint struct {
	Size  string `json:"size"`
	Price string `json:"price"`
}

// PendingPurchase hands the shopper's selection from the shop to checkout.
type PendingPurchase struct {
	Name          string        `json:"name"`
	Image         string        `json:"image"`
	Date          string        `json:"date"`
	Medium        string        `json:"medium"`
	Size          string        `json:"size"`
	SelectedPrint SelectedPrint `json:"selectedPrint"`
}

// Quote parses the selected price and prices it for the given day.
func (p PendingPurchase) Quote(isWeekend bool) (Breakdown, error) {
	original, err := ParsePrice(p.SelectedPrint.Price)
	if err != nil {
		return Breakdown{}, err
	}
	return Price(original, isWeekend), nil
}

// PurchaseStore keeps the pending purchase in the durable store.
type PurchaseStore struct {
	store kvstore.Store
}

func NewPurchaseStore(store kvstore.Store) *PurchaseStore {
	return &PurchaseStore{store: store}
}

func (s *PurchaseStore) Save(ctx context.Context, p PendingPurchase) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode pending purchase: %w", err)
	}
	if err := s.store.Set(ctx, KeyCheckoutArtwork, string(data)); err != nil {
		return fmt.Errorf("store pending purchase: %w", err)
	}
	return nil
}

// Load returns the pending purchase or ErrNotFound when nothing was selected.
func (s *PurchaseStore) Load(ctx context.Context) (PendingPurchase, error) {
	raw, err := s.store.Get(ctx, KeyCheckoutArtwork)
	if errors.Is(err, kvstore.ErrNotFound) {
		return PendingPurchase{}, apperrors.ErrNotFound
	}
	if err != nil {
		return PendingPurchase{}, fmt.Errorf("load pending purchase: %w", err)
	}

	var p PendingPurchase
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return PendingPurchase{}, fmt.Errorf("decode pending purchase: %w: %v", apperrors.ErrMalformedResponse, err)
	}
	return p, nil
}

// Summary is the checkout page model: the purchase plus its formatted prices.
type Summary struct {
	Purchase        PendingPurchase
	Breakdown       Breakdown
	Discount        string
	Subtotal        string
	Shipping        string
	Tax             string
	Total           string
	WeekendDiscount bool
}

func NewSummary(p PendingPurchase, b Breakdown) Summary {
	return Summary{
		Purchase:        p,
		Breakdown:       b,
		Discount:        "- " + FormatCurrency(b.DiscountAmount),
		Subtotal:        FormatCurrency(b.DiscountedPrice),
		Shipping:        FormatCurrency(b.ShippingCost),
		Tax:             FormatCurrency(b.Tax),
		Total:           FormatCurrency(b.Total),
		WeekendDiscount: b.DiscountAmount.GreaterThan(decimal.Zero),
	}
}
