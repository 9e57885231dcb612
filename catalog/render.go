package catalog

import (
	"sort"
	"time"

	"github.com/shanebasham/artstore/checkout"
	apperrors "github.com/shanebasham/artstore/internal/errors"
)

// OriginalSize is the print size that selects the original artwork.
const OriginalSize = "Original"

// Mode selects how much of an artwork a card shows.
type Mode int

const (
	// ModeGallery shows the artwork details only.
	ModeGallery Mode = iota
	// ModeShop adds the purchasable prints, the original and a purchase button.
	ModeShop
)

// PrintOption is one purchasable size of an artwork.
type PrintOption struct {
	Size     string
	Price    string
	Original bool
}

// Card is the view model of one artwork in the grid or the details modal.
type Card struct {
	Artwork
	Title    string
	Options  []PrintOption
	Shop     bool
	Selected string
}

func orUnknown(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// NewCard builds the card for one artwork. Empty fields fall back to the same
// placeholders on every page.
func NewCard(art Artwork, mode Mode) Card {
	card := Card{
		Artwork: art,
		Title:   orUnknown(art.Name, "Untitled"),
		Shop:    mode == ModeShop,
	}
	card.Date = orUnknown(art.Date, "Unknown")
	card.Medium = orUnknown(art.Medium, "Unknown")
	card.Size = orUnknown(art.Size, "Unknown")
	card.Options = art.PrintOptions()
	return card
}

// Cards renders every artwork of the catalog with the same mode.
func Cards(artworks []Artwork, mode Mode) []Card {
	cards := make([]Card, 0, len(artworks))
	for _, art := range artworks {
		cards = append(cards, NewCard(art, mode))
	}
	return cards
}

// PrintOptions lists the prints cheapest first, then the original.
func (a Artwork) PrintOptions() []PrintOption {
	options := make([]PrintOption, 0, len(a.Prints)+1)
	for size, price := range a.Prints {
		options = append(options, PrintOption{Size: size, Price: price})
	}
	sort.Slice(options, func(i, j int) bool {
		pi, erri := checkout.ParsePrice(options[i].Price)
		pj, errj := checkout.ParsePrice(options[j].Price)
		if erri == nil && errj == nil && !pi.Equal(pj) {
			return pi.LessThan(pj)
		}
		return options[i].Size < options[j].Size
	})
	if a.Original != "" {
		options = append(options, PrintOption{Size: OriginalSize, Price: a.Original, Original: true})
	}
	return options
}

// Select builds the pending purchase for one print size of the artwork.
func (a Artwork) Select(size string) (checkout.PendingPurchase, error) {
	price, ok := a.Prints[size]
	if size == OriginalSize && a.Original != "" {
		price, ok = a.Original, true
	}
	if !ok || size == "" {
		return checkout.PendingPurchase{}, apperrors.NewValidationError("print", "Please select a print or the original before purchasing.")
	}
	return checkout.PendingPurchase{
		Name:          a.Name,
		Image:         a.Src,
		Date:          a.Date,
		Medium:        a.Medium,
		Size:          a.Size,
		SelectedPrint: checkout.SelectedPrint{Size: size, Price: price},
	}, nil
}

// ActiveAlerts returns the alert banners to show at now: all of them on
// weekends, none on weekdays. Missing colours default to white on black.
func ActiveAlerts(alerts []Alert, now time.Time) []Alert {
	if !checkout.IsWeekend(now) {
		return nil
	}
	active := make([]Alert, 0, len(alerts))
	for _, a := range alerts {
		a.Background = orUnknown(a.Background, "black")
		a.Color = orUnknown(a.Color, "white")
		active = append(active, a)
	}
	return active
}
