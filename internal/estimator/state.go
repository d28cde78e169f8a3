package estimator

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	MinPrice      = 10000
	MaxPrice      = 100000
	PriceStep     = 1000
	DefaultPrice  = 30000
	DefaultCounty = "Dublin"
)

// State is one calculator session. It is a value: Reduce never mutates its input.
type State struct {
	SelectedCounty string  `json:"selected_county"`
	VehiclePrice   float64 `json:"vehicle_price"`
	GrantAmount    int     `json:"grant_amount"`
	FinalPrice     float64 `json:"final_price"`
	InputError     string  `json:"input_error,omitempty"`
}

// EventKind names the input that changed.
type EventKind string

const (
	SelectCounty   EventKind = "select_county"
	SetPrice       EventKind = "set_price"
	SlidePrice     EventKind = "slide_price"
	EnterPriceText EventKind = "enter_price_text"
)

// Event carries one user input. Only the field matching Kind is read.
type Event struct {
	Kind   EventKind `json:"kind"`
	County string    `json:"county,omitempty"`
	Price  float64   `json:"price,omitempty"`
	Text   string    `json:"text,omitempty"`
}

var (
	ErrEmptyPrice    = errors.New("enter a vehicle price")
	ErrInvalidPrice  = errors.New("enter the price as a number, e.g. 35000")
	ErrNegativePrice = errors.New("the price cannot be negative")
	ErrUnknownKind   = errors.New("unknown event")
)

// New returns a session at the default price. An unknown or empty county
// falls back to Dublin.
func New(county string) State {
	c, ok := CanonicalCounty(county)
	if !ok {
		c = DefaultCounty
	}
	return withPrice(State{SelectedCounty: c}, DefaultPrice)
}

// Normalize re-derives the grant and final price from the county and price,
// clamping the price. Use it on states that arrive from outside (JSON bodies).
func Normalize(s State) State {
	c, ok := CanonicalCounty(s.SelectedCounty)
	if !ok {
		c = DefaultCounty
	}
	s.SelectedCounty = c
	price := s.VehiclePrice
	if math.IsNaN(price) || math.IsInf(price, 0) {
		price = DefaultPrice
	}
	errMsg := s.InputError
	s = withPrice(s, price)
	s.InputError = errMsg
	return s
}

// Reduce applies e to s and returns the next state.
func Reduce(s State, e Event) State {
	switch e.Kind {
	case SelectCounty:
		if c, ok := CanonicalCounty(e.County); ok {
			s.SelectedCounty = c
		}
		return s
	case SetPrice, SlidePrice:
		if math.IsNaN(e.Price) || math.IsInf(e.Price, 0) {
			s.InputError = ErrInvalidPrice.Error()
			return s
		}
		return withPrice(s, e.Price)
	case EnterPriceText:
		p, err := ParsePrice(e.Text)
		if err != nil {
			s.InputError = err.Error()
			return s
		}
		return withPrice(s, p)
	default:
		s.InputError = fmt.Sprintf("%s: %q", ErrUnknownKind, e.Kind)
		return s
	}
}

func withPrice(s State, price float64) State {
	s.VehiclePrice = Clamp(price)
	s.GrantAmount = EstimateGrant(s.VehiclePrice)
	s.FinalPrice = FinalPrice(s.VehiclePrice)
	s.InputError = ""
	return s
}

// Clamp bounds a price to the range accepted by the calculator.
func Clamp(price float64) float64 {
	if price < MinPrice {
		return MinPrice
	}
	if price > MaxPrice {
		return MaxPrice
	}
	return price
}

// ParsePrice reads a user-typed price such as "35000", "€35,000" or
// "35 000.50". The result is finite; range is not checked.
func ParsePrice(text string) (float64, error) {
	t := strings.TrimSpace(text)
	if t == "" {
		return 0, ErrEmptyPrice
	}
	t = strings.TrimPrefix(t, "€")
	t = strings.TrimSpace(strings.TrimPrefix(strings.ToUpper(t), "EUR"))
	t = strings.NewReplacer(",", "", " ", "", "\u00a0", "", "_", "").Replace(t)
	if t == "" {
		return 0, ErrEmptyPrice
	}
	for _, r := range t {
		if (r < '0' || r > '9') && r != '.' && r != '-' && r != '+' {
			return 0, ErrInvalidPrice
		}
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidPrice
	}
	return v, nil
}

// CheckPrice rejects prices the unclamped estimate cannot evaluate:
// NaN, infinities and negative amounts.
func CheckPrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return ErrInvalidPrice
	}
	if price < 0 {
		return ErrNegativePrice
	}
	return nil
}

// Eligible reports whether the current price attracts any grant.
func (s State) Eligible() bool {
	return s.GrantAmount > 0
}

// Message is the eligibility line shown under the results.
func (s State) Message() string {
	if s.Eligible() {
		return "You qualify for the maximum grant of " + FormatEuro(float64(s.GrantAmount))
	}
	return "Your vehicle may qualify for a smaller grant amount"
}

// InstallerPath links to charger installers for the selected county.
func (s State) InstallerPath() string {
	return InstallerPath(s.SelectedCounty)
}
