package estimator

import (
	"math"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	s := New("")
	if s.SelectedCounty != "Dublin" || s.VehiclePrice != 30000 {
		t.Fatalf("New(\"\") = %+v", s)
	}
	if s.GrantAmount != 3500 || s.FinalPrice != 26500 {
		t.Errorf("derived values = %d / %v, want 3500 / 26500", s.GrantAmount, s.FinalPrice)
	}
	if c := New("cork").SelectedCounty; c != "Cork" {
		t.Errorf("New(cork) county = %q, want Cork", c)
	}
	if c := New("Atlantis").SelectedCounty; c != "Dublin" {
		t.Errorf("New(Atlantis) county = %q, want Dublin", c)
	}
}

func TestReduceSetAndSlideShareState(t *testing.T) {
	s := New("Galway")
	s = Reduce(s, Event{Kind: SetPrice, Price: 42000})
	s = Reduce(s, Event{Kind: SlidePrice, Price: 18000})
	if s.VehiclePrice != 18000 || s.GrantAmount != 2000 || s.FinalPrice != 16000 {
		t.Fatalf("after slide: %+v", s)
	}
	s = Reduce(s, Event{Kind: SetPrice, Price: 55000})
	if s.VehiclePrice != 55000 || s.GrantAmount != 5000 {
		t.Fatalf("after set: %+v", s)
	}
}

func TestReduceClamps(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{5000, 10000},
		{-20, 10000},
		{250000, 100000},
		{64000, 64000},
	}
	for _, tt := range tests {
		for _, kind := range []EventKind{SetPrice, SlidePrice} {
			s := Reduce(New(""), Event{Kind: kind, Price: tt.in})
			if s.VehiclePrice != tt.want {
				t.Errorf("%s(%v) price = %v, want %v", kind, tt.in, s.VehiclePrice, tt.want)
			}
			if s.FinalPrice != s.VehiclePrice-float64(s.GrantAmount) {
				t.Errorf("%s(%v) final price inconsistent: %+v", kind, tt.in, s)
			}
		}
	}
}

func TestReduceCountyIndependence(t *testing.T) {
	s := Reduce(New(""), Event{Kind: SetPrice, Price: 29995})
	for _, c := range Counties() {
		next := Reduce(s, Event{Kind: SelectCounty, County: c})
		if next.SelectedCounty != c {
			t.Errorf("county = %q, want %q", next.SelectedCounty, c)
		}
		if next.GrantAmount != s.GrantAmount || next.FinalPrice != s.FinalPrice || next.VehiclePrice != s.VehiclePrice {
			t.Errorf("selecting %s changed the estimate: %+v -> %+v", c, s, next)
		}
	}
}

func TestReduceUnknownCountyIgnored(t *testing.T) {
	s := New("Kerry")
	if got := Reduce(s, Event{Kind: SelectCounty, County: "Narnia"}); got != s {
		t.Fatalf("unknown county changed state: %+v", got)
	}
}

func TestReduceIdempotent(t *testing.T) {
	e := Event{Kind: SetPrice, Price: 37250}
	once := Reduce(New(""), e)
	twice := Reduce(once, e)
	if once != twice {
		t.Fatalf("applying the same price twice differs: %+v vs %+v", once, twice)
	}
}

func TestReduceInvalidTextKeepsPreviousPrice(t *testing.T) {
	s := Reduce(New(""), Event{Kind: EnterPriceText, Text: "€45,500"})
	if s.VehiclePrice != 45500 || s.GrantAmount != 4000 || s.InputError != "" {
		t.Fatalf("valid text: %+v", s)
	}

	for _, text := range []string{"", "abc", "12k", "NaN", "Inf", "1e400", "€"} {
		bad := Reduce(s, Event{Kind: EnterPriceText, Text: text})
		if bad.VehiclePrice != 45500 || bad.GrantAmount != 4000 || bad.FinalPrice != 41500 {
			t.Errorf("text %q changed the estimate: %+v", text, bad)
		}
		if bad.InputError == "" {
			t.Errorf("text %q did not set InputError", text)
		}
		ok := Reduce(bad, Event{Kind: EnterPriceText, Text: "20000"})
		if ok.InputError != "" || ok.VehiclePrice != 20000 {
			t.Errorf("valid text after %q did not clear the error: %+v", text, ok)
		}
	}
}

func TestReduceNonFiniteNumbersRejected(t *testing.T) {
	s := New("")
	for _, p := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		next := Reduce(s, Event{Kind: SlidePrice, Price: p})
		if next.VehiclePrice != s.VehiclePrice || next.InputError == "" {
			t.Errorf("SlidePrice(%v) = %+v", p, next)
		}
	}
}

func TestReduceUnknownKind(t *testing.T) {
	s := Reduce(New(""), Event{Kind: "bogus"})
	if s.InputError == "" || s.VehiclePrice != DefaultPrice {
		t.Fatalf("unknown kind: %+v", s)
	}
}

func TestParsePrice(t *testing.T) {
	tests := map[string]float64{
		"35000":     35000,
		" 35000 ":   35000,
		"€35,000":   35000,
		"EUR 35000": 35000,
		"35 000.50": 35000.5,
		"-500":      -500,
		"100,000":   100000,
	}
	for in, want := range tests {
		got, err := ParsePrice(in)
		if err != nil {
			t.Errorf("ParsePrice(%q) error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParsePrice(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParsePrice("   "); err != ErrEmptyPrice {
		t.Errorf("blank input error = %v, want ErrEmptyPrice", err)
	}
}

func TestMessageAndInstallerPath(t *testing.T) {
	s := Reduce(New("Cork"), Event{Kind: SetPrice, Price: 35000})
	if got, want := s.Message(), "You qualify for the maximum grant of €3,500"; got != want {
		t.Errorf("Message() = %q, want %q", got, want)
	}
	if got, want := s.InstallerPath(), "/ireland/county-cork/ev-grants/"; got != want {
		t.Errorf("InstallerPath() = %q, want %q", got, want)
	}
	if got := (State{}).Message(); got != "Your vehicle may qualify for a smaller grant amount" {
		t.Errorf("ineligible message = %q", got)
	}
}

func TestNormalize(t *testing.T) {
	s := Normalize(State{SelectedCounty: "sligo", VehiclePrice: 3, GrantAmount: 99999})
	if s.SelectedCounty != "Sligo" || s.VehiclePrice != 10000 || s.GrantAmount != 1500 || s.FinalPrice != 8500 {
		t.Fatalf("Normalize = %+v", s)
	}
	s = Normalize(State{VehiclePrice: math.NaN()})
	if s.VehiclePrice != DefaultPrice || s.SelectedCounty != DefaultCounty {
		t.Fatalf("Normalize(NaN) = %+v", s)
	}
}

func TestCheckPrice(t *testing.T) {
	tests := []struct {
		price float64
		want  error
	}{
		{0, nil},
		{9999, nil},
		{250000, nil},
		{-5000, ErrNegativePrice},
		{math.NaN(), ErrInvalidPrice},
		{math.Inf(1), ErrInvalidPrice},
	}
	for _, tt := range tests {
		if got := CheckPrice(tt.price); got != tt.want {
			t.Errorf("CheckPrice(%v) = %v, want %v", tt.price, got, tt.want)
		}
	}
}
