// Package delivery holds the static delivery zone table. Zones are
// reference data compiled into the binary, not runtime-mutable.
package delivery

import (
	"sort"
	"strings"
)

type Zone struct {
	Name                  string  `json:"name"`
	Division              string  `json:"division"`
	Fee                   float64 `json:"fee"`
	FreeDeliveryThreshold float64 `json:"freeDeliveryThreshold"`
	ETA                   string  `json:"eta"`
	Popular               bool    `json:"popular"`
}

// DefaultFee applies when the customer location is not a listed zone.
const DefaultFee = 150

var zones = map[string]Zone{
	"dhaka":       {Name: "Dhaka", Division: "Dhaka", Fee: 50, FreeDeliveryThreshold: 1000, ETA: "Same day", Popular: true},
	"gazipur":     {Name: "Gazipur", Division: "Dhaka", Fee: 80, FreeDeliveryThreshold: 1200, ETA: "1 day", Popular: true},
	"narayanganj": {Name: "Narayanganj", Division: "Dhaka", Fee: 80, FreeDeliveryThreshold: 1200, ETA: "1 day", Popular: true},
	"savar":       {Name: "Savar", Division: "Dhaka", Fee: 90, FreeDeliveryThreshold: 1500, ETA: "1 day", Popular: false},
	"chattogram":  {Name: "Chattogram", Division: "Chattogram", Fee: 120, FreeDeliveryThreshold: 2000, ETA: "2-3 days", Popular: true},
	"sylhet":      {Name: "Sylhet", Division: "Sylhet", Fee: 130, FreeDeliveryThreshold: 2000, ETA: "2-3 days", Popular: false},
	"rajshahi":    {Name: "Rajshahi", Division: "Rajshahi", Fee: 130, FreeDeliveryThreshold: 2000, ETA: "2-3 days", Popular: false},
	"khulna":      {Name: "Khulna", Division: "Khulna", Fee: 130, FreeDeliveryThreshold: 2000, ETA: "2-3 days", Popular: false},
	"barishal":    {Name: "Barishal", Division: "Barishal", Fee: 140, FreeDeliveryThreshold: 2500, ETA: "3-4 days", Popular: false},
	"rangpur":     {Name: "Rangpur", Division: "Rangpur", Fee: 140, FreeDeliveryThreshold: 2500, ETA: "3-4 days", Popular: false},
	"mymensingh":  {Name: "Mymensingh", Division: "Mymensingh", Fee: 120, FreeDeliveryThreshold: 2000, ETA: "2-3 days", Popular: false},
}

// Lookup finds a zone by location name, case-insensitively.
func Lookup(location string) (Zone, bool) {
	z, ok := zones[strings.ToLower(strings.TrimSpace(location))]
	return z, ok
}

// ComputeFee returns the delivery fee for an order subtotal within a zone.
// Orders at or above the zone threshold ship free.
func ComputeFee(z Zone, subtotal float64) float64 {
	if subtotal >= z.FreeDeliveryThreshold {
		return 0
	}
	return z.Fee
}

// FeeFor resolves the fee for a location, falling back to DefaultFee when
// the location is not a listed zone.
func FeeFor(location string, subtotal float64) float64 {
	z, ok := Lookup(location)
	if !ok {
		return DefaultFee
	}
	return ComputeFee(z, subtotal)
}

// Zones lists all zones, popular first, then alphabetical by name.
func Zones() []Zone {
	out := make([]Zone, 0, len(zones))
	for _, z := range zones {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Popular != out[j].Popular {
			return out[i].Popular
		}
		return out[i].Name < out[j].Name
	})
	return out
}
