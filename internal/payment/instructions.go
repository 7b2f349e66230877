// Package payment describes the manual payment methods the store accepts.
// Payments are verified by an administrator from a submitted transaction
// id and screenshot, not by a gateway callback.
package payment

import (
	"fmt"
	"strings"
)

const (
	// Mobile financial services (manual verification)
	MethodBkash  = "bkash"
	MethodNagad  = "nagad"
	MethodRocket = "rocket"

	// Cash on delivery
	MethodCOD = "cash_on_delivery"
)

// Method is one accepted payment method with its merchant account.
type Method struct {
	Name          string   `json:"name"`
	Label         string   `json:"label"`
	AccountNumber string   `json:"accountNumber,omitempty"`
	RequiresProof bool     `json:"requiresProof"`
	Instructions  []string `json:"instructions"`
}

var methods = []Method{
	{
		Name:          MethodCOD,
		Label:         "Cash on Delivery",
		RequiresProof: false,
		Instructions: []string{
			"Your order will be delivered to the shipping address",
			"Keep {{amount}} in cash ready when the rider arrives",
			"Pay the rider and collect your receipt",
		},
	},
	{
		Name:          MethodBkash,
		Label:         "bKash",
		AccountNumber: "01711-000001",
		RequiresProof: true,
		Instructions: []string{
			"Open the bKash app and choose Send Money",
			"Send {{amount}} to merchant number 01711-000001",
			"Use your order contact number as reference",
			"Submit the transaction ID and a screenshot with your order",
			"Your payment will be verified by our team within a few hours",
		},
	},
	{
		Name:          MethodNagad,
		Label:         "Nagad",
		AccountNumber: "01711-000002",
		RequiresProof: true,
		Instructions: []string{
			"Open the Nagad app and choose Send Money",
			"Send {{amount}} to merchant number 01711-000002",
			"Submit the transaction ID and a screenshot with your order",
			"Your payment will be verified by our team within a few hours",
		},
	},
	{
		Name:          MethodRocket,
		Label:         "Rocket",
		AccountNumber: "01711-000003",
		RequiresProof: true,
		Instructions: []string{
			"Dial *322# or open the Rocket app",
			"Send {{amount}} to merchant number 01711-000003",
			"Submit the transaction ID and a screenshot with your order",
			"Your payment will be verified by our team within a few hours",
		},
	},
}

// Methods lists all accepted payment methods.
func Methods() []Method {
	out := make([]Method, len(methods))
	copy(out, methods)
	return out
}

// IsKnownMethod reports whether the store accepts the method.
func IsKnownMethod(name string) bool {
	for _, m := range methods {
		if m.Name == name {
			return true
		}
	}
	return false
}

// InstructionsFor renders the instruction steps for a method with the
// order amount substituted in. Unknown methods return false.
func InstructionsFor(name string, amount float64) ([]string, bool) {
	for _, m := range methods {
		if m.Name != name {
			continue
		}
		rendered := make([]string, len(m.Instructions))
		formatted := fmt.Sprintf("৳%.2f", amount)
		for i, step := range m.Instructions {
			rendered[i] = strings.ReplaceAll(step, "{{amount}}", formatted)
		}
		return rendered, true
	}
	return nil, false
}
