package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsKnownMethod(t *testing.T) {
	assert.True(t, IsKnownMethod(MethodCOD))
	assert.True(t, IsKnownMethod(MethodBkash))
	assert.True(t, IsKnownMethod(MethodNagad))
	assert.True(t, IsKnownMethod(MethodRocket))
	assert.False(t, IsKnownMethod("paypal"))
	assert.False(t, IsKnownMethod(""))
}

func TestInstructionsFor(t *testing.T) {
	t.Run("SubstitutesAmount", func(t *testing.T) {
		steps, ok := InstructionsFor(MethodBkash, 305)
		require.True(t, ok)
		assert.Contains(t, steps[1], "৳305.00")
		assert.NotContains(t, steps[1], "{{amount}}")
	})

	t.Run("UnknownMethod", func(t *testing.T) {
		_, ok := InstructionsFor("paypal", 305)
		assert.False(t, ok)
	})

	t.Run("TemplateUntouched", func(t *testing.T) {
		_, _ = InstructionsFor(MethodBkash, 100)
		for _, m := range Methods() {
			if m.Name == MethodBkash {
				assert.Contains(t, m.Instructions[1], "{{amount}}")
			}
		}
	})
}

func TestMethods(t *testing.T) {
	ms := Methods()
	require.Len(t, ms, 4)

	for _, m := range ms {
		if m.Name == MethodCOD {
			assert.False(t, m.RequiresProof)
			assert.Empty(t, m.AccountNumber)
		} else {
			assert.True(t, m.RequiresProof)
			assert.NotEmpty(t, m.AccountNumber)
		}
	}

	// Mutating the returned slice must not touch the package table.
	ms[0].Label = "changed"
	assert.NotEqual(t, "changed", Methods()[0].Label)
}
