package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupMatchesKnownTopics(t *testing.T) {
	base := NewLiteratureBase()

	text, err := base.Lookup("Findings suggestive of UIP on HRCT")
	require.NoError(t, err)
	assert.Contains(t, text, "honeycombing")

	text, err = base.Lookup("could this be NSIP instead?")
	require.NoError(t, err)
	assert.Contains(t, text, "Ground-glass")
}

func TestLookupOrderPrefersEarlierEntries(t *testing.T) {
	base := NewLiteratureBase()

	// A query mentioning both patterns resolves to the first corpus entry.
	text, err := base.Lookup("uip versus nsip differential")
	require.NoError(t, err)
	assert.Contains(t, text, "Usual Interstitial Pneumonia")
}

func TestLookupMissNeverErrors(t *testing.T) {
	base := NewLiteratureBase()

	text, err := base.Lookup("completely unrelated question")
	require.NoError(t, err)
	assert.Equal(t, "No specific information found for this query in the medical literature database.", text)
}
