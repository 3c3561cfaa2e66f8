package knowledge

import "strings"

// Source is the optional retrieval collaborator consumed by the meeting
// engine. Implementations return a block of reference text for a free-text
// query; the engine functions identically when a Source is absent or failing.
type Source interface {
	Lookup(query string) (string, error)
}

const missLookupAnswer = "No specific information found for this query in the medical literature database."

type entry struct {
	key  string
	text string
}

// LiteratureBase is the built-in ILD reference corpus. It stands in for the
// external retrieval subsystem when none is wired up.
type LiteratureBase struct {
	entries []entry
}

func NewLiteratureBase() *LiteratureBase {
	return &LiteratureBase{entries: []entry{
		{
			key:  "uip",
			text: "Usual Interstitial Pneumonia (UIP) is characterized by patchy involvement of the lung parenchyma, with areas of fibrosis and honeycombing alternating with areas of less affected or normal parenchyma. Key radiographic features include reticular opacities, predominantly basal and peripheral distribution, honeycombing, and traction bronchiectasis with minimal ground-glass opacities.",
		},
		{
			key:  "nsip",
			text: "Nonspecific Interstitial Pneumonia (NSIP) is characterized by varying degrees of inflammation and fibrosis, with a more uniform appearance than UIP. Ground-glass opacities are more prominent, and honeycombing is typically absent or minimal. Bilateral, symmetric involvement with lower lung predominance is common.",
		},
		{
			key:  "ctd-ild",
			text: "Connective Tissue Disease-associated ILD (CTD-ILD) occurs in patients with autoimmune conditions like rheumatoid arthritis, systemic sclerosis, and Sjogren's syndrome. Treatment typically involves immunosuppression with consideration of anti-fibrotic agents in progressive cases.",
		},
		{
			key:  "treatment",
			text: "Treatment approaches for ILD vary based on the underlying cause. For CTD-ILD, immunosuppressive therapy is the mainstay. For IPF with UIP pattern, anti-fibrotic medications like nintedanib or pirfenidone are recommended. In cases with mixed patterns or progression despite immunosuppression, combination therapy may be considered.",
		},
		{
			key:  "progression",
			text: "ILD progression is typically monitored through pulmonary function tests (particularly FVC and DLCO), symptom assessment, and serial imaging. A decline in FVC >10% or DLCO >15% within 6-12 months is considered clinically significant progression.",
		},
	}}
}

// Lookup returns the first corpus entry whose key occurs in the query. A miss
// is not an error; it returns a fixed no-match answer.
func (b *LiteratureBase) Lookup(query string) (string, error) {
	lower := strings.ToLower(query)
	for _, e := range b.entries {
		if strings.Contains(lower, e.key) {
			return e.text, nil
		}
	}
	return missLookupAnswer, nil
}
