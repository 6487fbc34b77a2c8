package tagging

import "strings"

// TagRecord is the outcome for one tag. Both flags are derived by string
// comparison of the stage outputs, never tracked separately.
type TagRecord struct {
	// Original is the trimmed tag as entered.
	Original string `json:"original"`

	// Corrected is the canonical vocabulary token, or the normalized input
	// when nothing matched.
	Corrected string `json:"corrected"`

	// DisplayLabel is the translated label, or Corrected when there is no
	// translation.
	DisplayLabel string `json:"display_label"`

	// WasCorrected reports Corrected != normalized input.
	WasCorrected bool `json:"was_corrected"`

	// WasTranslated reports DisplayLabel != Corrected.
	WasTranslated bool `json:"was_translated"`
}

// tooltipArrow separates hops in [TagRecord.Tooltip].
const tooltipArrow = " → "

// Tooltip renders the transformation chain "original → corrected → label",
// omitting any hop whose two ends are equal. It returns "" when nothing
// changed.
func (r TagRecord) Tooltip() string {
	hops := []string{r.Original}
	if r.Corrected != r.Original {
		hops = append(hops, r.Corrected)
	}
	if r.DisplayLabel != r.Corrected {
		hops = append(hops, r.DisplayLabel)
	}
	if len(hops) == 1 {
		return ""
	}
	return strings.Join(hops, tooltipArrow)
}

// Label returns the chip text for a UI language. Korean UIs show the
// Korean token (corrected if it was corrected); every other language gets the
// display label.
func (r TagRecord) Label(lang string) string {
	if lang == "ko" {
		if r.WasCorrected {
			return r.Corrected
		}
		return r.Original
	}
	return r.DisplayLabel
}
