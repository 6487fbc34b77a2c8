package tagging_test

import (
	"encoding/json"
	"testing"

	"github.com/MrWong99/tagmend/internal/tagging"
)

func TestTagRecord_Tooltip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rec  tagging.TagRecord
		want string
	}{
		{
			name: "corrected and translated",
			rec:  tagging.TagRecord{Original: "식싸", Corrected: "식사", DisplayLabel: "Meal", WasCorrected: true, WasTranslated: true},
			want: "식싸 → 식사 → Meal",
		},
		{
			name: "only corrected",
			rec:  tagging.TagRecord{Original: "요까", Corrected: "요가", DisplayLabel: "요가", WasCorrected: true},
			want: "요까 → 요가",
		},
		{
			name: "only translated",
			rec:  tagging.TagRecord{Original: "축구", Corrected: "축구", DisplayLabel: "Soccer", WasTranslated: true},
			want: "축구 → Soccer",
		},
		{
			name: "unchanged",
			rec:  tagging.TagRecord{Original: "abc", Corrected: "abc", DisplayLabel: "abc"},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.rec.Tooltip(); got != tt.want {
				t.Errorf("Tooltip() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTagRecord_Label(t *testing.T) {
	t.Parallel()
	corrected := tagging.TagRecord{Original: "식싸", Corrected: "식사", DisplayLabel: "Meal", WasCorrected: true, WasTranslated: true}
	plain := tagging.TagRecord{Original: "축구", Corrected: "축구", DisplayLabel: "Soccer", WasTranslated: true}

	tests := []struct {
		rec  tagging.TagRecord
		lang string
		want string
	}{
		{corrected, "ko", "식사"},
		{corrected, "en", "Meal"},
		{plain, "ko", "축구"},
		{plain, "", "Soccer"},
	}
	for _, tt := range tests {
		if got := tt.rec.Label(tt.lang); got != tt.want {
			t.Errorf("Label(%q) on %+v = %q, want %q", tt.lang, tt.rec, got, tt.want)
		}
	}
}

func TestTagRecord_JSON(t *testing.T) {
	t.Parallel()
	rec := tagging.TagRecord{Original: "식싸", Corrected: "식사", DisplayLabel: "Meal", WasCorrected: true, WasTranslated: true}
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"original":"식싸","corrected":"식사","display_label":"Meal","was_corrected":true,"was_translated":true}`
	if string(b) != want {
		t.Errorf("json = %s, want %s", b, want)
	}
}
