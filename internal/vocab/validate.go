package vocab

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/language"
)

// Validate checks a bundle before it is turned into a [Vocabulary].
//
// Rules:
//   - Language tags, when set, must be well-formed BCP 47.
//   - Canonical tokens must be non-empty and contain no comma.
//   - Variants must be non-empty and contain no comma or whitespace.
//   - Translation keys must be non-empty.
func Validate(f *File) error {
	if f == nil {
		return errors.New("vocab: bundle must not be nil")
	}
	var errs []error

	for field, tag := range map[string]string{
		"source_language": f.SourceLanguage,
		"target_language": f.TargetLanguage,
	} {
		if tag == "" {
			continue
		}
		if _, err := language.Parse(tag); err != nil {
			errs = append(errs, fmt.Errorf("%s %q: %w", field, tag, err))
		}
	}

	for i, e := range f.Corrections {
		prefix := fmt.Sprintf("corrections[%d]", i)
		if e.Canonical == "" {
			errs = append(errs, fmt.Errorf("%s: canonical token must not be empty", prefix))
		} else if strings.Contains(e.Canonical, ",") {
			errs = append(errs, fmt.Errorf("%s: canonical token %q contains a comma", prefix, e.Canonical))
		}
		for j, variant := range e.Variants {
			if !isPlainToken(variant) {
				errs = append(errs, fmt.Errorf("%s.variants[%d]: %q is not a plain token", prefix, j, variant))
			}
		}
	}

	for k := range f.Translations {
		if k == "" {
			errs = append(errs, errors.New("translations: key must not be empty"))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("vocab: invalid bundle: %w", errors.Join(errs...))
}

// isPlainToken reports whether s is a non-empty token without separators.
func isPlainToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r == ',' || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
