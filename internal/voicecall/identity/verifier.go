package identity

//go:generate go run go.uber.org/mock/mockgen@latest -source=verifier.go -destination=mocks_test.go -package=identity

import (
	"clinic-server/internal/clients/oscar"
	"clinic-server/internal/observability"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDate reports a date of birth the caller asserted in a format the
// clinic records do not use.
var ErrInvalidDate = errors.New("invalid date format")

// Outcome classifies a single verification attempt. Outcomes are never cached
// across calls; every call re-verifies from scratch.
type Outcome int

const (
	OutcomeNotFound Outcome = iota
	OutcomeDOBMismatch
	OutcomeAmbiguousNeedsPhone
	OutcomeVerified
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNotFound:
		return "not_found"
	case OutcomeDOBMismatch:
		return "dob_mismatch"
	case OutcomeAmbiguousNeedsPhone:
		return "ambiguous_needs_phone"
	case OutcomeVerified:
		return "verified"
	}
	return "unknown"
}

// Result is the outcome of matching a caller-asserted identity against the
// clinic's demographic records.
type Result struct {
	Outcome   Outcome
	PatientID int
	// Candidates holds the DOB-equal patient ids when the match is ambiguous.
	Candidates []int
}

// PatientSearcher is the slice of the clinic API the verifier needs.
type PatientSearcher interface {
	SearchPatients(ctx context.Context, query string) ([]oscar.Patient, error)
}

// Verifier matches a caller-asserted name, date of birth, and optional phone
// digits to exactly one patient record.
type Verifier struct {
	searcher PatientSearcher
	logger   *observability.Logger
}

func NewVerifier(searcher PatientSearcher, logger *observability.Logger) *Verifier {
	return &Verifier{searcher: searcher, logger: logger}
}

// Verify runs the full match: search by name candidates in priority order,
// filter by DOB equality, and disambiguate by phone digits when needed.
func (v *Verifier) Verify(ctx context.Context, name, dateOfBirth, phoneDigits string) (Result, error) {
	dobMillis, err := DOBToMillis(dateOfBirth)
	if err != nil {
		return Result{}, fmt.Errorf("date of birth %q: %w", dateOfBirth, ErrInvalidDate)
	}

	patients, err := v.searchByCandidates(ctx, name)
	if err != nil {
		return Result{}, err
	}
	if len(patients) == 0 {
		return Result{Outcome: OutcomeNotFound}, nil
	}

	var dobMatches []oscar.Patient
	for _, p := range patients {
		if p.BirthMillis() == dobMillis {
			dobMatches = append(dobMatches, p)
		}
	}

	switch len(dobMatches) {
	case 0:
		return Result{Outcome: OutcomeDOBMismatch}, nil
	case 1:
		return Result{Outcome: OutcomeVerified, PatientID: dobMatches[0].DemographicNo}, nil
	}

	if digits := extractDigits(phoneDigits); digits != "" {
		var phoneMatches []oscar.Patient
		for _, p := range dobMatches {
			if strings.Contains(extractDigits(p.Phone), digits) {
				phoneMatches = append(phoneMatches, p)
			}
		}
		if len(phoneMatches) == 1 {
			return Result{Outcome: OutcomeVerified, PatientID: phoneMatches[0].DemographicNo}, nil
		}
	}

	ids := make([]int, 0, len(dobMatches))
	for _, p := range dobMatches {
		ids = append(ids, p.DemographicNo)
	}
	return Result{Outcome: OutcomeAmbiguousNeedsPhone, Candidates: ids}, nil
}

// searchByCandidates tries each name candidate in order and returns the first
// candidate's results. Results are never merged across candidates.
func (v *Verifier) searchByCandidates(ctx context.Context, name string) ([]oscar.Patient, error) {
	for _, candidate := range NameCandidates(name) {
		patients, err := v.searcher.SearchPatients(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("search patients %q: %w", candidate, err)
		}
		if len(patients) > 0 {
			v.logger.Info(ctx, fmt.Sprintf("Identity search matched %d record(s) for candidate %q", len(patients), candidate))
			return patients, nil
		}
	}
	return nil, nil
}

// NameCandidates expands a caller-asserted name into an ordered, de-duplicated
// search list: verbatim, title-cased, and upper-cased forms of the whole name,
// then the same three casings of the last token when the name has several.
func NameCandidates(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	forms := []string{name, titleCase(name), strings.ToUpper(name)}
	tokens := strings.Fields(name)
	if len(tokens) > 1 {
		last := tokens[len(tokens)-1]
		forms = append(forms, last, titleCase(last), strings.ToUpper(last))
	}

	seen := make(map[string]bool, len(forms))
	candidates := make([]string, 0, len(forms))
	for _, f := range forms {
		if !seen[f] {
			seen[f] = true
			candidates = append(candidates, f)
		}
	}
	return candidates
}

// DOBToMillis converts a YYYY-MM-DD date to epoch milliseconds at UTC
// midnight, the representation OSCAR stores.
func DOBToMillis(date string) (int64, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(date))
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func extractDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
