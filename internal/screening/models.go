package screening

import (
	"sort"
	"time"

	dErrors "ember/pkg/domain-errors"
)

// STIType is a trackable test category on a health screen.
type STIType string

const (
	STIChlamydia  STIType = "chlamydia"
	STIGonorrhea  STIType = "gonorrhea"
	STISyphilis   STIType = "syphilis"
	STIHIV        STIType = "hiv"
	STIHerpes     STIType = "herpes"
	STIHPV        STIType = "hpv"
	STIHepatitisB STIType = "hepatitis_b"
)

// TrackableTypes is the single source of truth for which STI types a screen
// must cover. DeriveOverallStatus rejects result maps missing any of these.
var TrackableTypes = []STIType{
	STIChlamydia,
	STIGonorrhea,
	STISyphilis,
	STIHIV,
	STIHerpes,
	STIHPV,
	STIHepatitisB,
}

// Result is the per-type outcome recorded on a screen.
type Result string

const (
	ResultNegative  Result = "negative"
	ResultPositive  Result = "positive"
	ResultPending   Result = "pending"
	ResultNotTested Result = "not_tested"
)

var validResults = map[Result]bool{
	ResultNegative:  true,
	ResultPositive:  true,
	ResultPending:   true,
	ResultNotTested: true,
}

// OverallStatus is the derived summary of a full result map.
type OverallStatus string

const (
	StatusAllClear      OverallStatus = "all_clear"
	StatusNeedsFollowup OverallStatus = "needs_followup"
	StatusPending       OverallStatus = "pending"
)

// HealthScreenRecord is one logged screening. Records are never hard-deleted;
// the exposure-window math depends on the full history.
type HealthScreenRecord struct {
	ID        string
	OwnerID   string
	TestDate  time.Time
	Results   map[STIType]Result
	Overall   OverallStatus
	Notes     string
	CreatedAt time.Time
}

// PositiveTypes returns the STI types marked positive, in stable order.
func (r *HealthScreenRecord) PositiveTypes() []STIType {
	var out []STIType
	for typ, res := range r.Results {
		if res == ResultPositive {
			out = append(out, typ)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DeriveOverallStatus computes the summary status from a complete result map.
// It is the only recompute path for HealthScreenRecord.Overall; the stored
// value must never be written except through this function.
//
// Rule: any positive wins, then any pending, otherwise all clear.
//
// Errors: CodeIncompleteResults when any trackable type is absent,
// CodeInvalidInput on an unknown result value. An incomplete map is a caller
// error, never silently defaulted.
func DeriveOverallStatus(results map[STIType]Result) (OverallStatus, error) {
	for _, typ := range TrackableTypes {
		res, ok := results[typ]
		if !ok {
			return "", dErrors.New(dErrors.CodeIncompleteResults, "missing result for "+string(typ))
		}
		if !validResults[res] {
			return "", dErrors.New(dErrors.CodeInvalidInput, "invalid result for "+string(typ))
		}
	}

	status := StatusAllClear
	for _, res := range results {
		switch res {
		case ResultPositive:
			return StatusNeedsFollowup, nil
		case ResultPending:
			status = StatusPending
		}
	}
	return status, nil
}
