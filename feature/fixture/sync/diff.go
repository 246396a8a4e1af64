package sync

import (
	"matchday/core/utils"
	"matchday/feature/fixture/models"
)

// nullSentinel is the textual stand-in for an absent value in audit diffs.
const nullSentinel = "null"

// FieldChange is one audited field transition.
type FieldChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// ChangeSet maps tracked field names to their transitions.
type ChangeSet map[string]FieldChange

// trackedFields is the fixed list of audit-relevant fixture fields.
// Relational ids (league/season/team) are deliberately excluded: re-links are
// not operator-actionable, so they count toward the write decision but never
// appear in the audit diff.
var trackedFields = []string{
	"name",
	"state",
	"minute",
	"result",
	"home_score_90",
	"away_score_90",
	"home_score_et",
	"away_score_et",
	"home_score_pen",
	"away_score_pen",
	"stage",
	"round",
	"leg",
	"aggregate_id",
}

// auditValues extracts the normalized textual value of every tracked field.
func auditValues(f *models.Fixture) map[string]string {
	return map[string]string{
		"name":           f.Name,
		"state":          string(f.State),
		"minute":         normalizeInt(f.Minute),
		"result":         normalizeString(f.Result),
		"home_score_90":  normalizeInt(f.HomeScore90),
		"away_score_90":  normalizeInt(f.AwayScore90),
		"home_score_et":  normalizeInt(f.HomeScoreET),
		"away_score_et":  normalizeInt(f.AwayScoreET),
		"home_score_pen": normalizeInt(f.HomeScorePen),
		"away_score_pen": normalizeInt(f.AwayScorePen),
		"stage":          normalizeString(f.Stage),
		"round":          normalizeString(f.Round),
		"leg":            normalizeString(f.Leg),
		"aggregate_id":   normalizeInt64(f.AggregateID),
	}
}

// Diff compares the persisted row against the resolved candidate and returns
// the minimal change set. An empty result means no audit-relevant field
// differs.
func Diff(current, candidate *models.Fixture) ChangeSet {
	oldValues := auditValues(current)
	newValues := auditValues(candidate)

	changes := make(ChangeSet)
	for _, field := range trackedFields {
		if oldValues[field] != newValues[field] {
			changes[field] = FieldChange{Old: oldValues[field], New: newValues[field]}
		}
	}
	return changes
}

// insertChanges builds the initial change set for a brand-new fixture: every
// tracked field with a non-null value, shown as null -> value. Null fields
// are omitted entirely to keep insert entries readable.
func insertChanges(candidate *models.Fixture) ChangeSet {
	values := auditValues(candidate)

	changes := make(ChangeSet)
	for _, field := range trackedFields {
		if values[field] != nullSentinel && values[field] != "" {
			changes[field] = FieldChange{Old: nullSentinel, New: values[field]}
		}
	}
	return changes
}

// relationsEqual compares the relational id fields. They participate in the
// write/skip decision even though they are excluded from the audit diff.
func relationsEqual(a, b *models.Fixture) bool {
	return uintPtrEqual(a.LeagueID, b.LeagueID) &&
		uintPtrEqual(a.SeasonID, b.SeasonID) &&
		uintPtrEqual(a.HomeTeamID, b.HomeTeamID) &&
		uintPtrEqual(a.AwayTeamID, b.AwayTeamID)
}

func uintPtrEqual(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func normalizeInt(v *int) string {
	if v == nil {
		return nullSentinel
	}
	return utils.ToString(*v)
}

func normalizeInt64(v *int64) string {
	if v == nil {
		return nullSentinel
	}
	return utils.ToString(*v)
}

func normalizeString(v *string) string {
	if v == nil {
		return nullSentinel
	}
	return *v
}
