package match

import (
	"strings"

	"github.com/sells-group/dedupe-cli/internal/model"
)

// Fixed confidence per rule. The ordering encodes relative signal strength:
// a shared unique identifier (email/phone) is near-certain, a shared profile
// URL very likely, first name + domain moderately likely, fuzzy name +
// company the weakest accepted signal.
const (
	ScoreExactEmail     = 100
	ScoreExactPhone     = 100
	ScoreProfileURL     = 90
	ScoreNameDomain     = 70
	ScoreSimilarCompany = 60

	// MinScore is the candidate threshold; anything weaker is not a match.
	MinScore = ScoreSimilarCompany

	// maxNameDistance and maxCompanyDistance bound the fuzzy comparisons in
	// the weakest rule.
	maxNameDistance    = 3
	maxCompanyDistance = 2

	// minPhoneDigits guards against short extensions or fragments matching.
	minPhoneDigits = 7
)

// Classify applies the duplicate rule cascade to two contacts. The first
// satisfied rule wins; later rules never downgrade an assigned score. Returns
// nil when no rule fires. Absent fields never contribute to a match, and the
// result is identical regardless of argument order.
func Classify(a, b model.Contact) *model.Match {
	if a.Email != "" && b.Email != "" && strings.EqualFold(a.Email, b.Email) {
		return &model.Match{Score: ScoreExactEmail, Reason: model.ReasonExactEmail}
	}

	if pa, pb := NormalizePhone(a.Phone), NormalizePhone(b.Phone); pa != "" && pa == pb && len(pa) >= minPhoneDigits {
		return &model.Match{Score: ScoreExactPhone, Reason: model.ReasonExactPhone}
	}

	if ua, ub := NormalizeProfileURL(a.ProfileURL), NormalizeProfileURL(b.ProfileURL); ua != "" && ua == ub {
		return &model.Match{Score: ScoreProfileURL, Reason: model.ReasonProfileURL}
	}

	if a.FirstName != "" && strings.EqualFold(a.FirstName, b.FirstName) {
		if da, db := resolveDomain(a), resolveDomain(b); da != "" && da == db {
			return &model.Match{Score: ScoreNameDomain, Reason: model.ReasonNameDomain}
		}
	}

	if similarName(a, b) && similarCompany(a.Company, b.Company) {
		return &model.Match{Score: ScoreSimilarCompany, Reason: model.ReasonSimilarCompany}
	}

	return nil
}

// resolveDomain prefers the email's domain; an explicit company domain is
// only consulted when the record has no email.
func resolveDomain(c model.Contact) string {
	if c.Email != "" {
		return EmailDomain(c.Email)
	}
	return strings.ToLower(c.CompanyDomain)
}

func similarName(a, b model.Contact) bool {
	na, nb := strings.ToLower(a.FullName()), strings.ToLower(b.FullName())
	if na == "" || nb == "" {
		return false
	}
	return EditDistance(na, nb) <= maxNameDistance
}

func similarCompany(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if strings.EqualFold(a, b) {
		return true
	}
	return EditDistance(strings.ToLower(a), strings.ToLower(b)) <= maxCompanyDistance
}
