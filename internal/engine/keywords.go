package engine

import (
	"strings"

	"github.com/scintive/werkstudentjobs-sub002/internal/types"
)

// GermanKeywords are the terms applicant tracking systems in Germany look for
// on working-student applications.
var GermanKeywords = []string{
	"Werkstudent",
	"Werkstudent/in",
	"Working Student",
	"Immatrikulation",
	"Einschreibung",
	"Teilzeit",
	"15-20 Stunden/Woche",
	"Pflichtpraktikum",
	"Praxissemester",
	"Bachelor",
	"Master",
	"Studium",
}

// atsSupplement is how many of GermanKeywords are appended to the ATS list
const atsSupplement = 5

// atsKeywords returns the model's ATS keywords and, for German jobs, the German
// terms. The ATS list takes only the first atsSupplement built-in terms; the German
// list carries the model's terms followed by all of GermanKeywords. Case-insensitive
// duplicates are dropped, keeping first spellings.
func atsKeywords(job *types.Job, parsed *types.ParsedAnalysis) (ats, german []string) {
	if !job.IsGerman() {
		return mergeKeywords(parsed.ATSKeywords), nil
	}
	ats = mergeKeywords(parsed.ATSKeywords, GermanKeywords[:atsSupplement])
	german = mergeKeywords(parsed.GermanKeywords, GermanKeywords)
	return ats, german
}

func mergeKeywords(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, list := range lists {
		for _, kw := range list {
			kw = strings.TrimSpace(kw)
			key := strings.ToLower(kw)
			if kw == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, kw)
		}
	}
	return out
}
