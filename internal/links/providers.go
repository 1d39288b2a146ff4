package links

import (
	"strings"

	"github.com/scintive/werkstudentjobs-sub002/internal/similarity"
	"github.com/scintive/werkstudentjobs-sub002/internal/types"
)

// providerRule matches when the label contains any of anyOf and, if set,
// also contains one of requires.
type providerRule struct {
	anyOf    []string
	requires []string
	link     types.LearningLink
}

// ProviderTable picks a deterministic replacement for an unreachable link.
type ProviderTable struct {
	rules     []providerRule
	threshold float32
}

var defaultProviders = []providerRule{
	{anyOf: []string{"react"}, link: link("React Learn", "https://react.dev/learn")},
	{anyOf: []string{"node"}, link: link("Node.js Learn", "https://nodejs.org/en/learn")},
	{anyOf: []string{"express"}, link: link("Express Getting Started", "https://expressjs.com/en/starter/installing.html")},
	{anyOf: []string{"typescript"}, link: link("TypeScript Handbook", "https://www.typescriptlang.org/docs/")},
	{anyOf: []string{"javascript"}, link: link("MDN Learn Web Development", "https://developer.mozilla.org/en-US/docs/Learn")},
	{anyOf: []string{"wordpress"}, link: link("Learn WordPress", "https://learn.wordpress.org/")},
	{anyOf: []string{"figma"}, link: link("Figma Learn", "https://help.figma.com/hc/en-us/articles/1500004361281-Get-started-with-Figma")},
	{anyOf: []string{"google analytics"}, link: link("Google Skillshop Analytics", "https://skillshop.exceedlms.com/student/path/18164-google-analytics")},
	{anyOf: []string{"seo"}, link: link("Google Skillshop Search", "https://skillshop.exceedlms.com/student/catalog")},
	{anyOf: []string{"docker"}, link: link("Docker Get Started", "https://docs.docker.com/get-started/")},
	{anyOf: []string{"kubernetes"}, link: link("Kubernetes Basics", "https://kubernetes.io/docs/tutorials/kubernetes-basics/")},
	{anyOf: []string{"aws"}, link: link("AWS Cloud Practitioner Essentials", "https://www.aws.training/Details/Curriculum?id=20685")},
	{anyOf: []string{"power bi"}, link: link("Microsoft Learn Power BI", "https://learn.microsoft.com/power-bi/")},
	{anyOf: []string{"tableau"}, link: link("Tableau Training", "https://www.tableau.com/learn/training")},
	{anyOf: []string{"salesforce"}, link: link("Salesforce Trailhead", "https://trailhead.salesforce.com/")},
	{anyOf: []string{"jira"}, link: link("Atlassian University Jira", "https://university.atlassian.com/student/catalog")},
	{anyOf: []string{"scrum"}, link: link("The Scrum Guide", "https://scrumguides.org/")},
	{anyOf: []string{"customer success"}, link: link("HubSpot Academy Customer Success", "https://academy.hubspot.com/courses/customer-success")},
	{anyOf: []string{"crm"}, link: link("Trailhead Administrator", "https://trailhead.salesforce.com/credentials/administrator")},
	{anyOf: []string{"operations", "operational", "process"}, link: link("Google Project Management Certificate", "https://www.coursera.org/professional-certificates/google-project-management")},
	{anyOf: []string{"kpi", "metrics"}, link: link("Analyze Data with Excel (Microsoft Learn)", "https://learn.microsoft.com/training/paths/analyze-data-excel/")},
	{anyOf: []string{"lean", "six sigma"}, link: link("Six Sigma Tools (Coursera)", "https://www.coursera.org/learn/six-sigma-tools-define-measure-and-analyze")},
	{anyOf: []string{"event"}, requires: []string{"planning"}, link: link("Event Planning Specialization (Coursera)", "https://www.coursera.org/specializations/event-planning-management")},
	{anyOf: []string{"google ux"}, requires: []string{"certificate", "certification"}, link: link("Google UX Design Certificate", "https://www.coursera.org/professional-certificates/google-ux-design")},
	{anyOf: []string{"meta front", "front-end"}, requires: []string{"certificate", "certification"}, link: link("Meta Front-End Developer Certificate", "https://www.coursera.org/professional-certificates/meta-front-end-developer")},
}

// minFuzzyKeyword keeps short keywords such as "aws" out of the typo pass
const minFuzzyKeyword = 5

// DefaultProviderTable returns the built-in provider rules
func DefaultProviderTable() *ProviderTable {
	return &ProviderTable{rules: defaultProviders, threshold: similarity.DefaultFuzzyThreshold}
}

// BestFallback returns the first provider whose keywords appear in the label.
// A second pass tolerates typos ("kubernets"). With no match the result is a
// crash-course search for the task, or for the label when the task is empty.
func (p *ProviderTable) BestFallback(label, task string) types.LearningLink {
	lower := strings.ToLower(label)

	for _, r := range p.rules {
		if containsAny(lower, r.anyOf) && (len(r.requires) == 0 || containsAny(lower, r.requires)) {
			return r.link
		}
	}

	for _, r := range p.rules {
		if len(r.requires) > 0 {
			continue
		}
		for _, kw := range r.anyOf {
			if len(kw) >= minFuzzyKeyword && !strings.Contains(kw, " ") &&
				similarity.FuzzyContains(label, kw, p.threshold) {
				return r.link
			}
		}
	}

	topic := strings.TrimSpace(task)
	if topic == "" {
		topic = strings.TrimSpace(label)
	}
	return CrashCourse(topic)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
