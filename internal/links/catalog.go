package links

import (
	"regexp"
	"strings"

	"github.com/scintive/werkstudentjobs-sub002/internal/types"
)

// MaxCatalogLinks caps how many catalog links one task gets
const MaxCatalogLinks = 3

// Rule maps a topic pattern to curated resources
type Rule struct {
	Pattern *regexp.Regexp
	Links   []types.LearningLink
}

// Catalog is the static, rule-based resource set used next to the model's suggestions.
type Catalog struct {
	rules []Rule
	limit int
}

func link(label, u string) types.LearningLink {
	return types.LearningLink{Label: label, URL: u}
}

// Word boundaries keep "ui" from matching "build" and "data" from matching "update".
var defaultRules = []Rule{
	{regexp.MustCompile(`\b(react|javascript|typescript|frontend|front-end)\b`), []types.LearningLink{
		link("freeCodeCamp JavaScript", "https://www.freecodecamp.org/learn/javascript-algorithms-and-data-structures/"),
		link("Meta Front-End Developer Certificate", "https://www.coursera.org/professional-certificates/meta-front-end-developer"),
	}},
	{regexp.MustCompile(`\b(python|data)\b`), []types.LearningLink{
		link("Kaggle Learn", "https://www.kaggle.com/learn"),
		link("Data Analysis with Python (IBM)", "https://www.coursera.org/learn/data-analysis-with-python"),
	}},
	{regexp.MustCompile(`\b(sql|database|databases)\b`), []types.LearningLink{
		link("freeCodeCamp SQL", "https://www.freecodecamp.org/news/learn-sql-free-relational-database-courses-for-beginners/"),
		link("PostgreSQL Tutorial", "https://www.postgresql.org/docs/current/tutorial.html"),
	}},
	{regexp.MustCompile(`\b(aws|cloud|azure)\b`), []types.LearningLink{
		link("AWS Cloud Practitioner Essentials", "https://www.aws.training/Details/Curriculum?id=20685"),
		link("AWS Certified Developer", "https://aws.amazon.com/certification/certified-developer-associate/"),
	}},
	{regexp.MustCompile(`\b(docker|kubernetes|devops)\b`), []types.LearningLink{
		link("Docker Get Started", "https://docs.docker.com/get-started/"),
		link("Kubernetes Basics", "https://kubernetes.io/docs/tutorials/kubernetes-basics/"),
	}},
	{regexp.MustCompile(`\b(ux|ui|design|figma)\b`), []types.LearningLink{
		link("Google UX Design Certificate", "https://www.coursera.org/professional-certificates/google-ux-design"),
		link("Figma Learn", "https://help.figma.com/hc/en-us/articles/1500004361281-Get-started-with-Figma"),
	}},
	{regexp.MustCompile(`\b(seo|marketing|analytics)\b`), []types.LearningLink{
		link("Google Skillshop", "https://skillshop.exceedlms.com/student/catalog"),
		link("HubSpot Academy", "https://academy.hubspot.com/"),
		link("Google Analytics Certification", "https://skillshop.exceedlms.com/student/path/2938-google-analytics-certification"),
	}},
	{regexp.MustCompile(`\b(scrum|agile|jira|project management)\b`), []types.LearningLink{
		link("The Scrum Guide", "https://scrumguides.org/"),
		link("Atlassian University", "https://university.atlassian.com/student/catalog"),
	}},
	{regexp.MustCompile(`\b(e-?commerce|shopify|woocommerce)\b`), []types.LearningLink{
		link("Shopify Guides", "https://www.shopify.com/blog/topics/guides"),
		link("eCommerce Fundamentals", "https://www.coursera.org/learn/ecommerce"),
	}},
	{regexp.MustCompile(`\b(content|social media|copywriting)\b`), []types.LearningLink{
		link("HubSpot Content Marketing", "https://academy.hubspot.com/courses/content-marketing"),
		link("Meta Social Media Marketing", "https://www.coursera.org/professional-certificates/facebook-social-media-marketing"),
	}},
}

// DefaultCatalog returns the built-in rule set
func DefaultCatalog() *Catalog {
	return NewCatalog(defaultRules, MaxCatalogLinks)
}

// NewCatalog builds a catalog from custom rules
func NewCatalog(rules []Rule, limit int) *Catalog {
	if limit <= 0 {
		limit = MaxCatalogLinks
	}
	return &Catalog{rules: rules, limit: limit}
}

// Match returns up to limit links for the task and its skills, in rule order.
// When nothing matches, a crash-course search for the task is returned.
func (c *Catalog) Match(task string, skills ...string) []types.LearningLink {
	text := strings.ToLower(strings.Join(append([]string{task}, skills...), " "))

	var out []types.LearningLink
	for _, rule := range c.rules {
		if !rule.Pattern.MatchString(text) {
			continue
		}
		for _, l := range rule.Links {
			if len(out) == c.limit {
				return out
			}
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		out = append(out, CrashCourse(task))
	}
	return out
}
