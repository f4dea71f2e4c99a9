package classify

import (
	"regexp"

	"github.com/aldeia/advisor/core"
)

// intentRule pairs a topic pattern with the intent it selects.
type intentRule struct {
	intent  core.Intent
	pattern *regexp.Regexp
}

// intentRules are evaluated in priority order; the first match wins.
// Patterns run against the lowercased message.
var intentRules = []intentRule{
	{core.IntentEmergency, regexp.MustCompile(`emergency|urgent|help|fire|evacuate|danger|911|immediate`)},
	{core.IntentStatus, regexp.MustCompile(`status|progress|update|current|ongoing|pending|complete|finished|timeline|when|how long|duration`)},
	{core.IntentProcess, regexp.MustCompile(`how|process|steps|procedure|apply|application|submit|get|obtain|rebuild|remove|opt[- ]?out|permit|inspection|documentation|form|paperwork`)},
	{core.IntentComparative, regexp.MustCompile(`compare|difference|vs\.?|better|worse|best|cheaper|faster`)},
	{core.IntentLocation, regexp.MustCompile(`where|location|address|area|region|county|city|zip|altadena|pasadena|los angeles`)},
	{core.IntentLegal, regexp.MustCompile(`legal|law|regulation|compliance|requirement|policy|rule|attorney|court`)},
	{core.IntentFinancial, regexp.MustCompile(`money|cost|fee|price|pay|fund|grant|insurance|financial|compensation|reimburse`)},
	{core.IntentEmotionalSupport, regexp.MustCompile(`support|counseling|mental|emotional|stress|trauma|wellbeing|well-being`)},
	{core.IntentEligibility, regexp.MustCompile(`eligible|eligibility|qualify|criteria|who can|who is`)},
	{core.IntentContact, regexp.MustCompile(`contact|phone|email|reach|call|speak|talk|address|office|visit`)},
	{core.IntentFeedback, regexp.MustCompile(`feedback|complaint|suggestion|report|issue|problem`)},
}

// biasVocabulary is the fixed list of charged or loaded terms. Matching is a
// case-insensitive substring test; the message itself is never altered.
var biasVocabulary = []string{
	"should", "must", "always", "never", "obviously", "clearly",
	"everyone knows", "no one", "best", "worst", "only", "all", "none",
	"mandatory", "required", "illegal", "unethical", "irresponsible",
	"stupid", "dumb", "idiot", "fool", "hate", "love", "discriminate",
	"racist", "sexist", "biased", "prejudice", "unfair", "unjust",
	"disadvantage", "privilege", "minority", "majority", "oppressed",
	"oppressor",
}

// topicConflictPatterns are mutually distinct topic signals. A message that
// matches more than one spans unrelated domains and counts as ambiguous.
var topicConflictPatterns = []*regexp.Regexp{
	regexp.MustCompile(`where`),
	regexp.MustCompile(`how`),
	regexp.MustCompile(`legal|law|regulation`),
	regexp.MustCompile(`money|cost|fee|financial`),
	regexp.MustCompile(`support|counseling|mental`),
	regexp.MustCompile(`eligible|eligibility`),
	regexp.MustCompile(`contact|phone|email`),
	regexp.MustCompile(`feedback|complaint`),
}

// vagueTerms flags filler words that carry no topic on their own.
var vagueTerms = regexp.MustCompile(`thing|stuff|info|information|details|something|anything`)
