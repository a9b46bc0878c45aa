package extract

import (
	"regexp"

	"github.com/athapong/notegraph/pkg/entity"
	mapset "github.com/deckarep/golang-set/v2"
)

// commitmentTemplate is a regex whose second capture group is the verb that
// follows the commitment phrase.
type commitmentTemplate struct {
	name      string
	regex     *regexp.Regexp
	direction entity.Direction
}

// Order matters: templates are applied in this sequence and every one runs
// over the full text, so overlapping matches are all reported.
var commitmentTemplates = []commitmentTemplate{
	{
		name:      "first_person_future",
		regex:     regexp.MustCompile(`(?i)\b(I['’]ll|I will|gonna|going to)\s+(\w+)`),
		direction: entity.DirectionOutbound,
	},
	{
		name:      "second_person_request",
		regex:     regexp.MustCompile(`(?i)\b(you['’]ll|you will|can you|could you)\s+(\w+)`),
		direction: entity.DirectionInbound,
	},
	{
		name:      "first_person_plural",
		regex:     regexp.MustCompile(`(?i)\b(we['’]ll|we will|let['’]s|let us)\s+(\w+)`),
		direction: entity.DirectionMutual,
	},
	{
		name:      "agreement",
		regex:     regexp.MustCompile(`(?i)\b(promised|agreed|committed)\s+to\s+(\w+)`),
		direction: entity.DirectionMutual,
	},
	{
		name:      "obligation",
		regex:     regexp.MustCompile(`(?i)\b(need to|have to|must)\s+(\w+)`),
		direction: entity.DirectionOutbound,
	},
}

// actionVerbs is the vocabulary of verbs that make a commitment actionable.
// Lookups are case-insensitive; entries are lowercase.
var actionVerbs = mapset.NewSet[string](
	"call", "email", "text", "message", "ping", "send", "share", "forward",
	"meet", "schedule", "book", "plan", "invite", "host", "visit",
	"follow", "check", "reach", "contact", "connect", "introduce", "intro",
	"review", "read", "write", "draft", "prepare", "finish", "submit",
	"update", "confirm", "remind", "ask", "discuss", "talk", "chat",
	"catch", "grab", "buy", "bring", "pick", "get", "look", "help",
	"sign", "pay", "deliver", "return", "try", "set",
)

// nonNameWords are capitalised sentence openers that never start an
// organization name, on top of actionVerbs.
var nonNameWords = actionVerbs.Union(mapset.NewSet[string](
	"yesterday", "today", "tonight", "tomorrow", "last", "next", "this",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	"january", "february", "march", "april", "may", "june", "july", "august",
	"september", "october", "november", "december",
	"the", "a", "an", "and", "but", "so", "then", "also", "after", "before",
	"at", "from", "for", "with", "by", "to", "in", "on", "via",
	"i", "we", "they", "he", "she", "you", "our", "my", "their", "met", "joined",
))

type signalCategory struct {
	signalType entity.SignalType
	keywords   []string
	patterns   []*regexp.Regexp
}

// signalCategories lists relationship keywords per signal type. A keyword may
// be a multi-word phrase; matching is whole-word and case-insensitive.
var signalCategories = compileSignalCategories([]signalCategory{
	{
		signalType: entity.SignalProfessional,
		keywords: []string{
			"boss", "manager", "colleague", "coworker", "co-worker", "client",
			"customer", "partner", "mentor", "mentee", "teammate", "employee",
			"supervisor", "investor", "recruiter", "cofounder", "co-founder",
		},
	},
	{
		signalType: entity.SignalPersonal,
		keywords: []string{
			"friend", "best friend", "family", "wife", "husband", "mom", "dad",
			"mother", "father", "sister", "brother", "son", "daughter", "cousin",
			"aunt", "uncle", "girlfriend", "boyfriend", "fiance", "neighbor", "roommate",
		},
	},
	{
		signalType: entity.SignalTransactional,
		keywords: []string{
			"vendor", "supplier", "contractor", "consultant", "agent", "broker",
			"landlord", "tenant", "seller", "buyer", "lawyer", "accountant", "realtor",
		},
	},
	{
		signalType: entity.SignalHierarchical,
		keywords: []string{
			"ceo", "cto", "cfo", "coo", "founder", "director", "vp", "president",
			"head of", "team lead", "executive", "chairman", "direct report",
		},
	},
	{
		signalType: entity.SignalTemporal,
		keywords: []string{
			"met", "reconnected", "catch up", "last spoke", "years ago",
			"long time", "first time", "again", "anniversary", "birthday",
		},
	},
})

func compileSignalCategories(categories []signalCategory) []signalCategory {
	for i := range categories {
		patterns := make([]*regexp.Regexp, len(categories[i].keywords))
		for j, kw := range categories[i].keywords {
			patterns[j] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
		}
		categories[i].patterns = patterns
	}
	return categories
}

var (
	// phonePattern matches ddd-ddd-dddd with '-', '.' or no separators.
	phonePattern = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	yearPattern  = regexp.MustCompile(`\b\d{4}\b`)
	nonDigitRune = regexp.MustCompile(`\D`)

	// companySuffixPattern catches capitalised names ending in a corporate
	// suffix, which the statistical tagger rarely labels.
	companySuffixPattern = regexp.MustCompile(
		`\b[A-Z][A-Za-z0-9&'-]*(?:\s+[A-Z][A-Za-z0-9&'-]*){0,3},?\s+(?:Inc|LLC|Ltd|Corp|Corporation|Co|Group|Labs|Technologies)\b`)
)
