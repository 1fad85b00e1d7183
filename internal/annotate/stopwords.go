package annotate

// stopWords are normalized forms excluded from keyword candidates.
// English and Spanish, matching the languages the marker heuristic covers.
var stopWords = map[string]bool{
	// English
	"about": true, "after": true, "all": true, "also": true, "and": true,
	"any": true, "are": true, "because": true, "been": true, "before": true,
	"being": true, "between": true, "both": true, "but": true, "can": true,
	"come": true, "could": true, "did": true, "does": true, "doing": true,
	"down": true, "during": true, "each": true, "few": true, "for": true,
	"from": true, "further": true, "get": true, "had": true, "has": true,
	"have": true, "having": true, "her": true, "here": true, "him": true,
	"his": true, "how": true, "into": true, "its": true, "just": true,
	"like": true, "made": true, "make": true, "many": true, "more": true,
	"most": true, "much": true, "new": true, "not": true, "now": true,
	"off": true, "once": true, "only": true, "other": true, "our": true,
	"out": true, "over": true, "own": true, "same": true, "she": true,
	"should": true, "some": true, "such": true, "take": true, "than": true,
	"that": true, "the": true, "their": true, "them": true, "then": true,
	"there": true, "these": true, "they": true, "this": true, "those": true,
	"through": true, "under": true, "until": true, "use": true, "used": true,
	"very": true, "was": true, "way": true, "well": true, "were": true,
	"what": true, "when": true, "where": true, "which": true, "while": true,
	"who": true, "why": true, "will": true, "with": true, "would": true,
	"you": true, "your": true,
	// Spanish
	"algo": true, "ante": true, "antes": true, "como": true, "con": true,
	"contra": true, "cual": true, "cuando": true, "desde": true, "donde": true,
	"dos": true, "ella": true, "ellas": true, "ellos": true, "entre": true,
	"era": true, "eran": true, "ese": true, "eso": true, "esta": true,
	"estas": true, "este": true, "esto": true, "estos": true, "fue": true,
	"hace": true, "hacia": true, "hay": true, "las": true, "los": true,
	"mas": true, "mientras": true, "muy": true, "nos": true, "nosotros": true,
	"otra": true, "otro": true, "para": true, "pero": true, "poco": true,
	"por": true, "porque": true, "que": true, "ser": true, "sin": true,
	"sobre": true, "son": true, "sus": true, "también": true, "tan": true,
	"tiene": true, "todo": true, "todos": true, "una": true, "uno": true,
	"unos": true, "usted": true,
}
