package nlp

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/symptom-triage-engine/internal/domain"
)

// keywordRule lists the literal phrases that select a symptom key, grouped by
// language so coverage per script can be checked.
type keywordRule struct {
	Key      domain.SymptomKey
	Variants map[string][]string
}

// keywordTable is evaluated in order; matched keys are emitted in this order.
var keywordTable = []keywordRule{
	{domain.FEVER, map[string][]string{
		"en": {"fever", "temperature", "high temp", "pyrexia"},
		"hi": {"बुखार", "ज्वर"},
		"ta": {"காய்ச்சல்"},
		"te": {"జ్వరం"},
		"pa": {"ਬੁਖਾਰ"},
	}},
	{domain.COLD, map[string][]string{
		"en": {"cold", "runny nose", "sneezing", "blocked nose", "nasal congestion"},
		"hi": {"सर्दी", "जुकाम"},
		"ta": {"ஜலதோஷம்"},
		"te": {"జలుబు"},
		"pa": {"ਜ਼ੁਕਾਮ"},
	}},
	{domain.COUGH, map[string][]string{
		"en": {"cough", "coughing"},
		"hi": {"खांसी"},
		"ta": {"இருமல்"},
		"te": {"దగ్గు"},
		"pa": {"ਖਾਂਸੀ"},
	}},
	{domain.SORE_THROAT, map[string][]string{
		"en": {"sore throat", "throat pain", "gargle"},
		"hi": {"गला दर्द", "गले में दर्द"},
		"ta": {"தொண்டை வலி"},
		"te": {"గొంతు నొప్పి"},
		"pa": {"ਗਲੇ ਦਾ ਦਰਦ"},
	}},
	{domain.HEADACHE, map[string][]string{
		"en": {"headache", "head pain", "migraine"},
		"hi": {"सिरदर्द"},
		"ta": {"தலைவலி"},
		"te": {"తలనొప్పి"},
		"pa": {"ਸਿਰ ਦਰਦ"},
	}},
	{domain.STOMACH_PAIN, map[string][]string{
		"en": {"stomach pain", "abdominal pain", "gas", "vomit", "vomiting", "nausea"},
		"hi": {"पेट दर्द", "वमन", "उल्टी"},
		"ta": {"வயிற்று வலி"},
		"te": {"కడుపునొప్పి", "పొత్తికడుపు"},
		"pa": {"ਪੇਟ ਦਰਦ"},
	}},
	{domain.BODY_PAIN, map[string][]string{
		"en": {"body pain", "body ache", "muscle pain", "myalgia"},
		"hi": {"शरीर दर्द", "उंगलियों में दर्द"},
		"ta": {"உடல் வலி"},
		"te": {"శరీర నొప్పి"},
		"pa": {"ਸਰੀਰ ਦਰਦ"},
	}},
	{domain.TIREDNESS, map[string][]string{
		"en": {"tired", "tiredness", "fatigue", "weak", "weakness"},
		"hi": {"थकान", "कमजोरी"},
		"ta": {"சோர்வு", "அலசல்"},
		"te": {"అలసట", "బలహీనత"},
		"pa": {"ਥਕਾਵਟ"},
	}},
}

// languageOrder fixes the order variants are compiled in.
var languageOrder = []string{"en", "hi", "ta", "te", "pa"}

type compiledRule struct {
	key      domain.SymptomKey
	variants []string
}

// KeywordExtractor matches normalized text against the multilingual keyword
// table. It holds no mutable state and is safe for concurrent use.
type KeywordExtractor struct {
	rules []compiledRule
}

// NewKeywordExtractor compiles the keyword table into NFC form.
func NewKeywordExtractor() *KeywordExtractor {
	rules := make([]compiledRule, 0, len(keywordTable))
	for _, rule := range keywordTable {
		compiled := compiledRule{key: rule.Key}
		for _, lang := range languageOrder {
			for _, variant := range rule.Variants[lang] {
				compiled.variants = append(compiled.variants, norm.NFC.String(variant))
			}
		}
		rules = append(rules, compiled)
	}
	return &KeywordExtractor{rules: rules}
}

// Extract returns every symptom key whose keywords occur as a substring of the
// lowercased, NFC-normalized text.
func (e *KeywordExtractor) Extract(text, locale string) domain.SymptomKeySet {
	normalized := strings.TrimSpace(norm.NFC.String(lowerLocale(text, locale)))
	keys := domain.NewSymptomKeySet()
	if normalized == "" {
		return keys
	}

	for _, rule := range e.rules {
		for _, variant := range rule.variants {
			if strings.Contains(normalized, variant) {
				keys.Add(rule.key)
				break
			}
		}
	}
	return keys
}

// KeywordLanguages reports which languages carry variants for a key.
func KeywordLanguages(key domain.SymptomKey) []string {
	for _, rule := range keywordTable {
		if rule.Key != key {
			continue
		}
		langs := make([]string, 0, len(rule.Variants))
		for _, lang := range languageOrder {
			if len(rule.Variants[lang]) > 0 {
				langs = append(langs, lang)
			}
		}
		return langs
	}
	return nil
}
