package service

import (
	"golang.org/x/text/language"

	"github.com/symptom-triage-engine/internal/domain"
	"github.com/symptom-triage-engine/internal/nlp"
)

// ConditionID identifies a condition bucket of the triage rule table.
type ConditionID string

const (
	CONDITION_VIRAL_URTI       ConditionID = "VIRAL_URTI"
	CONDITION_COMMON_COLD      ConditionID = "COMMON_COLD"
	CONDITION_GASTRIC          ConditionID = "GASTRIC"
	CONDITION_TENSION_HEADACHE ConditionID = "TENSION_HEADACHE"
	CONDITION_FATIGUE          ConditionID = "FATIGUE"
	CONDITION_GENERAL          ConditionID = "GENERAL"
)

// ConditionText is the localized name and note of a condition.
type ConditionText struct {
	Name string
	Note string
}

// UrgencyText is the localized title and subtitle of an urgency level.
type UrgencyText struct {
	Title string
	Sub   string
}

// Messages holds every display string for one language.
type Messages struct {
	Tag             language.Tag
	Conditions      map[ConditionID]ConditionText
	Urgency         map[domain.UrgencyLevel]UrgencyText
	Recommendations [domain.RecommendationCount]string
}

// Catalog selects display strings by locale. English is the fallback.
type Catalog struct {
	matcher  language.Matcher
	messages []*Messages
}

// NewCatalog builds the catalog with the bundled languages.
func NewCatalog() *Catalog {
	messages := []*Messages{englishMessages(), hindiMessages()}
	tags := make([]language.Tag, len(messages))
	for i, m := range messages {
		tags[i] = m.Tag
	}
	return &Catalog{
		matcher:  language.NewMatcher(tags),
		messages: messages,
	}
}

// Lookup returns the messages best matching locale.
func (c *Catalog) Lookup(locale string) *Messages {
	tag := nlp.ParseLocale(locale)
	if tag == language.Und {
		return c.messages[0]
	}
	_, index, confidence := c.matcher.Match(tag)
	if confidence == language.No || index < 0 || index >= len(c.messages) {
		return c.messages[0]
	}
	return c.messages[index]
}

// Languages lists the supported language tags.
func (c *Catalog) Languages() []string {
	out := make([]string, len(c.messages))
	for i, m := range c.messages {
		out[i] = m.Tag.String()
	}
	return out
}

func englishMessages() *Messages {
	return &Messages{
		Tag: language.English,
		Conditions: map[ConditionID]ConditionText{
			CONDITION_VIRAL_URTI: {
				Name: "Viral upper respiratory infection",
				Note: "Fever with cough, cold or sore throat is most often a viral infection.",
			},
			CONDITION_COMMON_COLD: {
				Name: "Common cold",
				Note: "Mild nasal or throat symptoms usually settle within a week.",
			},
			CONDITION_GASTRIC: {
				Name: "Gastric upset / gastritis",
				Note: "Stomach pain, gas or vomiting often come from indigestion or a stomach infection.",
			},
			CONDITION_TENSION_HEADACHE: {
				Name: "Tension headache",
				Note: "Often linked to stress, poor sleep or dehydration.",
			},
			CONDITION_FATIGUE: {
				Name: "Fatigue and body ache",
				Note: "Body pain with tiredness can follow overexertion, poor sleep or a mild viral illness.",
			},
			CONDITION_GENERAL: {
				Name: "General discomfort",
				Note: "Not enough symptoms to suggest a specific condition.",
			},
		},
		Urgency: map[domain.UrgencyLevel]UrgencyText{
			domain.LOW_URGENCY:    {Title: "Low urgency", Sub: "Self-care at home is usually enough"},
			domain.MEDIUM_URGENCY: {Title: "Medium urgency", Sub: "Consult a doctor within 24-48 hours"},
			domain.HIGH_URGENCY:   {Title: "High urgency", Sub: "Seek medical care now"},
		},
		Recommendations: [domain.RecommendationCount]string{
			"Rest and stay hydrated",
			"Take over-the-counter medicine only if needed",
			"Monitor your symptoms for 2-3 days",
			"Consult a doctor if symptoms get worse",
		},
	}
}

func hindiMessages() *Messages {
	return &Messages{
		Tag: language.Hindi,
		Conditions: map[ConditionID]ConditionText{
			CONDITION_VIRAL_URTI: {
				Name: "वायरल ऊपरी श्वसन संक्रमण",
				Note: "खांसी, जुकाम या गले में दर्द के साथ बुखार अक्सर वायरल संक्रमण होता है।",
			},
			CONDITION_COMMON_COLD: {
				Name: "सामान्य सर्दी-जुकाम",
				Note: "नाक या गले के हल्के लक्षण आमतौर पर एक सप्ताह में ठीक हो जाते हैं।",
			},
			CONDITION_GASTRIC: {
				Name: "पेट की गड़बड़ी / गैस्ट्राइटिस",
				Note: "पेट दर्द, गैस या उल्टी अक्सर अपच या पेट के संक्रमण से होती है।",
			},
			CONDITION_TENSION_HEADACHE: {
				Name: "तनाव सिरदर्द",
				Note: "अक्सर तनाव, कम नींद या पानी की कमी से जुड़ा होता है।",
			},
			CONDITION_FATIGUE: {
				Name: "थकान और शरीर दर्द",
				Note: "थकान के साथ शरीर दर्द अधिक मेहनत, कम नींद या हल्के वायरल से हो सकता है।",
			},
			CONDITION_GENERAL: {
				Name: "सामान्य असुविधा",
				Note: "किसी विशेष स्थिति का संकेत देने के लिए पर्याप्त लक्षण नहीं हैं।",
			},
		},
		Urgency: map[domain.UrgencyLevel]UrgencyText{
			domain.LOW_URGENCY:    {Title: "कम तात्कालिकता", Sub: "घर पर देखभाल आमतौर पर पर्याप्त है"},
			domain.MEDIUM_URGENCY: {Title: "मध्यम तात्कालिकता", Sub: "24-48 घंटों में डॉक्टर से सलाह लें"},
			domain.HIGH_URGENCY:   {Title: "उच्च तात्कालिकता", Sub: "तुरंत चिकित्सा सहायता लें"},
		},
		Recommendations: [domain.RecommendationCount]string{
			"आराम करें और पानी पीते रहें",
			"ज़रूरत हो तभी बिना पर्चे की दवा लें",
			"2-3 दिन तक लक्षणों पर नज़र रखें",
			"लक्षण बढ़ें तो डॉक्टर से मिलें",
		},
	}
}
