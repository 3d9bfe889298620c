package engine

// Prompt keys surfaced in the decision bundle so transports and tests can
// assert on which prompt family was chosen without string-matching Hindi.
const (
	PromptGreeting      = "greeting"
	PromptEscalationAck = "escalation_ack"
	PromptAskLocation   = "ask_location"
	PromptAskIncident   = "ask_incident"
	PromptAskPeople     = "ask_people_affected"
	PromptAskName       = "ask_name"
	PromptFollowUp      = "follow_up"
	PromptGeneric       = "generic"
)

const greetingPrompt = "नमस्ते, मैं आपकी मदद के लिए यहाँ हूँ। कृपया बताएं कि क्या हुआ है?"

const escalationAckPrompt = "मैं समझ गया। आपकी मदद के लिए एक व्यक्ति जल्द ही आपसे बात करेगा। " +
	"इस बीच, कृपया मुझे कुछ जानकारी दें।"

const genericFallbackPrompt = "कृपया बताएं कि क्या हुआ है?"

var locationPrompts = []string{
	"कृपया बताएं कि यह घटना कहाँ हुई है?",
	"आप कहाँ हैं? कृपया स्थान बताएं।",
	"मुझे जगह बताएं - कौन सी जगह, कौन सा शहर?",
}

var incidentPrompts = []string{
	"कृपया बताएं कि क्या हुआ है?",
	"किस तरह की समस्या है?",
	"आप किस बारे में बता रहे हैं - दुर्घटना, अपराध, या चिकित्सा समस्या?",
}

var peoplePrompts = []string{
	"कितने लोग प्रभावित हैं?",
	"कितने लोगों को चोट लगी है?",
	"कितने लोग जख्मी हैं?",
}

var namePrompts = []string{
	"कृपया अपना नाम बताएं।",
	"आपका नाम क्या है?",
	"मैं आपको कैसे संबोधित करूं?",
}

var followUpPrompts = []string{
	"क्या आप कुछ और बताना चाहेंगे?",
	"क्या कोई और जानकारी है जो आप देना चाहेंगे?",
	"कृपया बताएं अगर कुछ और जानकारी है।",
}

var genericPrompts = []string{
	"कृपया बताएं कि क्या हुआ है?",
	"मुझे और जानकारी दें।",
	"क्या आप कुछ और बता सकते हैं?",
}

// rotatePrompt picks a variant by rotation index and never repeats the
// previous prompt back to back.
func rotatePrompt(variants []string, index int, lastPrompt string) string {
	if index < 0 {
		index = 0
	}
	i := index % len(variants)
	if variants[i] == lastPrompt {
		i = (i + 1) % len(variants)
	}
	return variants[i]
}
