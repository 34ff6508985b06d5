package serviceImp

import (
	"fmt"
	"regexp"
	"strings"
)

const defaultLanguage = "en"

var languageDirectives = map[string]string{
	"en": "Respond in English.",
	"hi": "Respond in Hindi (हिंदी). Use Devanagari script.",
	"te": "Respond in Telugu (తెలుగు). Use Telugu script.",
	"ta": "Respond in Tamil (தமிழ்). Use Tamil script.",
}

func languageDirective(code string) string {
	if d, ok := languageDirectives[strings.ToLower(strings.TrimSpace(code))]; ok {
		return d
	}
	return languageDirectives[defaultLanguage]
}

func systemPrompt(language string, crops []string, reference string) string {
	return fmt.Sprintf(`You are a friendly and knowledgeable Plant Health Assistant, an expert in agricultural science specializing in crop diseases and farming practices.

CRITICAL LANGUAGE INSTRUCTION: %s

IMPORTANT RULES:
- Never mention that you are an AI, API, chatbot, or language model
- Never mention Google, Gemini, OpenAI, web search, scraping, or any technology
- Present yourself as an integrated expert advisory system
- Speak with authority as a plant health specialist
- Be warm, helpful, and farmer-friendly in your tone

YOUR EXPERTISE:
- Crop diseases (identification, symptoms, causes)
- Treatment recommendations (organic and chemical solutions)
- Prevention strategies and best practices
- General farming advice and seasonal tips
- Soil health and irrigation guidance
- Pest management

SUPPORTED CROPS: %s

RESPONSE STYLE:
- Keep responses concise but informative (2-4 paragraphs max)
- Use simple language farmers can understand
- Provide actionable advice
- Be encouraging and supportive
- If asked about non-agricultural topics, gently redirect to plant health

DISEASE REFERENCE (use it when answering; do not quote it verbatim):
%s

Remember: You are the Plant Health Advisory system's expert assistant, here to help farmers protect their crops.`,
		languageDirective(language), strings.Join(crops, ", "), reference)
}

const personaName = "the Plant Health Advisory system"

var (
	techNameRX = regexp.MustCompile(`(?i)(?:\b(?:a|an|the)\s+)?(?:\b(?:google\s+)?gemini\b|\bopen\s?ai\b|\bchat\s?gpt\b|\bgpt-?\d+(?:\.\d+)?[a-z]*\b|\b(?:large\s+)?language\s+models?\b|\bLLMs?\b)`)
	// "X, a Y" and "X or Y" collapse once both sides are rewritten.
	repeatedPersonaRX = regexp.MustCompile(`(?i)(the Plant Health Advisory system)(?:(?:\s*(?:,|\bor\b|\band\b|\bnor\b)\s*)+the Plant Health Advisory system)+`)
)

// scrubPersona removes names of the underlying technology from a reply.
// A leading article is consumed with the name so the sentence stays whole.
func scrubPersona(s string) string {
	var b strings.Builder
	last := 0
	for _, loc := range techNameRX.FindAllStringIndex(s, -1) {
		b.WriteString(s[last:loc[0]])
		if sentenceStart(s[:loc[0]]) {
			b.WriteString("T" + personaName[1:])
		} else {
			b.WriteString(personaName)
		}
		last = loc[1]
	}
	b.WriteString(s[last:])
	return strings.TrimSpace(repeatedPersonaRX.ReplaceAllString(b.String(), "$1"))
}

func sentenceStart(before string) bool {
	t := strings.TrimRight(before, " \t\n\"'(*")
	return t == "" || strings.HasSuffix(t, ".") || strings.HasSuffix(t, "!") || strings.HasSuffix(t, "?") || strings.HasSuffix(t, ":")
}
