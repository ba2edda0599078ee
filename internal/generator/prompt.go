package generator

import (
	"fmt"
	"strings"

	"github.com/sanket913/VoiceMitra/internal/language"
)

func quizRequest(spec QuizSpec) Request {
	target := language.Name(spec.Language)

	var b strings.Builder
	b.WriteString("You are VoiceMitra, an expert AI tutor. Generate a high-quality educational quiz for Indian students.\n\n")
	b.WriteString("STRICT REQUIREMENTS:\n")
	fmt.Fprintf(&b, "- Subject: %s\n", spec.Subject)
	fmt.Fprintf(&b, "- Difficulty: %s\n", spec.Difficulty)
	fmt.Fprintf(&b, "- Language: %s\n", target)
	fmt.Fprintf(&b, "- Number of questions: %d\n", spec.Count)
	b.WriteString("- Format: Valid JSON only\n\n")
	fmt.Fprintf(&b, "Create exactly %d multiple choice questions that are:\n", spec.Count)
	b.WriteString("1. Educationally valuable and relevant to Indian curriculum\n")
	fmt.Fprintf(&b, "2. Appropriate for %s level students\n", spec.Difficulty)
	fmt.Fprintf(&b, "3. Written clearly in %s language\n", target)
	b.WriteString("4. Have exactly 4 options each (A, B, C, D)\n")
	b.WriteString("5. Include detailed explanations for learning\n\n")
	b.WriteString("CRITICAL: Return ONLY a valid JSON array with this EXACT structure:\n")
	b.WriteString("[\n  {\n")
	fmt.Fprintf(&b, "    \"question\": \"Clear question text in %s\",\n", target)
	b.WriteString("    \"options\": [\"Option A\", \"Option B\", \"Option C\", \"Option D\"],\n")
	b.WriteString("    \"correctAnswer\": 0,\n")
	fmt.Fprintf(&b, "    \"explanation\": \"Detailed educational explanation in %s\"\n", target)
	b.WriteString("  }\n]\n\n")
	b.WriteString("correctAnswer is the zero-based index (0-3) of the correct option.\n")
	b.WriteString("NO additional text, NO markdown formatting, NO code blocks - ONLY the JSON array.")

	return Request{
		Prompt:          b.String(),
		Temperature:     0.8,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 4096,
	}
}

func answerRequest(question, lang string) Request {
	target := language.Name(lang)

	var b strings.Builder
	b.WriteString("You are VoiceMitra, an expert AI tutor designed specifically for Indian students. ")
	b.WriteString("Your role is to provide clear, accurate, and educational responses.\n\n")
	b.WriteString("IMPORTANT INSTRUCTIONS:\n")
	fmt.Fprintf(&b, "- Always respond in %s language using proper script and characters\n", target)
	b.WriteString("- Provide accurate, factual information based on the specific question asked\n")
	b.WriteString("- Make explanations clear and suitable for students\n")
	b.WriteString("- Include examples when helpful\n")
	b.WriteString("- Be encouraging and supportive\n")
	b.WriteString("- Never give generic responses - always address the specific question\n\n")
	fmt.Fprintf(&b, "Question: %q\n\n", question)
	fmt.Fprintf(&b, "Please provide a detailed, specific answer to this exact question in %s.\n", target)
	if lang != language.Default {
		fmt.Fprintf(&b, "Write your response using the native script of %s language.\n", target)
	}
	b.WriteString("Make sure your response directly addresses what was asked and provides educational value.")

	return Request{
		Prompt:          b.String(),
		Temperature:     0.7,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 2048,
	}
}

func detectRequest(text string) Request {
	var b strings.Builder
	b.WriteString("Detect the language of the following text and return ONLY the language code.\n\n")
	b.WriteString("Supported language codes:\n")
	for _, info := range language.All() {
		fmt.Fprintf(&b, "- %s (%s)\n", info.Code, info.Name)
	}
	fmt.Fprintf(&b, "\nText: %q\n\n", text)
	b.WriteString("Return ONLY the two-letter language code, nothing else:")

	return Request{
		Prompt:          b.String(),
		Temperature:     0.1,
		MaxOutputTokens: 10,
	}
}
