package responder

import "strings"

// CrisisResources is the static list surfaced alongside any reply to a
// message classified as a crisis.
var CrisisResources = []string{
	"National Suicide Prevention Lifeline: 988 or 1-800-273-8255 (24/7)",
	"Crisis Text Line: text HOME to 741741",
	"SAMHSA National Helpline: 1-800-662-4357",
}

// CrisisFooter is appended to the generated reply when a crisis is detected.
func CrisisFooter() string {
	var b strings.Builder
	b.WriteString("\n\n⚠️ If you're having thoughts of self-harm, please reach out now. ")
	b.WriteString("You're not alone, and help is available 24/7.\n")
	for _, resource := range CrisisResources {
		b.WriteString("- ")
		b.WriteString(resource)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
