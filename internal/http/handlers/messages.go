// User-facing response texts.
//
// The site is German-first; English texts exist for browsers that ask for
// them via Accept-Language. Texts are resolved per request with a
// golang.org/x/text language matcher so an unknown or missing header falls
// back to German, matching the audience of the landing page.
package handlers

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

// messageSet holds every response text for one language.
type messageSet struct {
	ThankYou     string
	RateLimited  string
	InvalidBody  string
	InvalidPhone string

	// byField maps a validation field name to its error text.
	byField map[string]string
}

var (
	// supported declares German first so it wins the match for unknown and
	// absent Accept-Language values.
	supported = []language.Tag{language.German, language.English}
	matcher   = language.NewMatcher(supported)

	messagesDE = messageSet{
		ThankYou:     "Vielen Dank für Ihre Anfrage! Wir melden uns innerhalb von 24 Stunden bei Ihnen.",
		RateLimited:  "Zu viele Anfragen. Bitte versuchen Sie es später erneut.",
		InvalidBody:  "Die Anfrage konnte nicht verarbeitet werden. Bitte prüfen Sie Ihre Eingaben.",
		InvalidPhone: "Bitte geben Sie eine gültige deutsche Telefonnummer an.",
		byField: map[string]string{
			"name":    "Bitte geben Sie Ihren Namen an.",
			"email":   "Bitte geben Sie eine gültige E-Mail-Adresse an.",
			"phone":   "Bitte geben Sie Ihre Telefonnummer an.",
			"message": "Bitte beschreiben Sie Ihr Anliegen in einigen Worten.",
		},
	}

	messagesEN = messageSet{
		ThankYou:     "Thank you for your inquiry! We will get back to you within 24 hours.",
		RateLimited:  "Too many requests. Please try again later.",
		InvalidBody:  "The request could not be processed. Please check your input.",
		InvalidPhone: "Please provide a valid German phone number.",
		byField: map[string]string{
			"name":    "Please provide your name.",
			"email":   "Please provide a valid email address.",
			"phone":   "Please provide your phone number.",
			"message": "Please describe your request in a few words.",
		},
	}
)

// messagesFor picks the message set for the request's Accept-Language.
func messagesFor(c *gin.Context) messageSet {
	tags, _, err := language.ParseAcceptLanguage(c.GetHeader("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return messagesDE
	}
	_, idx, _ := matcher.Match(tags...)
	if supported[idx] == language.English {
		return messagesEN
	}
	return messagesDE
}

// fieldMessage returns the error text for a failed validation field, falling
// back to the generic body message for fields without a dedicated text.
func (m messageSet) fieldMessage(field string) string {
	if msg, ok := m.byField[field]; ok {
		return msg
	}
	return m.InvalidBody
}
