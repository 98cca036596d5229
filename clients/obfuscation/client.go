package obfuscation

import (
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/estafette/estafette-kernel-builder/config"
)

const maxLengthToSkipObfuscation = 3

var secretEnvelopeRegex = regexp.MustCompile(`estafette\.secret\(([a-zA-Z0-9.=_-]+)\)`)

// Client hides secret values from console output and step log lines
//
//go:generate mockgen -package=obfuscation -destination ./mock.go -source=client.go
type Client interface {
	CollectSecrets(settings config.Settings) (err error)
	Obfuscate(input string) string
	ObfuscateSecrets(input string) string
}

// NewClient returns a new Client
func NewClient() (Client, error) {
	return &client{}, nil
}

type client struct {
	replacer *strings.Replacer
}

func (ob *client) CollectSecrets(settings config.Settings) (err error) {

	values := []string{}
	if settings.Mail != nil {
		values = append(values, settings.Mail.Password)
	}

	// replace all secret values with obfuscated string
	ob.replacer = strings.NewReplacer(ob.getReplacerStrings(values)...)

	return nil
}

func (ob *client) getReplacerStrings(values []string) (replacerStrings []string) {

	replacerStrings = []string{}

	for _, v := range values {
		replacerStrings = append(replacerStrings, ob.getLineReplacerStrings(v)...)

		// if value looks like base64 decode it
		decodedValue, err := base64.StdEncoding.DecodeString(v)
		if err == nil {
			replacerStrings = append(replacerStrings, ob.getLineReplacerStrings(string(decodedValue))...)
		}
	}

	return replacerStrings
}

func (ob *client) getLineReplacerStrings(value string) (replacerStrings []string) {

	for _, l := range strings.Split(value, "\n") {
		if len(l) > maxLengthToSkipObfuscation {
			replacerStrings = append(replacerStrings, l, "***")

			// split further if line contains \n (encoded newline)
			for _, ll := range strings.Split(l, "\\n") {
				if len(ll) > maxLengthToSkipObfuscation && ll != l {
					replacerStrings = append(replacerStrings, ll, "***")
				}
			}
		}
	}

	return replacerStrings
}

func (ob *client) Obfuscate(input string) string {
	if ob.replacer == nil {
		return ob.ObfuscateSecrets(input)
	}
	return ob.ObfuscateSecrets(ob.replacer.Replace(input))
}

func (ob *client) ObfuscateSecrets(input string) string {
	return secretEnvelopeRegex.ReplaceAllString(input, "***")
}
