// Package credential decodes and validates the opaque session blobs bots
// are registered with, and extracts the phone number they belong to.
package credential

import (
	"encoding/base64"
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const wirePrefix = "TREKKER~"

// requiredKeys are the fields that must be present, either at the document
// root (flat v7 shape) or nested under "creds" (wrapped shape), for a
// payload to be considered structurally valid.
var requiredKeys = []string{"noiseKey", "signedIdentityKey", "signedPreKey", "registrationId"}

// Decode strips the wire prefix and base64-decodes the payload into a raw
// JSON document, without yet validating its structure.
func Decode(blob string) ([]byte, error) {
	rest, ok := strings.CutPrefix(blob, wirePrefix)
	if !ok {
		return nil, ErrBadEncoding
	}
	raw, err := base64.StdEncoding.DecodeString(rest)
	if err != nil {
		return nil, ErrBadEncoding
	}
	return raw, nil
}

// Encode re-assembles a wire string from a raw JSON document, the inverse
// of Decode.
func Encode(raw []byte) string {
	return wirePrefix + base64.StdEncoding.EncodeToString(raw)
}

// Document is the parsed, normalized credential payload: whatever shape it
// arrived in, normalize rewrites it so "creds" always holds the wrapped
// fields.
type Document map[string]interface{}

// Parse decodes and JSON-unmarshals a wire credential string into a
// normalized Document.
func Parse(blob string) (Document, error) {
	raw, err := Decode(blob)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, ErrBadJSON
	}
	if err := doc.normalize(); err != nil {
		return nil, err
	}
	return doc, nil
}

// normalize rewrites a flat v7 payload (required fields at the document
// root, with an optional root "me" object) into the wrapped shape
// (required fields nested under "creds"), so downstream code only ever
// deals with one layout.
func (d Document) normalize() error {
	_, hasCreds := d["creds"].(map[string]interface{})
	if hasCreds {
		creds := d["creds"].(map[string]interface{})
		if missing := missingKeys(creds); len(missing) > 0 {
			return missingFields(missing)
		}
		return nil
	}

	// Flat v7 shape: required fields live at the document root, optionally
	// alongside a root "me" object (the whatsmeow/Baileys creds.json shape).
	// "me" is accepted as-is and left untouched so ExtractPhone's root-"me"
	// strategies can still find it after the required fields are wrapped.
	if missing := missingKeys(d); len(missing) > 0 {
		return missingFields(missing)
	}

	creds := make(map[string]interface{}, len(requiredKeys))
	for _, k := range requiredKeys {
		creds[k] = d[k]
		delete(d, k)
	}
	d["creds"] = creds
	return nil
}

func missingKeys(m map[string]interface{}) []string {
	var missing []string
	for _, k := range requiredKeys {
		if _, ok := m[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}

var idFieldRe = regexp.MustCompile(`^(\d+)[@:]`)

// ExtractPhone runs the ordered phone-extraction strategies against a
// normalized document and returns the first digit string it can find.
func (d Document) ExtractPhone() (string, error) {
	if creds, ok := d["creds"].(map[string]interface{}); ok {
		if me, ok := creds["me"].(map[string]interface{}); ok {
			if p, ok := extractFromIDField(me, "lid"); ok {
				return p, nil
			}
			if p, ok := extractFromIDField(me, "id"); ok {
				return p, nil
			}
		}
	}

	if me, ok := d["me"].(map[string]interface{}); ok {
		if p, ok := extractFromIDField(me, "id"); ok {
			return p, nil
		}
		if p, ok := extractFromIDField(me, "lid"); ok {
			return p, nil
		}
	}

	if creds, ok := d["creds"]; ok {
		serialized, err := json.Marshal(creds)
		if err == nil {
			if p, ok := scanDigitRuns(string(serialized)); ok {
				return p, nil
			}
		}
	}

	if p, ok := descendForPhone(d, 5); ok {
		return p, nil
	}

	return "", ErrNoPhone
}

func extractFromIDField(m map[string]interface{}, field string) (string, bool) {
	v, ok := m[field]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	match := idFieldRe.FindStringSubmatch(s)
	if match == nil {
		return "", false
	}
	return match[1], true
}

var digitRunRe = regexp.MustCompile(`\d{10,15}`)

// scanDigitRuns finds digit runs of plausible phone-number length within a
// serialized blob, filtering out leading-zero runs and values too small to
// be a real phone number.
func scanDigitRuns(serialized string) (string, bool) {
	for _, run := range digitRunRe.FindAllString(serialized, -1) {
		if strings.HasPrefix(run, "0") {
			continue
		}
		n, err := strconv.ParseInt(run, 10, 64)
		if err != nil {
			continue
		}
		if n <= 1_000_000_000 {
			continue
		}
		return run, true
	}
	return "", false
}

var phoneKeyPattern = regexp.MustCompile(`(?i)phone|number`)
var phoneValueRe = regexp.MustCompile(`(\d{10,15}):`)

// descendForPhone walks the document up to maxDepth looking for a string
// value matching "<digits>:" or a key named like "phone"/"number".
func descendForPhone(node interface{}, maxDepth int) (string, bool) {
	if maxDepth < 0 {
		return "", false
	}

	switch v := node.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			val := v[k]
			if s, ok := val.(string); ok && phoneKeyPattern.MatchString(k) {
				if digits := digitRunRe.FindString(s); digits != "" {
					return digits, true
				}
			}
		}
		for _, k := range keys {
			if p, ok := descendForPhone(v[k], maxDepth-1); ok {
				return p, true
			}
		}
	case []interface{}:
		for _, item := range v {
			if p, ok := descendForPhone(item, maxDepth-1); ok {
				return p, true
			}
		}
	case string:
		if m := phoneValueRe.FindStringSubmatch(v); m != nil {
			return m[1], true
		}
	}

	return "", false
}
