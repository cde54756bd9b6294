package unit

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// DomainDescriptor separates descriptor fingerprints from other hashes.
const DomainDescriptor = "decorum/descriptor/v1"

// Fingerprint returns a stable content hash of the descriptor: name,
// provider, transaction type and merged properties. Two descriptors with
// the same content hash identically regardless of map iteration order or
// Unicode normalisation form of their strings.
//
// Format: hex(SHA256(domain + 0x00 + canonical JSON)).
func (d *Descriptor) Fingerprint() string {
	obj := map[string]any{
		"provider":         d.provider,
		"transaction_type": d.transactionType,
		"properties":       d.properties,
	}
	if d.named {
		obj["name"] = d.name
	}

	var buf bytes.Buffer
	writeCanonical(&buf, obj)

	h := sha256.New()
	h.Write([]byte(DomainDescriptor))
	h.Write([]byte{0x00})
	h.Write(buf.Bytes())
	return hex.EncodeToString(h.Sum(nil))
}

// writeCanonical emits sorted-key JSON with NFC-normalised strings and no
// HTML escaping. Values of types JSON cannot represent are written as their
// fmt.Sprint string so overrides of any type still hash.
func writeCanonical(buf *bytes.Buffer, v any) {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case string:
		writeCanonicalString(buf, val)
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case int:
		buf.WriteString(strconv.Itoa(val))
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case float64:
		buf.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonical(buf, elem)
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, func(a, b string) int {
			return bytes.Compare([]byte(norm.NFC.String(a)), []byte(norm.NFC.String(b)))
		})
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonicalString(buf, k)
			buf.WriteByte(':')
			writeCanonical(buf, val[k])
		}
		buf.WriteByte('}')
	default:
		writeCanonicalString(buf, fmt.Sprint(val))
	}
}

func writeCanonicalString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(norm.NFC.String(s))
	// json.Encoder adds trailing newline, remove it
	buf.Truncate(buf.Len() - 1)
}
