// Package reseller implements the attribution token embedded in shareable
// product links. The token is a reversible obfuscation of the reseller id
// and the price at share time, not encryption: the key ships with every
// client, and the goal is casual tamper-resistance for a URL parameter, not
// access control. Do not replace the transform with real cryptography;
// that would invalidate every link already in circulation.
package reseller

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"strings"
)

// secretKey is the fixed repeating XOR key. Changing it invalidates all
// previously issued tokens.
const secretKey = "htbz-reseller-v1"

// Payload is the plaintext content of a token.
type Payload struct {
	ResellerID string  `json:"resellerId"`
	Price      float64 `json:"price"`
}

// Encode produces a URL-safe token for the given reseller id and price.
// Serialization failures (a non-finite price) are logged and yield an empty
// string; callers treat "" as "no token available" and omit the parameter.
func Encode(resellerID string, price float64) string {
	plain, err := json.Marshal(Payload{ResellerID: resellerID, Price: price})
	if err != nil {
		slog.Warn("reseller token encode failed",
			slog.String("reseller_id", resellerID),
			slog.String("error", err.Error()),
		)
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(xorTransform(plain))
}

// Decode parses a token back into its payload. Any failure (malformed
// base64, garbage after the XOR transform, missing fields) returns nil.
// Tampered and foreign tokens arrive from the outside world routinely, so
// none of these paths log at error severity.
func Decode(token string) *Payload {
	if token == "" {
		return nil
	}

	// Tolerate padded tokens: encoding strips the padding, but links get
	// copied around and sometimes come back with it restored.
	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		return nil
	}

	plain := xorTransform(data)

	var aux struct {
		ResellerID *string  `json:"resellerId"`
		Price      *float64 `json:"price"`
	}
	if err := json.Unmarshal(plain, &aux); err != nil || aux.ResellerID == nil || aux.Price == nil {
		return nil
	}

	return &Payload{ResellerID: *aux.ResellerID, Price: *aux.Price}
}

// xorTransform XORs every byte with the repeating secret key. The transform
// is its own inverse.
func xorTransform(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ secretKey[i%len(secretKey)]
	}
	return out
}
