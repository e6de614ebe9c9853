package normalizer

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Rule is one known location of a field in a provider body.
type Rule struct {
	Path   []string
	Accept func(string) bool
}

// RuleSet is probed in order; the first present, non-empty, accepted value wins.
type RuleSet []Rule

func field(dotted string) Rule {
	return Rule{Path: strings.Split(dotted, ".")}
}

func fields(dotted ...string) RuleSet {
	rs := make(RuleSet, len(dotted))
	for i, d := range dotted {
		rs[i] = field(d)
	}
	return rs
}

// accepting returns a copy of rs where every rule requires accept.
func (rs RuleSet) accepting(accept func(string) bool) RuleSet {
	out := make(RuleSet, len(rs))
	for i, r := range rs {
		r.Accept = accept
		out[i] = r
	}
	return out
}

// First returns the first matching value in doc.
func (rs RuleSet) First(doc map[string]any) (string, bool) {
	for _, r := range rs {
		v, ok := lookup(doc, r.Path)
		if !ok {
			continue
		}
		s, ok := scalarString(v)
		if !ok || s == "" {
			continue
		}
		if r.Accept != nil && !r.Accept(s) {
			continue
		}
		return s, true
	}
	return "", false
}

const imageDataPrefix = "data:image/"

func isImageData(s string) bool {
	return strings.HasPrefix(s, imageDataPrefix)
}

var (
	PayloadRules        = fields("payload", "pixCopyPaste", "pix.copyPaste", "pix.qrcode")
	QRCodeRules         = fields("qrCodeBase64", "qrCode", "pix.qrcode", "pix.qrCode").accepting(isImageData)
	QRCodeURLRules      = fields("qrCodeUrl", "pix.qrCodeUrl", "pix.receiptUrl")
	TransactionIDRules  = fields("id", "transactionId", "transaction.id")
	StatusRules         = fields("status")
	ExpirationDateRules = fields("pix.expirationDate", "expirationDate", "pix.expiresAt")
	PaidAtRules         = fields("paidAt", "paid_at", "pix.paidAt")
	CreatedAtRules      = fields("createdAt", "created_at")
)

func lookup(doc map[string]any, path []string) (any, bool) {
	var cur any = doc
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// scalarString renders strings as is and numbers in plain decimal notation.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		if d, err := decimal.NewFromString(t.String()); err == nil {
			return d.String(), true
		}
		return t.String(), true
	default:
		return "", false
	}
}
