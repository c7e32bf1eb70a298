package models

import (
	"net/url"
	"strings"
)

// KVPair is a single ordered key/value entry. Pair lists are slices, not
// maps: duplicate keys are legal and order is significant (repeated form
// fields, repeated cookies).
type KVPair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// PairList is an ordered list of string pairs.
type PairList []KVPair

// Clone returns an independent copy of the list.
func (l PairList) Clone() PairList {
	if len(l) == 0 {
		return nil
	}
	out := make(PairList, len(l))
	copy(out, l)
	return out
}

// Serialize encodes the list as form-style text: each pair is
// escaped-key=escaped-value, pairs joined by "&". An empty or nil list
// encodes to the empty string. The encoding round-trips empty strings
// and duplicate keys in order.
func (l PairList) Serialize() string {
	if len(l) == 0 {
		return ""
	}

	var b strings.Builder
	for i, p := range l {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// DeserializePairs decodes text produced by Serialize. An empty string
// yields an empty list. Malformed input also yields an empty list:
// report generation must never fail because a stored column is corrupt.
func DeserializePairs(text string) PairList {
	if text == "" {
		return PairList{}
	}

	segments := strings.Split(text, "&")
	out := make(PairList, 0, len(segments))
	for _, seg := range segments {
		rawKey, rawValue, found := strings.Cut(seg, "=")
		if !found {
			return PairList{}
		}
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return PairList{}
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return PairList{}
		}
		out = append(out, KVPair{Key: key, Value: value})
	}
	return out
}
