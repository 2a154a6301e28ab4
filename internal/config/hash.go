package config

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// DomainConfig is the domain prefix for configuration content addresses.
// The version suffix allows the encoding to change without collisions.
const DomainConfig = "fmmfsm/config/v1"

// Hash returns the content address of the document:
// SHA256(domain + 0x00 + canonical encoding), hex encoded.
//
// The canonical encoding sorts object keys, keeps the StateSet order (it
// fixes the floating-point evaluation order) and renders numbers with the
// shortest round-trip representation. Name is not part of the hash.
func (d *Document) Hash() (string, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"initial":`)
	if err := writeFlatObject(&buf, d.Initial); err != nil {
		return "", fmt.Errorf("hash initial: %w", err)
	}

	buf.WriteString(`,"inputs":{`)
	for i, ev := range slices.Sorted(maps.Keys(d.Inputs)) {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(&buf, ev); err != nil {
			return "", err
		}
		buf.WriteByte(':')
		if err := writeFlatObject(&buf, d.Inputs[ev]); err != nil {
			return "", fmt.Errorf("hash inputs: %w", err)
		}
	}

	buf.WriteString(`},"schedule":[`)
	for i, p := range d.Schedule {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('[')
		if err := writeString(&buf, p.Event); err != nil {
			return "", err
		}
		buf.WriteByte(',')
		buf.WriteString(strconv.Itoa(p.Repeat))
		buf.WriteByte(']')
	}

	buf.WriteString(`],"states":[`)
	for i, s := range d.States {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(&buf, s); err != nil {
			return "", err
		}
	}

	buf.WriteString(`],"transitions":{`)
	for i, cur := range slices.Sorted(maps.Keys(d.Transitions)) {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(&buf, cur); err != nil {
			return "", err
		}
		buf.WriteString(":{")
		byCondition := d.Transitions[cur]
		for j, cond := range slices.Sorted(maps.Keys(byCondition)) {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(&buf, cond); err != nil {
				return "", err
			}
			buf.WriteByte(':')
			if err := writeFlatObject(&buf, byCondition[cond]); err != nil {
				return "", fmt.Errorf("hash transitions: %w", err)
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteString("}}")

	return hashWithDomain(DomainConfig, buf.Bytes()), nil
}

// hashWithDomain computes SHA-256 with domain separation.
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// writeFlatObject writes a string -> number map with sorted keys.
func writeFlatObject(buf *bytes.Buffer, m map[string]float64) error {
	buf.WriteByte('{')
	for i, k := range slices.Sorted(maps.Keys(m)) {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(buf, k); err != nil {
			return err
		}
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatFloat(m[k], 'g', -1, 64))
	}
	buf.WriteByte('}')
	return nil
}

// writeString writes an NFC-normalized JSON string without HTML escaping.
func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return fmt.Errorf("encode %q: %w", s, err)
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'}))
	return nil
}
