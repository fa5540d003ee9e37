package contractkit

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/sjson"
)

// FieldGenerator produces a custom value for a named mock field. Generators
// registered in MockConfig.CustomGenerators take precedence over the
// built-in ones.
type FieldGenerator func(r *rand.Rand) interface{}

var apiKeyStatuses = []string{"active", "revoked", "expired"}
var apiKeyPermissions = []string{"read", "write", "admin"}

// GenerateMock synthesizes a payload for the requested status code. An
// undeclared code falls back to the first declared one, in declaration
// order. The shape is picked by substring heuristics on the contract's base
// name, with a generic record as the fallback.
func GenerateMock(ext *Extraction, statusCode int, cfg MockConfig) MockResult {
	desc := ext.Description
	if desc == nil {
		log.Warn("unable to generate mock: no contract description could be extracted")
		return MockResult{Success: false, Type: "error"}
	}
	codes := desc.ResponseCodes()
	if len(codes) == 0 {
		log.Warnf("unable to generate mock for %q: contract declares no status codes", desc.Name())
		return MockResult{Success: false, Type: "error"}
	}

	code := strconv.Itoa(statusCode)
	if !desc.HasResponseCode(code) {
		code = codes[0]
		log.Debugf("status code %d not declared by %q, falling back to %s", statusCode, desc.Name(), code)
	}

	// Seeded from the clock per call; the configured mock seed is not
	// threaded through to this path.
	g := mockGenerator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		cfg: cfg,
	}

	name := desc.Name()
	var (
		doc      []byte
		err      error
		mockType string
	)
	switch {
	case strings.Contains(name, "api-key") && strings.Contains(name, "get"):
		doc, err = g.apiKeyList()
		mockType = "api-key-list"
	case strings.Contains(name, "api-key") && strings.Contains(name, "post"):
		doc, err = g.apiKeyRecord(true)
		mockType = "api-key-record"
	default:
		doc, err = g.generic(code)
		mockType = "generic"
	}
	if err != nil {
		log.Errorf("unable to assemble mock document for %q: %s", name, err)
		return MockResult{Success: false, Type: "error"}
	}

	var data interface{}
	if err := json.Unmarshal(doc, &data); err != nil {
		log.Errorf("unable to decode mock document for %q: %s", name, err)
		return MockResult{Success: false, Type: "error"}
	}
	return MockResult{Success: true, Data: data, Type: mockType}
}

// mockGenerator assembles mock documents as JSON bytes. Realistic mode uses
// randomized values; otherwise fields collapse to fixed placeholders.
type mockGenerator struct {
	rng *rand.Rand
	cfg MockConfig
}

func (g mockGenerator) apiKeyList() ([]byte, error) {
	doc := []byte(`[]`)
	count := 1 + g.rng.Intn(3)
	if !g.cfg.GenerateRealisticData {
		count = 1
	}
	for i := 0; i < count; i++ {
		record, err := g.apiKeyRecord(false)
		if err != nil {
			return nil, err
		}
		doc, err = sjson.SetRawBytes(doc, "-1", record)
		if err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// apiKeyRecord builds one api-key record. The plaintext key is only present
// on freshly created records; list shapes carry the hash alone.
func (g mockGenerator) apiKeyRecord(includeSecret bool) ([]byte, error) {
	now := time.Now().UTC()
	doc := builder{doc: []byte(`{}`)}
	doc.set("id", g.field("id", func() interface{} { return "key_" + g.hex(12) }))
	doc.set("name", g.field("name", func() interface{} {
		return fmt.Sprintf("api key %d", g.rng.Intn(90)+10)
	}))
	if includeSecret {
		doc.set("key", "ck_live_"+g.hex(24))
	}
	doc.set("keyHash", g.hex(64))
	doc.set("status", g.pick(apiKeyStatuses))
	doc.set("permissions", g.permissions())
	doc.set("createdAt", g.timestamp(now.AddDate(0, 0, -30), now))
	doc.set("lastUsedAt", g.timestamp(now.AddDate(0, 0, -1), now))
	doc.set("expiresAt", g.timestamp(now, now.AddDate(1, 0, 0)))
	return doc.bytes()
}

func (g mockGenerator) generic(code string) ([]byte, error) {
	doc := builder{doc: []byte(`{}`)}
	doc.set("id", g.field("id", func() interface{} { return g.hex(12) }))
	doc.set("timestamp", time.Now().UTC().Format(time.RFC3339))
	doc.set("success", true)
	doc.set("message", g.field("message", func() interface{} {
		return "Mock response for status " + code
	}))
	return doc.bytes()
}

// field consults the configured custom generator for the name before the
// built-in fallback.
func (g mockGenerator) field(name string, fallback func() interface{}) interface{} {
	if gen, ok := g.cfg.CustomGenerators[name]; ok {
		return gen(g.rng)
	}
	return fallback()
}

func (g mockGenerator) hex(n int) string {
	if !g.cfg.GenerateRealisticData {
		return strings.Repeat("0", n)
	}
	const digits = "0123456789abcdef"
	out := make([]byte, n)
	for i := range out {
		out[i] = digits[g.rng.Intn(len(digits))]
	}
	return string(out)
}

func (g mockGenerator) pick(values []string) string {
	if !g.cfg.GenerateRealisticData {
		return values[0]
	}
	return values[g.rng.Intn(len(values))]
}

// permissions returns a non-empty subset of the known permission set.
func (g mockGenerator) permissions() []string {
	if !g.cfg.GenerateRealisticData {
		return []string{apiKeyPermissions[0]}
	}
	out := []string{}
	for _, p := range apiKeyPermissions {
		if g.rng.Intn(2) == 0 {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		out = append(out, apiKeyPermissions[g.rng.Intn(len(apiKeyPermissions))])
	}
	return out
}

func (g mockGenerator) timestamp(from, to time.Time) string {
	if !g.cfg.GenerateRealisticData || !to.After(from) {
		return from.Format(time.RFC3339)
	}
	span := to.Sub(from)
	return from.Add(time.Duration(g.rng.Int63n(int64(span)))).Format(time.RFC3339)
}

// builder accumulates sjson writes, remembering the first failure.
type builder struct {
	doc []byte
	err error
}

func (b *builder) set(path string, value interface{}) {
	if b.err != nil {
		return
	}
	b.doc, b.err = sjson.SetBytes(b.doc, path, value)
}

func (b *builder) bytes() ([]byte, error) {
	return b.doc, b.err
}
