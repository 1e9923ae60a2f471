package codec

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	settings "github.com/goliatone/go-settings"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// PlayerKey holds the active player inside a document.
const PlayerKey = "player"

var (
	// ErrInvalidJSON reports input that is not well-formed JSON.
	ErrInvalidJSON = errors.New("codec: invalid json")
	// ErrUnsupportedNumber reports NaN, infinities and out of range numbers.
	ErrUnsupportedNumber = errors.New("codec: unsupported number")
	// ErrUnsupportedText reports names or text values that are not valid UTF-8
	// and would not survive encoding unchanged.
	ErrUnsupportedText = errors.New("codec: text is not valid utf-8")
)

// Document is the on-disk layout of a settings store: the active player plus
// one record array per section.
type Document struct {
	Player   string
	Sections map[string][]Record
}

// SectionNames lists the document sections in sorted order.
func (d Document) SectionNames() []string {
	names := make([]string, 0, len(d.Sections))
	for name := range d.Sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarshalRecords encodes records as [{"name":...,"value":...}].
func MarshalRecords(records []Record) ([]byte, error) {
	out := []byte{'['}
	for i, record := range records {
		entry, err := marshalRecord(record)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, entry...)
	}
	return append(out, ']'), nil
}

// UnmarshalRecords decodes a record array. Entries whose value is not a bool,
// number or string are skipped. Entries without a string name are an error.
func UnmarshalRecords(data []byte) ([]Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	return parseRecords(gjson.ParseBytes(data), "")
}

// MarshalCollection encodes the non-empty items of c as a record array.
func MarshalCollection(c *settings.Collection) ([]byte, error) {
	return MarshalRecords(Serialize(c))
}

// UnmarshalCollection replaces the contents of c with the records in data.
// c is left untouched when data cannot be decoded.
func UnmarshalCollection(data []byte, c *settings.Collection) error {
	records, err := UnmarshalRecords(data)
	if err != nil {
		return err
	}
	Populate(c, records)
	return nil
}

// MarshalDocument encodes doc as {"player":...,"<section>":[records...]}.
func MarshalDocument(doc Document) ([]byte, error) {
	if !utf8.ValidString(doc.Player) {
		return nil, fmt.Errorf("codec: player: %w", ErrUnsupportedText)
	}
	out, err := sjson.SetBytes([]byte("{}"), PlayerKey, doc.Player)
	if err != nil {
		return nil, fmt.Errorf("codec: set player: %w", err)
	}
	for _, name := range doc.SectionNames() {
		if name == PlayerKey {
			return nil, fmt.Errorf("codec: section name %q is reserved", name)
		}
		if name == "" {
			return nil, errors.New("codec: section name is empty")
		}
		if !utf8.ValidString(name) {
			return nil, fmt.Errorf("codec: section %q: %w", name, ErrUnsupportedText)
		}
		records, err := MarshalRecords(doc.Sections[name])
		if err != nil {
			return nil, fmt.Errorf("codec: section %q: %w", name, err)
		}
		if out, err = sjson.SetRawBytes(out, escapePath(name), records); err != nil {
			return nil, fmt.Errorf("codec: set section %q: %w", name, err)
		}
	}
	return out, nil
}

// UnmarshalDocument decodes a store document. Top-level keys other than the
// player that do not hold an array are ignored.
func UnmarshalDocument(data []byte) (Document, error) {
	if !gjson.ValidBytes(data) {
		return Document{}, ErrInvalidJSON
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Document{}, errors.New("codec: document must be a JSON object")
	}

	doc := Document{Sections: map[string][]Record{}}
	var err error
	root.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if name == PlayerKey {
			if value.Type != gjson.String {
				err = fmt.Errorf("codec: %q must be a string", PlayerKey)
				return false
			}
			doc.Player = value.Str
			return true
		}
		if !value.IsArray() {
			return true
		}
		records, parseErr := parseRecords(value, name)
		if parseErr != nil {
			err = parseErr
			return false
		}
		doc.Sections[name] = records
		return true
	})
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

func marshalRecord(record Record) ([]byte, error) {
	if !utf8.ValidString(record.Name) {
		return nil, fmt.Errorf("codec: record %q: %w", record.Name, ErrUnsupportedText)
	}
	out, err := sjson.SetBytes([]byte("{}"), "name", record.Name)
	if err != nil {
		return nil, fmt.Errorf("codec: record %q: %w", record.Name, err)
	}
	v := record.Value
	switch v.kind {
	case settings.KindBool:
		out, err = sjson.SetBytes(out, "value", v.b)
	case settings.KindInt:
		out, err = sjson.SetBytes(out, "value", v.i)
	case settings.KindFloat:
		var raw []byte
		if raw, err = formatFloat(v.f); err == nil {
			out, err = sjson.SetRawBytes(out, "value", raw)
		}
	case settings.KindText:
		if !utf8.ValidString(v.s) {
			return nil, fmt.Errorf("codec: record %q: %w", record.Name, ErrUnsupportedText)
		}
		out, err = sjson.SetBytes(out, "value", v.s)
	default:
		return nil, fmt.Errorf("codec: record %q has no value", record.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("codec: record %q: %w", record.Name, err)
	}
	return out, nil
}

func parseRecords(root gjson.Result, section string) ([]Record, error) {
	if !root.IsArray() {
		return nil, errors.New("codec: records must be a JSON array")
	}
	var (
		records []Record
		err     error
		index   int
	)
	root.ForEach(func(_, entry gjson.Result) bool {
		defer func() { index++ }()
		name := entry.Get("name")
		if !entry.IsObject() || name.Type != gjson.String {
			err = recordError(section, index, errMissingName)
			return false
		}
		value, ok, valueErr := decodeValue(entry.Get("value"))
		if valueErr != nil {
			err = recordError(section, index, valueErr)
			return false
		}
		if ok {
			records = append(records, Record{Name: name.Str, Value: value})
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

var errMissingName = errors.New("missing string name")

func recordError(section string, index int, err error) error {
	if section == "" {
		return fmt.Errorf("codec: record %d: %w", index, err)
	}
	return fmt.Errorf("codec: section %q record %d: %w", section, index, err)
}

func decodeValue(result gjson.Result) (Value, bool, error) {
	switch result.Type {
	case gjson.True, gjson.False:
		return Bool(result.Bool()), true, nil
	case gjson.String:
		return Text(result.Str), true, nil
	case gjson.Number:
		value, err := classifyNumber(result.Raw)
		return value, err == nil, err
	default:
		return Value{}, false, nil
	}
}

// classifyNumber maps a JSON number literal to Int when it has no fraction or
// exponent and fits in int64, and to Float otherwise.
func classifyNumber(raw string) (Value, error) {
	if !strings.ContainsAny(raw, ".eE") {
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return Int(i), nil
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) {
		return Value{}, fmt.Errorf("%w: %s", ErrUnsupportedNumber, raw)
	}
	return Float(f), nil
}

// formatFloat always yields a literal with a fraction or exponent so the value
// decodes back as a float.
func formatFloat(f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedNumber, f)
	}
	raw := strconv.AppendFloat(nil, f, 'g', -1, 64)
	if !strings.ContainsAny(string(raw), ".eE") {
		raw = append(raw, '.', '0')
	}
	return raw, nil
}

var pathEscaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
	`#`, `\#`,
	`@`, `\@`,
	`!`, `\!`,
	`:`, `\:`,
)

func escapePath(key string) string {
	return pathEscaper.Replace(key)
}
