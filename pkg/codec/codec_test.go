package codec

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	settings "github.com/goliatone/go-settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSerializeSkipsEmptyAndSortsKeys(t *testing.T) {
	c := settings.NewCollection()
	c.AddText("language", "en")
	c.AddInt("audio.volume", 7)
	c.Add("placeholder", settings.NewItem())
	c.AddBool("video.vsync", true)

	records := Serialize(c)
	require.Equal(t, []Record{
		{Name: "audio.volume", Value: Int(7)},
		{Name: "language", Value: Text("en")},
		{Name: "video.vsync", Value: Bool(true)},
	}, records)
	assert.Nil(t, Serialize(nil))
}

func TestDeserializeUsesAddRules(t *testing.T) {
	c := Deserialize([]Record{
		{Name: "width", Value: Int(800)},
		{Name: "width", Value: Int(1024)},
		{Name: "width", Value: Text("wide")},
		{Name: "gamma", Value: Float(2.2)},
	}, settings.WithName("system"))

	require.Equal(t, "system", c.Name())
	require.Equal(t, 2, c.Len())
	assert.Equal(t, int64(1024), c.Get("width").Int())
	assert.True(t, c.Get("width").HasChanged(), "repeated record overwrites and dirties")
	assert.False(t, c.Get("gamma").HasChanged())
}

func TestPopulateClearsExisting(t *testing.T) {
	c := settings.NewCollection()
	c.AddBool("stale", true)
	Populate(c, []Record{{Name: "fresh", Value: Bool(false)}})

	assert.Nil(t, c.Get("stale"))
	require.NotNil(t, c.Get("fresh"))
	assert.Equal(t, []string{"fresh"}, c.Keys())
}

func TestValueAccessors(t *testing.T) {
	assert.Equal(t, settings.KindEmpty, Value{}.Kind())
	assert.Nil(t, Value{}.Any())
	assert.Equal(t, "empty", Value{}.String())
	assert.Equal(t, "float(0.5)", Float(0.5).String())
	assert.Equal(t, settings.KindEmpty, Value{}.Item().Kind())
	assert.Equal(t, Text("x"), ValueOf(settings.FromText("x")))
	assert.Equal(t, Value{}, ValueOf(nil))
}

func TestMarshalRecordsKeepsFloatKind(t *testing.T) {
	data, err := MarshalRecords([]Record{
		{Name: "gamma", Value: Float(1)},
		{Name: "scale", Value: Float(1e21)},
		{Name: "count", Value: Int(1)},
		{Name: "label", Value: Text(`say "hi"`)},
		{Name: "on", Value: Bool(true)},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"name":"gamma","value":1.0},
		{"name":"scale","value":1e+21},
		{"name":"count","value":1},
		{"name":"label","value":"say \"hi\""},
		{"name":"on","value":true}
	]`, string(data))
	assert.Contains(t, string(data), `"value":1.0`)

	records, err := UnmarshalRecords(data)
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, settings.KindFloat, records[0].Value.Kind())
	assert.Equal(t, settings.KindFloat, records[1].Value.Kind())
	assert.Equal(t, settings.KindInt, records[2].Value.Kind())
}

func TestMarshalRecordsRejectsUnsupportedValues(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := MarshalRecords([]Record{{Name: "bad", Value: Float(v)}})
		require.ErrorIs(t, err, ErrUnsupportedNumber)
	}

	_, err := MarshalRecords([]Record{{Name: "blank"}})
	require.ErrorContains(t, err, `record "blank" has no value`)
}

func TestMarshalRecordsRejectsInvalidUTF8(t *testing.T) {
	_, err := MarshalRecords([]Record{{Name: "label", Value: Text("a\xffb")}})
	require.ErrorIs(t, err, ErrUnsupportedText)

	_, err = MarshalRecords([]Record{{Name: "bad\xfe", Value: Int(1)}})
	require.ErrorIs(t, err, ErrUnsupportedText)

	c := settings.NewCollection()
	c.AddText("label", "a\xffb")
	_, err = MarshalCollection(c)
	require.ErrorIs(t, err, ErrUnsupportedText)

	_, err = MarshalDocument(Document{Player: "p\xff"})
	require.ErrorIs(t, err, ErrUnsupportedText)

	_, err = MarshalDocument(Document{Sections: map[string][]Record{
		"system": {{Name: "label", Value: Text("\xc3")}},
	}})
	require.ErrorIs(t, err, ErrUnsupportedText)

	data, err := MarshalRecords([]Record{{Name: "label", Value: Text("größe ✓ 日本")}})
	require.NoError(t, err)
	records, err := UnmarshalRecords(data)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "größe ✓ 日本", records[0].Value.Any())
}

func TestUnmarshalRecordsNumberClassification(t *testing.T) {
	records, err := UnmarshalRecords([]byte(`[
		{"name":"a","value":42},
		{"name":"b","value":-3},
		{"name":"c","value":4.0},
		{"name":"d","value":5e2},
		{"name":"e","value":1E-3},
		{"name":"f","value":18446744073709551616}
	]`))
	require.NoError(t, err)
	require.Len(t, records, 6)

	assert.Equal(t, Int(42), records[0].Value)
	assert.Equal(t, Int(-3), records[1].Value)
	assert.Equal(t, Float(4), records[2].Value)
	assert.Equal(t, Float(500), records[3].Value)
	assert.Equal(t, Float(0.001), records[4].Value)
	assert.Equal(t, settings.KindFloat, records[5].Value.Kind(), "int64 overflow falls back to float")
}

func TestUnmarshalRecordsErrors(t *testing.T) {
	cases := map[string]struct {
		input   string
		wantErr string
	}{
		"invalid json":    {`[{"name":`, "invalid json"},
		"not an array":    {`{"name":"a"}`, "must be a JSON array"},
		"missing name":    {`[{"value":1}]`, "record 0: missing string name"},
		"numeric name":    {`[{"name":"ok","value":1},{"name":2,"value":1}]`, "record 1: missing string name"},
		"scalar entry":    {`[true]`, "record 0: missing string name"},
		"number overflow": {`[{"name":"huge","value":1e400}]`, "unsupported number"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := UnmarshalRecords([]byte(tc.input))
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestUnmarshalCollectionLeavesTargetOnError(t *testing.T) {
	c := settings.NewCollection()
	c.AddInt("kept", 1)

	err := UnmarshalCollection([]byte(`not json`), c)
	require.True(t, errors.Is(err, ErrInvalidJSON))
	assert.Equal(t, int64(1), c.Get("kept").Int())

	require.NoError(t, UnmarshalCollection([]byte(`[{"name":"next","value":"x"}]`), c))
	assert.Equal(t, []string{"next"}, c.Keys())
}

func TestUnmarshalDocumentFixture(t *testing.T) {
	doc, err := UnmarshalDocument(readFixture(t, "settings_document.json"))
	require.NoError(t, err)

	assert.Equal(t, "p-0042", doc.Player)
	assert.Equal(t, []string{"gameplay", "system"}, doc.SectionNames())

	system := Deserialize(doc.Sections["system"])
	assert.Equal(t, []string{"audio.volume", "language", "video.fullscreen", "video.gamma", "video.width"}, system.Keys())
	assert.Equal(t, settings.KindFloat, system.Get("video.gamma").Kind())
	assert.Equal(t, 1.0, system.Get("video.gamma").Float())
	assert.Equal(t, int64(1920), system.Get("video.width").Int())
	assert.Nil(t, system.Get("legacy.palette"), "array values are skipped")
	assert.Nil(t, system.Get("legacy.note"), "null values are skipped")

	gameplay := Deserialize(doc.Sections["gameplay"])
	assert.Equal(t, 2.5, gameplay.Get("mouse.sensitivity").Float())
	assert.Equal(t, int64(3), gameplay.Get("retries").Int())
}

func TestDocumentRoundTrip(t *testing.T) {
	doc := Document{
		Player: "p-1",
		Sections: map[string][]Record{
			"system":      {{Name: "video.width", Value: Int(1280)}, {Name: "video.gamma", Value: Float(2)}},
			"gameplay":    {{Name: "hints", Value: Bool(true)}},
			"mods.active": {{Name: "list", Value: Text("a,b")}},
		},
	}
	data, err := MarshalDocument(doc)
	require.NoError(t, err)

	decoded, err := UnmarshalDocument(data)
	require.NoError(t, err)
	assert.Equal(t, doc, decoded)
}

func TestMarshalDocumentReservedSection(t *testing.T) {
	_, err := MarshalDocument(Document{Sections: map[string][]Record{PlayerKey: nil}})
	require.ErrorContains(t, err, "reserved")
}

func TestUnmarshalDocumentErrors(t *testing.T) {
	_, err := UnmarshalDocument([]byte(`[]`))
	require.ErrorContains(t, err, "must be a JSON object")

	_, err = UnmarshalDocument([]byte(`{"player":7}`))
	require.ErrorContains(t, err, `"player" must be a string`)

	_, err = UnmarshalDocument([]byte(`{"system":[{"value":1}]}`))
	require.ErrorContains(t, err, `section "system" record 0`)
}

type displaySettings struct {
	Video struct {
		Width      int  `json:"width"`
		Fullscreen bool `json:"fullscreen"`
	} `json:"video"`
	Language string `json:"language"`
}

func TestBindDecodesDottedKeys(t *testing.T) {
	c := settings.NewCollection(settings.WithName("system"))
	c.AddInt("video.width", 1600)
	c.AddBool("video.fullscreen", true)
	c.AddText("language", "pt")

	got, err := Bind[displaySettings](c)
	require.NoError(t, err)
	assert.Equal(t, 1600, got.Video.Width)
	assert.True(t, got.Video.Fullscreen)
	assert.Equal(t, "pt", got.Language)
}

func TestBindStrictAndCheck(t *testing.T) {
	c := settings.NewCollection(settings.WithName("system"))
	c.AddInt("video.width", 1600)
	c.AddFloat("video.gamma", 2.2)

	_, err := Bind(c, BindStrict[displaySettings]())
	require.ErrorContains(t, err, "unknown field")

	var seen string
	_, err = Bind(c, BindCheck(func(section string, value *displaySettings) error {
		seen = section
		if value.Language == "" {
			return errors.New("language missing")
		}
		return nil
	}))
	require.ErrorContains(t, err, "language missing")
	assert.Equal(t, "system", seen)
}

func TestPropertyRecordsRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := settings.NewCollection()
		n := rapid.IntRange(0, 12).Draw(t, "n")
		for i := 0; i < n; i++ {
			name := rapid.StringMatching(`[a-z]{1,6}(\.[a-z]{1,6})?`).Draw(t, "name")
			switch rapid.IntRange(0, 3).Draw(t, "kind") {
			case 0:
				c.AddBool(name, rapid.Bool().Draw(t, "b"))
			case 1:
				c.AddInt(name, rapid.Int64().Draw(t, "i"))
			case 2:
				c.AddFloat(name, rapid.Float64Range(-1e12, 1e12).Draw(t, "f"))
			default:
				c.AddText(name, rapid.String().Draw(t, "s"))
			}
		}

		data, err := MarshalCollection(c)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		back := settings.NewCollection()
		if err := UnmarshalCollection(data, back); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if got, want := Serialize(back), Serialize(c); len(got) != len(want) {
			t.Fatalf("expected %d records, got %d", len(want), len(got))
		} else {
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("record %d: expected %v, got %v", i, want[i], got[i])
				}
			}
		}
	})
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
	if err != nil {
		t.Fatalf("failed to read fixture %q: %v", name, err)
	}
	return raw
}
