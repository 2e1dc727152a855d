package skill

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecords_List(t *testing.T) {
	data := []byte(`
- name: fastapi-expert
  description: Expert in FastAPI
  category: tech
  triggers: [fastapi]
- name: no-category
  description: falls back to general
- description: nameless records are dropped
`)
	records, err := ParseRecords(data)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "fastapi-expert", records[0].Name)
	assert.Equal(t, "tech", records[0].Category)
	assert.Equal(t, []string{"fastapi"}, records[0].Triggers)
	assert.Equal(t, DefaultCategory, records[1].Category)
}

func TestParseRecords_SingleMapping(t *testing.T) {
	records, err := ParseRecords([]byte("name: solo\ndescription: one record\ncategory: core\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "solo", records[0].Name)
}

func TestParseRecords_Malformed(t *testing.T) {
	_, err := ParseRecords([]byte("- name: [unclosed"))
	assert.Error(t, err)

	_, err = ParseRecords([]byte("just a scalar"))
	assert.Error(t, err)
}

func TestMarshalRecords_OmitsEmptyFields(t *testing.T) {
	data, err := MarshalRecords([]Skill{{Name: "lean", Description: "d", Category: "core"}})
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "name: lean")
	for _, field := range []string{"triggers", "usage_example", "input_desc", "params", "matches", "adaptation", "confidence"} {
		assert.NotContains(t, out, field)
	}

	back, err := ParseRecords(data)
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, "lean", back[0].Name)
}

func TestLoadDir_SkipsBrokenFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"b.yaml":      {Data: []byte("- name: second\n  description: x\n")},
		"a.yml":       {Data: []byte("- name: first\n  description: x\n")},
		"broken.yaml": {Data: []byte("- name: [oops")},
		"notes.md":    {Data: []byte("# ignored")},
		"sub/c.yaml":  {Data: []byte("- name: nested\n  description: x\n")},
	}

	skills, errs := LoadDir(fsys)
	require.Len(t, skills, 2)
	assert.Equal(t, "first", skills[0].Name)
	assert.Equal(t, "second", skills[1].Name)

	require.Len(t, errs, 1)
	var fe *FileError
	require.True(t, errors.As(errs[0], &fe))
	assert.Equal(t, "broken.yaml", fe.File)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "My Skill", want: "my-skill"},
		{in: "api_helper!", want: "apihelper"},
		{in: "***", wantErr: true},
	}
	for _, tt := range tests {
		got, err := SanitizeName(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidName)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("fastapi-expert"))
	assert.ErrorIs(t, ValidateName("../escape"), ErrInvalidName)
	assert.ErrorIs(t, ValidateName(""), ErrInvalidName)
}

func TestClone_DoesNotAlias(t *testing.T) {
	conf := 0.6
	orig := Skill{
		Name:     "x",
		Triggers: []string{"a"},
		Params:   map[string]any{"k": "v"},
		Matches:  &MatchSpec{TechStack: []string{"react"}, Confidence: &conf},
	}
	c := orig.Clone()
	c.Triggers[0] = "changed"
	c.Params["k"] = "changed"
	c.Matches.TechStack[0] = "vue"
	*c.Matches.Confidence = 0.1
	c.Confidence = 0.9

	assert.Equal(t, "a", orig.Triggers[0])
	assert.Equal(t, "v", orig.Params["k"])
	assert.Equal(t, "react", orig.Matches.TechStack[0])
	assert.Equal(t, 0.6, *orig.Matches.Confidence)
	assert.Zero(t, orig.Confidence)
}

func TestParseRecords_DeclaredZeroConfidence(t *testing.T) {
	records, err := ParseRecords([]byte("- name: a\n  matches:\n    confidence: 0\n- name: b\n  matches:\n    tech_stack: [go]\n"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.NotNil(t, records[0].Matches.Confidence)
	assert.Zero(t, *records[0].Matches.Confidence)
	assert.Nil(t, records[1].Matches.Confidence)
}

func TestNeed_Strings(t *testing.T) {
	n := Need{Context: map[string]any{
		"typed": []string{"a", "b"},
		"loose": []any{"c", 3, "d"},
		"other": 42,
	}}
	assert.Equal(t, []string{"a", "b"}, n.Strings("typed"))
	assert.Equal(t, []string{"c", "d"}, n.Strings("loose"))
	assert.Nil(t, n.Strings("other"))
	assert.Nil(t, n.Strings("missing"))
}
