package metadata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModelYAML = `
name: TestModel
table: test
fields:
  - name: id
    type: uuid
    select: true
  - name: name
    type: string
    unique: true
    not_null: true
    select: true
  - name: description
    type: text
  - name: total
    sql_type: NUMERIC(18,2)
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestParse_TestModel(t *testing.T) {
	entities, err := Parse(strings.NewReader(testModelYAML), "inline")
	require.NoError(t, err)
	require.Len(t, entities, 1)

	e := entities[0]
	assert.Equal(t, "TestModel", e.Name())
	assert.Equal(t, "test", e.Table())
	assert.Equal(t, []string{"id", "name", "description", "total"}, e.Fields())

	cols, err := e.Columns(newFakeMapper())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"id":          "UUID",
		"name":        "TEXT UNIQUE NOT NULL",
		"description": "TEXT",
		"total":       "NUMERIC(18,2)",
	}, cols)
}

func TestParse_MultipleDocuments(t *testing.T) {
	src := `
name: Account
fields:
  - name: Email
    type: string
---
name: AuditEntry
fields:
  - name: id
    type: bigint
`
	entities, err := Parse(strings.NewReader(src), "multi")
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, "account", entities[0].Table())
	assert.Equal(t, []string{"email"}, entities[0].Fields())
	assert.Equal(t, "audit_entry", entities[1].Table())
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown type":  "name: A\nfields:\n  - name: x\n    type: money\n",
		"missing name":  "fields:\n  - name: x\n    type: string\n",
		"missing type":  "name: A\nfields:\n  - name: x\n",
		"bad yaml":      "name: [unterminated\n",
		"duplicate col": "name: A\nfields:\n  - name: x\n    type: int\n  - name: X\n    type: int\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(src), name)
			assert.Error(t, err)
		})
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b_account.yaml", "name: Account\nfields:\n  - name: email\n    type: string\n")
	writeFile(t, dir, "a_test.yml", testModelYAML)
	writeFile(t, dir, "README.md", "not a definition")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755))

	entities, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, "TestModel", entities[0].Name())
	assert.Equal(t, "Account", entities[1].Name())
}

func TestLoadDir_DuplicateEntity(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.yaml", "name: Account\nfields:\n  - name: email\n    type: string\n")
	writeFile(t, dir, "two.yaml", "name: Account\nfields:\n  - name: id\n    type: int\n")

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Account")
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestIsDefinitionFile(t *testing.T) {
	assert.True(t, IsDefinitionFile("a.yaml"))
	assert.True(t, IsDefinitionFile("A.YML"))
	assert.False(t, IsDefinitionFile("a.json"))
	assert.False(t, IsDefinitionFile(".yaml.swp"))
}
