package profile

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

type testBuild struct {
	Configuration string
	Parallelism   int
	Publish       bool
	Feeds         []string
	Token         string
	Password      string
	Untracked     string

	buildNumber int
}

func defaultTestBuild() testBuild {
	return testBuild{
		Configuration: "Debug",
		Parallelism:   1,
		Feeds:         []string{"https://feed.example/v3"},
		Untracked:     "left alone",
		buildNumber:   7,
	}
}

var testSchema = MustSchema(
	Param("configuration", func(b *testBuild) *string { return &b.Configuration }),
	Param("parallelism", func(b *testBuild) *int { return &b.Parallelism }),
	Param("publish", func(b *testBuild) *bool { return &b.Publish }),
	Param("feeds", func(b *testBuild) *[]string { return &b.Feeds }),
	Param("build-number", func(b *testBuild) *int { return &b.buildNumber }),
	Secret("token", func(b *testBuild) *string { return &b.Token }),
	Secret("password", func(b *testBuild) *string { return &b.Password }),
)

type staticKeys string

func (k staticKeys) Fingerprint() (string, error) { return string(k), nil }

func overrides(names ...string) OverrideFunc {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(member string) bool { return set[member] }
}

func newTestController(t *testing.T, over OverrideDetector) *Controller[testBuild] {
	t.Helper()
	return &Controller[testBuild]{
		Schema:    testSchema,
		Store:     NewStore(t.TempDir()),
		Keys:      staticKeys("device-fingerprint"),
		Overrides: over,
	}
}

func readDocument(t *testing.T, path string) map[string]json.RawMessage {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}
