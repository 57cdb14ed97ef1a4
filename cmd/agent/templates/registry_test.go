package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewTemplateRegistryAt(t.TempDir())

	names, err := r.ListTemplates()
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, r.CreateDefaultTemplates())
	names, err = r.ListTemplates()
	require.NoError(t, err)
	assert.Equal(t, []string{"pirate", "researcher", "storyteller", "trader"}, names)

	custom := &AgentTemplate{Name: "Chef", Personality: "A grumpy chef.", Concepts: []string{"baking"}, Tools: []string{"Calculator"}}
	require.NoError(t, r.SaveTemplate("chef", custom))
	got, err := r.GetTemplate("chef")
	require.NoError(t, err)
	assert.Equal(t, custom, got)
	assert.Equal(t, "A grumpy chef. It knows a lot about baking. It can use Calculator.", got.Prompt())

	// defaults never overwrite edits
	edited := &AgentTemplate{Name: "Pirate", Personality: "A quiet pirate."}
	require.NoError(t, r.SaveTemplate("pirate", edited))
	require.NoError(t, r.CreateDefaultTemplates())
	got, err = r.GetTemplate("pirate")
	require.NoError(t, err)
	assert.Equal(t, "A quiet pirate.", got.Personality)

	_, err = r.GetTemplate("missing")
	assert.Error(t, err)
	assert.Error(t, r.SaveTemplate("../escape", custom))
}
