package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCascadeDocument(t *testing.T) {
	m := MustCompile(t, CascadeDocument)

	assert.Equal(t, []string{"box-click", "page-scroll"}, m.EventOrder)
	require.Contains(t, m.ActionLists, "fade-out")
	assert.Len(t, m.ActionLists["fade-out"].ActionItemGroups, 2)

	d := MustDocument(t, m)
	_, ok := d.Lookup("footer")
	assert.True(t, ok)
}
